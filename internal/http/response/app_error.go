package response

import "github.com/gin-gonic/gin"

// AppError 处理器层错误：Code 与 Message 写回客户端，Err 只用于日志
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewError 构造处理器层错误
func NewError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status 实际写回的 HTTP 状态码
func (e *AppError) Status() int {
	return httpStatus(e.Code)
}

// ServerSide 5xx 错误需要按 error 级别记录
func (e *AppError) ServerSide() bool {
	return e.Status() >= CodeInternal
}

// Abort 写出错误响应并中止后续 handler，供中间件使用
func Abort(c *gin.Context, appErr *AppError) {
	Error(c, appErr.Code, appErr.Message)
	c.Abort()
}
