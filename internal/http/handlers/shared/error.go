package shared

import (
	"errors"
	"strings"

	"github.com/aima-hub/internal/http/response"
	"github.com/aima-hub/internal/logger"
	"github.com/aima-hub/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.NewError(code, msg, err)
	if err != nil {
		log := RequestLog(c)
		if appErr.ServerSide() {
			log.Errorw("handler_error", "code", appErr.Code, "message", appErr.Message, "error", err)
		} else {
			log.Debugw("handler_error", "code", appErr.Code, "message", appErr.Message, "error", err)
		}
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondServiceError 将业务错误映射为 HTTP 响应，未知错误统一按 500 返回且不暴露细节。
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		RespondError(c, response.CodeBadRequest, validationMessage(err), nil)
	case errors.Is(err, service.ErrNotFound):
		RespondError(c, response.CodeNotFound, "article not found", nil)
	case errors.Is(err, service.ErrSlugConflict):
		RespondError(c, response.CodeConflict, "could not allocate a unique slug", err)
	case errors.Is(err, service.ErrInvalidCredentials):
		RespondError(c, response.CodeUnauthorized, "invalid credentials", nil)
	case errors.Is(err, service.ErrTokenInvalid):
		RespondError(c, response.CodeUnauthorized, "unauthorized", nil)
	case errors.Is(err, service.ErrLoginDisabled):
		RespondError(c, response.CodeUnauthorized, "password login is not configured", nil)
	default:
		RespondError(c, response.CodeInternal, "internal server error", err)
	}
}

// validationMessage 去掉哨兵前缀，只保留字段说明
func validationMessage(err error) string {
	msg := err.Error()
	prefix := service.ErrValidation.Error() + ": "
	if strings.HasPrefix(msg, prefix) {
		return strings.TrimPrefix(msg, prefix)
	}
	return msg
}
