package admin

import (
	"github.com/aima-hub/internal/http/handlers/shared"
	"github.com/aima-hub/internal/http/response"

	"github.com/gin-gonic/gin"
)

// LoginRequest 管理员登录请求
type LoginRequest struct {
	Password string `json:"password"`
}

// Login 管理员登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := shared.BindStrictJSON(c, &req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	if req.Password == "" {
		respondError(c, response.CodeBadRequest, "password is required", nil)
		return
	}

	result, err := h.AuthService.Login(req.Password)
	if err != nil {
		shared.RequestLog(c).Infow("admin_login_failed", "client_ip", c.ClientIP())
		respondServiceError(c, err)
		return
	}
	shared.RequestLog(c).Infow("admin_login_success", "client_ip", c.ClientIP())
	response.Success(c, result)
}
