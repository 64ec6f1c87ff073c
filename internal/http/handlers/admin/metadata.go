package admin

import (
	"github.com/aima-hub/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetMetadata 站点与文章统计
func (h *Handler) GetMetadata(c *gin.Context) {
	meta, err := h.ArticleService.Metadata(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, meta)
}
