package public

import (
	"github.com/aima-hub/internal/constants"
	"github.com/aima-hub/internal/http/handlers/shared"
	"github.com/aima-hub/internal/http/response"

	"github.com/gin-gonic/gin"
)

// SubmitArticle 公开投稿，总是保存为草稿
func (h *Handler) SubmitArticle(c *gin.Context) {
	if !h.Config.Submission.Enabled {
		respondError(c, response.CodeNotFound, "submissions are disabled", nil)
		return
	}
	var req shared.ArticleRequest
	if err := shared.BindStrictJSON(c, &req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}
	input := req.ToCreateInput()
	input.Status = constants.ArticleStatusDraft
	input.Featured = false

	article, err := h.ArticleService.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	shared.RequestLog(c).Infow("article_submitted", "article_id", article.ID, "client_ip", c.ClientIP())
	response.Created(c, gin.H{"id": article.ID, "slug": article.Slug, "status": article.Status})
}
