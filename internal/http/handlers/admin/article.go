package admin

import (
	"github.com/aima-hub/internal/constants"
	"github.com/aima-hub/internal/http/handlers/shared"
	"github.com/aima-hub/internal/http/response"
	"github.com/aima-hub/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminArticles 获取文章列表 (Admin)
func (h *Handler) GetAdminArticles(c *gin.Context) {
	page, pageSize := shared.NormalizePagination(
		shared.QueryInt(c, "page"),
		shared.QueryInt(c, "limit", "page_size"),
		constants.AdminDefaultPageSize,
		constants.AdminMaxPageSize,
	)

	articles, total, err := h.ArticleService.ListAdmin(c.Request.Context(), service.AdminListQuery{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, articles, response.NewPagination(page, pageSize, total))
}

// GetAdminArticle 获取文章详情 (Admin)
func (h *Handler) GetAdminArticle(c *gin.Context) {
	article, err := h.ArticleService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, article)
}

// CreateArticle 创建文章
func (h *Handler) CreateArticle(c *gin.Context) {
	var req shared.ArticleRequest
	if err := shared.BindStrictJSON(c, &req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}

	article, err := h.ArticleService.Create(c.Request.Context(), req.ToCreateInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, article)
}

// UpdateArticle 局部更新文章
func (h *Handler) UpdateArticle(c *gin.Context) {
	var req shared.ArticleRequest
	if err := shared.BindStrictJSON(c, &req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}

	article, err := h.ArticleService.Update(c.Request.Context(), c.Param("id"), req.ToUpdateInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, article)
}

// DeleteArticle 删除文章
func (h *Handler) DeleteArticle(c *gin.Context) {
	id := c.Param("id")
	if err := h.ArticleService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "deleted", gin.H{"id": id})
}
