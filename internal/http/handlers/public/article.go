package public

import (
	"github.com/aima-hub/internal/constants"
	"github.com/aima-hub/internal/http/handlers/shared"
	"github.com/aima-hub/internal/http/response"
	"github.com/aima-hub/internal/service"

	"github.com/gin-gonic/gin"
)

// GetArticles 获取已发布文章列表
func (h *Handler) GetArticles(c *gin.Context) {
	page, pageSize := shared.NormalizePagination(
		shared.QueryInt(c, "page"),
		shared.QueryInt(c, "limit", "page_size"),
		constants.PublicDefaultPageSize,
		constants.PublicMaxPageSize,
	)

	articles, total, err := h.ArticleService.ListPublic(c.Request.Context(), service.PublicListQuery{
		Page:     page,
		PageSize: pageSize,
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Search:   c.Query("search"),
		Featured: shared.QueryBool(c, "featured"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, articles, response.NewPagination(page, pageSize, total))
}

// GetArticleBySlug 根据 slug 获取文章详情
func (h *Handler) GetArticleBySlug(c *gin.Context) {
	article, err := h.ArticleService.GetPublicBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, article)
}

// GetRelatedArticles 获取相关文章
func (h *Handler) GetRelatedArticles(c *gin.Context) {
	articles, err := h.ArticleService.Related(c.Request.Context(), c.Param("slug"), shared.QueryInt(c, "limit"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, articles)
}

// GetCategories 获取分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.ArticleService.ListCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, categories)
}

// GetTags 获取标签列表
func (h *Handler) GetTags(c *gin.Context) {
	tags, err := h.ArticleService.ListTags(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, tags)
}

// SearchArticles 轻量检索
func (h *Handler) SearchArticles(c *gin.Context) {
	results, err := h.ArticleService.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, results)
}

// Healthz 存活与存储探活
func (h *Handler) Healthz(c *gin.Context) {
	if err := h.ArticleService.Ping(c.Request.Context()); err != nil {
		respondError(c, response.CodeUnavailable, "store unavailable", err)
		return
	}
	response.Success(c, gin.H{"status": "ok", "backend": h.Config.Store.Backend})
}
