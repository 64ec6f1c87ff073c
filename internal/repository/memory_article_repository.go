package repository

import (
	"context"
	"sync"
	"time"

	"github.com/aima-hub/internal/models"
)

// MemoryArticleRepository 进程内实现，所有读写在同一把锁下完成
type MemoryArticleRepository struct {
	mu       sync.RWMutex
	articles map[string]*models.Article
	slugs    map[string]string // slug -> id
}

// NewMemoryArticleRepository 创建内存文章仓库
func NewMemoryArticleRepository() *MemoryArticleRepository {
	return &MemoryArticleRepository{
		articles: make(map[string]*models.Article),
		slugs:    make(map[string]string),
	}
}

// Create 创建文章
func (r *MemoryArticleRepository) Create(_ context.Context, article *models.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.slugs[article.Slug]; taken {
		return ErrSlugTaken
	}
	now := time.Now()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	if article.UpdatedAt.IsZero() {
		article.UpdatedAt = now
	}
	r.articles[article.ID] = cloneArticle(article)
	r.slugs[article.Slug] = article.ID
	return nil
}

// Update 更新文章，保留已存储的 slug、views、createdAt 与 publishedAt
func (r *MemoryArticleRepository) Update(_ context.Context, article *models.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.articles[article.ID]
	if !ok {
		return ErrArticleNotFound
	}
	next := cloneArticle(article)
	next.Slug = stored.Slug
	next.Views = stored.Views
	next.CreatedAt = stored.CreatedAt
	if stored.PublishedAt != nil {
		publishedAt := *stored.PublishedAt
		next.PublishedAt = &publishedAt
	}
	if next.UpdatedAt.IsZero() {
		next.UpdatedAt = time.Now()
	}
	r.articles[article.ID] = next
	return nil
}

// Delete 删除文章
func (r *MemoryArticleRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.articles[id]
	if !ok {
		return false, nil
	}
	delete(r.slugs, stored.Slug)
	delete(r.articles, id)
	return true, nil
}

// GetByID 根据 ID 获取文章
func (r *MemoryArticleRepository) GetByID(_ context.Context, id string) (*models.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneArticle(r.articles[id]), nil
}

// GetBySlug 根据 slug 获取文章
func (r *MemoryArticleRepository) GetBySlug(_ context.Context, slug string, onlyPublished bool) (*models.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.slugs[slug]
	if !ok {
		return nil, nil
	}
	article := r.articles[id]
	if onlyPublished && !article.IsPublished() {
		return nil, nil
	}
	return cloneArticle(article), nil
}

// IncrementViews 递增阅读数
func (r *MemoryArticleRepository) IncrementViews(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	article, ok := r.articles[id]
	if !ok {
		return 0, ErrArticleNotFound
	}
	article.Views++
	return article.Views, nil
}

// List 文章列表
func (r *MemoryArticleRepository) List(_ context.Context, filter ArticleListFilter) ([]models.Article, int64, error) {
	matched := make([]models.Article, 0)
	for _, article := range r.snapshot() {
		if matchArticle(&article, filter) {
			if filter.OmitContent {
				article.Content = ""
			}
			matched = append(matched, article)
		}
	}
	sortArticles(matched, filter.OrderBy)
	return paginateSlice(matched, filter.Page, filter.PageSize), int64(len(matched)), nil
}

// Search 全文子串检索
func (r *MemoryArticleRepository) Search(_ context.Context, keyword string, onlyPublished bool, limit int) ([]models.Article, error) {
	matched := make([]models.Article, 0)
	for _, article := range r.snapshot() {
		if onlyPublished && !article.IsPublished() {
			continue
		}
		if matchSearch(&article, keyword) {
			matched = append(matched, article)
		}
	}
	sortArticles(matched, ArticleOrderPublished)
	return paginateSlice(matched, 1, limit), nil
}

// ListCategories 去重后的分类列表
func (r *MemoryArticleRepository) ListCategories(_ context.Context, onlyPublished bool) ([]string, error) {
	return collectCategories(r.snapshot(), onlyPublished), nil
}

// ListTags 去重后的标签列表
func (r *MemoryArticleRepository) ListTags(_ context.Context, onlyPublished bool) ([]string, error) {
	return collectTags(r.snapshot(), onlyPublished), nil
}

// Stats 聚合统计
func (r *MemoryArticleRepository) Stats(_ context.Context) (ArticleStats, error) {
	return collectStats(r.snapshot()), nil
}

// Ping 内存后端总是可用
func (r *MemoryArticleRepository) Ping(_ context.Context) error {
	return nil
}

func (r *MemoryArticleRepository) snapshot() []models.Article {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Article, 0, len(r.articles))
	for _, article := range r.articles {
		out = append(out, *cloneArticle(article))
	}
	return out
}
