package repository

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/aima-hub/internal/constants"
	"github.com/aima-hub/internal/models"

	"gorm.io/gorm"
)

// ArticleRepository 文章数据访问接口
type ArticleRepository interface {
	// Create 插入文章，slug 冲突时返回 ErrSlugTaken
	Create(ctx context.Context, article *models.Article) error
	// Update 覆盖除 id/slug/views/createdAt 以外的字段，已有的 publishedAt 保持不变，文章不存在时返回 ErrArticleNotFound
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*models.Article, error)
	GetBySlug(ctx context.Context, slug string, onlyPublished bool) (*models.Article, error)
	// IncrementViews 原子递增阅读数并返回最新值
	IncrementViews(ctx context.Context, id string) (int64, error)
	List(ctx context.Context, filter ArticleListFilter) ([]models.Article, int64, error)
	// Search 在标题、摘要、正文、标签、分类中检索
	Search(ctx context.Context, keyword string, onlyPublished bool, limit int) ([]models.Article, error)
	ListCategories(ctx context.Context, onlyPublished bool) ([]string, error)
	ListTags(ctx context.Context, onlyPublished bool) ([]string, error)
	Stats(ctx context.Context) (ArticleStats, error)
	Ping(ctx context.Context) error
}

// GormArticleRepository GORM 实现
type GormArticleRepository struct {
	db *gorm.DB
}

// NewArticleRepository 创建文章仓库
func NewArticleRepository(db *gorm.DB) *GormArticleRepository {
	return &GormArticleRepository{db: db}
}

// Create 创建文章
func (r *GormArticleRepository) Create(ctx context.Context, article *models.Article) error {
	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrSlugTaken
		}
		return err
	}
	return nil
}

// Update 更新文章，views 只通过 IncrementViews 修改，已写入的 published_at 不会被清空
func (r *GormArticleRepository) Update(ctx context.Context, article *models.Article) error {
	result := r.db.WithContext(ctx).
		Model(&models.Article{ID: article.ID}).
		Updates(map[string]interface{}{
			"title":         article.Title,
			"excerpt":       article.Excerpt,
			"content":       article.Content,
			"author_name":   article.Author.Name,
			"author_avatar": article.Author.Avatar,
			"category":      article.Category,
			"tags":          article.Tags,
			"image":         article.Image,
			"status":        article.Status,
			"featured":      article.Featured,
			"read_time":     article.ReadTime,
			"seo":           article.SEO,
			"published_at":  gorm.Expr("COALESCE(published_at, ?)", article.PublishedAt),
			"updated_at":    article.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrArticleNotFound
	}
	return nil
}

// Delete 删除文章
func (r *GormArticleRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Article{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetByID 根据 ID 获取文章
func (r *GormArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	var article models.Article
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &article, nil
}

// GetBySlug 根据 slug 获取文章
func (r *GormArticleRepository) GetBySlug(ctx context.Context, slug string, onlyPublished bool) (*models.Article, error) {
	var article models.Article
	query := r.db.WithContext(ctx).Where("slug = ?", slug)
	if onlyPublished {
		query = query.Where("status = ?", constants.ArticleStatusPublished)
	}
	if err := query.First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &article, nil
}

// IncrementViews 原子递增阅读数
func (r *GormArticleRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	db := r.db.WithContext(ctx)
	result := db.Model(&models.Article{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrArticleNotFound
	}
	var views int64
	if err := db.Model(&models.Article{}).Where("id = ?", id).Select("views").Scan(&views).Error; err != nil {
		return 0, err
	}
	return views, nil
}

// List 文章列表
func (r *GormArticleRepository) List(ctx context.Context, filter ArticleListFilter) ([]models.Article, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.Article{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if filter.OmitContent {
		query = query.Omit("content")
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var articles []models.Article
	if err := query.Order(orderClause(filter.OrderBy)).Find(&articles).Error; err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// Search 全文子串检索
func (r *GormArticleRepository) Search(ctx context.Context, keyword string, onlyPublished bool, limit int) ([]models.Article, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []models.Article{}, nil
	}
	query := r.db.WithContext(ctx).Model(&models.Article{})
	if onlyPublished {
		query = query.Where("status = ?", constants.ArticleStatusPublished)
	}
	condition, argCount := buildLikeCondition(dbDialectName(r.db),
		[]string{"title", "excerpt", "content", "category"}, []string{"tags"})
	query = query.Where(condition, repeatLikeArgs(likePattern(keyword), argCount)...)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var articles []models.Article
	if err := query.Order(orderClause(ArticleOrderPublished)).Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// ListCategories 去重后的分类列表
func (r *GormArticleRepository) ListCategories(ctx context.Context, onlyPublished bool) ([]string, error) {
	query := r.db.WithContext(ctx).Model(&models.Article{}).Where("category <> ''")
	if onlyPublished {
		query = query.Where("status = ?", constants.ArticleStatusPublished)
	}
	var categories []string
	if err := query.Distinct().Order("category ASC").Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// ListTags 去重后的标签列表
func (r *GormArticleRepository) ListTags(ctx context.Context, onlyPublished bool) ([]string, error) {
	query := r.db.WithContext(ctx).Model(&models.Article{})
	if onlyPublished {
		query = query.Where("status = ?", constants.ArticleStatusPublished)
	}
	var rows []models.StringArray
	if err := query.Pluck("tags", &rows).Error; err != nil {
		return nil, err
	}
	return distinctSorted(rows), nil
}

// Stats 聚合统计
func (r *GormArticleRepository) Stats(ctx context.Context) (ArticleStats, error) {
	db := r.db.WithContext(ctx)
	var stats ArticleStats
	if err := db.Model(&models.Article{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Article{}).
		Where("status = ?", constants.ArticleStatusPublished).
		Count(&stats.Published).Error; err != nil {
		return stats, err
	}
	stats.Draft = stats.Total - stats.Published

	var latest []models.Article
	if err := db.Select("id", "updated_at").Order("updated_at DESC").Limit(1).Find(&latest).Error; err != nil {
		return stats, err
	}
	if len(latest) > 0 {
		updatedAt := latest[0].UpdatedAt
		stats.LastUpdated = &updatedAt
	}
	return stats, nil
}

// Ping 检查数据库连通性
func (r *GormArticleRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *GormArticleRepository) applyFilter(query *gorm.DB, filter ArticleListFilter) *gorm.DB {
	dialect := dbDialectName(r.db)
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if category := strings.TrimSpace(filter.Category); category != "" && category != constants.CategoryAll {
		query = query.Where("category = ?", category)
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		query = query.Where(jsonArrayContainsCondition(dialect, "tags"), tag)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, argCount := buildLikeCondition(dialect, []string{"title", "excerpt"}, []string{"tags"})
		query = query.Where(condition, repeatLikeArgs(likePattern(search), argCount)...)
	}
	if filter.Featured != nil {
		query = query.Where("featured = ?", *filter.Featured)
	}
	return query
}

func orderClause(orderBy string) string {
	if orderBy == ArticleOrderUpdated {
		return "updated_at DESC, id ASC"
	}
	return "published_at DESC, created_at DESC, id ASC"
}

func distinctSorted(groups []models.StringArray) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, group := range groups {
		for _, value := range group {
			trimmed := strings.TrimSpace(value)
			if trimmed == "" {
				continue
			}
			if _, ok := seen[trimmed]; ok {
				continue
			}
			seen[trimmed] = struct{}{}
			out = append(out, trimmed)
		}
	}
	sort.Strings(out)
	return out
}
