package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aima-hub/internal/config"
	"github.com/aima-hub/internal/constants"
	"github.com/aima-hub/internal/logger"
	"github.com/aima-hub/internal/metrics"
	"github.com/aima-hub/internal/models"
	"github.com/aima-hub/internal/repository"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ArticleService 文章业务服务
type ArticleService struct {
	repo repository.ArticleRepository
	site config.SiteConfig
	now  func() time.Time
}

// NewArticleService 创建文章服务
func NewArticleService(repo repository.ArticleRepository, site config.SiteConfig) *ArticleService {
	return &ArticleService{repo: repo, site: site, now: time.Now}
}

// CreateArticleInput 创建文章输入
type CreateArticleInput struct {
	Title       string
	Slug        string
	Excerpt     string
	Content     string
	Author      *models.Author
	Category    string
	Tags        []string
	Image       string
	Featured    bool
	Status      string
	SEO         *models.SEO
	PublishedAt *time.Time // 仅在发布状态下生效，导入历史文章时使用
}

// UpdateArticleInput 局部更新输入，nil 字段保持不变
type UpdateArticleInput struct {
	Slug     *string // 只允许回传原值
	Title    *string
	Excerpt  *string
	Content  *string
	Author   *models.Author
	Category *string
	Tags     *[]string
	Image    *string
	Featured *bool
	Status   *string
	SEO      *models.SEO
}

// PublicListQuery 公开列表查询
type PublicListQuery struct {
	Page     int
	PageSize int
	Category string
	Tag      string
	Search   string
	Featured *bool
}

// AdminListQuery 后台列表查询
type AdminListQuery struct {
	Page     int
	PageSize int
	Status   string
	Category string
	Search   string
}

// Metadata 站点与文章聚合信息
type Metadata struct {
	SiteTitle         string     `json:"siteTitle"`
	SiteDescription   string     `json:"siteDescription"`
	SiteURL           string     `json:"siteUrl"`
	TotalArticles     int64      `json:"totalArticles"`
	PublishedArticles int64      `json:"publishedArticles"`
	DraftArticles     int64      `json:"draftArticles"`
	Categories        []string   `json:"categories"`
	Tags              []string   `json:"tags"`
	LastUpdated       *time.Time `json:"lastUpdated"`
}

// ListPublic 获取已发布文章列表
func (s *ArticleService) ListPublic(ctx context.Context, query PublicListQuery) ([]models.Article, int64, error) {
	return s.repo.List(ctx, repository.ArticleListFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		Status:   constants.ArticleStatusPublished,
		Category: query.Category,
		Tag:      query.Tag,
		Search:   query.Search,
		Featured: query.Featured,
		OrderBy:  repository.ArticleOrderPublished,
	})
}

// GetPublicBySlug 获取已发布文章详情并计入一次阅读
func (s *ArticleService) GetPublicBySlug(ctx context.Context, slug string) (*models.Article, error) {
	article, err := s.repo.GetBySlug(ctx, strings.TrimSpace(slug), true)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, ErrNotFound
	}
	views, err := s.repo.IncrementViews(ctx, article.ID)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	article.Views = views
	metrics.ArticleViewsTotal.Inc()
	return article, nil
}

// Related 按分类与标签重合度返回相关文章
func (s *ArticleService) Related(ctx context.Context, slug string, limit int) ([]models.Article, error) {
	source, err := s.repo.GetBySlug(ctx, strings.TrimSpace(slug), true)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, ErrNotFound
	}
	if limit <= 0 {
		limit = constants.RelatedDefaultLimit
	}
	if limit > constants.RelatedMaxLimit {
		limit = constants.RelatedMaxLimit
	}

	// 候选集已按 publishedAt 倒序，稳定排序保证同分时新文章在前
	candidates, _, err := s.repo.List(ctx, repository.ArticleListFilter{
		Status:  constants.ArticleStatusPublished,
		OrderBy: repository.ArticleOrderPublished,
	})
	if err != nil {
		return nil, err
	}

	type scored struct {
		article models.Article
		score   int
	}
	ranked := make([]scored, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ID == source.ID {
			continue
		}
		if score := relatedScore(source, &candidate); score > 0 {
			ranked = append(ranked, scored{article: candidate, score: score})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	out := make([]models.Article, 0, limit)
	for i := 0; i < len(ranked) && i < limit; i++ {
		out = append(out, ranked[i].article)
	}
	return out, nil
}

func relatedScore(source, candidate *models.Article) int {
	score := 0
	if source.Category != "" && candidate.Category == source.Category {
		score += constants.RelatedCategoryScore
	}
	sourceTags := make(map[string]struct{}, len(source.Tags))
	for _, tag := range source.Tags {
		sourceTags[tag] = struct{}{}
	}
	counted := make(map[string]struct{}, len(candidate.Tags))
	for _, tag := range candidate.Tags {
		if _, shared := sourceTags[tag]; !shared {
			continue
		}
		if _, dup := counted[tag]; dup {
			continue
		}
		counted[tag] = struct{}{}
		score += constants.RelatedTagScore
	}
	return score
}

// ListCategories 已发布文章的分类
func (s *ArticleService) ListCategories(ctx context.Context) ([]string, error) {
	return s.repo.ListCategories(ctx, true)
}

// ListTags 已发布文章的标签
func (s *ArticleService) ListTags(ctx context.Context) ([]string, error) {
	return s.repo.ListTags(ctx, true)
}

// Search 轻量检索，最多返回 10 条且不含正文
func (s *ArticleService) Search(ctx context.Context, keyword string) ([]models.ArticleSummary, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []models.ArticleSummary{}, nil
	}
	articles, err := s.repo.Search(ctx, keyword, true, constants.SearchResultLimit)
	if err != nil {
		return nil, err
	}
	out := make([]models.ArticleSummary, 0, len(articles))
	for i := range articles {
		out = append(out, articles[i].Summary())
	}
	return out, nil
}

// ListAdmin 后台文章列表，包含草稿
func (s *ArticleService) ListAdmin(ctx context.Context, query AdminListQuery) ([]models.Article, int64, error) {
	status := strings.ToLower(strings.TrimSpace(query.Status))
	if status != "" && !isValidStatus(status) {
		return nil, 0, validationError(fmt.Errorf("status: must be draft or published"))
	}
	return s.repo.List(ctx, repository.ArticleListFilter{
		Page:        query.Page,
		PageSize:    query.PageSize,
		Status:      status,
		Category:    query.Category,
		Search:      query.Search,
		OrderBy:     repository.ArticleOrderUpdated,
		OmitContent: true,
	})
}

// GetByID 后台获取文章详情，不计阅读数
func (s *ArticleService) GetByID(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, ErrNotFound
	}
	return article, nil
}

// notBlank 仅含空白字符的字符串按空值处理
var notBlank = validation.By(func(value interface{}) error {
	if text, ok := value.(string); ok && strings.TrimSpace(text) == "" {
		return validation.ErrRequired
	}
	return nil
})

// Create 创建文章，slug 冲突时依次追加数字后缀重试，耗尽后改用 id 后缀
func (s *ArticleService) Create(ctx context.Context, input CreateArticleInput) (*models.Article, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Status = strings.ToLower(strings.TrimSpace(input.Status))
	if input.Status == "" {
		input.Status = constants.ArticleStatusDraft
	}
	if err := validation.ValidateStruct(&input,
		validation.Field(&input.Title, validation.Required, validation.Length(1, 500)),
		validation.Field(&input.Content, validation.Required, notBlank),
		validation.Field(&input.Status, validation.In(constants.ArticleStatusDraft, constants.ArticleStatusPublished)),
	); err != nil {
		return nil, validationError(err)
	}

	now := s.now()
	article := &models.Article{
		ID:        uuid.NewString(),
		Title:     input.Title,
		Excerpt:   strings.TrimSpace(input.Excerpt),
		Content:   input.Content,
		Author:    s.resolveAuthor(input.Author),
		Category:  strings.TrimSpace(input.Category),
		Tags:      normalizeTags(input.Tags),
		Image:     strings.TrimSpace(input.Image),
		Featured:  input.Featured,
		Status:    input.Status,
		ReadTime:  ReadTime(input.Content),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.SEO != nil {
		article.SEO = *input.SEO
	}
	if article.IsPublished() {
		publishedAt := now
		if input.PublishedAt != nil && !input.PublishedAt.IsZero() {
			publishedAt = *input.PublishedAt
		}
		article.PublishedAt = &publishedAt
	}

	source := input.Slug
	if strings.TrimSpace(source) == "" {
		source = input.Title
	}
	candidates := slugCandidates(source, article.ID)
	for attempt, candidate := range candidates {
		article.Slug = candidate
		err := s.repo.Create(ctx, article)
		if err == nil {
			logger.Infow("article_created", "article_id", article.ID, "slug", article.Slug, "status", article.Status)
			return article, nil
		}
		if !errors.Is(err, repository.ErrSlugTaken) {
			return nil, fmt.Errorf("create article: %w", err)
		}
		metrics.SlugCollisionsTotal.Inc()
		logger.Debugw("slug_collision_retry", "slug", article.Slug, "attempt", attempt+1)
	}
	logger.Warnw("slug_attempts_exhausted", "source", source, "attempts", len(candidates))
	return nil, ErrSlugConflict
}

// Update 局部更新文章，slug 创建后不再变化
func (s *ArticleService) Update(ctx context.Context, id string, input UpdateArticleInput) (*models.Article, error) {
	article, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, ErrNotFound
	}

	if input.Slug != nil && strings.TrimSpace(*input.Slug) != article.Slug {
		return nil, validationError(errors.New("slug: cannot be changed after creation"))
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, validationError(errors.New("title: cannot be blank"))
		}
		article.Title = title
	}
	if input.Content != nil {
		if strings.TrimSpace(*input.Content) == "" {
			return nil, validationError(errors.New("content: cannot be blank"))
		}
		if *input.Content != article.Content {
			article.Content = *input.Content
			article.ReadTime = ReadTime(article.Content)
		}
	}
	if input.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*input.Status))
		if !isValidStatus(status) {
			return nil, validationError(errors.New("status: must be draft or published"))
		}
		article.Status = status
	}
	if input.Excerpt != nil {
		article.Excerpt = strings.TrimSpace(*input.Excerpt)
	}
	if input.Author != nil {
		article.Author = s.resolveAuthor(input.Author)
	}
	if input.Category != nil {
		article.Category = strings.TrimSpace(*input.Category)
	}
	if input.Tags != nil {
		article.Tags = normalizeTags(*input.Tags)
	}
	if input.Image != nil {
		article.Image = strings.TrimSpace(*input.Image)
	}
	if input.Featured != nil {
		article.Featured = *input.Featured
	}
	if input.SEO != nil {
		article.SEO = *input.SEO
	}

	now := s.now()
	// publishedAt 只在首次发布时写入，之后不再覆盖或清空
	if article.IsPublished() && article.PublishedAt == nil {
		publishedAt := now
		article.PublishedAt = &publishedAt
	}
	article.UpdatedAt = now

	if err := s.repo.Update(ctx, article); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update article: %w", err)
	}
	logger.Infow("article_updated", "article_id", article.ID, "status", article.Status)
	return s.GetByID(ctx, article.ID)
}

// Delete 删除文章，不存在时返回 ErrNotFound
func (s *ArticleService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	logger.Infow("article_deleted", "article_id", id)
	return nil
}

// Metadata 聚合统计，覆盖全部文章（含草稿）
func (s *ArticleService) Metadata(ctx context.Context) (*Metadata, error) {
	var (
		stats      repository.ArticleStats
		categories []string
		tags       []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.repo.Stats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.repo.ListCategories(gctx, false)
		return err
	})
	g.Go(func() error {
		var err error
		tags, err = s.repo.ListTags(gctx, false)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Metadata{
		SiteTitle:         s.site.Title,
		SiteDescription:   s.site.Description,
		SiteURL:           s.site.URL,
		TotalArticles:     stats.Total,
		PublishedArticles: stats.Published,
		DraftArticles:     stats.Draft,
		Categories:        nonNilStrings(categories),
		Tags:              nonNilStrings(tags),
		LastUpdated:       stats.LastUpdated,
	}, nil
}

// Ping 检查存储可用性
func (s *ArticleService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *ArticleService) resolveAuthor(author *models.Author) models.Author {
	resolved := models.Author{}
	if author != nil {
		resolved.Name = strings.TrimSpace(author.Name)
		resolved.Avatar = strings.TrimSpace(author.Avatar)
	}
	if resolved.Name == "" {
		resolved.Name = s.site.AuthorName
		if resolved.Avatar == "" {
			resolved.Avatar = s.site.AuthorAvatar
		}
	}
	if resolved.Name == "" {
		resolved.Name = "AIMA"
	}
	return resolved
}

func normalizeTags(tags []string) models.StringArray {
	out := make(models.StringArray, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func isValidStatus(status string) bool {
	return status == constants.ArticleStatusDraft || status == constants.ArticleStatusPublished
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
