package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aima-hub/internal/constants"
	"github.com/aima-hub/internal/models"

	"github.com/redis/go-redis/v9"
)

// 写入文章、索引与 slug 占位在同一脚本内完成
var createArticleScript = redis.NewScript(`
if redis.call("HSETNX", KEYS[4], ARGV[4], ARGV[1]) == 0 then
	return 0
end
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
redis.call("HSET", KEYS[2], ARGV[1], ARGV[3])
redis.call("HSETNX", KEYS[3], ARGV[1], 0)
return 1
`)

// 目标已删除时拒绝写入，避免并发删除后被重新写回
// payload 中 publishedAt 固定为 null，由脚本按"已存储值优先"回填
var updateArticleScript = redis.NewScript(`
local stored = redis.call("HGET", KEYS[1], ARGV[1])
if not stored then
	return 0
end
local value = ARGV[4]
local published = cjson.decode(stored)["publishedAt"]
if type(published) == "string" then
	value = '"' .. published .. '"'
end
local article = ARGV[2]
local entry = ARGV[3]
if value ~= "" then
	local marker = '"publishedAt":null'
	local function fill(payload)
		local first, last = string.find(payload, marker, 1, true)
		if not first then
			return payload
		end
		return string.sub(payload, 1, first - 1) .. '"publishedAt":' .. value .. string.sub(payload, last + 1)
	end
	article = fill(article)
	entry = fill(entry)
end
redis.call("HSET", KEYS[1], ARGV[1], article)
redis.call("HSET", KEYS[2], ARGV[1], entry)
return 1
`)

var deleteArticleScript = redis.NewScript(`
if redis.call("HDEL", KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call("HDEL", KEYS[2], ARGV[1])
redis.call("HDEL", KEYS[3], ARGV[1])
if redis.call("HGET", KEYS[4], ARGV[2]) == ARGV[1] then
	redis.call("HDEL", KEYS[4], ARGV[2])
end
return 1
`)

var incrementViewsScript = redis.NewScript(`
if redis.call("HEXISTS", KEYS[1], ARGV[1]) == 0 then
	return -1
end
return redis.call("HINCRBY", KEYS[2], ARGV[1], 1)
`)

// searchEntry 搜索索引条目，不含正文原文
type searchEntry struct {
	models.ArticleSummary
	Status    string    `json:"status"`
	Featured  bool      `json:"featured"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Text      string    `json:"text"` // 小写检索文本
}

// RedisArticleRepository 基于 Redis 哈希的 KV 实现
type RedisArticleRepository struct {
	client      redis.UniversalClient
	articlesKey string
	indexKey    string
	viewsKey    string
	slugsKey    string
}

// NewRedisArticleRepository 创建 Redis 文章仓库
func NewRedisArticleRepository(client redis.UniversalClient, prefix string) *RedisArticleRepository {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "aima"
	}
	return &RedisArticleRepository{
		client:      client,
		articlesKey: prefix + ":articles",
		indexKey:    prefix + ":search_index",
		viewsKey:    prefix + ":article_views",
		slugsKey:    prefix + ":article_slugs",
	}
}

// Create 创建文章
func (r *RedisArticleRepository) Create(ctx context.Context, article *models.Article) error {
	now := time.Now()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	if article.UpdatedAt.IsZero() {
		article.UpdatedAt = now
	}
	articleJSON, indexJSON, err := encodeArticle(article)
	if err != nil {
		return err
	}
	created, err := createArticleScript.Run(ctx, r.client,
		[]string{r.articlesKey, r.indexKey, r.viewsKey, r.slugsKey},
		article.ID, articleJSON, indexJSON, article.Slug,
	).Int()
	if err != nil {
		return err
	}
	if created == 0 {
		return ErrSlugTaken
	}
	return nil
}

// Update 更新文章，slug、views 与已写入的 publishedAt 以已存储值为准
func (r *RedisArticleRepository) Update(ctx context.Context, article *models.Article) error {
	stored, err := r.GetByID(ctx, article.ID)
	if err != nil {
		return err
	}
	if stored == nil {
		return ErrArticleNotFound
	}
	next := cloneArticle(article)
	next.Slug = stored.Slug
	next.CreatedAt = stored.CreatedAt
	if next.UpdatedAt.IsZero() {
		next.UpdatedAt = time.Now()
	}
	publishedAt := ""
	if next.PublishedAt != nil {
		raw, err := json.Marshal(next.PublishedAt)
		if err != nil {
			return err
		}
		publishedAt = string(raw)
		next.PublishedAt = nil
	}
	articleJSON, indexJSON, err := encodeArticle(next)
	if err != nil {
		return err
	}
	updated, err := updateArticleScript.Run(ctx, r.client,
		[]string{r.articlesKey, r.indexKey},
		next.ID, articleJSON, indexJSON, publishedAt,
	).Int()
	if err != nil {
		return err
	}
	if updated == 0 {
		return ErrArticleNotFound
	}
	return nil
}

// Delete 删除文章及其索引、阅读数与 slug 占位
func (r *RedisArticleRepository) Delete(ctx context.Context, id string) (bool, error) {
	stored, err := r.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if stored == nil {
		return false, nil
	}
	deleted, err := deleteArticleScript.Run(ctx, r.client,
		[]string{r.articlesKey, r.indexKey, r.viewsKey, r.slugsKey},
		id, stored.Slug,
	).Int()
	if err != nil {
		return false, err
	}
	return deleted == 1, nil
}

// GetByID 根据 ID 获取文章
func (r *RedisArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	raw, err := r.client.HGet(ctx, r.articlesKey, id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var article models.Article
	if err := json.Unmarshal([]byte(raw), &article); err != nil {
		return nil, fmt.Errorf("decode article %s failed: %w", id, err)
	}
	views, err := r.client.HGet(ctx, r.viewsKey, id).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	article.Views = views
	return &article, nil
}

// GetBySlug 根据 slug 获取文章
func (r *RedisArticleRepository) GetBySlug(ctx context.Context, slug string, onlyPublished bool) (*models.Article, error) {
	id, err := r.client.HGet(ctx, r.slugsKey, slug).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	article, err := r.GetByID(ctx, id)
	if err != nil || article == nil {
		return nil, err
	}
	if onlyPublished && !article.IsPublished() {
		return nil, nil
	}
	return article, nil
}

// IncrementViews HINCRBY 原子递增
func (r *RedisArticleRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	views, err := incrementViewsScript.Run(ctx, r.client, []string{r.articlesKey, r.viewsKey}, id).Int64()
	if err != nil {
		return 0, err
	}
	if views < 0 {
		return 0, ErrArticleNotFound
	}
	return views, nil
}

// List 文章列表
func (r *RedisArticleRepository) List(ctx context.Context, filter ArticleListFilter) ([]models.Article, int64, error) {
	all, err := r.loadAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	matched := make([]models.Article, 0, len(all))
	for _, article := range all {
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

// Search 基于索引检索，结果不含正文
func (r *RedisArticleRepository) Search(ctx context.Context, keyword string, onlyPublished bool, limit int) ([]models.Article, error) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return []models.Article{}, nil
	}
	entries, err := r.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]models.Article, 0)
	for _, entry := range entries {
		if onlyPublished && entry.Status != constants.ArticleStatusPublished {
			continue
		}
		if strings.Contains(entry.Text, keyword) {
			matched = append(matched, entry.toArticle())
		}
	}
	sortArticles(matched, ArticleOrderPublished)
	return paginateSlice(matched, 1, limit), nil
}

// ListCategories 去重后的分类列表
func (r *RedisArticleRepository) ListCategories(ctx context.Context, onlyPublished bool) ([]string, error) {
	articles, err := r.indexArticles(ctx)
	if err != nil {
		return nil, err
	}
	return collectCategories(articles, onlyPublished), nil
}

// ListTags 去重后的标签列表
func (r *RedisArticleRepository) ListTags(ctx context.Context, onlyPublished bool) ([]string, error) {
	articles, err := r.indexArticles(ctx)
	if err != nil {
		return nil, err
	}
	return collectTags(articles, onlyPublished), nil
}

// Stats 聚合统计
func (r *RedisArticleRepository) Stats(ctx context.Context) (ArticleStats, error) {
	articles, err := r.indexArticles(ctx)
	if err != nil {
		return ArticleStats{}, err
	}
	return collectStats(articles), nil
}

// Ping 检查 Redis 连通性
func (r *RedisArticleRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisArticleRepository) loadAll(ctx context.Context) ([]models.Article, error) {
	raw, err := r.client.HGetAll(ctx, r.articlesKey).Result()
	if err != nil {
		return nil, err
	}
	views, err := r.client.HGetAll(ctx, r.viewsKey).Result()
	if err != nil {
		return nil, err
	}
	out := make([]models.Article, 0, len(raw))
	for id, payload := range raw {
		var article models.Article
		if err := json.Unmarshal([]byte(payload), &article); err != nil {
			return nil, fmt.Errorf("decode article %s failed: %w", id, err)
		}
		if count, ok := views[id]; ok {
			article.Views, _ = strconv.ParseInt(count, 10, 64)
		}
		out = append(out, article)
	}
	return out, nil
}

func (r *RedisArticleRepository) loadIndex(ctx context.Context) ([]searchEntry, error) {
	values, err := r.client.HVals(ctx, r.indexKey).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]searchEntry, 0, len(values))
	for _, value := range values {
		var entry searchEntry
		if err := json.Unmarshal([]byte(value), &entry); err != nil {
			return nil, fmt.Errorf("decode search entry failed: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *RedisArticleRepository) indexArticles(ctx context.Context) ([]models.Article, error) {
	entries, err := r.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Article, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.toArticle())
	}
	return out, nil
}

func (e searchEntry) toArticle() models.Article {
	return models.Article{
		ID:          e.ID,
		Slug:        e.Slug,
		Title:       e.Title,
		Excerpt:     e.Excerpt,
		Author:      e.Author,
		Category:    e.Category,
		Tags:        e.Tags,
		Image:       e.Image,
		Status:      e.Status,
		Featured:    e.Featured,
		ReadTime:    e.ReadTime,
		PublishedAt: e.PublishedAt,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// encodeArticle 序列化文章与索引条目，views 单独存放不随文章写入
func encodeArticle(article *models.Article) (string, string, error) {
	stored := cloneArticle(article)
	stored.Views = 0
	articleJSON, err := json.Marshal(stored)
	if err != nil {
		return "", "", err
	}
	entry := searchEntry{
		ArticleSummary: article.Summary(),
		Status:         article.Status,
		Featured:       article.Featured,
		CreatedAt:      article.CreatedAt,
		UpdatedAt:      article.UpdatedAt,
		Text: strings.ToLower(strings.Join([]string{
			article.Title,
			article.Excerpt,
			article.Content,
			article.Category,
			strings.Join(article.Tags, "\n"),
		}, "\n")),
	}
	indexJSON, err := json.Marshal(entry)
	if err != nil {
		return "", "", err
	}
	return string(articleJSON), string(indexJSON), nil
}
