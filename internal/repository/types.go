package repository

import "time"

// 文章排序方式
const (
	ArticleOrderPublished = "published" // publishedAt 倒序，公开列表
	ArticleOrderUpdated   = "updated"   // updatedAt 倒序，后台列表
)

// ArticleListFilter 查询文章列表的过滤条件
type ArticleListFilter struct {
	Page        int
	PageSize    int // <= 0 时不分页
	Status      string
	Category    string // "all" 等同于不过滤
	Tag         string
	Search      string // 标题、摘要、标签
	Featured    *bool
	OrderBy     string
	OmitContent bool
}

// ArticleStats 文章聚合统计
type ArticleStats struct {
	Total       int64
	Published   int64
	Draft       int64
	LastUpdated *time.Time
}
