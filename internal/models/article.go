package models

import (
	"time"

	"github.com/aima-hub/internal/constants"
)

// Article 文章表
type Article struct {
	ID          string      `gorm:"primaryKey;type:varchar(36)" json:"id"`               // 主键（UUID）
	Slug        string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`  // 唯一标识，创建后不变
	Title       string      `gorm:"type:varchar(500);not null" json:"title"`             // 标题
	Excerpt     string      `gorm:"type:text" json:"excerpt"`                            // 摘要
	Content     string      `gorm:"type:text;not null" json:"content"`                   // 正文
	Author      Author      `gorm:"embedded;embeddedPrefix:author_" json:"author"`       // 作者
	Category    string      `gorm:"type:varchar(255);index" json:"category"`             // 分类
	Tags        StringArray `gorm:"type:json" json:"tags"`                               // 标签
	Image       string      `gorm:"type:varchar(1024)" json:"image"`                     // 封面图
	Status      string      `gorm:"type:varchar(20);not null;default:draft;index" json:"status"`
	Featured    bool        `gorm:"default:false;index" json:"featured"`
	Views       int64       `gorm:"not null;default:0" json:"views"`
	ReadTime    int         `gorm:"not null;default:1" json:"readTime"`                  // 阅读时长（分钟）
	SEO         SEO         `gorm:"type:json" json:"seo"`
	PublishedAt *time.Time  `gorm:"index" json:"publishedAt"`
	CreatedAt   time.Time   `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time   `gorm:"index" json:"updatedAt"`
}

// TableName 指定表名
func (Article) TableName() string {
	return "articles"
}

// IsPublished 是否已发布
func (a *Article) IsPublished() bool {
	return a != nil && a.Status == constants.ArticleStatusPublished
}

// ArticleSummary 搜索结果投影，不含正文
type ArticleSummary struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Excerpt     string      `json:"excerpt"`
	Category    string      `json:"category"`
	Tags        StringArray `json:"tags"`
	PublishedAt *time.Time  `json:"publishedAt"`
	Author      Author      `json:"author"`
	Image       string      `json:"image"`
	ReadTime    int         `json:"readTime"`
}

// Summary 生成搜索投影
func (a *Article) Summary() ArticleSummary {
	return ArticleSummary{
		ID:          a.ID,
		Title:       a.Title,
		Slug:        a.Slug,
		Excerpt:     a.Excerpt,
		Category:    a.Category,
		Tags:        a.Tags,
		PublishedAt: a.PublishedAt,
		Author:      a.Author,
		Image:       a.Image,
		ReadTime:    a.ReadTime,
	}
}
