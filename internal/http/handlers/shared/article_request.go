package shared

import (
	"github.com/aima-hub/internal/models"
	"github.com/aima-hub/internal/service"
)

// ArticleRequest 文章写入请求，body 与 content 任选其一
type ArticleRequest struct {
	Title    *string        `json:"title"`
	Slug     *string        `json:"slug"`
	Excerpt  *string        `json:"excerpt"`
	Content  *string        `json:"content"`
	Body     *string        `json:"body"`
	Author   *models.Author `json:"author"`
	Category *string        `json:"category"`
	Tags     *[]string      `json:"tags"`
	Image    *string        `json:"image"`
	Featured *bool          `json:"featured"`
	Status   *string        `json:"status"`
	SEO      *models.SEO    `json:"seo"`
}

func (r ArticleRequest) content() *string {
	if r.Content != nil {
		return r.Content
	}
	return r.Body
}

// ToCreateInput 转换为创建输入
func (r ArticleRequest) ToCreateInput() service.CreateArticleInput {
	input := service.CreateArticleInput{
		Title:    deref(r.Title),
		Slug:     deref(r.Slug),
		Excerpt:  deref(r.Excerpt),
		Content:  deref(r.content()),
		Author:   r.Author,
		Category: deref(r.Category),
		Image:    deref(r.Image),
		Status:   deref(r.Status),
		SEO:      r.SEO,
	}
	if r.Tags != nil {
		input.Tags = *r.Tags
	}
	if r.Featured != nil {
		input.Featured = *r.Featured
	}
	return input
}

// ToUpdateInput 转换为局部更新输入
func (r ArticleRequest) ToUpdateInput() service.UpdateArticleInput {
	return service.UpdateArticleInput{
		Slug:     r.Slug,
		Title:    r.Title,
		Excerpt:  r.Excerpt,
		Content:  r.content(),
		Author:   r.Author,
		Category: r.Category,
		Tags:     r.Tags,
		Image:    r.Image,
		Featured: r.Featured,
		Status:   r.Status,
		SEO:      r.SEO,
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
