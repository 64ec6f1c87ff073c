package repository

import (
	"sort"
	"strings"

	"github.com/aima-hub/internal/constants"
	"github.com/aima-hub/internal/models"
)

// 以下辅助函数供非 SQL 后端在内存中执行过滤、排序与分页。

func matchArticle(article *models.Article, filter ArticleListFilter) bool {
	if status := strings.TrimSpace(filter.Status); status != "" && article.Status != status {
		return false
	}
	if category := strings.TrimSpace(filter.Category); category != "" && category != constants.CategoryAll && article.Category != category {
		return false
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" && !containsString(article.Tags, tag) {
		return false
	}
	if filter.Featured != nil && article.Featured != *filter.Featured {
		return false
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		if !containsFold(search, article.Title, article.Excerpt) && !tagsContainFold(article.Tags, search) {
			return false
		}
	}
	return true
}

func matchSearch(article *models.Article, keyword string) bool {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return false
	}
	return containsFold(keyword, article.Title, article.Excerpt, article.Content, article.Category) ||
		tagsContainFold(article.Tags, keyword)
}

// sortArticles 与 SQL 后端 orderClause 保持一致的排序
func sortArticles(articles []models.Article, orderBy string) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i], articles[j]
		if orderBy == ArticleOrderUpdated {
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.After(b.UpdatedAt)
			}
			return a.ID < b.ID
		}
		switch {
		case a.PublishedAt == nil && b.PublishedAt != nil:
			return false
		case a.PublishedAt != nil && b.PublishedAt == nil:
			return true
		case a.PublishedAt != nil && b.PublishedAt != nil && !a.PublishedAt.Equal(*b.PublishedAt):
			return a.PublishedAt.After(*b.PublishedAt)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func collectStats(articles []models.Article) ArticleStats {
	stats := ArticleStats{Total: int64(len(articles))}
	for i := range articles {
		if articles[i].IsPublished() {
			stats.Published++
		}
		if stats.LastUpdated == nil || articles[i].UpdatedAt.After(*stats.LastUpdated) {
			updatedAt := articles[i].UpdatedAt
			stats.LastUpdated = &updatedAt
		}
	}
	stats.Draft = stats.Total - stats.Published
	return stats
}

func collectCategories(articles []models.Article, onlyPublished bool) []string {
	groups := make([]models.StringArray, 0, len(articles))
	for i := range articles {
		if onlyPublished && !articles[i].IsPublished() {
			continue
		}
		groups = append(groups, models.StringArray{articles[i].Category})
	}
	return distinctSorted(groups)
}

func collectTags(articles []models.Article, onlyPublished bool) []string {
	groups := make([]models.StringArray, 0, len(articles))
	for i := range articles {
		if onlyPublished && !articles[i].IsPublished() {
			continue
		}
		groups = append(groups, articles[i].Tags)
	}
	return distinctSorted(groups)
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

func containsFold(lowerKeyword string, fields ...string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), lowerKeyword) {
			return true
		}
	}
	return false
}

func tagsContainFold(tags []string, lowerKeyword string) bool {
	return containsFold(lowerKeyword, tags...)
}

func cloneArticle(article *models.Article) *models.Article {
	if article == nil {
		return nil
	}
	clone := *article
	if article.Tags != nil {
		clone.Tags = append(models.StringArray{}, article.Tags...)
	}
	if article.SEO.Keywords != nil {
		clone.SEO.Keywords = append([]string{}, article.SEO.Keywords...)
	}
	if article.PublishedAt != nil {
		publishedAt := *article.PublishedAt
		clone.PublishedAt = &publishedAt
	}
	return &clone
}
