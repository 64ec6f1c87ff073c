package service

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/aima-hub/internal/constants"
)

const maxSlugLength = 200

var (
	slugInvalidChars    = regexp.MustCompile(`[^a-z0-9_-]+`)
	slugRepeatedHyphens = regexp.MustCompile(`-{2,}`)
)

// idSuffixLength id 后缀长度
const idSuffixLength = 8

// Slugify 生成 URL 安全的 slug：小写，非单词字符替换为 -，去除首尾 -。
// 没有可用字符时返回空串
func Slugify(source string) string {
	slug := slugInvalidChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(source)), "-")
	slug = slugRepeatedHyphens.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLength {
		slug = strings.Trim(slug[:maxSlugLength], "-")
	}
	return slug
}

// slugCandidates 按顺序返回待尝试的 slug。
// 源文本没有可用字符（如纯日文标题）时直接用 post-<id 前 8 位>；
// 否则依次尝试 base、base-2 … base-N，最后退回 base-<id 前 8 位>。
func slugCandidates(source, id string) []string {
	base := Slugify(source)
	if base == "" {
		return []string{idSlug(constants.DefaultSlug, id)}
	}
	candidates := make([]string, 0, constants.MaxSlugAttempts+1)
	for attempt := 1; attempt <= constants.MaxSlugAttempts; attempt++ {
		candidates = append(candidates, slugCandidate(base, attempt))
	}
	return append(candidates, idSlug(base, id))
}

// slugCandidate 第 1 次尝试使用原 slug，之后依次追加 -2、-3…
func slugCandidate(base string, attempt int) string {
	if attempt <= 1 {
		return base
	}
	return base + "-" + strconv.Itoa(attempt)
}

// idSlug 追加 id 前缀作为后缀，总长度仍不超过 maxSlugLength
func idSlug(base, id string) string {
	suffix := strings.ReplaceAll(id, "-", "")
	if len(suffix) > idSuffixLength {
		suffix = suffix[:idSuffixLength]
	}
	if limit := maxSlugLength - len(suffix) - 1; len(base) > limit {
		base = strings.TrimRight(base[:limit], "-")
	}
	return base + "-" + suffix
}

// ReadTime 按每分钟 200 词估算阅读时长，至少 1 分钟
func ReadTime(content string) int {
	words := len(strings.Fields(content))
	minutes := int(math.Round(float64(words) / constants.WordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}
