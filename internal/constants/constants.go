package constants

// 文章状态常量
const (
	ArticleStatusDraft     = "draft"
	ArticleStatusPublished = "published"
)

// 存储后端常量
const (
	StoreBackendSQL    = "sql"
	StoreBackendRedis  = "redis"
	StoreBackendMemory = "memory"
)

// 数据库 SSL 模式常量
const (
	DBSSLModeStrict   = "strict"
	DBSSLModeNoVerify = "no-verify"
	DBSSLModeDisable  = "disable"
)

// 文章相关常量
const (
	WordsPerMinute       = 200
	CategoryAll          = "all"
	DefaultSlug          = "post"
	MaxSlugAttempts      = 50
	SearchResultLimit    = 10
	RelatedDefaultLimit  = 3
	RelatedMaxLimit      = 10
	RelatedCategoryScore = 10
	RelatedTagScore      = 5
)

// 分页常量
const (
	PublicDefaultPageSize = 20
	PublicMaxPageSize     = 50
	AdminDefaultPageSize  = 10
	AdminMaxPageSize      = 100
)

// 上下文键
const (
	ContextKeyRequestID    = "request_id"
	ContextKeyAdminSubject = "admin_subject"
)
