package router

import (
	"fmt"
	"strings"

	"github.com/aima-hub/internal/config"
	adminhandlers "github.com/aima-hub/internal/http/handlers/admin"
	publichandlers "github.com/aima-hub/internal/http/handlers/public"
	"github.com/aima-hub/internal/http/response"
	"github.com/aima-hub/internal/logger"
	"github.com/aima-hub/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "aima"
	}
	loginRule := RateLimitRule{
		Name:          "admin_login",
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxRequests,
		Message:       "too many login attempts",
	}
	submissionRule := RateLimitRule{
		Name:          "submission",
		Prefix:        fmt.Sprintf("%s:rate:submission", redisPrefix),
		WindowSeconds: cfg.Security.SubmissionRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.SubmissionRateLimit.MaxRequests,
		Message:       "too many submissions",
	}
	// 显式判空，避免 nil *redis.Client 包装成非 nil 接口
	var limiterClient redis.UniversalClient
	if c.RedisClient != nil {
		limiterClient = c.RedisClient
	}
	loginLimiter := NewRateLimiter(limiterClient, loginRule)
	submissionLimiter := NewRateLimiter(limiterClient, submissionRule)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/healthz", publicHandler.Healthz)
	if cfg.Metrics.Enabled {
		path := strings.TrimSpace(cfg.Metrics.Path)
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(promhttp.Handler()))
	}

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/articles", publicHandler.GetArticles)
			public.GET("/articles/:slug", publicHandler.GetArticleBySlug)
			public.GET("/articles/:slug/related", publicHandler.GetRelatedArticles)
			public.GET("/categories", publicHandler.GetCategories)
			public.GET("/tags", publicHandler.GetTags)
			public.GET("/search", publicHandler.SearchArticles)
			public.POST("/submissions", RateLimitMiddleware(submissionLimiter, submissionRule, KeyByIP), publicHandler.SubmitArticle)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(loginLimiter, loginRule, KeyByIP), adminHandler.Login)

			// 需要鉴权的接口
			authorized := admin.Group("", AdminAuthMiddleware(c.AuthService))
			{
				authorized.GET("/articles", adminHandler.GetAdminArticles)
				authorized.GET("/articles/:id", adminHandler.GetAdminArticle)
				authorized.POST("/articles", adminHandler.CreateArticle)
				authorized.PUT("/articles/:id", adminHandler.UpdateArticle)
				authorized.DELETE("/articles/:id", adminHandler.DeleteArticle)
				authorized.GET("/metadata", adminHandler.GetMetadata)
			}
		}
	}

	r.NoRoute(func(ctx *gin.Context) {
		response.NotFound(ctx, "route not found")
	})

	return r
}
