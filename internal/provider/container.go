package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/aima-hub/internal/cache"
	"github.com/aima-hub/internal/config"
	"github.com/aima-hub/internal/constants"
	"github.com/aima-hub/internal/logger"
	"github.com/aima-hub/internal/models"
	"github.com/aima-hub/internal/repository"
	"github.com/aima-hub/internal/service"

	"github.com/redis/go-redis/v9"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	RedisClient *redis.Client

	// Repositories
	ArticleRepo repository.ArticleRepository

	// Services
	ArticleService *service.ArticleService
	AuthService    *service.AuthService
}

// NewContainer 按配置选择存储后端并初始化容器
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	// 初始化 Redis；redis 后端必须可用，其余后端仅用于限流，失败时降级为进程内限流
	if err := cache.InitRedis(ctx, &cfg.Redis); err != nil {
		if cfg.Store.Backend == constants.StoreBackendRedis {
			return nil, fmt.Errorf("init redis store: %w", err)
		}
		logger.Warnw("provider_init_redis_failed", "error", err, "fallback", "in_process_rate_limit")
	}

	repo, err := newArticleRepository(cfg)
	if err != nil {
		return nil, err
	}
	c := NewContainerWithRepository(cfg, repo)
	c.RedisClient = cache.Client()
	logger.Infow("provider_store_ready", "backend", cfg.Store.Backend)
	return c, nil
}

// NewContainerWithRepository 使用指定仓库构建容器
func NewContainerWithRepository(cfg *config.Config, repo repository.ArticleRepository) *Container {
	c := &Container{
		Config:      cfg,
		ArticleRepo: repo,
	}
	c.initServices()
	return c
}

func newArticleRepository(cfg *config.Config) (repository.ArticleRepository, error) {
	switch cfg.Store.Backend {
	case constants.StoreBackendMemory:
		return repository.NewMemoryArticleRepository(), nil
	case constants.StoreBackendRedis:
		client := cache.Client()
		if client == nil {
			return nil, fmt.Errorf("redis store selected but redis is not enabled")
		}
		return repository.NewRedisArticleRepository(client, cache.Prefix()), nil
	case constants.StoreBackendSQL, "":
		if err := models.InitDB(DBOptionsFromConfig(cfg.Database)); err != nil {
			return nil, fmt.Errorf("init database: %w", err)
		}
		if cfg.Database.AutoMigrateEnabled {
			if err := models.AutoMigrate(models.DB); err != nil {
				return nil, fmt.Errorf("migrate database: %w", err)
			}
		}
		return repository.NewArticleRepository(models.DB), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// DBOptionsFromConfig 转换数据库配置
func DBOptionsFromConfig(cfg config.DatabaseConfig) models.DBOptions {
	return models.DBOptions{
		Driver: cfg.Driver,
		DSN:    cfg.DSN,
		Pool: models.DBPoolConfig{
			MaxOpenConns:           cfg.Pool.MaxOpenConns,
			MaxIdleConns:           cfg.Pool.MaxIdleConns,
			ConnMaxLifetimeSeconds: cfg.Pool.ConnMaxLifetimeSeconds,
			ConnMaxIdleTimeSeconds: cfg.Pool.ConnMaxIdleTimeSeconds,
		},
		TLS: models.DBTLSOptions{
			Mode:   cfg.SSL.Mode,
			CA:     cfg.SSL.CA,
			CAPath: cfg.SSL.CAPath,
		},
		SlowQueryThreshold: time.Duration(cfg.SlowQueryMillis) * time.Millisecond,
	}
}

func (c *Container) initServices() {
	c.ArticleService = service.NewArticleService(c.ArticleRepo, c.Config.Site)
	c.AuthService = service.NewAuthService(c.Config.Admin)
}

// Close 释放外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.RedisClient != nil {
		if err := cache.Close(); err != nil {
			logger.Warnw("provider_close_redis_failed", "error", err)
		}
	}
	if c.Config != nil && c.Config.Store.Backend == constants.StoreBackendSQL && models.DB != nil {
		if sqlDB, err := models.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
