package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aima-hub/internal/constants"
	"github.com/aima-hub/internal/logger"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Store      StoreConfig      `mapstructure:"store"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Admin      AdminConfig      `mapstructure:"admin"`
	Site       SiteConfig       `mapstructure:"site"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Security   SecurityConfig   `mapstructure:"security"`
	Submission SubmissionConfig `mapstructure:"submission"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// Addr 监听地址
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
	Stdout     bool   `mapstructure:"stdout"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		Level:      c.Level,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
		Stdout:     c.Stdout,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseSSLConfig PostgreSQL SSL 配置
type DatabaseSSLConfig struct {
	Mode   string `mapstructure:"mode"`    // strict / no-verify / disable
	CA     string `mapstructure:"ca"`      // 内联 PEM
	CAPath string `mapstructure:"ca_path"` // PEM 文件路径
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver             string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN                string             `mapstructure:"dsn"`    // 数据库连接串
	Pool               DatabasePoolConfig `mapstructure:"pool"`
	SSL                DatabaseSSLConfig  `mapstructure:"ssl"`
	SlowQueryMillis    int                `mapstructure:"slow_query_ms"`
	AutoMigrateEnabled bool               `mapstructure:"auto_migrate"`
}

// StoreConfig 文章存储后端
type StoreConfig struct {
	Backend string `mapstructure:"backend"` // sql / redis / memory
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// AdminConfig 管理端鉴权配置
type AdminConfig struct {
	Password         string `mapstructure:"password"`      // 明文口令
	PasswordHash     string `mapstructure:"password_hash"` // bcrypt 哈希，优先于明文
	Token            string `mapstructure:"token"`         // 可选的静态 bearer token
	JWTSecret        string `mapstructure:"jwt_secret"`
	TokenExpireHours int    `mapstructure:"token_expire_hours"`
}

// SiteConfig 站点信息
type SiteConfig struct {
	Title        string `mapstructure:"title"`
	Description  string `mapstructure:"description"`
	URL          string `mapstructure:"url"`
	AuthorName   string `mapstructure:"author_name"`
	AuthorAvatar string `mapstructure:"author_avatar"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	LoginRateLimit      RateLimitConfig `mapstructure:"login_rate_limit"`
	SubmissionRateLimit RateLimitConfig `mapstructure:"submission_rate_limit"`
}

// RateLimitConfig 固定窗口限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
}

// SubmissionConfig 公开投稿配置
type SubmissionConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// MetricsConfig Prometheus 指标配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load 从 .env 与 config.yml 加载配置
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warnw("dotenv_load_failed", "error", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./")
	v.AddConfigPath("../") // 从 cmd/server 运行时
	v.AddConfigPath("./etc")
	setDefaults(v)

	// 环境变量支持，例如 server.port -> SERVER_PORT
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("config unmarshal failed: %w", err))
	}
	applyLegacyEnv(&cfg)
	cfg.normalize()
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "content-hub.log")
	v.SetDefault("log.level", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("log.stdout", false)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/content.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("database.ssl.mode", constants.DBSSLModeStrict)
	v.SetDefault("database.ssl.ca", "")
	v.SetDefault("database.ssl.ca_path", "")
	v.SetDefault("database.slow_query_ms", 200)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("store.backend", constants.StoreBackendSQL)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "aima")
	v.SetDefault("admin.password", "")
	v.SetDefault("admin.password_hash", "")
	v.SetDefault("admin.token", "")
	v.SetDefault("admin.jwt_secret", "change-me-in-production")
	v.SetDefault("admin.token_expire_hours", 24)
	v.SetDefault("site.title", "AIMA Media")
	v.SetDefault("site.description", "AI marketing insights from AIMA Inc.")
	v.SetDefault("site.url", "")
	v.SetDefault("site.author_name", "AIMA")
	v.SetDefault("site.author_avatar", "")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3001", "http://localhost:5173"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
		"X-Request-ID",
	})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.login_rate_limit.window_seconds", 300)
	v.SetDefault("security.login_rate_limit.max_requests", 5)
	v.SetDefault("security.submission_rate_limit.window_seconds", 900)
	v.SetDefault("security.submission_rate_limit.max_requests", 50)
	v.SetDefault("submission.enabled", false)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// applyLegacyEnv 兼容旧部署的环境变量名
func applyLegacyEnv(cfg *Config) {
	if value := strings.TrimSpace(os.Getenv("DATABASE_URL")); value != "" && strings.TrimSpace(os.Getenv("DATABASE_DSN")) == "" {
		cfg.Database.DSN = value
		cfg.Database.Driver = "postgres"
	}
	if value := strings.TrimSpace(os.Getenv("ADMIN_TOKEN")); value != "" && cfg.Admin.Token == "" {
		cfg.Admin.Token = value
	}
	if value := strings.TrimSpace(os.Getenv("ADMIN_PASSWORD")); value != "" && cfg.Admin.Password == "" {
		cfg.Admin.Password = value
	}
	if value := strings.TrimSpace(os.Getenv("SSL_MODE")); value != "" {
		cfg.Database.SSL.Mode = value
	}
	if value := os.Getenv("SSL_CA"); strings.TrimSpace(value) != "" {
		cfg.Database.SSL.CA = value
	}
	if value := strings.TrimSpace(os.Getenv("SSL_CA_PATH")); value != "" {
		cfg.Database.SSL.CAPath = value
	}
	if value := strings.TrimSpace(os.Getenv("APP_ORIGINS")); value != "" {
		origins := make([]string, 0)
		for _, origin := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
		cfg.CORS.AllowedOrigins = origins
	}
}

func (c *Config) normalize() {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.Database.SSL.Mode = strings.ToLower(strings.TrimSpace(c.Database.SSL.Mode))
	if c.Store.Backend == constants.StoreBackendRedis {
		c.Redis.Enabled = true
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Server),
		validation.Field(&c.Database),
		validation.Field(&c.Store),
		validation.Field(&c.Admin),
	); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Validate 校验服务器配置
func (c ServerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.Mode, validation.In("debug", "release", "test")),
	)
}

// Validate 校验数据库配置
func (c DatabaseConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Driver, validation.In("", "sqlite", "postgres", "postgresql")),
		validation.Field(&c.SSL),
	)
}

// Validate 校验 SSL 配置
func (c DatabaseSSLConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Mode, validation.In("", constants.DBSSLModeStrict, constants.DBSSLModeNoVerify, constants.DBSSLModeDisable)),
	)
}

// Validate 校验存储后端
func (c StoreConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required,
			validation.In(constants.StoreBackendSQL, constants.StoreBackendRedis, constants.StoreBackendMemory)),
	)
}

// Validate 校验管理端配置，至少需要一种登录凭据
func (c AdminConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.JWTSecret, validation.Required),
		validation.Field(&c.TokenExpireHours, validation.Min(1)),
		validation.Field(&c.Password, validation.When(
			strings.TrimSpace(c.PasswordHash) == "" && strings.TrimSpace(c.Token) == "",
			validation.Required.Error("admin.password, admin.password_hash or admin.token must be set"),
		)),
	)
}
