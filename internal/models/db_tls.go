package models

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"os"
	"strings"

	"github.com/aima-hub/internal/constants"
	"github.com/aima-hub/internal/logger"
)

// DBTLSOptions PostgreSQL TLS 配置
type DBTLSOptions struct {
	Mode   string // strict / no-verify / disable
	CA     string // 内联 PEM，优先于 CAPath
	CAPath string
}

// ErrInvalidInlineCA 内联 CA 无法解析
var ErrInvalidInlineCA = errors.New("database.ssl.ca contains no valid PEM certificate")

// BuildTLSConfig 按 SSL 模式构造 tls.Config，disable 模式返回 nil
func BuildTLSConfig(opts DBTLSOptions, serverName string) (*tls.Config, error) {
	switch normalizeSSLMode(opts.Mode) {
	case constants.DBSSLModeDisable:
		return nil, nil
	case constants.DBSSLModeNoVerify:
		return &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // 显式配置的 no-verify 模式
			MinVersion:         tls.VersionTLS12,
		}, nil
	}

	cfg := &tls.Config{
		ServerName: serverName,
		MinVersion: tls.VersionTLS12,
	}

	if inline := strings.TrimSpace(opts.CA); inline != "" {
		// 环境变量中常以字面量 \n 传递换行
		inline = strings.ReplaceAll(inline, `\n`, "\n")
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM([]byte(inline)) {
			return nil, ErrInvalidInlineCA
		}
		cfg.RootCAs = pool
		return cfg, nil
	}

	if path := strings.TrimSpace(opts.CAPath); path != "" {
		pem, err := os.ReadFile(path)
		if err != nil {
			logger.Warnw("db_tls_ca_unreadable", "path", path, "error", err, "fallback", "system_ca")
			return cfg, nil
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			logger.Warnw("db_tls_ca_invalid", "path", path, "fallback", "system_ca")
			return cfg, nil
		}
		cfg.RootCAs = pool
		return cfg, nil
	}

	// RootCAs 为空时使用系统信任库
	return cfg, nil
}

func normalizeSSLMode(mode string) string {
	normalized := strings.ToLower(strings.TrimSpace(mode))
	switch normalized {
	case constants.DBSSLModeNoVerify, "no_verify", "noverify":
		return constants.DBSSLModeNoVerify
	case constants.DBSSLModeDisable, "off":
		return constants.DBSSLModeDisable
	default:
		return constants.DBSSLModeStrict
	}
}

func caSource(opts DBTLSOptions) string {
	switch {
	case normalizeSSLMode(opts.Mode) != constants.DBSSLModeStrict:
		return "none"
	case strings.TrimSpace(opts.CA) != "":
		return "inline"
	case strings.TrimSpace(opts.CAPath) != "":
		return "file"
	default:
		return "system"
	}
}
