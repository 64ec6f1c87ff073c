package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrSlugTaken slug 已被占用，调用方应换后缀重试
	ErrSlugTaken = errors.New("article slug already taken")
	// ErrArticleNotFound 写操作的目标文章不存在
	ErrArticleNotFound = errors.New("article not found")
)

const pgUniqueViolation = "23505"

// isUniqueViolation 判断是否为唯一约束冲突，兼容 sqlite 与 postgres
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") || strings.Contains(msg, "duplicate key")
}
