package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

func isPostgresDialect(dialect string) bool {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return true
	default:
		return false
	}
}

func likeOperatorByDialect(dialect string) string {
	if isPostgresDialect(dialect) {
		return "ILIKE"
	}
	return "LIKE"
}

// jsonElementLikeExpr 对 JSON 字符串数组逐个元素做 LIKE，不会匹配到引号或逗号等序列化字符。
func jsonElementLikeExpr(dialect, column string) string {
	if isPostgresDialect(dialect) {
		return fmt.Sprintf("EXISTS (SELECT 1 FROM jsonb_array_elements_text(%s::jsonb) AS elem(value) WHERE elem.value ILIKE ? ESCAPE '\\')", column)
	}
	return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(%s) WHERE json_each.value LIKE ? ESCAPE '\\')", column)
}

// buildLikeCondition 构建多列 LIKE 条件（OR 连接），并返回参数数量。
func buildLikeCondition(dialect string, plainColumns, jsonColumns []string) (string, int) {
	parts := make([]string, 0, len(plainColumns)+len(jsonColumns))
	operator := likeOperatorByDialect(dialect)
	for _, column := range plainColumns {
		if trimmed := strings.TrimSpace(column); trimmed != "" {
			parts = append(parts, fmt.Sprintf("%s %s ? ESCAPE '\\'", trimmed, operator))
		}
	}
	for _, column := range jsonColumns {
		if trimmed := strings.TrimSpace(column); trimmed != "" {
			parts = append(parts, jsonElementLikeExpr(dialect, trimmed))
		}
	}
	return "(" + strings.Join(parts, " OR ") + ")", len(parts)
}

// jsonArrayContainsCondition 构建 JSON 字符串数组成员判断条件。
func jsonArrayContainsCondition(dialect, column string) string {
	if isPostgresDialect(dialect) {
		return fmt.Sprintf("%s::jsonb @> jsonb_build_array(?::text)", column)
	}
	return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(%s) WHERE json_each.value = ?)", column)
}

// likePattern 转义通配符后包装为子串匹配。
func likePattern(keyword string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(keyword) + "%"
}

// repeatLikeArgs 生成重复的 LIKE 参数列表。
func repeatLikeArgs(like string, count int) []interface{} {
	args := make([]interface{}, 0, count)
	for i := 0; i < count; i++ {
		args = append(args, like)
	}
	return args
}
