package repository

import "strings"

// isUniqueViolation 判断错误是否为唯一约束冲突，兼容 sqlite 与 postgres 的报错文本。
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	if strings.Contains(message, "unique constraint") {
		return true
	}
	if strings.Contains(message, "unique failed") {
		return true
	}
	// sqlite: "UNIQUE constraint failed: subdomains.name"
	if strings.Contains(message, "constraint failed") && strings.Contains(message, "unique") {
		return true
	}
	// postgres: SQLSTATE 23505
	return strings.Contains(message, "sqlstate 23505") || strings.Contains(message, "duplicate key")
}
