package service

import (
	"strings"

	"go.uber.org/zap"

	"nlquery-go/internal/repository"
)

// 禁止出现在SQL中的关键词，按子串匹配
var forbiddenKeywords = []string{
	"DROP",
	"DELETE",
	"UPDATE",
	"INSERT",
	"ALTER",
	"CREATE",
	"TRUNCATE",
}

// 允许的语句前缀
var allowedStatements = []string{"SELECT"}

// ValidateSQL 校验SQL是否为只读SELECT语句
// 大写并去除首尾空白后，包含任一禁止关键词（不区分是否在字符串字面量中）即拒绝；
// 不以允许的前缀开头也拒绝
func ValidateSQL(sql string) error {
	upper := strings.ToUpper(strings.TrimSpace(sql))

	for _, keyword := range forbiddenKeywords {
		if strings.Contains(upper, keyword) {
			return &SQLRejectedError{Reason: RejectForbiddenKeyword, Keyword: keyword}
		}
	}

	for _, prefix := range allowedStatements {
		if strings.HasPrefix(upper, prefix) {
			return nil
		}
	}
	return &SQLRejectedError{Reason: RejectNotSelect}
}

// NormalizeSQL 合并多余空白
func NormalizeSQL(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}

// BindPlaceholders 将 %s 占位符依次替换为方言的绑定参数占位符
// 没有参数时原样返回，避免改写 LIKE '%smith%' 这类字面量
func BindPlaceholders(sql, dialect string, argCount int) string {
	if argCount == 0 || !strings.Contains(sql, "%s") {
		return sql
	}

	var sb strings.Builder
	n := 0
	for {
		i := strings.Index(sql, "%s")
		if i < 0 || n == argCount {
			break
		}
		n++
		sb.WriteString(sql[:i])
		sb.WriteString(repository.Placeholder(dialect, n))
		sql = sql[i+2:]
	}
	sb.WriteString(sql)
	return sb.String()
}

// SQLSecurityValidator 带日志的SQL安全校验器
// 校验逻辑与 ValidateSQL 相同
type SQLSecurityValidator struct {
	logger *zap.Logger
}

// NewSQLSecurityValidator 创建SQL安全校验器
func NewSQLSecurityValidator(logger *zap.Logger) *SQLSecurityValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLSecurityValidator{logger: logger}
}

// Validate 校验SQL，拒绝时记录告警日志
func (v *SQLSecurityValidator) Validate(sql string) error {
	err := ValidateSQL(sql)
	if err != nil {
		v.logger.Warn("SQL安全校验未通过",
			zap.String("sql", sql),
			zap.Error(err),
		)
	}
	return err
}
