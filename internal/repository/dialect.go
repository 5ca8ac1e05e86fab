package repository

import "strconv"

// 支持的数据库方言
const (
	DialectSQLite   = "sqlite"
	DialectMySQL    = "mysql"
	DialectPostgres = "postgres"
)

// internalTables 服务自身使用的表，不对自然语言查询暴露
var internalTables = map[string]struct{}{
	"table_mapping":    {},
	"column_mapping":   {},
	"report_configs":   {},
	"goose_db_version": {},
}

// IsInternalTable 判断是否为内部表
func IsInternalTable(name string) bool {
	_, ok := internalTables[name]
	return ok
}

// ValidDialect 判断方言名称是否受支持
func ValidDialect(dialect string) bool {
	switch dialect {
	case DialectSQLite, DialectMySQL, DialectPostgres:
		return true
	default:
		return false
	}
}

// Placeholder 返回第 n 个（从1开始）绑定参数的占位符
// postgres 使用 $n，其余使用 ?
func Placeholder(dialect string, n int) string {
	if dialect == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// QuoteIdentifier 按方言为标识符加引号，调用方负责拒绝含引号的名称
func QuoteIdentifier(dialect, name string) string {
	if dialect == DialectMySQL {
		return "`" + name + "`"
	}
	return `"` + name + `"`
}
