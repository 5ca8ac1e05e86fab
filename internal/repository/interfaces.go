package repository

import (
	"context"
)

// Repository 主Repository接口，聚合所有子Repository
// 不同数据库驱动（sqlite/mysql/postgres）各自提供实现
type Repository interface {
	SchemaRepo() SchemaRepository
	ReportRepo() ReportRepository
	QueryExecutor() QueryExecutor

	// Dialect 返回底层数据库方言名称：sqlite / mysql / postgres
	Dialect() string
	Close() error
	HealthCheck(ctx context.Context) error
}

// SchemaRepository 元数据Repository接口
// 读取映射表，映射表不存在时回退到数据库自身的元数据
type SchemaRepository interface {
	// 映射表
	ListTableMappings(ctx context.Context) ([]*TableMapping, error)
	ListColumnMappings(ctx context.Context, tableName string) ([]*ColumnMapping, error)

	// 数据库元数据
	ListRawTables(ctx context.Context) ([]string, error)
	IntrospectColumns(ctx context.Context, tableName string) ([]*RawColumn, error)
}

// ReportRepository 报表定义Repository接口
type ReportRepository interface {
	Create(ctx context.Context, report *ReportDefinition) error
	GetByID(ctx context.Context, id int64) (*ReportDefinition, error)
	List(ctx context.Context) ([]*ReportDefinition, error)
	Update(ctx context.Context, report *ReportDefinition) error
	Delete(ctx context.Context, id int64) error
}

// QueryExecutor 只读查询执行接口
// maxRows 大于0时最多读取 maxRows 行，多余的行被丢弃并标记 Truncated
type QueryExecutor interface {
	Query(ctx context.Context, maxRows int, query string, args ...any) (*ResultSet, error)
}
