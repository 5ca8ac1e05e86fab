package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"nlquery-go/internal/repository"
)

// SchemaRepository 元数据Repository实现
type SchemaRepository struct {
	db      *sqlx.DB
	dialect string
	logger  *zap.Logger
}

// NewSchemaRepository 创建元数据Repository
func NewSchemaRepository(db *sqlx.DB, dialect string, logger *zap.Logger) *SchemaRepository {
	return &SchemaRepository{db: db, dialect: dialect, logger: logger}
}

// ListTableMappings 读取 table_mapping，按ID排序保持注册顺序
func (r *SchemaRepository) ListTableMappings(ctx context.Context) ([]*repository.TableMapping, error) {
	const query = `
		SELECT id, natural_name, db_table_name, COALESCE(description, '') AS description
		FROM table_mapping
		ORDER BY id`

	var tables []*repository.TableMapping
	if err := r.db.SelectContext(ctx, &tables, query); err != nil {
		return nil, fmt.Errorf("查询表映射失败: %w", err)
	}
	return tables, nil
}

// ListColumnMappings 读取指定表的 column_mapping
func (r *SchemaRepository) ListColumnMappings(ctx context.Context, tableName string) ([]*repository.ColumnMapping, error) {
	query := r.db.Rebind(`
		SELECT cm.id, cm.table_id, cm.natural_name, cm.db_column_name, COALESCE(cm.data_type, '') AS data_type
		FROM column_mapping cm
		INNER JOIN table_mapping tm ON cm.table_id = tm.id
		WHERE tm.db_table_name = ?
		ORDER BY cm.id`)

	var columns []*repository.ColumnMapping
	if err := r.db.SelectContext(ctx, &columns, query, tableName); err != nil {
		return nil, fmt.Errorf("查询字段映射失败: %w", err)
	}
	return columns, nil
}

// ListRawTables 列出数据库中的业务表，内部表被排除
func (r *SchemaRepository) ListRawTables(ctx context.Context) ([]string, error) {
	var query string
	switch r.dialect {
	case repository.DialectMySQL:
		query = `
			SELECT table_name AS name
			FROM information_schema.tables
			WHERE table_type = 'BASE TABLE' AND table_schema = DATABASE()
			ORDER BY table_name`
	default:
		query = `
			SELECT name
			FROM sqlite_master
			WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
			ORDER BY name`
	}

	var names []string
	if err := r.db.SelectContext(ctx, &names, query); err != nil {
		return nil, fmt.Errorf("查询数据库表列表失败: %w", err)
	}

	tables := make([]string, 0, len(names))
	for _, name := range names {
		if repository.IsInternalTable(name) {
			continue
		}
		tables = append(tables, name)
	}
	return tables, nil
}

// IntrospectColumns 直接从数据库元数据读取字段
func (r *SchemaRepository) IntrospectColumns(ctx context.Context, tableName string) ([]*repository.RawColumn, error) {
	var query string
	switch r.dialect {
	case repository.DialectMySQL:
		query = `
			SELECT column_name AS name, column_type AS type
			FROM information_schema.columns
			WHERE table_schema = DATABASE() AND table_name = ?
			ORDER BY ordinal_position`
	default:
		// pragma_table_info 表值函数支持参数绑定，无需拼接表名
		query = `SELECT name, type FROM pragma_table_info(?) ORDER BY cid`
	}

	var columns []*repository.RawColumn
	if err := r.db.SelectContext(ctx, &columns, query, tableName); err != nil {
		r.logger.Debug("读取表结构失败", zap.String("table", tableName), zap.Error(err))
		return nil, fmt.Errorf("读取表 %s 结构失败: %w", tableName, err)
	}
	return columns, nil
}
