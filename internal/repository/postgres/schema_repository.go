package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"nlquery-go/internal/repository"
)

// PostgreSQLSchemaRepository PostgreSQL元数据Repository实现
// 优先读取映射表，元数据查询基于 information_schema 的当前schema
type PostgreSQLSchemaRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgreSQLSchemaRepository 创建PostgreSQL元数据Repository
func NewPostgreSQLSchemaRepository(pool *pgxpool.Pool, logger *zap.Logger) repository.SchemaRepository {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &PostgreSQLSchemaRepository{
		pool:   pool,
		logger: logger,
	}
}

// ListTableMappings 读取表映射
func (r *PostgreSQLSchemaRepository) ListTableMappings(ctx context.Context) ([]*repository.TableMapping, error) {
	const query = `
		SELECT id, natural_name, db_table_name, COALESCE(description, '')
		FROM table_mapping
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询表映射失败: %w", err)
	}
	defer rows.Close()

	var tables []*repository.TableMapping
	for rows.Next() {
		table := &repository.TableMapping{}
		if err := rows.Scan(&table.ID, &table.NaturalName, &table.DBTableName, &table.Description); err != nil {
			return nil, fmt.Errorf("扫描表映射失败: %w", err)
		}
		tables = append(tables, table)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历表映射失败: %w", err)
	}
	return tables, nil
}

// ListColumnMappings 读取指定表的字段映射
func (r *PostgreSQLSchemaRepository) ListColumnMappings(ctx context.Context, tableName string) ([]*repository.ColumnMapping, error) {
	const query = `
		SELECT cm.id, cm.table_id, cm.natural_name, cm.db_column_name, COALESCE(cm.data_type, '')
		FROM column_mapping cm
		INNER JOIN table_mapping tm ON cm.table_id = tm.id
		WHERE tm.db_table_name = $1
		ORDER BY cm.id`

	rows, err := r.pool.Query(ctx, query, tableName)
	if err != nil {
		return nil, fmt.Errorf("查询字段映射失败: %w", err)
	}
	defer rows.Close()

	var columns []*repository.ColumnMapping
	for rows.Next() {
		column := &repository.ColumnMapping{}
		if err := rows.Scan(&column.ID, &column.TableID, &column.NaturalName, &column.DBColumnName, &column.DataType); err != nil {
			return nil, fmt.Errorf("扫描字段映射失败: %w", err)
		}
		columns = append(columns, column)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历字段映射失败: %w", err)
	}
	return columns, nil
}

// ListRawTables 列出当前schema下的业务表
func (r *PostgreSQLSchemaRepository) ListRawTables(ctx context.Context) ([]string, error) {
	const query = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
		ORDER BY table_name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询数据库表列表失败: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("扫描表名失败: %w", err)
		}
		if repository.IsInternalTable(name) {
			continue
		}
		tables = append(tables, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历表列表失败: %w", err)
	}
	return tables, nil
}

// IntrospectColumns 从 information_schema 读取字段
func (r *PostgreSQLSchemaRepository) IntrospectColumns(ctx context.Context, tableName string) ([]*repository.RawColumn, error) {
	const query = `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position`

	rows, err := r.pool.Query(ctx, query, tableName)
	if err != nil {
		return nil, fmt.Errorf("读取表 %s 结构失败: %w", tableName, err)
	}
	defer rows.Close()

	var columns []*repository.RawColumn
	for rows.Next() {
		column := &repository.RawColumn{}
		if err := rows.Scan(&column.Name, &column.DataType); err != nil {
			return nil, fmt.Errorf("扫描字段信息失败: %w", err)
		}
		columns = append(columns, column)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历字段信息失败: %w", err)
	}

	r.logger.Debug("读取表结构完成",
		zap.String("table", tableName),
		zap.Int("column_count", len(columns)))

	return columns, nil
}
