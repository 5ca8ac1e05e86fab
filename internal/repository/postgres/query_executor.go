package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"nlquery-go/internal/repository"
)

// PostgreSQLQueryExecutor 在只读事务中执行查询
type PostgreSQLQueryExecutor struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgreSQLQueryExecutor 创建只读查询执行器
func NewPostgreSQLQueryExecutor(pool *pgxpool.Pool, logger *zap.Logger) repository.QueryExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgreSQLQueryExecutor{pool: pool, logger: logger}
}

// Query 执行查询并按 maxRows 截断结果
func (e *PostgreSQLQueryExecutor) Query(ctx context.Context, maxRows int, query string, args ...any) (*repository.ResultSet, error) {
	tx, err := e.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("开启只读事务失败: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapPgError(err)
	}
	defer rows.Close()

	// 获取列信息
	fieldDescriptions := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescriptions))
	for i, desc := range fieldDescriptions {
		columns[i] = desc.Name
	}

	result := &repository.ResultSet{
		Columns: columns,
		Rows:    []map[string]any{},
	}

	for rows.Next() {
		if maxRows > 0 && len(result.Rows) >= maxRows {
			result.Truncated = true
			break
		}

		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("读取查询结果失败: %w", err)
		}

		row := make(map[string]any, len(values))
		for i, value := range values {
			row[columns[i]] = convertPgValue(value)
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapPgError(err)
	}

	return result, nil
}

// wrapPgError 解析PostgreSQL错误码，保留原始错误链
func wrapPgError(err error) error {
	if pgErr, ok := err.(*pgconn.PgError); ok {
		return fmt.Errorf("数据库错误 [%s]: %s: %w", pgErr.Code, pgErr.Message, err)
	}
	return fmt.Errorf("查询执行失败: %w", err)
}

// convertPgValue 处理pgx特有的类型，其余交给通用转换
func convertPgValue(value any) any {
	switch v := value.(type) {
	case pgtype.Numeric:
		f, err := v.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return uuid.UUID(v).String()
	default:
		return repository.ConvertValue(value)
	}
}
