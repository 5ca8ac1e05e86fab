package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"nlquery-go/internal/repository"
)

// QueryExecutor 在只读事务中执行查询
type QueryExecutor struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewQueryExecutor 创建只读查询执行器
func NewQueryExecutor(db *sqlx.DB, logger *zap.Logger) *QueryExecutor {
	return &QueryExecutor{db: db, logger: logger}
}

// Query 执行查询并按 maxRows 截断结果
func (e *QueryExecutor) Query(ctx context.Context, maxRows int, query string, args ...any) (*repository.ResultSet, error) {
	tx, err := e.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("开启只读事务失败: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询执行失败: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("读取结果列失败: %w", err)
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

		row := make(map[string]any, len(columns))
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("读取查询结果失败: %w", err)
		}
		for key, value := range row {
			row[key] = repository.ConvertValue(value)
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("读取查询结果时发生错误: %w", err)
	}

	e.logger.Debug("只读查询完成",
		zap.Int("row_count", len(result.Rows)),
		zap.Bool("truncated", result.Truncated))

	return result, nil
}
