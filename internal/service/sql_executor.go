package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nlquery-go/internal/repository"
)

// 执行器默认值
const (
	DefaultQueryTimeout  = 30 * time.Second
	DefaultMaxResultSize = 10000
)

// SQLExecutor SQL执行器
// 执行前再次做安全校验，执行时带超时，并在存储层按行数上限截断
type SQLExecutor struct {
	executor  repository.QueryExecutor
	validator *SQLSecurityValidator
	logger    *zap.Logger
	dialect   string

	queryTimeout time.Duration
	maxRows      int
}

// SQLExecutorConfig SQL执行器配置
type SQLExecutorConfig struct {
	QueryTimeout time.Duration `json:"query_timeout"` // 查询超时时间，默认30秒
	MaxRows      int           `json:"max_rows"`      // 最大返回行数，默认10000行
	Dialect      string        `json:"dialect"`       // 绑定参数占位符方言，默认sqlite
}

// NewSQLExecutor 使用默认配置创建SQL执行器
func NewSQLExecutor(executor repository.QueryExecutor, logger *zap.Logger) *SQLExecutor {
	return NewSQLExecutorWithConfig(executor, nil, logger)
}

// NewSQLExecutorWithConfig 使用自定义配置创建SQL执行器
func NewSQLExecutorWithConfig(executor repository.QueryExecutor, config *SQLExecutorConfig, logger *zap.Logger) *SQLExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &SQLExecutor{
		executor:     executor,
		validator:    NewSQLSecurityValidator(logger),
		logger:       logger,
		queryTimeout: DefaultQueryTimeout,
		maxRows:      DefaultMaxResultSize,
		dialect:      repository.DialectSQLite,
	}
	if config != nil {
		if config.QueryTimeout > 0 {
			e.queryTimeout = config.QueryTimeout
		}
		if config.MaxRows > 0 {
			e.maxRows = config.MaxRows
		}
		if config.Dialect != "" {
			e.dialect = config.Dialect
		}
	}
	return e
}

// MaxRows 返回行数上限
func (e *SQLExecutor) MaxRows() int { return e.maxRows }

// Execute 校验并执行只读查询
// 返回的错误为 *SQLRejectedError 或 *StorageError，超时的 StorageError 同时匹配 repository.ErrTimeout
func (e *SQLExecutor) Execute(ctx context.Context, sql string, args ...any) (*repository.ResultSet, error) {
	start := time.Now()
	sql = BindPlaceholders(NormalizeSQL(sql), e.dialect, len(args))

	if err := e.validator.Validate(sql); err != nil {
		return nil, err
	}

	queryCtx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	rs, err := e.executor.Query(queryCtx, e.maxRows, sql, args...)
	duration := time.Since(start)
	if err != nil {
		e.logger.Error("SQL查询执行失败",
			zap.Error(err),
			zap.String("sql", sql),
			zap.Duration("duration", duration),
		)
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", repository.ErrTimeout, err)
		}
		return nil, &StorageError{Err: err}
	}

	e.logger.Info("SQL查询执行成功",
		zap.String("sql", sql),
		zap.Int("row_count", rs.RowCount()),
		zap.Bool("truncated", rs.Truncated),
		zap.Duration("duration", duration),
	)
	return rs, nil
}
