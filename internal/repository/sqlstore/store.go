// Package sqlstore 基于sqlx的Repository实现，覆盖sqlite与mysql两种方言
package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"nlquery-go/internal/repository"
)

// Store sqlx Repository实现
// writeDB 用于报表定义的写入，readDB 用于元数据读取和只读查询；
// 二者可以是同一个连接池（mysql），sqlite 下按读写分离打开
type Store struct {
	writeDB *sqlx.DB
	readDB  *sqlx.DB
	dialect string
	logger  *zap.Logger

	schemaRepo *SchemaRepository
	reportRepo *ReportRepository
	executor   *QueryExecutor
}

// New 创建sqlx Repository实例
func New(writeDB, readDB *sqlx.DB, dialect string, logger *zap.Logger) (*Store, error) {
	if writeDB == nil {
		return nil, fmt.Errorf("数据库连接不能为空")
	}
	if readDB == nil {
		readDB = writeDB
	}
	if dialect != repository.DialectSQLite && dialect != repository.DialectMySQL {
		return nil, fmt.Errorf("%w: %s", repository.ErrUnsupportedDriver, dialect)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{
		writeDB:    writeDB,
		readDB:     readDB,
		dialect:    dialect,
		logger:     logger,
		schemaRepo: NewSchemaRepository(readDB, dialect, logger),
		reportRepo: NewReportRepository(writeDB, readDB, logger),
		executor:   NewQueryExecutor(readDB, logger),
	}, nil
}

// SchemaRepo 获取元数据Repository
func (s *Store) SchemaRepo() repository.SchemaRepository {
	return s.schemaRepo
}

// ReportRepo 获取报表Repository
func (s *Store) ReportRepo() repository.ReportRepository {
	return s.reportRepo
}

// QueryExecutor 获取只读查询执行器
func (s *Store) QueryExecutor() repository.QueryExecutor {
	return s.executor
}

// Dialect 返回数据库方言
func (s *Store) Dialect() string {
	return s.dialect
}

// HealthCheck 检查数据库连接
func (s *Store) HealthCheck(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var result int
	if err := s.readDB.GetContext(checkCtx, &result, "SELECT 1"); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrConnectionFailed, err)
	}
	return nil
}

// Close 关闭连接池
func (s *Store) Close() error {
	var firstErr error
	if s.readDB != s.writeDB {
		if err := s.readDB.Close(); err != nil {
			firstErr = err
		}
	}
	if err := s.writeDB.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
