package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"nlquery-go/internal/repository"
)

// PostgreSQLRepository PostgreSQL Repository实现
// 聚合元数据、报表和只读查询三个子Repository，共享同一个pgx连接池
type PostgreSQLRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger

	// 子Repository实例
	schemaRepo repository.SchemaRepository
	reportRepo repository.ReportRepository
	executor   repository.QueryExecutor
}

// NewPostgreSQLRepository 创建PostgreSQL Repository实例
func NewPostgreSQLRepository(pool *pgxpool.Pool, logger *zap.Logger) repository.Repository {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &PostgreSQLRepository{
		pool:   pool,
		logger: logger,

		schemaRepo: NewPostgreSQLSchemaRepository(pool, logger),
		reportRepo: NewPostgreSQLReportRepository(pool, logger),
		executor:   NewPostgreSQLQueryExecutor(pool, logger),
	}
}

// SchemaRepo 获取元数据Repository
func (r *PostgreSQLRepository) SchemaRepo() repository.SchemaRepository {
	return r.schemaRepo
}

// ReportRepo 获取报表Repository
func (r *PostgreSQLRepository) ReportRepo() repository.ReportRepository {
	return r.reportRepo
}

// QueryExecutor 获取只读查询执行器
func (r *PostgreSQLRepository) QueryExecutor() repository.QueryExecutor {
	return r.executor
}

// Dialect 返回数据库方言
func (r *PostgreSQLRepository) Dialect() string {
	return repository.DialectPostgres
}

// HealthCheck 检查数据库连接
func (r *PostgreSQLRepository) HealthCheck(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := r.pool.Ping(checkCtx); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrConnectionFailed, err)
	}
	return nil
}

// Close 连接池由 database.Manager 管理，这里不重复关闭
func (r *PostgreSQLRepository) Close() error {
	return nil
}
