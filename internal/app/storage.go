package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"nlquery-go/internal/config"
	"nlquery-go/internal/database"
	"nlquery-go/internal/repository"
	"nlquery-go/internal/repository/postgres"
	"nlquery-go/internal/repository/sqlstore"
)

// Storage 按驱动打开的存储
// migrateDB 为写连接，供 goose 执行迁移
type Storage struct {
	Repo repository.Repository

	driver    string
	migrateDB *sql.DB
	closeFn   func()
}

// OpenStorage 根据数据库配置打开存储
func OpenStorage(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*Storage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Driver {
	case config.DriverSQLite:
		writeDB, readDB, err := database.OpenSQLitePair(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store, err := sqlstore.New(writeDB, readDB, repository.DialectSQLite, logger)
		if err != nil {
			_ = readDB.Close()
			_ = writeDB.Close()
			return nil, err
		}
		logger.Info("已打开SQLite数据库", zap.String("path", cfg.Path))
		return &Storage{
			Repo:      store,
			driver:    cfg.Driver,
			migrateDB: writeDB.DB,
			closeFn:   func() { _ = store.Close() },
		}, nil

	case config.DriverMySQL:
		db, err := database.OpenMySQL(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store, err := sqlstore.New(db, db, repository.DialectMySQL, logger)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("已连接MySQL数据库")
		return &Storage{
			Repo:      store,
			driver:    cfg.Driver,
			migrateDB: db.DB,
			closeFn:   func() { _ = store.Close() },
		}, nil

	case config.DriverPostgres:
		manager, err := database.NewManager(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		pool := manager.GetPool()
		sqlDB := stdlib.OpenDBFromPool(pool)
		return &Storage{
			Repo:      postgres.NewPostgreSQLRepository(pool, logger),
			driver:    cfg.Driver,
			migrateDB: sqlDB,
			closeFn: func() {
				_ = sqlDB.Close()
				manager.Close()
			},
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s", repository.ErrUnsupportedDriver, cfg.Driver)
	}
}

// Migrate 执行未应用的迁移
func (s *Storage) Migrate() error {
	return database.RunMigrations(s.migrateDB, s.driver)
}

// MigrationVersion 当前迁移版本
func (s *Storage) MigrationVersion() (int64, error) {
	return database.MigrationVersion(s.migrateDB, s.driver)
}

// Close 关闭全部连接
func (s *Storage) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}
