package database

import (
	"database/sql"
	"fmt"
	"path"

	"github.com/pressly/goose/v3"

	"nlquery-go/internal/config"
)

// gooseDialect 驱动名到goose方言的映射
func gooseDialect(driver string) (string, error) {
	switch driver {
	case config.DriverSQLite:
		return "sqlite3", nil
	case config.DriverMySQL:
		return "mysql", nil
	case config.DriverPostgres:
		return "postgres", nil
	default:
		return "", fmt.Errorf("不支持的数据库驱动: %s", driver)
	}
}

// MigrationDir 返回指定驱动在内嵌文件系统中的迁移目录
func MigrationDir(driver string) string {
	return path.Join("migrations", driver)
}

// RunMigrations 执行全部未应用的迁移（建表及示例数据）
func RunMigrations(db *sql.DB, driver string) error {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return err
	}

	goose.SetBaseFS(EmbedMigrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}
	if err := goose.Up(db, MigrationDir(driver)); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// MigrationVersion 返回当前已应用的迁移版本
func MigrationVersion(db *sql.DB, driver string) (int64, error) {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return 0, err
	}

	goose.SetBaseFS(EmbedMigrations)
	if err := goose.SetDialect(dialect); err != nil {
		return 0, fmt.Errorf("goose set dialect: %w", err)
	}
	version, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("goose version: %w", err)
	}
	return version, nil
}
