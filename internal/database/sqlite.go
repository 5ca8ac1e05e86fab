package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"nlquery-go/internal/config"
)

// OpenSQLite 打开指定模式的SQLite连接池
//   - write: MaxOpenConns=1，带 _txlock=immediate，报表写入串行化
//   - read:  MaxOpenConns=maxOpen（0 时默认为4）
func OpenSQLite(ctx context.Context, cfg *config.DatabaseConfig, write bool) (*sqlx.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("SQLite数据库文件路径不能为空")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("创建数据库目录失败: %w", err)
		}
	}

	mode := "read"
	if write {
		mode = "write"
	}

	db, err := sqlx.Open("sqlite3", cfg.SQLiteDSN(write))
	if err != nil {
		return nil, fmt.Errorf("open sqlite (%s): %w", mode, err)
	}

	if write {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		maxOpen := cfg.ReadPoolSize
		if maxOpen <= 0 {
			maxOpen = 4
		}
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen)
	}
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite (%s): %w", mode, err)
	}

	return db, nil
}

// OpenSQLitePair 同时打开写连接池和读连接池
func OpenSQLitePair(ctx context.Context, cfg *config.DatabaseConfig) (writeDB, readDB *sqlx.DB, err error) {
	writeDB, err = OpenSQLite(ctx, cfg, true)
	if err != nil {
		return nil, nil, err
	}

	readDB, err = OpenSQLite(ctx, cfg, false)
	if err != nil {
		_ = writeDB.Close()
		return nil, nil, err
	}

	return writeDB, readDB, nil
}
