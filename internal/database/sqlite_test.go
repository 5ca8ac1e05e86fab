package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nlquery-go/internal/config"
)

func newTestSQLiteConfig(t *testing.T) *config.DatabaseConfig {
	t.Helper()
	cfg := config.DefaultDatabaseConfig()
	cfg.Path = filepath.Join(t.TempDir(), "data", "test.db")
	cfg.ReadPoolSize = 2
	return cfg
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	cfg := config.DefaultDatabaseConfig()
	cfg.Path = ""

	_, err := OpenSQLite(context.Background(), cfg, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "路径不能为空")
}

func TestOpenSQLitePair_WithMigrations(t *testing.T) {
	ctx := context.Background()
	cfg := newTestSQLiteConfig(t)

	writeDB, readDB, err := OpenSQLitePair(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = readDB.Close()
		_ = writeDB.Close()
	})

	assert.Equal(t, 1, writeDB.Stats().MaxOpenConnections)
	assert.Equal(t, 2, readDB.Stats().MaxOpenConnections)

	require.NoError(t, RunMigrations(writeDB.DB, config.DriverSQLite))

	var journalMode string
	require.NoError(t, readDB.GetContext(ctx, &journalMode, "PRAGMA journal_mode"))
	assert.Equal(t, "wal", journalMode)

	var users int
	require.NoError(t, readDB.GetContext(ctx, &users, "SELECT COUNT(*) FROM users"))
	assert.Equal(t, 5, users)

	var mappings int
	require.NoError(t, readDB.GetContext(ctx, &mappings, "SELECT COUNT(*) FROM table_mapping WHERE db_table_name = 'products'"))
	assert.Equal(t, 2, mappings, "产品与商品两个自然语言名称指向同一张表")

	version, err := MigrationVersion(writeDB.DB, config.DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	// 重复执行不应报错
	require.NoError(t, RunMigrations(writeDB.DB, config.DriverSQLite))
}

func TestRunMigrations_UnsupportedDriver(t *testing.T) {
	err := RunMigrations(nil, "oracle")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "不支持的数据库驱动")
}

func TestMigrationDir(t *testing.T) {
	assert.Equal(t, "migrations/postgres", MigrationDir(config.DriverPostgres))

	entries, err := EmbedMigrations.ReadDir(MigrationDir(config.DriverMySQL))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
