package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nlquery-go/internal/config"
)

func TestNewManager_NilConfig(t *testing.T) {
	manager, err := NewManager(context.Background(), nil, zap.NewNop())
	assert.Nil(t, manager)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "数据库配置不能为空")
}

func TestNewManager_InvalidConfig(t *testing.T) {
	cfg := config.DefaultDatabaseConfig()
	cfg.Driver = config.DriverPostgres
	cfg.Host = ""

	manager, err := NewManager(context.Background(), cfg, zap.NewNop())
	assert.Nil(t, manager)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "获取连接池配置失败")
}

func TestManager_Close_NilPool(t *testing.T) {
	manager := &Manager{logger: zap.NewNop()}
	assert.NotPanics(t, manager.Close)
}

func TestManager_HealthCheck_NilPool(t *testing.T) {
	manager := &Manager{logger: zap.NewNop()}

	err := manager.HealthCheck(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "数据库连接池未初始化")
}

func TestPoolStats_GetUtilization(t *testing.T) {
	tests := []struct {
		name     string
		stats    PoolStats
		expected float64
	}{
		{"空闲", PoolStats{AcquiredConns: 0, MaxConns: 10}, 0.0},
		{"半数", PoolStats{AcquiredConns: 5, MaxConns: 10}, 0.5},
		{"满载", PoolStats{AcquiredConns: 10, MaxConns: 10}, 1.0},
		{"未配置上限", PoolStats{AcquiredConns: 3, MaxConns: 0}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.stats.GetUtilization(), 0.0001)
		})
	}
}

func TestPoolStats_String(t *testing.T) {
	stats := &PoolStats{TotalConns: 4, IdleConns: 2, AcquiredConns: 2, MaxConns: 8}
	assert.Equal(t, "Pool Stats - Total: 4, Idle: 2, Acquired: 2, Utilization: 25.0%", stats.String())
}
