package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"nlquery-go/internal/config"
)

// Manager PostgreSQL数据库连接管理器
// 基于pgxpool管理连接池，支持健康检查和连接池统计
type Manager struct {
	pool   *pgxpool.Pool
	config *config.DatabaseConfig
	logger *zap.Logger
}

// NewManager 创建新的数据库管理器
// 创建连接池后立即执行一次健康检查，失败时关闭连接池并返回错误
func NewManager(ctx context.Context, dbConfig *config.DatabaseConfig, logger *zap.Logger) (*Manager, error) {
	if dbConfig == nil {
		return nil, fmt.Errorf("数据库配置不能为空")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("初始化数据库连接池",
		zap.String("host", dbConfig.Host),
		zap.Int("port", dbConfig.Port),
		zap.String("database", dbConfig.Database),
		zap.Int32("max_conns", dbConfig.MaxConns),
		zap.Int32("min_conns", dbConfig.MinConns),
	)

	poolConfig, err := dbConfig.GetPoolConfig(logger)
	if err != nil {
		logger.Error("获取连接池配置失败", zap.Error(err))
		return nil, fmt.Errorf("获取连接池配置失败: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("创建数据库连接池失败", zap.Error(err))
		return nil, fmt.Errorf("创建数据库连接池失败: %w", err)
	}

	manager := &Manager{
		pool:   pool,
		config: dbConfig,
		logger: logger,
	}

	if err := manager.HealthCheck(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("数据库连接池初始化成功",
		zap.Int32("max_conns", poolConfig.MaxConns),
		zap.Int32("min_conns", poolConfig.MinConns),
	)

	return manager, nil
}

// GetPool 获取数据库连接池
func (m *Manager) GetPool() *pgxpool.Pool {
	return m.pool
}

// HealthCheck 执行数据库健康检查
func (m *Manager) HealthCheck(ctx context.Context) error {
	if m.pool == nil {
		return fmt.Errorf("数据库连接池未初始化")
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var result int
	if err := m.pool.QueryRow(checkCtx, "SELECT 1").Scan(&result); err != nil {
		m.logger.Error("数据库健康检查查询失败", zap.Error(err))
		return fmt.Errorf("数据库健康检查失败: %w", err)
	}

	stat := m.pool.Stat()
	m.logger.Debug("数据库连接池状态",
		zap.Int32("total_conns", stat.TotalConns()),
		zap.Int32("idle_conns", stat.IdleConns()),
		zap.Int32("acquired_conns", stat.AcquiredConns()),
	)

	return nil
}

// GetPoolStats 获取连接池统计信息
func (m *Manager) GetPoolStats() *PoolStats {
	stat := m.pool.Stat()

	return &PoolStats{
		TotalConns:    stat.TotalConns(),
		IdleConns:     stat.IdleConns(),
		AcquiredConns: stat.AcquiredConns(),
		AcquireCount:  stat.AcquireCount(),
		MaxConns:      m.config.MaxConns,
	}
}

// Close 关闭数据库连接池
func (m *Manager) Close() {
	if m.pool != nil {
		m.logger.Info("关闭数据库连接池")
		m.pool.Close()
	}
}

// PoolStats 连接池统计信息
type PoolStats struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
	AcquireCount  int64 `json:"acquire_count"`
	MaxConns      int32 `json:"max_conns"`
}

// GetUtilization 计算连接池利用率 (0.0-1.0)
func (ps *PoolStats) GetUtilization() float64 {
	if ps.MaxConns <= 0 {
		return 0.0
	}
	return float64(ps.AcquiredConns) / float64(ps.MaxConns)
}

// String 返回连接池统计信息的字符串表示
func (ps *PoolStats) String() string {
	return fmt.Sprintf(
		"Pool Stats - Total: %d, Idle: %d, Acquired: %d, Utilization: %.1f%%",
		ps.TotalConns, ps.IdleConns, ps.AcquiredConns, ps.GetUtilization()*100,
	)
}
