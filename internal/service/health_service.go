package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nlquery-go/internal/config"
	"nlquery-go/internal/repository"
	"nlquery-go/internal/schema"
)

// MsgServiceHealthy 静态健康检查消息
const MsgServiceHealthy = "服务运行正常"

// HealthServiceInterface 健康检查服务接口，用于支持测试和依赖注入
type HealthServiceInterface interface {
	CheckHealth(ctx context.Context) *HealthCheckResult
	CheckReadiness(ctx context.Context) *ReadinessResult
	GetVersionInfo() map[string]any
}

// DatabaseChecker 数据库健康检查
type DatabaseChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthService 健康检查服务
type HealthService struct {
	db      DatabaseChecker
	catalog SnapshotProvider
	llm     string // 大模型提供商，空表示未启用
	appInfo *config.AppInfo
	logger  *zap.Logger
}

// NewHealthService 创建健康检查服务
func NewHealthService(
	db DatabaseChecker,
	catalog SnapshotProvider,
	llmProvider string,
	appInfo *config.AppInfo,
	logger *zap.Logger,
) *HealthService {
	if appInfo == nil {
		appInfo = config.DefaultAppInfo()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthService{
		db:      db,
		catalog: catalog,
		llm:     llmProvider,
		appInfo: appInfo,
		logger:  logger,
	}
}

// HealthStatus 健康状态枚举
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDegraded  HealthStatus = "degraded"
)

// ComponentStatus 组件状态
type ComponentStatus struct {
	Status    HealthStatus `json:"status"`
	Message   string       `json:"message,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
	Duration  string       `json:"duration,omitempty"`
}

// HealthCheckResult 健康检查结果
type HealthCheckResult struct {
	Status      HealthStatus               `json:"status"`
	Timestamp   time.Time                  `json:"timestamp"`
	Service     string                     `json:"service"`
	Version     string                     `json:"version"`
	Environment string                     `json:"environment"`
	Components  map[string]ComponentStatus `json:"components"`
	BuildInfo   map[string]any             `json:"build_info,omitempty"`
}

// ReadinessResult 就绪检查结果
type ReadinessResult struct {
	Status     HealthStatus               `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]ComponentStatus `json:"components"`
}

// CheckHealth 执行健康检查
// 数据库异常或schema只有内置默认映射时为 degraded
func (h *HealthService) CheckHealth(ctx context.Context) *HealthCheckResult {
	components := h.components(ctx)

	overallStatus := HealthStatusHealthy
	for _, c := range components {
		if c.Status != HealthStatusHealthy {
			overallStatus = HealthStatusDegraded
		}
	}

	return &HealthCheckResult{
		Status:      overallStatus,
		Timestamp:   time.Now(),
		Service:     h.appInfo.Name,
		Version:     h.appInfo.Version,
		Environment: h.appInfo.Environment,
		Components:  components,
		BuildInfo:   h.appInfo.GetBuildInfo(),
	}
}

// CheckReadiness 执行就绪检查
// 就绪检查比健康检查更严格，数据库必须可用
func (h *HealthService) CheckReadiness(ctx context.Context) *ReadinessResult {
	components := h.components(ctx)

	overallStatus := HealthStatusHealthy
	if components["database"].Status != HealthStatusHealthy {
		overallStatus = HealthStatusUnhealthy
	}

	return &ReadinessResult{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Components: components,
	}
}

func (h *HealthService) components(ctx context.Context) map[string]ComponentStatus {
	components := map[string]ComponentStatus{
		"database": h.checkDatabase(ctx),
		"schema":   h.checkSchema(),
	}
	if h.llm != "" {
		components["llm"] = ComponentStatus{
			Status:    HealthStatusHealthy,
			Message:   fmt.Sprintf("已配置大模型提供商: %s", h.llm),
			Timestamp: time.Now(),
		}
	}
	return components
}

// checkDatabase 检查数据库连接
func (h *HealthService) checkDatabase(ctx context.Context) ComponentStatus {
	start := time.Now()

	if h.db == nil {
		return ComponentStatus{
			Status:    HealthStatusUnhealthy,
			Message:   "数据库连接未配置",
			Timestamp: time.Now(),
		}
	}

	// 使用超时上下文防止长时间阻塞
	timeoutCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := h.db.HealthCheck(timeoutCtx)
	duration := time.Since(start)

	if err != nil {
		if !repository.IsConnectionFailed(err) {
			err = fmt.Errorf("%w: %w", repository.ErrConnectionFailed, err)
		}
		h.logger.Error("数据库健康检查失败", zap.Error(err))
		return ComponentStatus{
			Status:    HealthStatusUnhealthy,
			Message:   err.Error(),
			Timestamp: time.Now(),
			Duration:  duration.String(),
		}
	}

	status := HealthStatusHealthy
	message := "数据库连接正常"

	// 如果响应时间过长，标记为降级
	if duration > 2*time.Second {
		status = HealthStatusDegraded
		message = "数据库响应较慢"
	}

	return ComponentStatus{
		Status:    status,
		Message:   message,
		Timestamp: time.Now(),
		Duration:  duration.String(),
	}
}

// checkSchema 检查schema快照来源
func (h *HealthService) checkSchema() ComponentStatus {
	if h.catalog == nil || h.catalog.Snapshot() == nil {
		return ComponentStatus{
			Status:    HealthStatusUnhealthy,
			Message:   "schema目录未初始化",
			Timestamp: time.Now(),
		}
	}

	snap := h.catalog.Snapshot()
	message := fmt.Sprintf("已加载 %d 张表（来源: %s）", snap.TableCount(), snap.Source())
	status := HealthStatusHealthy
	if snap.Source() == schema.SourceDefault || snap.TableCount() == 0 {
		status = HealthStatusDegraded
	}

	return ComponentStatus{
		Status:    status,
		Message:   message,
		Timestamp: snap.LoadedAt(),
	}
}

// GetVersionInfo 获取版本信息
func (h *HealthService) GetVersionInfo() map[string]any {
	return h.appInfo.GetBuildInfo()
}
