package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"nlquery-go/internal/repository"
)

// CreateReportRequest 创建报表请求
type CreateReportRequest struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	DataSource   string          `json:"data_source"`
	LayoutConfig json.RawMessage `json:"layout_config"`
	QueryConfig  json.RawMessage `json:"query_config,omitempty"`
}

// UpdateReportRequest 更新报表请求，nil 字段保持不变
type UpdateReportRequest struct {
	Name         *string         `json:"name,omitempty"`
	Description  *string         `json:"description,omitempty"`
	DataSource   *string         `json:"data_source,omitempty"`
	LayoutConfig json.RawMessage `json:"layout_config,omitempty"`
	QueryConfig  json.RawMessage `json:"query_config,omitempty"`
}

// IsEmpty 是否没有任何需要更新的字段
func (r *UpdateReportRequest) IsEmpty() bool {
	return r.Name == nil && r.Description == nil && r.DataSource == nil &&
		isBlankJSON(r.LayoutConfig) && isBlankJSON(r.QueryConfig)
}

// isBlankJSON 空、null、{} 均视为未提供
func isBlankJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}"))
}

// ExecuteReportRequest 执行结构化查询请求
type ExecuteReportRequest struct {
	QueryConfig *ReportQueryConfig `json:"query_config"`
}

// ReportService 报表定义管理与结构化查询执行
type ReportService struct {
	repo      repository.ReportRepository
	executor  *SQLExecutor
	validator *SQLSecurityValidator
	dialect   string
	metrics   QueryMetrics
	logger    *zap.Logger
}

// NewReportService 创建报表服务
func NewReportService(repo repository.ReportRepository, executor *SQLExecutor, dialect string, logger *zap.Logger, metrics QueryMetrics) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &ReportService{
		repo:      repo,
		executor:  executor,
		validator: NewSQLSecurityValidator(logger),
		dialect:   dialect,
		metrics:   metrics,
		logger:    logger,
	}
}

func validateQueryConfig(raw json.RawMessage) error {
	if isBlankJSON(raw) {
		return nil
	}
	if !json.Valid(raw) {
		return configErrorf("查询配置不是合法的JSON")
	}
	return nil
}

// CreateReport 创建报表定义
func (s *ReportService) CreateReport(ctx context.Context, req *CreateReportRequest) (*repository.ReportDefinition, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, configErrorf("报表名称不能为空")
	}
	if strings.TrimSpace(req.DataSource) == "" {
		return nil, configErrorf("数据源不能为空")
	}
	if isBlankJSON(req.LayoutConfig) {
		return nil, configErrorf("布局配置不能为空")
	}
	if !json.Valid(req.LayoutConfig) {
		return nil, configErrorf("布局配置不是合法的JSON")
	}
	if err := validateQueryConfig(req.QueryConfig); err != nil {
		return nil, err
	}

	report := &repository.ReportDefinition{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		DataSource:   strings.TrimSpace(req.DataSource),
		LayoutConfig: req.LayoutConfig,
	}
	if !isBlankJSON(req.QueryConfig) {
		report.QueryConfig = req.QueryConfig
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info("报表已创建", zap.Int64("report_id", report.ID), zap.String("name", report.Name))
	return report, nil
}

// GetReport 获取报表定义，不存在时返回 repository.ErrNotFound
func (s *ReportService) GetReport(ctx context.Context, id int64) (*repository.ReportDefinition, error) {
	return s.repo.GetByID(ctx, id)
}

// ListReports 列出所有报表定义
func (s *ReportService) ListReports(ctx context.Context) ([]*repository.ReportDefinition, error) {
	return s.repo.List(ctx)
}

// UpdateReport 按字段合并更新报表定义
func (s *ReportService) UpdateReport(ctx context.Context, id int64, req *UpdateReportRequest) (*repository.ReportDefinition, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		return existing, nil
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, configErrorf("报表名称不能为空")
		}
		existing.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.DataSource != nil {
		if strings.TrimSpace(*req.DataSource) == "" {
			return nil, configErrorf("数据源不能为空")
		}
		existing.DataSource = strings.TrimSpace(*req.DataSource)
	}
	if !isBlankJSON(req.LayoutConfig) {
		if !json.Valid(req.LayoutConfig) {
			return nil, configErrorf("布局配置不是合法的JSON")
		}
		existing.LayoutConfig = req.LayoutConfig
	}
	if !isBlankJSON(req.QueryConfig) {
		if err := validateQueryConfig(req.QueryConfig); err != nil {
			return nil, err
		}
		existing.QueryConfig = req.QueryConfig
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.logger.Info("报表已更新", zap.Int64("report_id", id))
	return existing, nil
}

// DeleteReport 删除报表定义
func (s *ReportService) DeleteReport(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("报表已删除", zap.Int64("report_id", id))
	return nil
}

// ExecuteReportQuery 构建并执行结构化查询，失败时返回 success=false 的结果
func (s *ReportService) ExecuteReportQuery(ctx context.Context, cfg *ReportQueryConfig) *QueryResult {
	start := time.Now()

	built, rs, err := s.executeConfig(ctx, cfg)
	duration := time.Since(start)
	s.metrics.RecordQuery("report", outcomeOf(err), duration)

	if err != nil {
		recordRejection(s.metrics, err)
		s.logger.Warn("报表查询失败", zap.Error(err), zap.Duration("duration", duration))
		return failedResult(fmt.Errorf("查询执行失败: %w", err))
	}

	result := successResult(rs)
	result.SQL = built.SQL
	s.logger.Info("报表查询成功",
		zap.String("sql", built.SQL),
		zap.Int("rows", len(result.Data)),
		zap.Duration("duration", duration),
	)
	return result
}

func (s *ReportService) executeConfig(ctx context.Context, cfg *ReportQueryConfig) (*BuiltQuery, *repository.ResultSet, error) {
	built, err := BuildReportQuery(cfg, s.dialect)
	if err != nil {
		return nil, nil, err
	}
	if err := s.validator.Validate(built.SQL); err != nil {
		return built, nil, err
	}
	rs, err := s.executor.Execute(ctx, built.SQL, built.Args...)
	if err != nil {
		return built, nil, err
	}
	return built, rs, nil
}

// ExecuteReport 执行已保存报表的查询配置
func (s *ReportService) ExecuteReport(ctx context.Context, id int64) (*QueryResult, error) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cfg, err := ParseReportQueryConfig(report.QueryConfig)
	if err != nil {
		return failedResult(fmt.Errorf("查询执行失败: %w", err)), nil
	}
	return s.ExecuteReportQuery(ctx, cfg), nil
}
