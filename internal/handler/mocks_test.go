package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"nlquery-go/internal/repository"
	"nlquery-go/internal/schema"
	"nlquery-go/internal/service"
)

// MockQueryService 模拟查询服务
type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) ExecuteQuery(ctx context.Context, req service.QueryRequest) *service.QueryResult {
	return m.Called(ctx, req).Get(0).(*service.QueryResult)
}

func (m *MockQueryService) Translate(ctx context.Context, text string) *service.TranslateResult {
	return m.Called(ctx, text).Get(0).(*service.TranslateResult)
}

// MockCatalog 模拟schema目录
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Snapshot() *schema.Snapshot {
	return m.Called().Get(0).(*schema.Snapshot)
}

func (m *MockCatalog) Reload(ctx context.Context) (*schema.Snapshot, error) {
	args := m.Called(ctx)
	if snap := args.Get(0); snap != nil {
		return snap.(*schema.Snapshot), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockReportService 模拟报表服务
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) CreateReport(ctx context.Context, req *service.CreateReportRequest) (*repository.ReportDefinition, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*repository.ReportDefinition), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReportService) GetReport(ctx context.Context, id int64) (*repository.ReportDefinition, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*repository.ReportDefinition), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReportService) ListReports(ctx context.Context) ([]*repository.ReportDefinition, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.([]*repository.ReportDefinition), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReportService) UpdateReport(ctx context.Context, id int64, req *service.UpdateReportRequest) (*repository.ReportDefinition, error) {
	args := m.Called(ctx, id, req)
	if r := args.Get(0); r != nil {
		return r.(*repository.ReportDefinition), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReportService) DeleteReport(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockReportService) ExecuteReportQuery(ctx context.Context, cfg *service.ReportQueryConfig) *service.QueryResult {
	return m.Called(ctx, cfg).Get(0).(*service.QueryResult)
}

func (m *MockReportService) ExecuteReport(ctx context.Context, id int64) (*service.QueryResult, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*service.QueryResult), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockHealthService 模拟健康检查服务
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) CheckHealth(ctx context.Context) *service.HealthCheckResult {
	return m.Called(ctx).Get(0).(*service.HealthCheckResult)
}

func (m *MockHealthService) CheckReadiness(ctx context.Context) *service.ReadinessResult {
	return m.Called(ctx).Get(0).(*service.ReadinessResult)
}

func (m *MockHealthService) GetVersionInfo() map[string]any {
	return m.Called().Get(0).(map[string]any)
}
