package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"nlquery-go/internal/repository"
	"nlquery-go/internal/schema"
)

// MockQueryExecutor 模拟只读查询执行器
type MockQueryExecutor struct {
	mock.Mock
}

func (m *MockQueryExecutor) Query(ctx context.Context, maxRows int, query string, args ...any) (*repository.ResultSet, error) {
	called := m.Called(ctx, maxRows, query, args)
	if rs := called.Get(0); rs != nil {
		return rs.(*repository.ResultSet), called.Error(1)
	}
	return nil, called.Error(1)
}

// MockInterpreter 模拟结果解读器
type MockInterpreter struct {
	mock.Mock
}

func (m *MockInterpreter) Interpret(ctx context.Context, query string, columns []string, rows []map[string]any) (string, error) {
	args := m.Called(ctx, query, columns, rows)
	return args.String(0), args.Error(1)
}

// MockReportRepository 模拟报表Repository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Create(ctx context.Context, report *repository.ReportDefinition) error {
	return m.Called(ctx, report).Error(0)
}

func (m *MockReportRepository) GetByID(ctx context.Context, id int64) (*repository.ReportDefinition, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*repository.ReportDefinition), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReportRepository) List(ctx context.Context) ([]*repository.ReportDefinition, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.([]*repository.ReportDefinition), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReportRepository) Update(ctx context.Context, report *repository.ReportDefinition) error {
	return m.Called(ctx, report).Error(0)
}

func (m *MockReportRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// staticCatalog 固定快照
type staticCatalog struct {
	snap *schema.Snapshot
}

func (c staticCatalog) Snapshot() *schema.Snapshot { return c.snap }

// recordingMetrics 记录指标调用
type recordingMetrics struct {
	queries         []string
	translations    []string
	rejections      []string
	interpretations []string
}

func (r *recordingMetrics) RecordQuery(kind, outcome string, _ time.Duration) {
	r.queries = append(r.queries, kind+":"+outcome)
}

func (r *recordingMetrics) RecordTranslation(translator, outcome string) {
	r.translations = append(r.translations, translator+":"+outcome)
}

func (r *recordingMetrics) RecordRejection(reason string) {
	r.rejections = append(r.rejections, reason)
}

func (r *recordingMetrics) RecordInterpretation(outcome string) {
	r.interpretations = append(r.interpretations, outcome)
}
