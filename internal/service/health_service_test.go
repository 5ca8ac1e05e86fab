package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"nlquery-go/internal/config"
	"nlquery-go/internal/repository"
	"nlquery-go/internal/schema"
)

type fakeDB struct {
	err error
}

func (f fakeDB) HealthCheck(context.Context) error { return f.err }

func mappingSnapshot() *schema.Snapshot {
	return schema.NewSnapshot(schema.DefaultTables(), schema.SourceMapping)
}

func TestHealthService_CheckHealth(t *testing.T) {
	appInfo := config.NewAppInfo("nlquery-api", "1.2.3", "2026-01-01T00:00:00Z", "abc123", "test")

	tests := []struct {
		name     string
		db       DatabaseChecker
		snap     *schema.Snapshot
		expected HealthStatus
	}{
		{"全部正常", fakeDB{}, mappingSnapshot(), HealthStatusHealthy},
		{"数据库异常", fakeDB{err: errors.New("disk I/O error")}, mappingSnapshot(), HealthStatusDegraded},
		{"仅默认映射", fakeDB{}, schema.DefaultSnapshot(), HealthStatusDegraded},
		{"未配置数据库", nil, mappingSnapshot(), HealthStatusDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthService(tt.db, staticCatalog{snap: tt.snap}, "", appInfo, zaptest.NewLogger(t))
			result := h.CheckHealth(context.Background())

			assert.Equal(t, tt.expected, result.Status)
			assert.Equal(t, "nlquery-api", result.Service)
			assert.Equal(t, "1.2.3", result.Version)
			assert.Contains(t, result.Components, "database")
			assert.Contains(t, result.Components, "schema")
			assert.NotContains(t, result.Components, "llm")
		})
	}
}

func TestHealthService_CheckReadiness(t *testing.T) {
	h := NewHealthService(fakeDB{}, staticCatalog{snap: schema.DefaultSnapshot()}, "qwen", nil, zaptest.NewLogger(t))
	ready := h.CheckReadiness(context.Background())
	assert.Equal(t, HealthStatusHealthy, ready.Status, "默认映射不影响就绪")
	assert.Contains(t, ready.Components["llm"].Message, "qwen")

	h = NewHealthService(fakeDB{err: errors.New("closed")}, staticCatalog{snap: mappingSnapshot()}, "", nil, zaptest.NewLogger(t))
	ready = h.CheckReadiness(context.Background())
	assert.Equal(t, HealthStatusUnhealthy, ready.Status)
	assert.Contains(t, ready.Components["database"].Message, "closed")
	assert.True(t, strings.HasPrefix(ready.Components["database"].Message, "数据库连接失败: "))
}

func TestHealthService_ConnectionFailedNotDoubleWrapped(t *testing.T) {
	dbErr := fmt.Errorf("%w: %w", repository.ErrConnectionFailed, errors.New("dial tcp: refused"))
	h := NewHealthService(fakeDB{err: dbErr}, staticCatalog{snap: mappingSnapshot()}, "", nil, zaptest.NewLogger(t))

	ready := h.CheckReadiness(context.Background())
	assert.Equal(t, HealthStatusUnhealthy, ready.Status)
	assert.Equal(t, "数据库连接失败: dial tcp: refused", ready.Components["database"].Message)
}

func TestHealthService_SchemaMessage(t *testing.T) {
	h := NewHealthService(fakeDB{}, staticCatalog{snap: mappingSnapshot()}, "", nil, nil)
	status := h.checkSchema()
	assert.Equal(t, HealthStatusHealthy, status.Status)
	assert.Equal(t, "已加载 3 张表（来源: mapping）", status.Message)

	h = NewHealthService(fakeDB{}, nil, "", nil, nil)
	assert.Equal(t, HealthStatusUnhealthy, h.checkSchema().Status)
	assert.NotEmpty(t, h.GetVersionInfo()["version"])
}
