package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nlquery-go/internal/schema"
)

// CatalogInterface schema目录接口
type CatalogInterface interface {
	Snapshot() *schema.Snapshot
	Reload(ctx context.Context) (*schema.Snapshot, error)
}

// SchemaHandler 表结构处理器
type SchemaHandler struct {
	catalog CatalogInterface
	logger  *zap.Logger
}

// NewSchemaHandler 创建表结构处理器
func NewSchemaHandler(catalog CatalogInterface, logger *zap.Logger) *SchemaHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchemaHandler{catalog: catalog, logger: logger}
}

// SnapshotInfo 快照概要
type SnapshotInfo struct {
	Source   schema.Source `json:"source"`
	Tables   int           `json:"tables"`
	Columns  int           `json:"columns"`
	LoadedAt time.Time     `json:"loaded_at"`
}

func snapshotInfo(snap *schema.Snapshot) SnapshotInfo {
	return SnapshotInfo{
		Source:   snap.Source(),
		Tables:   snap.TableCount(),
		Columns:  snap.ColumnCount(),
		LoadedAt: snap.LoadedAt(),
	}
}

// ListTables 获取数据库表列表
// @Router /api/tables [get]
func (h *SchemaHandler) ListTables(c *gin.Context) {
	respondData(c, http.StatusOK, "", h.catalog.Snapshot().Tables())
}

// ListColumns 获取表字段信息
// @Router /api/tables/{table}/columns [get]
func (h *SchemaHandler) ListColumns(c *gin.Context) {
	table := c.Param("table")

	columns, ok := h.catalog.Snapshot().Columns(table)
	if !ok {
		respondError(c, http.StatusNotFound, CodeNotFound, "表不存在: "+table)
		return
	}
	if columns == nil {
		columns = []schema.ColumnDescriptor{}
	}
	respondData(c, http.StatusOK, "", columns)
}

// Reload 重新加载schema快照
// @Router /api/schema/reload [post]
func (h *SchemaHandler) Reload(c *gin.Context) {
	snap, err := h.catalog.Reload(c.Request.Context())
	if err != nil {
		h.logger.Warn("重新加载schema失败", zap.Error(err))
		respondError(c, http.StatusInternalServerError, CodeInternalError, "重新加载schema失败", err.Error())
		return
	}
	respondData(c, http.StatusOK, "schema已重新加载", snapshotInfo(snap))
}
