package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nlquery-go/internal/repository"
	"nlquery-go/internal/service"
)

// ReportServiceInterface 报表服务接口
type ReportServiceInterface interface {
	CreateReport(ctx context.Context, req *service.CreateReportRequest) (*repository.ReportDefinition, error)
	GetReport(ctx context.Context, id int64) (*repository.ReportDefinition, error)
	ListReports(ctx context.Context) ([]*repository.ReportDefinition, error)
	UpdateReport(ctx context.Context, id int64, req *service.UpdateReportRequest) (*repository.ReportDefinition, error)
	DeleteReport(ctx context.Context, id int64) error
	ExecuteReportQuery(ctx context.Context, cfg *service.ReportQueryConfig) *service.QueryResult
	ExecuteReport(ctx context.Context, id int64) (*service.QueryResult, error)
}

// ReportHandler 报表处理器
type ReportHandler struct {
	service ReportServiceInterface
	logger  *zap.Logger
}

// NewReportHandler 创建报表处理器
func NewReportHandler(svc ReportServiceInterface, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{service: svc, logger: logger}
}

// parseID 解析路径中的报表ID，失败时已写入400响应
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, "无效的报表ID")
		return 0, false
	}
	return id, true
}

// ListReports 获取报表列表
// @Router /api/reports [get]
func (h *ReportHandler) ListReports(c *gin.Context) {
	reports, err := h.service.ListReports(c.Request.Context())
	if err != nil {
		h.logger.Error("获取报表列表失败", zap.Error(err))
		respondServiceError(c, err)
		return
	}
	if reports == nil {
		reports = []*repository.ReportDefinition{}
	}
	respondData(c, http.StatusOK, "", reports)
}

// CreateReport 创建报表
// @Router /api/reports [post]
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var req service.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, "请求参数格式错误", err.Error())
		return
	}

	report, err := h.service.CreateReport(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, "创建成功", report)
}

// GetReport 获取报表
// @Router /api/reports/{id} [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	report, err := h.service.GetReport(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, "", report)
}

// UpdateReport 更新报表，未提供的字段保持不变
// @Router /api/reports/{id} [put]
func (h *ReportHandler) UpdateReport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req service.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, "请求参数格式错误", err.Error())
		return
	}

	report, err := h.service.UpdateReport(c.Request.Context(), id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, "更新成功", report)
}

// DeleteReport 删除报表
// @Router /api/reports/{id} [delete]
func (h *ReportHandler) DeleteReport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteReport(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, "删除成功", nil)
}

// ExecuteQuery 执行结构化报表查询
// @Router /api/reports/execute [post]
func (h *ReportHandler) ExecuteQuery(c *gin.Context) {
	var req service.ExecuteReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, &service.QueryResult{
			Success: false,
			Data:    []map[string]any{},
			Columns: []string{},
			Message: "请求参数格式错误: " + err.Error(),
		})
		return
	}

	result := h.service.ExecuteReportQuery(c.Request.Context(), req.QueryConfig)
	c.JSON(statusForError(result.Err), result)
}

// ExecuteReport 执行已保存报表
// @Router /api/reports/{id}/execute [post]
func (h *ReportHandler) ExecuteReport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.service.ExecuteReport(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(statusForError(result.Err), result)
}
