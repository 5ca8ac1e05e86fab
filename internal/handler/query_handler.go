package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nlquery-go/internal/service"
)

// QueryServiceInterface 自然语言查询服务接口
type QueryServiceInterface interface {
	ExecuteQuery(ctx context.Context, req service.QueryRequest) *service.QueryResult
	Translate(ctx context.Context, text string) *service.TranslateResult
}

// QueryHandler 自然语言查询处理器
type QueryHandler struct {
	service QueryServiceInterface
	logger  *zap.Logger
}

// NewQueryHandler 创建查询处理器
func NewQueryHandler(svc QueryServiceInterface, logger *zap.Logger) *QueryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryHandler{service: svc, logger: logger}
}

// TranslateRequest SQL预览请求
type TranslateRequest struct {
	Query string `json:"query"`
}

// Query 执行自然语言查询
// @Summary 自然语言查询
// @Tags 查询
// @Accept json
// @Produce json
// @Param request body service.QueryRequest true "查询请求"
// @Success 200 {object} service.QueryResult
// @Failure 400 {object} service.QueryResult "查询为空或无法翻译"
// @Failure 500 {object} service.QueryResult "执行失败"
// @Router /api/query [post]
func (h *QueryHandler) Query(c *gin.Context) {
	// showSql 未传时默认返回SQL
	req := service.QueryRequest{ShowSQL: true}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, "请求参数格式错误", err.Error())
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, &service.QueryResult{
			Success: false,
			Data:    []map[string]any{},
			Columns: []string{},
			Message: service.MsgEmptyQuery,
		})
		return
	}

	result := h.service.ExecuteQuery(c.Request.Context(), req)
	c.JSON(statusForError(result.Err), result)
}

// Translate 只翻译不执行，返回SQL预览
// @Router /api/query/translate [post]
func (h *QueryHandler) Translate(c *gin.Context) {
	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, "请求参数格式错误", err.Error())
		return
	}

	result := h.service.Translate(c.Request.Context(), req.Query)
	c.JSON(statusForError(result.Err), result)
}
