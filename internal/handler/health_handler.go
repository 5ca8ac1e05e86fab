package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nlquery-go/internal/service"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	service service.HealthServiceInterface
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(svc service.HealthServiceInterface) *HealthHandler {
	return &HealthHandler{service: svc}
}

// Ping 静态健康检查，前端用于探测服务
// @Router /api/health [get]
func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": service.MsgServiceHealthy,
	})
}

// Health 组件级健康检查
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.CheckHealth(c.Request.Context()))
}

// Ready 就绪检查，数据库不可用时返回503
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	result := h.service.CheckReadiness(c.Request.Context())
	status := http.StatusOK
	if result.Status != service.HealthStatusHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, result)
}

// Version 版本信息
// @Router /version [get]
func (h *HealthHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.GetVersionInfo())
}
