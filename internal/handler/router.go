package handler

import (
	"github.com/gin-gonic/gin"

	"nlquery-go/internal/metrics"
	"nlquery-go/internal/middleware"
)

// RouterConfig 路由配置结构
type RouterConfig struct {
	QueryHandler  *QueryHandler
	SchemaHandler *SchemaHandler
	ReportHandler *ReportHandler
	HealthHandler *HealthHandler

	Metrics    *metrics.PrometheusMetrics  // 为空时不暴露 /metrics
	Middleware *middleware.MiddlewareConfig // 为空时不挂载全局中间件
}

// SetupRoutes 配置所有API路由
// 路径与前端保持一致，统一挂在 /api 下
func SetupRoutes(r *gin.Engine, config *RouterConfig) {
	if config.Middleware != nil {
		middleware.SetupMiddleware(r, config.Middleware)
	}
	if config.Metrics != nil {
		r.Use(config.Metrics.HTTPMetricsMiddleware())
	}

	api := r.Group("/api")
	{
		if h := config.HealthHandler; h != nil {
			api.GET("/health", h.Ping)
		}

		if h := config.QueryHandler; h != nil {
			api.POST("/query", h.Query)
			api.POST("/query/translate", h.Translate)
		}

		if h := config.SchemaHandler; h != nil {
			api.GET("/tables", h.ListTables)
			api.GET("/tables/:table/columns", h.ListColumns)
			api.POST("/schema/reload", h.Reload)
		}

		if h := config.ReportHandler; h != nil {
			reports := api.Group("/reports")
			{
				reports.GET("", h.ListReports)
				reports.POST("", h.CreateReport)
				reports.POST("/execute", h.ExecuteQuery)
				reports.GET("/:id", h.GetReport)
				reports.PUT("/:id", h.UpdateReport)
				reports.DELETE("/:id", h.DeleteReport)
				reports.POST("/:id/execute", h.ExecuteReport)
			}
		}
	}

	setupSystemRoutes(r, config)
}

// setupSystemRoutes 配置系统级路由
func setupSystemRoutes(r *gin.Engine, config *RouterConfig) {
	if h := config.HealthHandler; h != nil {
		r.GET("/health", h.Health)
		r.GET("/ready", h.Ready)
		r.GET("/version", h.Version)
	}

	if config.Metrics != nil {
		r.GET("/metrics", config.Metrics.GetMetricsHandler())
	}
}
