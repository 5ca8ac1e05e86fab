package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// PrometheusMetrics Prometheus指标收集器
// 收集HTTP请求、自然语言查询、SQL拦截、结果解读和schema目录等指标
type PrometheusMetrics struct {
	// HTTP请求相关指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRequestSize     *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec
	activeRequests      prometheus.Gauge

	// 业务指标
	queriesTotal         *prometheus.CounterVec
	queryDuration        *prometheus.HistogramVec
	translationsTotal    *prometheus.CounterVec
	rejectionsTotal      *prometheus.CounterVec
	interpretationsTotal *prometheus.CounterVec
	catalogTables        *prometheus.GaugeVec
	catalogColumns       prometheus.Gauge
	catalogReloadsTotal  prometheus.Counter

	// 注册器
	registry *prometheus.Registry

	logger *zap.Logger
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Namespace      string // 指标命名空间
	Subsystem      string // HTTP指标子系统
	ServiceName    string // 服务名称
	ServiceVersion string // 服务版本
}

// DefaultMetricsConfig 默认指标配置
func DefaultMetricsConfig() *MetricsConfig {
	return &MetricsConfig{
		Namespace:      "nlquery",
		Subsystem:      "api",
		ServiceName:    "nlquery-api",
		ServiceVersion: "0.1.0",
	}
}

// NewPrometheusMetrics 创建Prometheus指标收集器，使用独立的注册器
func NewPrometheusMetrics(config *MetricsConfig, logger *zap.Logger) *PrometheusMetrics {
	if config == nil {
		config = DefaultMetricsConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	pm := &PrometheusMetrics{
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}

	// HTTP请求指标
	pm.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	pm.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	pm.httpRequestSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "http_request_size_bytes",
			Help:      "HTTP request size in bytes",
			Buckets:   []float64{1024, 4096, 16384, 65536, 262144, 1048576}, // 1KB to 1MB
		},
		[]string{"method", "endpoint"},
	)

	pm.httpResponseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "http_response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   []float64{1024, 4096, 16384, 65536, 262144, 1048576}, // 1KB to 1MB
		},
		[]string{"method", "endpoint"},
	)

	pm.activeRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "active_requests",
			Help:      "Number of in-flight HTTP requests",
		},
	)

	// 查询指标
	pm.queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: "query",
			Name:      "executions_total",
			Help:      "Total number of query executions by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	pm.queryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "Query pipeline duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30}, // 1ms to 30s
		},
		[]string{"kind"},
	)

	pm.translationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: "query",
			Name:      "translations_total",
			Help:      "Total number of natural language translations",
		},
		[]string{"translator", "outcome"},
	)

	pm.rejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: "sql",
			Name:      "rejections_total",
			Help:      "Total number of statements rejected by the safety validator",
		},
		[]string{"reason"},
	)

	pm.interpretationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: "llm",
			Name:      "interpretations_total",
			Help:      "Total number of result interpretation calls",
		},
		[]string{"outcome"},
	)

	// schema目录指标
	pm.catalogTables = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Subsystem: "catalog",
			Name:      "tables",
			Help:      "Number of tables in the current schema snapshot",
		},
		[]string{"source"},
	)

	pm.catalogColumns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Subsystem: "catalog",
			Name:      "columns",
			Help:      "Number of columns in the current schema snapshot",
		},
	)

	pm.catalogReloadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: "catalog",
			Name:      "reloads_total",
			Help:      "Total number of schema snapshot loads",
		},
	)

	pm.registerMetrics(config)

	logger.Info("Prometheus metrics initialized successfully",
		zap.String("namespace", config.Namespace),
		zap.String("subsystem", config.Subsystem))

	return pm
}

// registerMetrics 注册所有指标，同时注册Go运行时与进程指标
func (pm *PrometheusMetrics) registerMetrics(config *MetricsConfig) {
	pm.registry.MustRegister(
		pm.httpRequestsTotal,
		pm.httpRequestDuration,
		pm.httpRequestSize,
		pm.httpResponseSize,
		pm.activeRequests,

		pm.queriesTotal,
		pm.queryDuration,
		pm.translationsTotal,
		pm.rejectionsTotal,
		pm.interpretationsTotal,
		pm.catalogTables,
		pm.catalogColumns,
		pm.catalogReloadsTotal,

		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: config.Namespace}),
		newBuildInfoCollector(config),
	)
}

// Registry 返回指标注册器（测试用）
func (pm *PrometheusMetrics) Registry() *prometheus.Registry {
	return pm.registry
}

// HTTPMetricsMiddleware HTTP指标收集中间件
func (pm *PrometheusMetrics) HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestSize := calculateRequestSize(c.Request)

		pm.activeRequests.Inc()
		defer pm.activeRequests.Dec()

		c.Next()

		duration := time.Since(start)
		responseSize := c.Writer.Size()

		method := c.Request.Method
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		statusCode := strconv.Itoa(c.Writer.Status())

		pm.httpRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
		pm.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())

		if requestSize > 0 {
			pm.httpRequestSize.WithLabelValues(method, endpoint).Observe(float64(requestSize))
		}

		if responseSize > 0 {
			pm.httpResponseSize.WithLabelValues(method, endpoint).Observe(float64(responseSize))
		}
	}
}

// RecordQuery 记录一次查询执行
func (pm *PrometheusMetrics) RecordQuery(kind, outcome string, duration time.Duration) {
	pm.queriesTotal.WithLabelValues(kind, outcome).Inc()
	pm.queryDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordTranslation 记录一次自然语言翻译
func (pm *PrometheusMetrics) RecordTranslation(translator, outcome string) {
	pm.translationsTotal.WithLabelValues(translator, outcome).Inc()
}

// RecordRejection 记录一次SQL拦截
func (pm *PrometheusMetrics) RecordRejection(reason string) {
	pm.rejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordInterpretation 记录一次结果解读
func (pm *PrometheusMetrics) RecordInterpretation(outcome string) {
	pm.interpretationsTotal.WithLabelValues(outcome).Inc()
}

// UpdateCatalog 更新schema目录指标，旧来源的表数量清零
func (pm *PrometheusMetrics) UpdateCatalog(source string, tables, columns int) {
	pm.catalogTables.Reset()
	pm.catalogTables.WithLabelValues(source).Set(float64(tables))
	pm.catalogColumns.Set(float64(columns))
	pm.catalogReloadsTotal.Inc()
}

// GetMetricsHandler 获取Prometheus指标端点处理器
func (pm *PrometheusMetrics) GetMetricsHandler() gin.HandlerFunc {
	h := promhttp.HandlerFor(pm.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// calculateRequestSize 计算请求大小
func calculateRequestSize(r *http.Request) int64 {
	size := int64(0)

	if r.ContentLength > 0 {
		size += r.ContentLength
	}

	// 计算请求头大小
	for name, values := range r.Header {
		size += int64(len(name))
		for _, value := range values {
			size += int64(len(value))
		}
	}

	size += int64(len(r.URL.String()))

	return size
}
