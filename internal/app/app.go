// Package app 按配置组装存储、schema目录、翻译器、服务与HTTP路由
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nlquery-go/internal/ai"
	"nlquery-go/internal/config"
	"nlquery-go/internal/handler"
	"nlquery-go/internal/metrics"
	"nlquery-go/internal/middleware"
	"nlquery-go/internal/schema"
	"nlquery-go/internal/service"
)

// App 组装完成的应用
type App struct {
	config  *config.AppConfig
	logger  *zap.Logger
	appInfo *config.AppInfo

	storage *Storage
	catalog *schema.Catalog
	metrics *metrics.PrometheusMetrics

	translator ai.Translator
	queries    *service.QueryService
	reports    *service.ReportService
	health     *service.HealthService

	router *gin.Engine
}

// Option 应用选项
type Option func(*options)

type options struct {
	completer    ai.Completer
	hasCompleter bool
	appInfo      *config.AppInfo
}

// WithCompleter 使用指定的大模型客户端代替按配置创建的客户端
func WithCompleter(c ai.Completer) Option {
	return func(o *options) {
		o.completer = c
		o.hasCompleter = true
	}
}

// WithAppInfo 设置版本信息
func WithAppInfo(info *config.AppInfo) Option {
	return func(o *options) { o.appInfo = info }
}

// New 打开存储并组装应用
// AutoMigrate 为 true 时先执行迁移，随后加载一次schema快照
func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.appInfo == nil {
		o.appInfo = config.DefaultAppInfo()
	}

	storage, err := OpenStorage(ctx, &cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := storage.Migrate(); err != nil {
			storage.Close()
			return nil, fmt.Errorf("执行数据库迁移失败: %w", err)
		}
		logger.Info("数据库迁移完成", zap.String("driver", cfg.Database.Driver))
	}

	a, err := build(ctx, cfg, storage, logger, o)
	if err != nil {
		storage.Close()
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, cfg *config.AppConfig, storage *Storage, logger *zap.Logger, o *options) (*App, error) {
	a := &App{
		config:  cfg,
		logger:  logger,
		appInfo: o.appInfo,
		storage: storage,
	}
	dialect := storage.Repo.Dialect()

	metricsConfig := metrics.DefaultMetricsConfig()
	metricsConfig.ServiceName = o.appInfo.Name
	metricsConfig.ServiceVersion = o.appInfo.Version
	a.metrics = metrics.NewPrometheusMetrics(metricsConfig, logger)

	a.catalog = schema.NewCatalog(storage.Repo.SchemaRepo(), logger.Named("schema"),
		schema.WithLoadHook(func(snap *schema.Snapshot) {
			a.metrics.UpdateCatalog(string(snap.Source()), snap.TableCount(), snap.ColumnCount())
		}),
	)
	if _, err := a.catalog.Reload(ctx); err != nil {
		return nil, fmt.Errorf("加载schema失败: %w", err)
	}

	completer := o.completer
	if !o.hasCompleter {
		var err error
		completer, err = ai.NewCompleter(&cfg.LLM, logger.Named("llm"))
		if err != nil {
			return nil, fmt.Errorf("创建大模型客户端失败: %w", err)
		}
	}
	cfg.LLM.LogConfig(logger)

	translator, err := NewTranslator(cfg.Query.Translator, dialect, completer, logger)
	if err != nil {
		return nil, err
	}
	a.translator = translator

	executor := service.NewSQLExecutorWithConfig(storage.Repo.QueryExecutor(), &service.SQLExecutorConfig{
		QueryTimeout: cfg.Query.Timeout,
		MaxRows:      cfg.Query.MaxResultSize,
		Dialect:      dialect,
	}, logger)

	queryOpts := []service.QueryServiceOption{
		service.WithQueryMetrics(a.metrics),
		service.WithQueryConfig(service.QueryServiceConfig{
			InterpretByDefault: cfg.Query.Interpret,
			InterpretTimeout:   cfg.LLM.Timeout,
		}),
	}
	llmProvider := ""
	if completer != nil {
		llmProvider = completer.Provider()
		queryOpts = append(queryOpts, service.WithInterpreter(ai.NewResultInterpreter(completer, logger.Named("interpreter"))))
	}

	a.queries = service.NewQueryService(a.catalog, translator, executor, logger, queryOpts...)
	a.reports = service.NewReportService(storage.Repo.ReportRepo(), executor, dialect, logger, a.metrics)
	a.health = service.NewHealthService(storage.Repo, a.catalog, llmProvider, o.appInfo, logger)

	a.router = a.newRouter()

	logger.Info("应用组装完成",
		zap.String("driver", cfg.Database.Driver),
		zap.String("translator", translator.Name()),
		zap.Bool("llm_enabled", completer != nil),
	)
	return a, nil
}

// NewTranslator 按翻译模式创建翻译器
func NewTranslator(mode, dialect string, completer ai.Completer, logger *zap.Logger) (ai.Translator, error) {
	switch mode {
	case "", config.TranslatorRule:
		return ai.NewRuleTranslator(dialect, logger.Named("translator")), nil
	case config.TranslatorLLM:
		if completer == nil {
			return nil, fmt.Errorf("llm翻译模式需要配置大模型提供商")
		}
		return ai.NewLLMTranslator(completer, dialect, logger.Named("translator")), nil
	default:
		return nil, fmt.Errorf("不支持的翻译模式: %s", mode)
	}
}

func (a *App) newRouter() *gin.Engine {
	switch a.config.Server.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(a.config.Server.Mode)
	}
	r := gin.New()

	mwConfig := middleware.DefaultMiddlewareConfig(a.logger)
	if a.config.Server.RateLimitRPS > 0 {
		mwConfig.RateLimit.RequestsPerSecond = a.config.Server.RateLimitRPS
		mwConfig.RateLimit.Burst = a.config.Server.RateLimitBurst
	} else {
		mwConfig.RateLimit.Enabled = false
	}
	if len(a.config.Server.AllowOrigins) > 0 {
		mwConfig.CORS.AllowOrigins = a.config.Server.AllowOrigins
	}

	handler.SetupRoutes(r, &handler.RouterConfig{
		QueryHandler:  handler.NewQueryHandler(a.queries, a.logger),
		SchemaHandler: handler.NewSchemaHandler(a.catalog, a.logger),
		ReportHandler: handler.NewReportHandler(a.reports, a.logger),
		HealthHandler: handler.NewHealthHandler(a.health),
		Metrics:       a.metrics,
		Middleware:    mwConfig,
	})
	return r
}

// Handler 返回HTTP处理器
func (a *App) Handler() http.Handler { return a.router }

// Catalog 返回schema目录
func (a *App) Catalog() *schema.Catalog { return a.catalog }

// Queries 返回自然语言查询服务
func (a *App) Queries() *service.QueryService { return a.queries }

// Reports 返回报表服务
func (a *App) Reports() *service.ReportService { return a.reports }

// Health 返回健康检查服务
func (a *App) Health() *service.HealthService { return a.health }

// Metrics 返回指标收集器
func (a *App) Metrics() *metrics.PrometheusMetrics { return a.metrics }

// Storage 返回底层存储
func (a *App) Storage() *Storage { return a.storage }

// Close 释放数据库连接
func (a *App) Close() {
	a.storage.Close()
	a.logger.Info("数据库连接已关闭")
}
