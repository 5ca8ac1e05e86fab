package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"nlquery-go/internal/ai"
	"nlquery-go/internal/repository"
	"nlquery-go/internal/schema"
)

// 查询结果消息
const (
	MsgQuerySuccess = "查询成功"
	MsgEmptyQuery   = "查询内容不能为空"
)

// QueryRequest 自然语言查询请求
type QueryRequest struct {
	Query   string `json:"query"`
	ShowSQL bool   `json:"showSql"`
	// Interpret 未指定时使用服务默认值
	Interpret *bool `json:"interpret,omitempty"`
}

// QueryResult 查询结果，失败时 data 与 columns 为空数组而不是 null
type QueryResult struct {
	Success        bool             `json:"success"`
	Data           []map[string]any `json:"data"`
	Columns        []string         `json:"columns"`
	Message        string           `json:"message"`
	SQL            string           `json:"sql,omitempty"`
	Interpretation string           `json:"interpretation,omitempty"`

	// Err 失败原因，供传输层映射状态码
	Err error `json:"-"`
}

// TranslateResult SQL预览结果
type TranslateResult struct {
	Success bool   `json:"success"`
	SQL     string `json:"sql,omitempty"`
	Message string `json:"message"`

	Err error `json:"-"`
}

// failedResult 构造失败结果
func failedResult(err error) *QueryResult {
	return &QueryResult{
		Success: false,
		Data:    []map[string]any{},
		Columns: []string{},
		Message: err.Error(),
		Err:     err,
	}
}

// successResult 由结果集构造成功结果，列名取自第一行（无数据时为空）
func successResult(rs *repository.ResultSet) *QueryResult {
	result := &QueryResult{
		Success: true,
		Data:    []map[string]any{},
		Columns: []string{},
		Message: MsgQuerySuccess,
	}
	if rs != nil && len(rs.Rows) > 0 {
		result.Data = rs.Rows
		result.Columns = rs.Columns
	}
	return result
}

// SnapshotProvider 提供当前schema快照
type SnapshotProvider interface {
	Snapshot() *schema.Snapshot
}

// QueryMetrics 查询相关指标
type QueryMetrics interface {
	RecordQuery(kind, outcome string, duration time.Duration)
	RecordTranslation(translator, outcome string)
	RecordRejection(reason string)
	RecordInterpretation(outcome string)
}

type noopMetrics struct{}

func (noopMetrics) RecordQuery(string, string, time.Duration) {}
func (noopMetrics) RecordTranslation(string, string)          {}
func (noopMetrics) RecordRejection(string)                    {}
func (noopMetrics) RecordInterpretation(string)               {}

// 指标中的结果标签
const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid"
	OutcomeUntranslate = "no_table"
	OutcomeRejected    = "rejected"
	OutcomeError       = "error"
)

// outcomeOf 将错误映射为指标标签
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrConfiguration), errors.Is(err, ai.ErrEmptyQuery):
		return OutcomeInvalid
	case errors.Is(err, ai.ErrNoTableRecognized):
		return OutcomeUntranslate
	case IsSQLRejected(err):
		return OutcomeRejected
	default:
		return OutcomeError
	}
}

// QueryServiceConfig 查询服务配置
type QueryServiceConfig struct {
	InterpretByDefault bool          // 请求未指定时是否生成解读
	InterpretTimeout   time.Duration // 解读调用超时，默认30秒
}

// QueryService 自然语言查询编排：翻译 -> 校验 -> 执行 -> 结果整形 -> 可选解读
type QueryService struct {
	catalog     SnapshotProvider
	translator  ai.Translator
	validator   *SQLSecurityValidator
	executor    *SQLExecutor
	interpreter ai.Interpreter
	metrics     QueryMetrics
	config      QueryServiceConfig
	logger      *zap.Logger
}

// QueryServiceOption 查询服务选项
type QueryServiceOption func(*QueryService)

// WithInterpreter 设置结果解读器
func WithInterpreter(interpreter ai.Interpreter) QueryServiceOption {
	return func(s *QueryService) { s.interpreter = interpreter }
}

// WithQueryMetrics 设置指标收集器
func WithQueryMetrics(m QueryMetrics) QueryServiceOption {
	return func(s *QueryService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithQueryConfig 设置查询服务配置
func WithQueryConfig(cfg QueryServiceConfig) QueryServiceOption {
	return func(s *QueryService) { s.config = cfg }
}

// NewQueryService 创建查询服务
func NewQueryService(
	catalog SnapshotProvider,
	translator ai.Translator,
	executor *SQLExecutor,
	logger *zap.Logger,
	opts ...QueryServiceOption,
) *QueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &QueryService{
		catalog:    catalog,
		translator: translator,
		validator:  NewSQLSecurityValidator(logger),
		executor:   executor,
		metrics:    noopMetrics{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.config.InterpretTimeout <= 0 {
		s.config.InterpretTimeout = 30 * time.Second
	}
	return s
}

func flag(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// translate 翻译并校验，返回可执行的SQL
func (s *QueryService) translate(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", configErrorf(MsgEmptyQuery)
	}

	sql, err := s.translator.Translate(ctx, text, s.catalog.Snapshot())
	s.metrics.RecordTranslation(s.translator.Name(), outcomeOf(err))
	if err != nil {
		return "", err
	}

	sql = NormalizeSQL(sql)
	if err := s.validator.Validate(sql); err != nil {
		return "", err
	}
	return sql, nil
}

// Translate 只翻译不执行
func (s *QueryService) Translate(ctx context.Context, text string) *TranslateResult {
	sql, err := s.translate(ctx, text)
	if err != nil {
		recordRejection(s.metrics, err)
		return &TranslateResult{Success: false, Message: err.Error(), Err: err}
	}
	return &TranslateResult{Success: true, SQL: sql, Message: "翻译成功"}
}

// ExecuteQuery 执行自然语言查询，所有错误都转换为失败结果
func (s *QueryService) ExecuteQuery(ctx context.Context, req QueryRequest) *QueryResult {
	start := time.Now()

	result, sql, err := s.execute(ctx, req)
	duration := time.Since(start)
	s.metrics.RecordQuery("natural_language", outcomeOf(err), duration)

	if err != nil {
		recordRejection(s.metrics, err)
		s.logger.Warn("自然语言查询失败",
			zap.String("query", req.Query),
			zap.String("sql", sql),
			zap.Error(err),
			zap.Duration("duration", duration),
		)
		return failedResult(err)
	}

	s.logger.Info("自然语言查询成功",
		zap.String("query", req.Query),
		zap.String("sql", sql),
		zap.Int("rows", len(result.Data)),
		zap.Duration("duration", duration),
	)
	return result
}

func (s *QueryService) execute(ctx context.Context, req QueryRequest) (*QueryResult, string, error) {
	sql, err := s.translate(ctx, req.Query)
	if err != nil {
		return nil, sql, err
	}

	rs, err := s.executor.Execute(ctx, sql)
	if err != nil {
		return nil, sql, err
	}

	result := successResult(rs)
	if req.ShowSQL {
		result.SQL = sql
	}

	if len(result.Data) > 0 && flag(req.Interpret, s.config.InterpretByDefault) && s.interpreter != nil {
		result.Interpretation = s.interpret(ctx, req.Query, result)
	}
	return result, sql, nil
}

// interpret 生成结果解读，失败时只记录日志并返回空字符串
func (s *QueryService) interpret(ctx context.Context, query string, result *QueryResult) string {
	interpretCtx, cancel := context.WithTimeout(ctx, s.config.InterpretTimeout)
	defer cancel()

	text, err := s.interpreter.Interpret(interpretCtx, query, result.Columns, result.Data)
	if err != nil {
		s.metrics.RecordInterpretation(OutcomeError)
		s.logger.Warn("结果解读失败", zap.String("query", query), zap.Error(err))
		return ""
	}
	s.metrics.RecordInterpretation(OutcomeSuccess)
	return text
}

// recordRejection SQL被拒绝时按原因计数
func recordRejection(m QueryMetrics, err error) {
	var rejected *SQLRejectedError
	if errors.As(err, &rejected) {
		m.RecordRejection(string(rejected.Reason))
	}
}
