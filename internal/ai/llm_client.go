// 大模型客户端
// openai 与 ollama 基于 LangChainGo，qwen 直接调用 DashScope 原生接口

package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"nlquery-go/internal/config"
)

// Completer 文本补全接口：给定系统提示词和用户输入，返回补全文本
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Provider() string
}

// ErrEmptyCompletion 大模型返回内容为空
var ErrEmptyCompletion = errors.New("大模型返回内容为空")

// ErrorKind 调用失败的类别
type ErrorKind string

const (
	KindTransport ErrorKind = "transport" // 网络层失败：连接失败、超时
	KindHTTP      ErrorKind = "http"      // 收到响应但状态码或格式异常
)

// ProviderError 大模型接口调用失败
type ProviderError struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("调用%s接口失败 [%s %d]: %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("调用%s接口失败 [%s]: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsTransportError 判断是否为网络层失败
func IsTransportError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Kind == KindTransport
}

// classifyError 将底层错误归类为 ProviderError
func classifyError(provider string, err error) error {
	var (
		urlErr *url.Error
		netErr net.Error
	)
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &ProviderError{Provider: provider, Kind: KindTransport, Err: err}
	}
	return &ProviderError{Provider: provider, Kind: KindHTTP, Err: err}
}

// NewCompleter 根据配置创建补全客户端，未启用大模型时返回 nil
func NewCompleter(cfg *config.LLMConfig, logger *zap.Logger) (Completer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil || !cfg.Enabled() {
		return nil, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpConfig := DefaultHTTPClientConfig()
	httpConfig.Timeout = cfg.Timeout
	httpClient := NewHTTPClient(httpConfig)

	switch cfg.Provider {
	case config.ProviderOpenAI:
		model, err := createOpenAIClient(cfg.OpenAI, httpClient)
		if err != nil {
			return nil, fmt.Errorf("创建OpenAI客户端失败: %w", err)
		}
		return NewLangChainCompleter(config.ProviderOpenAI, model, cfg, logger), nil
	case config.ProviderOllama:
		model, err := createOllamaClient(cfg.Ollama, httpClient)
		if err != nil {
			return nil, fmt.Errorf("创建Ollama客户端失败: %w", err)
		}
		return NewLangChainCompleter(config.ProviderOllama, model, cfg, logger), nil
	case config.ProviderQwen:
		return NewQwenCompleter(cfg.Qwen, cfg.Temperature, cfg.MaxTokens, httpClient, logger), nil
	default:
		return nil, fmt.Errorf("不支持的大模型提供商: %s，支持: openai, qwen, ollama", cfg.Provider)
	}
}

// createOpenAIClient 创建OpenAI兼容客户端
func createOpenAIClient(cfg config.OpenAIConfig, httpClient *http.Client) (llms.Model, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
		openai.WithHTTPClient(httpClient),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	return openai.New(opts...)
}

// createOllamaClient 创建Ollama客户端
func createOllamaClient(cfg config.OllamaConfig, httpClient *http.Client) (llms.Model, error) {
	opts := []ollama.Option{
		ollama.WithModel(cfg.Model),
		ollama.WithHTTPClient(httpClient),
	}
	if cfg.ServerURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.ServerURL))
	}
	return ollama.New(opts...)
}

// LangChainCompleter 基于 llms.Model 的补全客户端
type LangChainCompleter struct {
	provider    string
	model       llms.Model
	temperature float64
	maxTokens   int
	logger      *zap.Logger
}

// NewLangChainCompleter 包装一个 LangChainGo 模型
func NewLangChainCompleter(provider string, model llms.Model, cfg *config.LLMConfig, logger *zap.Logger) *LangChainCompleter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LangChainCompleter{
		provider:    provider,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger.Named("llm"),
	}
}

// Provider 提供商名称
func (c *LangChainCompleter) Provider() string { return c.provider }

// Complete 实现 Completer
func (c *LangChainCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	resp, err := c.model.GenerateContent(ctx, messages,
		llms.WithTemperature(c.temperature),
		llms.WithMaxTokens(c.maxTokens),
	)
	if err != nil {
		return "", classifyError(c.provider, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	content := strings.TrimSpace(resp.Choices[0].Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}

	c.logger.Debug("大模型调用完成",
		zap.String("provider", c.provider),
		zap.Int("length", len(content)),
	)
	return content, nil
}
