package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"nlquery-go/internal/config"
)

// DashScope 文本生成接口
type qwenMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type qwenRequest struct {
	Model string `json:"model"`
	Input struct {
		Messages []qwenMessage `json:"messages"`
	} `json:"input"`
	Parameters qwenParameters `json:"parameters"`
}

type qwenParameters struct {
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens"`
	ResultFormat string  `json:"result_format"`
}

type qwenResponse struct {
	Output struct {
		Text    string `json:"text"`
		Choices []struct {
			Message qwenMessage `json:"message"`
		} `json:"choices"`
	} `json:"output"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// 读取错误响应体的上限
const maxErrorBody = 4 << 10

// QwenCompleter 通义千问补全客户端
type QwenCompleter struct {
	apiKey      string
	endpoint    string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
	logger      *zap.Logger
}

// NewQwenCompleter 创建通义千问客户端
func NewQwenCompleter(cfg config.QwenConfig, temperature float64, maxTokens int, client *http.Client, logger *zap.Logger) *QwenCompleter {
	if client == nil {
		client = NewHTTPClient(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QwenCompleter{
		apiKey:      cfg.APIKey,
		endpoint:    cfg.BaseURL,
		model:       cfg.Model,
		temperature: temperature,
		maxTokens:   maxTokens,
		client:      client,
		logger:      logger.Named("llm"),
	}
}

// Provider 提供商名称
func (c *QwenCompleter) Provider() string { return config.ProviderQwen }

// Complete 实现 Completer
func (c *QwenCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := qwenRequest{Model: c.model}
	reqBody.Input.Messages = []qwenMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}
	reqBody.Parameters = qwenParameters{
		Temperature:  c.temperature,
		MaxTokens:    c.maxTokens,
		ResultFormat: "message",
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("序列化请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &ProviderError{Provider: c.Provider(), Kind: KindTransport, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: c.Provider(), Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &ProviderError{
			Provider:   c.Provider(),
			Kind:       KindHTTP,
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(body))),
		}
	}

	var out qwenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &ProviderError{
			Provider:   c.Provider(),
			Kind:       KindHTTP,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("API返回格式异常: %w", err),
		}
	}

	content := out.Output.Text
	if len(out.Output.Choices) > 0 {
		content = out.Output.Choices[0].Message.Content
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyCompletion
	}

	c.logger.Debug("大模型调用完成",
		zap.String("provider", c.Provider()),
		zap.String("request_id", out.RequestID),
		zap.Int("length", len(content)),
	)
	return content, nil
}
