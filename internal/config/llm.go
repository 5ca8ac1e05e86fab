package config

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// 大模型提供商
const (
	ProviderOpenAI = "openai"
	ProviderQwen   = "qwen"
	ProviderOllama = "ollama"
)

// LLMConfig 大模型服务配置
// Provider 为空时不启用大模型，结果解读与 llm 翻译模式均不可用
type LLMConfig struct {
	Provider string `yaml:"provider"`

	OpenAI OpenAIConfig `yaml:"openai"`
	Qwen   QwenConfig   `yaml:"qwen"`
	Ollama OllamaConfig `yaml:"ollama"`

	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// OpenAIConfig OpenAI兼容接口配置
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// QwenConfig 通义千问 DashScope 配置
type QwenConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// OllamaConfig 本地Ollama配置
type OllamaConfig struct {
	ServerURL string `yaml:"server_url"`
	Model     string `yaml:"model"`
}

// DefaultLLMConfig 创建默认大模型配置
func DefaultLLMConfig() *LLMConfig {
	return &LLMConfig{
		OpenAI: OpenAIConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-3.5-turbo",
		},
		Qwen: QwenConfig{
			BaseURL: "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation",
			Model:   "qwen-turbo",
		},
		Ollama: OllamaConfig{
			ServerURL: "http://localhost:11434",
			Model:     "qwen2.5:7b",
		},
		Temperature: 0.1,
		MaxTokens:   1000,
		Timeout:     30 * time.Second,
	}
}

// Enabled 是否配置了大模型提供商
func (c *LLMConfig) Enabled() bool {
	return c.Provider != ""
}

// Validate 验证大模型配置
func (c *LLMConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}

	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("未配置OPENAI_API_KEY，请在环境变量中设置")
		}
		if c.OpenAI.Model == "" {
			return fmt.Errorf("OpenAI模型名称不能为空")
		}
	case ProviderQwen:
		if c.Qwen.APIKey == "" {
			return fmt.Errorf("未配置DASHSCOPE_API_KEY，请在环境变量中设置")
		}
		if c.Qwen.Model == "" {
			return fmt.Errorf("通义千问模型名称不能为空")
		}
	case ProviderOllama:
		if c.Ollama.Model == "" {
			return fmt.Errorf("Ollama模型名称不能为空")
		}
	default:
		return fmt.Errorf("不支持的大模型提供商: %s，支持: openai, qwen, ollama", c.Provider)
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature必须在0-2之间，当前值: %.2f", c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens必须大于0，当前值: %d", c.MaxTokens)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("大模型调用超时必须大于0，当前值: %v", c.Timeout)
	}
	return nil
}

// LogConfig 记录大模型配置信息（不包含密钥）
func (c *LLMConfig) LogConfig(logger *zap.Logger) {
	if !c.Enabled() {
		logger.Info("大模型服务未启用")
		return
	}

	model := ""
	switch c.Provider {
	case ProviderOpenAI:
		model = c.OpenAI.Model
	case ProviderQwen:
		model = c.Qwen.Model
	case ProviderOllama:
		model = c.Ollama.Model
	}

	logger.Info("大模型服务配置",
		zap.String("provider", c.Provider),
		zap.String("model", model),
		zap.Float64("temperature", c.Temperature),
		zap.Int("max_tokens", c.MaxTokens),
		zap.Duration("timeout", c.Timeout),
	)
}
