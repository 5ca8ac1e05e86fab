package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// 翻译器模式
const (
	TranslatorRule = "rule" // 基于规则的离线翻译
	TranslatorLLM  = "llm"  // 调用大模型生成SQL
)

// AppConfig 应用总配置
// 加载顺序：默认值 -> YAML文件 -> 环境变量
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Query    QueryConfig    `yaml:"query"`
	LLM      LLMConfig      `yaml:"llm"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Mode            string        `yaml:"mode"` // gin 模式：debug / release / test
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	RateLimitRPS   int      `yaml:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst"`
	AllowOrigins   []string `yaml:"allow_origins"`
}

// QueryConfig 查询执行配置
type QueryConfig struct {
	Translator    string        `yaml:"translator"`      // rule / llm
	MaxResultSize int           `yaml:"max_result_size"` // 结果集行数上限，超出部分静默丢弃
	Timeout       time.Duration `yaml:"timeout"`         // 单条查询超时
	Interpret     bool          `yaml:"interpret"`       // 请求未指定时是否生成结果解读
}

// LogConfig 日志配置
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Address 返回监听地址
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DefaultAppConfig 返回默认配置
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:            8080,
			Mode:            "release",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimitRPS:    100,
			RateLimitBurst:  200,
			AllowOrigins:    []string{"*"},
		},
		Database: *DefaultDatabaseConfig(),
		Query: QueryConfig{
			Translator:    TranslatorRule,
			MaxResultSize: 10000,
			Timeout:       30 * time.Second,
		},
		LLM: *DefaultLLMConfig(),
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load 加载配置文件并应用环境变量覆盖
// path 为空时只使用默认值和环境变量
func Load(path string) (*AppConfig, error) {
	cfg := DefaultAppConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv 使用环境变量覆盖配置项
func (c *AppConfig) ApplyEnv() error {
	var errs []error

	envString("SERVER_HOST", &c.Server.Host)
	errs = append(errs, envInt("SERVER_PORT", &c.Server.Port))
	envString("GIN_MODE", &c.Server.Mode)

	envString("DB_DRIVER", &c.Database.Driver)
	envString("DB_PATH", &c.Database.Path)
	envString("DB_DSN", &c.Database.DSN)
	envString("DB_HOST", &c.Database.Host)
	errs = append(errs, envInt("DB_PORT", &c.Database.Port))
	envString("DB_USER", &c.Database.User)
	envString("DB_PASSWORD", &c.Database.Password)
	envString("DB_NAME", &c.Database.Database)
	envString("DB_SSL_MODE", &c.Database.SSLMode)
	envString("DB_LOG_LEVEL", &c.Database.LogLevel)

	envString("TRANSLATOR_MODE", &c.Query.Translator)
	errs = append(errs, envInt("MAX_RESULT_SIZE", &c.Query.MaxResultSize))
	errs = append(errs, envDuration("QUERY_TIMEOUT", &c.Query.Timeout))
	errs = append(errs, envBool("QUERY_INTERPRET", &c.Query.Interpret))

	envString("LLM_PROVIDER", &c.LLM.Provider)
	c.LLM.Provider = strings.ToLower(c.LLM.Provider)
	envString("OPENAI_API_KEY", &c.LLM.OpenAI.APIKey)
	envString("OPENAI_BASE_URL", &c.LLM.OpenAI.BaseURL)
	envString("OPENAI_MODEL", &c.LLM.OpenAI.Model)
	envString("DASHSCOPE_API_KEY", &c.LLM.Qwen.APIKey)
	envString("QWEN_MODEL", &c.LLM.Qwen.Model)
	envString("OLLAMA_SERVER_URL", &c.LLM.Ollama.ServerURL)
	envString("OLLAMA_MODEL", &c.LLM.Ollama.Model)
	errs = append(errs, envFloat("OPENAI_TEMPERATURE", &c.LLM.Temperature))
	errs = append(errs, envInt("OPENAI_MAX_TOKENS", &c.LLM.MaxTokens))
	errs = append(errs, envDuration("LLM_TIMEOUT", &c.LLM.Timeout))

	envString("LOG_LEVEL", &c.Log.Level)

	return errors.Join(errs...)
}

// Validate 验证配置
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("服务端口必须在1-65535范围内")
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("数据库配置无效: %w", err)
	}
	switch c.Query.Translator {
	case TranslatorRule:
	case TranslatorLLM:
		if !c.LLM.Enabled() {
			return fmt.Errorf("llm翻译模式需要配置大模型提供商")
		}
	default:
		return fmt.Errorf("不支持的翻译模式: %s", c.Query.Translator)
	}
	if c.Query.MaxResultSize <= 0 {
		return fmt.Errorf("结果集行数上限必须大于0")
	}
	if c.Query.Timeout <= 0 {
		return fmt.Errorf("查询超时必须大于0")
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("大模型配置无效: %w", err)
	}
	return nil
}

// BuildLogger 根据日志配置创建zap日志器
func (c *LogConfig) BuildLogger() (*zap.Logger, error) {
	var zc zap.Config
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}

	if c.Level != "" {
		level, err := zapcore.ParseLevel(c.Level)
		if err != nil {
			return nil, fmt.Errorf("无效的日志级别 %q: %w", c.Level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}

	return zc.Build()
}

func envString(key string, target *string) {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		*target = value
	}
}

func envInt(key string, target *int) error {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("环境变量 %s 不是有效整数: %w", key, err)
	}
	*target = n
	return nil
}

func envFloat(key string, target *float64) error {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("环境变量 %s 不是有效数字: %w", key, err)
	}
	*target = f
	return nil
}

func envBool(key string, target *bool) error {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("环境变量 %s 不是有效布尔值: %w", key, err)
	}
	*target = b
	return nil
}

// envDuration 支持 "30s" 形式，纯数字按秒处理
func envDuration(key string, target *time.Duration) error {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		*target = time.Duration(seconds) * time.Second
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("环境变量 %s 不是有效时长: %w", key, err)
	}
	*target = d
	return nil
}
