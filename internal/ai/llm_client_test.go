package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"nlquery-go/internal/config"
)

func newQwenTestCompleter(t *testing.T, url string) *QwenCompleter {
	t.Helper()
	cfg := config.QwenConfig{APIKey: "test-key", BaseURL: url, Model: "qwen-turbo"}
	return NewQwenCompleter(cfg, 0.1, 100, &http.Client{Timeout: 2 * time.Second}, zaptest.NewLogger(t))
}

func TestQwenCompleter_Complete(t *testing.T) {
	var received qwenRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output":{"choices":[{"message":{"role":"assistant","content":"  SELECT 1  "}}]},"request_id":"abc"}`))
	}))
	defer server.Close()

	c := newQwenTestCompleter(t, server.URL)
	text, err := c.Complete(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", text)

	assert.Equal(t, "qwen-turbo", received.Model)
	require.Len(t, received.Input.Messages, 2)
	assert.Equal(t, "system", received.Input.Messages[0].Role)
	assert.Equal(t, "user", received.Input.Messages[1].Content)
	assert.Equal(t, 100, received.Parameters.MaxTokens)
	assert.Equal(t, "message", received.Parameters.ResultFormat)
}

func TestQwenCompleter_TextOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":{"text":"解读内容"}}`))
	}))
	defer server.Close()

	text, err := newQwenTestCompleter(t, server.URL).Complete(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "解读内容", text)
}

func TestQwenCompleter_Errors(t *testing.T) {
	t.Run("HTTP错误", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":"InvalidApiKey"}`))
		}))
		defer server.Close()

		_, err := newQwenTestCompleter(t, server.URL).Complete(context.Background(), "sys", "user")
		var pe *ProviderError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, KindHTTP, pe.Kind)
		assert.Equal(t, http.StatusUnauthorized, pe.StatusCode)
		assert.Contains(t, pe.Error(), "InvalidApiKey")
		assert.False(t, IsTransportError(err))
	})

	t.Run("格式异常", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer server.Close()

		_, err := newQwenTestCompleter(t, server.URL).Complete(context.Background(), "sys", "user")
		var pe *ProviderError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, KindHTTP, pe.Kind)
	})

	t.Run("空结果", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"output":{"choices":[{"message":{"role":"assistant","content":"   "}}]}}`))
		}))
		defer server.Close()

		_, err := newQwenTestCompleter(t, server.URL).Complete(context.Background(), "sys", "user")
		assert.ErrorIs(t, err, ErrEmptyCompletion)
		var pe *ProviderError
		assert.False(t, errors.As(err, &pe), "空结果与网络和HTTP错误区分")
	})

	t.Run("网络错误", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := newQwenTestCompleter(t, url).Complete(context.Background(), "sys", "user")
		assert.True(t, IsTransportError(err))
	})
}

func TestLangChainCompleter_OpenAICompatible(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-test", body["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-test",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "SELECT * FROM users"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2}
		}`))
	}))
	defer server.Close()

	cfg := config.DefaultLLMConfig()
	cfg.Provider = config.ProviderOpenAI
	cfg.OpenAI = config.OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL, Model: "gpt-test"}

	completer, err := NewCompleter(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, config.ProviderOpenAI, completer.Provider())

	text, err := completer.Complete(context.Background(), "sys", "查询所有用户")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users", text)
}

func TestNewCompleter(t *testing.T) {
	t.Run("未启用", func(t *testing.T) {
		completer, err := NewCompleter(config.DefaultLLMConfig(), zaptest.NewLogger(t))
		assert.NoError(t, err)
		assert.Nil(t, completer)
	})

	t.Run("通义千问", func(t *testing.T) {
		cfg := config.DefaultLLMConfig()
		cfg.Provider = config.ProviderQwen
		cfg.Qwen.APIKey = "key"

		completer, err := NewCompleter(cfg, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.IsType(t, &QwenCompleter{}, completer)
	})

	t.Run("Ollama", func(t *testing.T) {
		cfg := config.DefaultLLMConfig()
		cfg.Provider = config.ProviderOllama

		completer, err := NewCompleter(cfg, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.Equal(t, config.ProviderOllama, completer.Provider())
	})

	t.Run("缺少密钥", func(t *testing.T) {
		cfg := config.DefaultLLMConfig()
		cfg.Provider = config.ProviderOpenAI

		_, err := NewCompleter(cfg, zaptest.NewLogger(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	})
}

func TestClassifyError(t *testing.T) {
	err := classifyError("openai", context.DeadlineExceeded)
	assert.True(t, IsTransportError(err))

	err = classifyError("openai", errors.New("API returned unexpected status code: 500"))
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindHTTP, pe.Kind)
}
