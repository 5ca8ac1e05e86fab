package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestResultInterpreter_Interpret(t *testing.T) {
	completer := new(MockCompleter)
	completer.On("Complete", mock.Anything, InterpretationSystemPrompt, mock.MatchedBy(func(prompt string) bool {
		return strings.HasPrefix(prompt, "用户查询：统计每个城市的用户数量\n\n查询结果数据：") &&
			strings.Contains(prompt, "北京 | 2")
	})).Return("北京用户最多。", nil)

	interpreter := NewResultInterpreter(completer, zaptest.NewLogger(t))
	text, err := interpreter.Interpret(context.Background(), "统计每个城市的用户数量",
		[]string{"city", "count"},
		[]map[string]any{{"city": "北京", "count": 2}},
	)
	require.NoError(t, err)
	assert.Equal(t, "北京用户最多。", text)
	completer.AssertExpectations(t)
}

func TestResultInterpreter_Error(t *testing.T) {
	providerErr := &ProviderError{Provider: "mock", Kind: KindTransport, Err: errors.New("dial tcp: refused")}
	completer := new(MockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", providerErr)

	_, err := NewResultInterpreter(completer, zaptest.NewLogger(t)).
		Interpret(context.Background(), "q", []string{"a"}, []map[string]any{{"a": 1}})
	assert.True(t, IsTransportError(err))
}
