package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"nlquery-go/internal/repository"
	"nlquery-go/internal/schema"
)

func TestLLMTranslator_Translate(t *testing.T) {
	completer := new(MockCompleter)
	completer.On("Complete", mock.Anything,
		mock.MatchedBy(func(system string) bool { return strings.Contains(system, "表名: users") }),
		"查询北京的用户",
	).Return("```sql\nSELECT * FROM users WHERE city = '北京'\n```", nil)

	translator := NewLLMTranslator(completer, repository.DialectSQLite, zaptest.NewLogger(t))
	assert.Equal(t, "llm", translator.Name())

	sql, err := translator.Translate(context.Background(), "  查询北京的用户 ", schema.DefaultSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE city = '北京'", sql)
	completer.AssertExpectations(t)
}

func TestLLMTranslator_Errors(t *testing.T) {
	completer := new(MockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything, "空回复").Return("```sql\n```", nil)
	completer.On("Complete", mock.Anything, mock.Anything, "失败").Return("", ErrEmptyCompletion)

	translator := NewLLMTranslator(completer, repository.DialectMySQL, zaptest.NewLogger(t))

	_, err := translator.Translate(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = translator.Translate(context.Background(), "空回复", nil)
	assert.ErrorIs(t, err, ErrEmptyCompletion)

	_, err = translator.Translate(context.Background(), "失败", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NL2SQL转换失败")
}
