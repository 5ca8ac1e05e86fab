package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"nlquery-go/internal/schema"
)

var (
	fenceStart = regexp.MustCompile("(?i)^```sql\\s*")
	fenceAny   = regexp.MustCompile("^```\\s*")
	fenceEnd   = regexp.MustCompile("\\s*```\\s*$")
)

// CleanSQLResponse 去除模型回复中的markdown代码块标记
func CleanSQLResponse(content string) string {
	sql := strings.TrimSpace(content)
	sql = fenceStart.ReplaceAllString(sql, "")
	sql = fenceAny.ReplaceAllString(sql, "")
	sql = fenceEnd.ReplaceAllString(sql, "")
	return strings.TrimSpace(sql)
}

// LLMTranslator 调用大模型生成SQL
// 生成结果与规则翻译一样需要经过安全校验
type LLMTranslator struct {
	completer Completer
	dialect   string
	logger    *zap.Logger
}

// NewLLMTranslator 创建大模型翻译器
func NewLLMTranslator(completer Completer, dialect string, logger *zap.Logger) *LLMTranslator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMTranslator{
		completer: completer,
		dialect:   dialect,
		logger:    logger.Named("llm-translator"),
	}
}

// Name 翻译器名称
func (t *LLMTranslator) Name() string { return "llm" }

// Translate 实现 Translator
func (t *LLMTranslator) Translate(ctx context.Context, text string, snap *schema.Snapshot) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyQuery
	}
	if snap == nil {
		snap = schema.DefaultSnapshot()
	}

	systemPrompt, err := SQLSystemPrompt(snap, t.dialect)
	if err != nil {
		return "", fmt.Errorf("构建SQL提示词失败: %w", err)
	}

	content, err := t.completer.Complete(ctx, systemPrompt, text)
	if err != nil {
		return "", fmt.Errorf("NL2SQL转换失败: %w", err)
	}

	sql := CleanSQLResponse(content)
	if sql == "" {
		return "", fmt.Errorf("NL2SQL转换失败: %w", ErrEmptyCompletion)
	}

	t.logger.Debug("大模型翻译完成",
		zap.String("provider", t.completer.Provider()),
		zap.String("text", text),
		zap.String("sql", sql),
	)
	return sql, nil
}
