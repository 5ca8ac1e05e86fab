package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Interpreter 查询结果解读
type Interpreter interface {
	Interpret(ctx context.Context, query string, columns []string, rows []map[string]any) (string, error)
}

// ResultInterpreter 调用大模型生成结果解读
type ResultInterpreter struct {
	completer Completer
	maxRows   int
	logger    *zap.Logger
}

// NewResultInterpreter 创建结果解读器
func NewResultInterpreter(completer Completer, logger *zap.Logger) *ResultInterpreter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultInterpreter{
		completer: completer,
		maxRows:   DefaultPromptRows,
		logger:    logger.Named("interpreter"),
	}
}

// Interpret 实现 Interpreter，提示词中最多包含前20行数据
func (r *ResultInterpreter) Interpret(ctx context.Context, query string, columns []string, rows []map[string]any) (string, error) {
	data := FormatResultForPrompt(columns, rows, r.maxRows)

	prompt, err := InterpretationUserPrompt(query, data)
	if err != nil {
		return "", fmt.Errorf("构建解读提示词失败: %w", err)
	}

	text, err := r.completer.Complete(ctx, InterpretationSystemPrompt, prompt)
	if err != nil {
		return "", err
	}

	r.logger.Debug("结果解读完成",
		zap.String("provider", r.completer.Provider()),
		zap.Int("rows", len(rows)),
	)
	return text, nil
}
