package ai

import (
	"context"
	"errors"

	"nlquery-go/internal/schema"
)

// ErrNoTableRecognized 查询文本中没有可识别的表名
var ErrNoTableRecognized = errors.New("无法识别要查询的表，请在查询中包含表名")

// ErrEmptyQuery 查询文本为空
var ErrEmptyQuery = errors.New("查询内容不能为空")

// Translator 自然语言到SQL的翻译器
type Translator interface {
	// Translate 将文本翻译为一条SELECT语句
	Translate(ctx context.Context, text string, snap *schema.Snapshot) (string, error)
	// Name 翻译器名称，用于日志和指标
	Name() string
}
