package ai

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"nlquery-go/internal/schema"
)

// Translation 规则翻译的结果及命中的规则
type Translation struct {
	SQL   string   `json:"sql"`
	Table string   `json:"table"`
	Rules []string `json:"rules"`
}

// RuleTranslator 基于关键词规则的离线翻译器
// 纯函数实现，不访问数据库，可并发使用
type RuleTranslator struct {
	dialect Dialect
	logger  *zap.Logger
}

// NewRuleTranslator 创建规则翻译器，dialect 决定日期表达式的写法
func NewRuleTranslator(dialect string, logger *zap.Logger) *RuleTranslator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RuleTranslator{
		dialect: DialectFor(dialect),
		logger:  logger.Named("rule-translator"),
	}
}

// Name 翻译器名称
func (t *RuleTranslator) Name() string { return "rule" }

// Translate 实现 Translator
func (t *RuleTranslator) Translate(_ context.Context, text string, snap *schema.Snapshot) (string, error) {
	tr, err := t.Explain(text, snap)
	if err != nil {
		return "", err
	}
	return tr.SQL, nil
}

// Explain 翻译并返回每个子句对应的规则名
func (t *RuleTranslator) Explain(text string, snap *schema.Snapshot) (*Translation, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyQuery
	}
	if snap == nil {
		snap = schema.DefaultSnapshot()
	}

	table, ok := snap.ResolveTable(text)
	if !ok {
		return nil, ErrNoTableRecognized
	}

	in := &ruleInput{
		text:    text,
		table:   table,
		columns: snap.Mapping().ColumnLookup(table),
		dialect: t.dialect,
	}
	tr := &Translation{Table: table}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	for _, r := range projectionRules {
		if r.match(in) {
			sb.WriteString(r.build(in))
			tr.Rules = append(tr.Rules, r.name)
			break
		}
	}
	sb.WriteString(" FROM ")
	sb.WriteString(table)

	var conds []string
	for _, r := range filterRules {
		if !r.match(in) {
			continue
		}
		if cond := r.build(in); cond != "" {
			conds = append(conds, cond)
			tr.Rules = append(tr.Rules, r.name)
		}
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	clauses := []struct {
		keyword string
		r       rule
	}{
		{" GROUP BY ", groupRule},
		{" ORDER BY ", orderRule},
		{" LIMIT ", limitRule},
	}
	for _, c := range clauses {
		if c.r.match(in) {
			sb.WriteString(c.keyword)
			sb.WriteString(c.r.build(in))
			tr.Rules = append(tr.Rules, c.r.name)
		}
	}

	tr.SQL = sb.String()
	t.logger.Debug("规则翻译完成",
		zap.String("text", text),
		zap.String("sql", tr.SQL),
		zap.Strings("rules", tr.Rules),
	)
	return tr, nil
}
