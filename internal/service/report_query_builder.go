package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"nlquery-go/internal/repository"
)

// ReportField 报表查询字段
type ReportField struct {
	Table string `json:"table,omitempty"`
	Field string `json:"field"`
	Alias string `json:"alias,omitempty"`
}

// UnmarshalJSON 兼容 "amount" 字符串写法以及前端保存的 {name: "amount"} 写法
func (f *ReportField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &f.Field)
	}

	var raw struct {
		Table string `json:"table"`
		Field string `json:"field"`
		Name  string `json:"name"`
		Alias string `json:"alias"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.Table = raw.Table
	f.Field = raw.Field
	if f.Field == "" {
		f.Field = raw.Name
	}
	f.Alias = raw.Alias
	return nil
}

// ReportFilter 报表查询过滤条件
type ReportFilter struct {
	Field    string `json:"field"`
	Operator string `json:"operator,omitempty"`
	Value    any    `json:"value"`
}

// ReportOrder 报表查询排序
type ReportOrder struct {
	Field     string `json:"field"`
	Direction string `json:"direction,omitempty"`
}

// ReportQueryConfig 结构化报表查询配置
type ReportQueryConfig struct {
	Tables  []string       `json:"tables"`
	Fields  []ReportField  `json:"fields"`
	Filters []ReportFilter `json:"filters,omitempty"`
	GroupBy []string       `json:"group_by,omitempty"`
	OrderBy []ReportOrder  `json:"order_by,omitempty"`
}

// UnmarshalJSON 兼容单表写法 {table: "orders", fields: [...]}
func (c *ReportQueryConfig) UnmarshalJSON(data []byte) error {
	type plain ReportQueryConfig
	var raw struct {
		plain
		Table string `json:"table"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = ReportQueryConfig(raw.plain)
	if len(c.Tables) == 0 && raw.Table != "" {
		c.Tables = []string{raw.Table}
	}
	return nil
}

// ParseReportQueryConfig 解析JSON格式的报表查询配置
func ParseReportQueryConfig(data json.RawMessage) (*ReportQueryConfig, error) {
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, configErrorf("报表未配置查询")
	}
	var cfg ReportQueryConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, configErrorf("查询配置格式错误: %v", err)
	}
	return &cfg, nil
}

// BuiltQuery 构建出的参数化查询
type BuiltQuery struct {
	SQL  string
	Args []any
}

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
	plainAliasPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// 允许在过滤条件中使用的运算符
var allowedOperators = map[string]string{
	"=":        "=",
	"!=":       "!=",
	"<>":       "<>",
	">":        ">",
	"<":        "<",
	">=":       ">=",
	"<=":       "<=",
	"LIKE":     "LIKE",
	"NOT LIKE": "NOT LIKE",
}

func checkIdentifier(kind, name string) error {
	if !identifierPattern.MatchString(name) {
		return configErrorf("非法的%s: %q", kind, name)
	}
	return nil
}

// formatAlias 简单别名原样输出，中文等其他别名按方言加引号
// 引号、反斜杠、分号、百分号和控制字符一律拒绝
func formatAlias(alias, dialect string) (string, error) {
	if plainAliasPattern.MatchString(alias) {
		return alias, nil
	}
	if strings.TrimSpace(alias) == "" ||
		strings.ContainsAny(alias, "\"'`\\;%") ||
		strings.IndexFunc(alias, unicode.IsControl) >= 0 {
		return "", configErrorf("非法的别名: %q", alias)
	}
	return repository.QuoteIdentifier(dialect, alias), nil
}

func normalizeOperator(op string) (string, error) {
	op = strings.Join(strings.Fields(strings.ToUpper(op)), " ")
	if op == "" {
		return "=", nil
	}
	if canonical, ok := allowedOperators[op]; ok {
		return canonical, nil
	}
	return "", configErrorf("不支持的运算符: %q", op)
}

func normalizeDirection(dir string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(dir)) {
	case "", "ASC":
		return "ASC", nil
	case "DESC":
		return "DESC", nil
	default:
		return "", configErrorf("不支持的排序方向: %q", dir)
	}
}

// BuildReportQuery 根据结构化配置构建参数化SELECT语句
// 表名、字段名只允许字母数字下划线，别名可以是中文（加引号输出），运算符与排序方向走白名单，过滤值一律绑定参数
func BuildReportQuery(cfg *ReportQueryConfig, dialect string) (*BuiltQuery, error) {
	if cfg == nil || len(cfg.Tables) == 0 || len(cfg.Fields) == 0 {
		return nil, configErrorf("表和字段不能为空")
	}

	for _, table := range cfg.Tables {
		if err := checkIdentifier("表名", table); err != nil {
			return nil, err
		}
	}

	selects := make([]string, 0, len(cfg.Fields))
	for _, f := range cfg.Fields {
		if err := checkIdentifier("字段名", f.Field); err != nil {
			return nil, err
		}
		alias := f.Alias
		if alias == "" {
			alias = f.Field
		}
		alias, err := formatAlias(alias, dialect)
		if err != nil {
			return nil, err
		}
		column := f.Field
		if f.Table != "" {
			if err := checkIdentifier("表名", f.Table); err != nil {
				return nil, err
			}
			column = f.Table + "." + f.Field
		}
		selects = append(selects, column+" AS "+alias)
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(selects, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(strings.Join(cfg.Tables, ", "))

	var (
		conditions []string
		args       []any
	)
	for _, filter := range cfg.Filters {
		if filter.Field == "" || filter.Value == nil {
			continue
		}
		if err := checkIdentifier("过滤字段", filter.Field); err != nil {
			return nil, err
		}
		op, err := normalizeOperator(filter.Operator)
		if err != nil {
			return nil, err
		}
		args = append(args, filter.Value)
		conditions = append(conditions, fmt.Sprintf("%s %s %s", filter.Field, op, repository.Placeholder(dialect, len(args))))
	}
	if len(conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
	}

	if len(cfg.GroupBy) > 0 {
		for _, g := range cfg.GroupBy {
			if err := checkIdentifier("分组字段", g); err != nil {
				return nil, err
			}
		}
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(cfg.GroupBy, ", "))
	}

	if len(cfg.OrderBy) > 0 {
		orders := make([]string, 0, len(cfg.OrderBy))
		for _, o := range cfg.OrderBy {
			if err := checkIdentifier("排序字段", o.Field); err != nil {
				return nil, err
			}
			dir, err := normalizeDirection(o.Direction)
			if err != nil {
				return nil, err
			}
			orders = append(orders, o.Field+" "+dir)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(orders, ", "))
	}

	return &BuiltQuery{SQL: sb.String(), Args: args}, nil
}
