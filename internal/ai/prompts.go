package ai

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/prompts"

	"nlquery-go/internal/repository"
	"nlquery-go/internal/schema"
)

// SQL生成系统提示词模板
const sqlSystemPromptTemplate = `你是一个专业的SQL生成助手。你的任务是根据用户的自然语言查询，生成准确的{{.engine}} SQL语句。

{{.schema}}

重要规则：
1. 只生成SELECT查询语句，不允许包含DROP、DELETE、UPDATE、INSERT等危险操作
2. 使用数据库中的实际表名和字段名（db_name），而不是自然语言名称
3. {{.syntax}}
4. 只返回SQL语句，不要包含任何解释或markdown格式
5. 如果查询涉及多个表，使用JOIN连接
6. 确保SQL语法正确，可以直接执行
7. 对于模糊查询，使用LIKE操作符
8. 对于数值比较，使用标准的比较运算符（>, <, =, >=, <=）
9. 对于聚合查询，正确使用GROUP BY子句
10. 对于排序，使用ORDER BY子句

请根据用户的自然语言查询，生成对应的SQL语句。`

// InterpretationSystemPrompt 结果解读系统提示词
const InterpretationSystemPrompt = `你是一个专业的数据分析师。你的任务是根据用户查询和查询结果，生成清晰、准确、有价值的数据解读。

解读要求：
1. 用简洁明了的语言总结查询结果的主要发现
2. 突出关键数据和趋势
3. 如果数据量较大，重点解读总体情况和主要特征
4. 如果涉及数值，提供具体的数值和比较
5. 如果涉及时间序列，描述趋势变化
6. 使用中文回答，语言要专业但易懂
7. 避免冗长的描述，重点突出核心洞察
8. 如果结果为空，说明可能的原因

请根据查询结果生成一段简洁的数据解读（建议100-300字）。`

const interpretationUserTemplate = `用户查询：{{.query}}

{{.data}}

请对以上查询结果进行专业的数据解读。`

// 解读提示词中的数据限制
const (
	DefaultPromptRows = 20
	maxCellRunes      = 50
)

var (
	sqlSystemPrompt    = prompts.NewPromptTemplate(sqlSystemPromptTemplate, []string{"engine", "schema", "syntax"})
	interpretationUser = prompts.NewPromptTemplate(interpretationUserTemplate, []string{"query", "data"})
)

type dialectHint struct {
	engine string
	syntax string
}

var dialectHints = map[string]dialectHint{
	repository.DialectSQLite: {
		engine: "SQLite",
		syntax: "SQLite语法：使用?作为占位符，日期函数使用DATE()等SQLite函数",
	},
	repository.DialectMySQL: {
		engine: "MySQL",
		syntax: "MySQL语法：使用?作为占位符，日期函数使用CURDATE()、DATE_SUB()等MySQL函数",
	},
	repository.DialectPostgres: {
		engine: "PostgreSQL",
		syntax: "PostgreSQL语法：使用$1、$2作为占位符，日期函数使用CURRENT_DATE、date_trunc()等PostgreSQL函数",
	},
}

// BuildSchemaPrompt 将schema快照描述为提示词文本
func BuildSchemaPrompt(snap *schema.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("数据库表结构信息：\n\n")

	for _, t := range snap.Tables() {
		sb.WriteString("表名: ")
		sb.WriteString(t.DBName)
		if t.NaturalName != "" && t.NaturalName != t.DBName {
			fmt.Fprintf(&sb, " (自然语言名称: %s)", strings.Join(t.NaturalNames(), "、"))
		}
		if t.Description != "" {
			sb.WriteString(" - ")
			sb.WriteString(t.Description)
		}
		sb.WriteString("\n字段列表:\n")

		for _, c := range t.Columns {
			sb.WriteString("  - ")
			sb.WriteString(c.DBName)
			if c.NaturalName != "" && c.NaturalName != c.DBName {
				fmt.Fprintf(&sb, " (自然语言名称: %s)", strings.Join(c.NaturalNames(), "、"))
			}
			if c.DataType != "" {
				sb.WriteString(" 类型: ")
				sb.WriteString(c.DataType)
			}
			if c.Description != "" {
				sb.WriteString(" - ")
				sb.WriteString(c.Description)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// SQLSystemPrompt 构建SQL生成的系统提示词
func SQLSystemPrompt(snap *schema.Snapshot, dialect string) (string, error) {
	hint, ok := dialectHints[dialect]
	if !ok {
		hint = dialectHints[repository.DialectSQLite]
	}
	return sqlSystemPrompt.Format(map[string]any{
		"engine": hint.engine,
		"schema": BuildSchemaPrompt(snap),
		"syntax": hint.syntax,
	})
}

// FormatResultForPrompt 将查询结果格式化为表格文本，最多 maxRows 行
func FormatResultForPrompt(columns []string, rows []map[string]any, maxRows int) string {
	if len(rows) == 0 {
		return "查询结果为空，没有数据。"
	}
	if maxRows <= 0 {
		maxRows = DefaultPromptRows
	}

	lines := []string{"查询结果数据：", ""}

	header := strings.Join(columns, " | ")
	lines = append(lines, header, strings.Repeat("-", utf8.RuneCountInString(header)))

	shown := rows
	if len(shown) > maxRows {
		shown = shown[:maxRows]
	}
	for _, row := range shown {
		values := make([]string, len(columns))
		for i, col := range columns {
			values[i] = formatCell(row[col])
		}
		lines = append(lines, strings.Join(values, " | "))
	}

	if len(rows) > maxRows {
		lines = append(lines, fmt.Sprintf("\n（共 %d 条记录，仅显示前 %d 条）", len(rows), maxRows))
	}
	return strings.Join(lines, "\n")
}

func formatCell(v any) string {
	var s string
	switch val := v.(type) {
	case nil:
		s = "NULL"
	case string:
		s = val
	default:
		s = fmt.Sprint(val)
	}
	// 超过50个字符时截断为47个字符加省略号
	if utf8.RuneCountInString(s) > maxCellRunes {
		runes := []rune(s)
		s = string(runes[:maxCellRunes-3]) + "..."
	}
	return s
}

// InterpretationUserPrompt 构建结果解读的用户提示词
func InterpretationUserPrompt(query, data string) (string, error) {
	return interpretationUser.Format(map[string]any{
		"query": query,
		"data":  data,
	})
}
