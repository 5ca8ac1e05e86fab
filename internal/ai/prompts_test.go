package ai

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nlquery-go/internal/repository"
	"nlquery-go/internal/schema"
)

func TestBuildSchemaPrompt(t *testing.T) {
	prompt := BuildSchemaPrompt(schema.DefaultSnapshot())

	assert.True(t, strings.HasPrefix(prompt, "数据库表结构信息：\n\n"))
	assert.Contains(t, prompt, "表名: users (自然语言名称: 用户) - 用户信息表\n字段列表:\n")
	assert.Contains(t, prompt, "  - age (自然语言名称: 年龄) 类型: INTEGER\n")
	assert.Contains(t, prompt, "表名: products (自然语言名称: 产品、商品)")
}

func TestSQLSystemPrompt(t *testing.T) {
	prompt, err := SQLSystemPrompt(schema.DefaultSnapshot(), repository.DialectPostgres)
	require.NoError(t, err)

	assert.Contains(t, prompt, "生成准确的PostgreSQL SQL语句")
	assert.Contains(t, prompt, "3. PostgreSQL语法")
	assert.Contains(t, prompt, "表名: orders")
	assert.Contains(t, prompt, "10. 对于排序，使用ORDER BY子句")

	prompt, err = SQLSystemPrompt(schema.DefaultSnapshot(), "unknown")
	require.NoError(t, err)
	assert.Contains(t, prompt, "SQLite语法：使用?作为占位符")
}

func TestFormatResultForPrompt(t *testing.T) {
	t.Run("空结果", func(t *testing.T) {
		assert.Equal(t, "查询结果为空，没有数据。", FormatResultForPrompt([]string{"a"}, nil, 20))
	})

	t.Run("表格与截断", func(t *testing.T) {
		long := strings.Repeat("数", 60)
		rows := []map[string]any{
			{"city": "北京", "count": int64(2), "note": long},
			{"city": "上海", "count": int64(1), "note": nil},
		}

		text := FormatResultForPrompt([]string{"city", "count", "note"}, rows, 20)
		lines := strings.Split(text, "\n")
		require.Len(t, lines, 6)
		assert.Equal(t, "查询结果数据：", lines[0])
		assert.Equal(t, "city | count | note", lines[2])
		assert.Equal(t, strings.Repeat("-", len("city | count | note")), lines[3])
		assert.Equal(t, "北京 | 2 | "+strings.Repeat("数", 47)+"...", lines[4])
		assert.Equal(t, "上海 | 1 | NULL", lines[5])
	})

	t.Run("超过行数上限", func(t *testing.T) {
		rows := make([]map[string]any, 25)
		for i := range rows {
			rows[i] = map[string]any{"id": i}
		}

		text := FormatResultForPrompt([]string{"id"}, rows, 20)
		assert.Contains(t, text, "\n19\n")
		assert.NotContains(t, text, "\n20\n")
		assert.True(t, strings.HasSuffix(text, fmt.Sprintf("\n\n（共 %d 条记录，仅显示前 %d 条）", 25, 20)))
	})
}

func TestInterpretationUserPrompt(t *testing.T) {
	prompt, err := InterpretationUserPrompt("统计每个城市的用户数量", "查询结果为空，没有数据。")
	require.NoError(t, err)
	assert.Equal(t, "用户查询：统计每个城市的用户数量\n\n查询结果为空，没有数据。\n\n请对以上查询结果进行专业的数据解读。", prompt)
}

func TestCleanSQLResponse(t *testing.T) {
	tests := map[string]string{
		"```sql\nSELECT * FROM users\n```": "SELECT * FROM users",
		"```SQL SELECT 1```":               "SELECT 1",
		"```\nSELECT 2\n```\n":             "SELECT 2",
		"  SELECT 3  ":                     "SELECT 3",
	}
	for input, expected := range tests {
		assert.Equal(t, expected, CleanSQLResponse(input), input)
	}
}
