package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"nlquery-go/internal/repository"
	"nlquery-go/internal/schema"
)

func TestRuleTranslator_Translate(t *testing.T) {
	translator := NewRuleTranslator(repository.DialectSQLite, zaptest.NewLogger(t))
	snap := schema.DefaultSnapshot()

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"按城市分组计数", "统计每个城市的用户数量", "SELECT city, COUNT(*) as count FROM users GROUP BY city"},
		{"按分类分组计数", "统计每个分类的商品数量", "SELECT category, COUNT(*) as count FROM products GROUP BY category"},
		{"简单计数", "统计订单总数", "SELECT COUNT(*) as count FROM orders"},
		{"金额过滤", "查询金额大于100的订单", "SELECT amount FROM orders WHERE amount > 100"},
		{"年龄过滤", "查询年龄大于25的用户", "SELECT age FROM users WHERE age > 25"},
		{"前N条", "查询前5条用户信息", "SELECT * FROM users LIMIT 5"},
		{"N条", "查询10条用户信息", "SELECT * FROM users LIMIT 10"},
		{"前N优先于N条", "查询20条用户中的前3名", "SELECT * FROM users LIMIT 3"},
		{"求和", "查询订单的总金额", "SELECT SUM(amount) as total FROM orders"},
		{"平均值", "用户的平均年龄", "SELECT AVG(age) as avg_value FROM users"},
		{"最大值", "最高价格的产品", "SELECT MAX(price) as max_value FROM products"},
		{"最小值默认字段", "查询订单最低", "SELECT MIN(amount) as min_value FROM orders"},
		{"所有", "查询所有用户", "SELECT * FROM users"},
		{"星号", "查询 * from users", "SELECT * FROM users"},
		{"已完成", "查询已完成的订单", "SELECT * FROM orders WHERE status = '已完成'"},
		{"待处理", "查询待处理的订单", "SELECT * FROM orders WHERE status = '待处理'"},
		{"今天", "查询今天的订单", "SELECT * FROM orders WHERE DATE(order_date) = DATE('now')"},
		{"降序排序", "查询订单按金额降序排序", "SELECT amount FROM orders ORDER BY amount DESC"},
		{"升序排序", "订单按日期排列", "SELECT * FROM orders GROUP BY order_date ORDER BY order_date ASC"},
		{"排序但无字段", "查询用户排序", "SELECT * FROM users"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, err := translator.Translate(context.Background(), tt.text, snap)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sql)
		})
	}
}

// 比较符从整段文本推导，多个数值条件时会互相影响
func TestRuleTranslator_ComparatorDerivedFromWholeText(t *testing.T) {
	translator := NewRuleTranslator(repository.DialectSQLite, zaptest.NewLogger(t))

	sql, err := translator.Translate(context.Background(), "查询年龄小于30且金额大于100的用户", schema.DefaultSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "SELECT age FROM users WHERE age > 30 AND amount > 100", sql)
}

// "未完成" 同时包含 "完成"，按已完成处理
func TestRuleTranslator_UnfinishedMatchesFinished(t *testing.T) {
	translator := NewRuleTranslator(repository.DialectSQLite, zaptest.NewLogger(t))

	sql, err := translator.Translate(context.Background(), "查询未完成的订单", schema.DefaultSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM orders WHERE status = '已完成'", sql)
}

func TestRuleTranslator_DialectDates(t *testing.T) {
	tests := []struct {
		dialect  string
		text     string
		expected string
	}{
		{repository.DialectSQLite, "昨天的订单", "SELECT * FROM orders WHERE DATE(order_date) = DATE('now', '-1 day')"},
		{repository.DialectSQLite, "本周的订单", "SELECT * FROM orders WHERE DATE(order_date) >= DATE('now', '-6 days', 'weekday 1')"},
		{repository.DialectSQLite, "本月的订单", "SELECT * FROM orders WHERE strftime('%Y-%m', order_date) = strftime('%Y-%m', 'now')"},
		{repository.DialectMySQL, "今天的订单", "SELECT * FROM orders WHERE DATE(order_date) = CURDATE()"},
		{repository.DialectMySQL, "本周的订单", "SELECT * FROM orders WHERE YEARWEEK(order_date, 1) = YEARWEEK(CURDATE(), 1)"},
		{repository.DialectPostgres, "今天的订单", "SELECT * FROM orders WHERE order_date::date = CURRENT_DATE"},
		{repository.DialectPostgres, "本月的订单", "SELECT * FROM orders WHERE date_trunc('month', order_date) = date_trunc('month', CURRENT_DATE)"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect+"_"+tt.text, func(t *testing.T) {
			translator := NewRuleTranslator(tt.dialect, zaptest.NewLogger(t))
			sql, err := translator.Translate(context.Background(), tt.text, schema.DefaultSnapshot())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sql)
		})
	}
}

func TestRuleTranslator_Errors(t *testing.T) {
	translator := NewRuleTranslator(repository.DialectSQLite, zaptest.NewLogger(t))

	_, err := translator.Translate(context.Background(), "今天天气怎么样", schema.DefaultSnapshot())
	assert.ErrorIs(t, err, ErrNoTableRecognized)

	_, err = translator.Translate(context.Background(), "   ", schema.DefaultSnapshot())
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestRuleTranslator_Explain(t *testing.T) {
	translator := NewRuleTranslator(repository.DialectSQLite, zaptest.NewLogger(t))

	tr, err := translator.Explain("统计每个城市的用户数量", nil)
	require.NoError(t, err)
	assert.Equal(t, "users", tr.Table)
	assert.Equal(t, []string{"count", "group"}, tr.Rules)

	tr, err = translator.Explain("查询今天已完成的订单前10条", nil)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT * FROM orders WHERE status = '已完成' AND DATE(order_date) = DATE('now') LIMIT 10",
		tr.SQL,
	)
	assert.Equal(t, []string{"columns", "status", "relative_date", "limit"}, tr.Rules)
}

func TestRuleTranslator_UsesSnapshotColumns(t *testing.T) {
	snap := schema.NewSnapshot([]schema.TableDescriptor{
		{DBName: "employees", NaturalName: "员工", Columns: []schema.ColumnDescriptor{
			{DBName: "full_name", NaturalName: "姓名"},
			{DBName: "dept", NaturalName: "部门", Aliases: []string{"科室"}},
		}},
	}, schema.SourceMapping)

	translator := NewRuleTranslator(repository.DialectSQLite, zaptest.NewLogger(t))
	sql, err := translator.Translate(context.Background(), "查询员工的科室和姓名", snap)
	require.NoError(t, err)
	assert.Equal(t, "SELECT full_name, dept FROM employees", sql, "按字段映射的顺序输出")
}
