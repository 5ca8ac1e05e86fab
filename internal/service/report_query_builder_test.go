package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nlquery-go/internal/repository"
)

func TestBuildReportQuery_SingleBoundArgument(t *testing.T) {
	cfg := &ReportQueryConfig{
		Tables:  []string{"orders"},
		Fields:  []ReportField{{Field: "amount"}},
		Filters: []ReportFilter{{Field: "status", Operator: "=", Value: "已完成"}},
	}

	built, err := BuildReportQuery(cfg, repository.DialectSQLite)
	require.NoError(t, err)

	assert.Equal(t, "SELECT amount AS amount FROM orders WHERE status = ?", built.SQL)
	assert.Equal(t, []any{"已完成"}, built.Args)
	assert.NotContains(t, built.SQL, "已完成")
	assert.NoError(t, ValidateSQL(built.SQL))
}

func TestBuildReportQuery_FullConfig(t *testing.T) {
	cfg := &ReportQueryConfig{
		Tables: []string{"orders", "users"},
		Fields: []ReportField{
			{Table: "users", Field: "city"},
			{Field: "amount", Alias: "total"},
		},
		Filters: []ReportFilter{
			{Field: "orders.user_id", Operator: "=", Value: float64(1)},
			{Field: "status", Value: nil},
			{Field: "amount", Operator: "not  like", Value: "%9%"},
			{Field: "city", Operator: ">=", Value: "A"},
		},
		GroupBy: []string{"users.city"},
		OrderBy: []ReportOrder{{Field: "total", Direction: "desc"}, {Field: "city"}},
	}

	t.Run("sqlite", func(t *testing.T) {
		built, err := BuildReportQuery(cfg, repository.DialectSQLite)
		require.NoError(t, err)
		assert.Equal(t,
			"SELECT users.city AS city, amount AS total FROM orders, users "+
				"WHERE orders.user_id = ? AND amount NOT LIKE ? AND city >= ? "+
				"GROUP BY users.city ORDER BY total DESC, city ASC",
			built.SQL)
		assert.Equal(t, []any{float64(1), "%9%", "A"}, built.Args, "值为nil的过滤条件被跳过")
	})

	t.Run("postgres占位符", func(t *testing.T) {
		built, err := BuildReportQuery(cfg, repository.DialectPostgres)
		require.NoError(t, err)
		assert.Contains(t, built.SQL, "WHERE orders.user_id = $1 AND amount NOT LIKE $2 AND city >= $3")
	})
}

func TestBuildReportQuery_Rejections(t *testing.T) {
	base := func() *ReportQueryConfig {
		return &ReportQueryConfig{Tables: []string{"orders"}, Fields: []ReportField{{Field: "amount"}}}
	}

	tests := []struct {
		name    string
		modify  func(*ReportQueryConfig)
		wantErr string
	}{
		{"缺少表", func(c *ReportQueryConfig) { c.Tables = nil }, "表和字段不能为空"},
		{"缺少字段", func(c *ReportQueryConfig) { c.Fields = nil }, "表和字段不能为空"},
		{"非法表名", func(c *ReportQueryConfig) { c.Tables = []string{"orders; DROP TABLE users"} }, "非法的表名"},
		{"非法字段", func(c *ReportQueryConfig) { c.Fields = []ReportField{{Field: "1=1 OR name"}} }, "非法的字段名"},
		{"别名含引号", func(c *ReportQueryConfig) {
			c.Fields = []ReportField{{Field: "amount", Alias: `金额" FROM users --`}}
		}, "非法的别名"},
		{"别名含反引号", func(c *ReportQueryConfig) { c.Fields = []ReportField{{Field: "amount", Alias: "a`b"}} }, "非法的别名"},
		{"别名含控制字符", func(c *ReportQueryConfig) { c.Fields = []ReportField{{Field: "amount", Alias: "金额\n"}} }, "非法的别名"},
		{"别名含百分号", func(c *ReportQueryConfig) { c.Fields = []ReportField{{Field: "amount", Alias: "%s"}} }, "非法的别名"},
		{"空白别名", func(c *ReportQueryConfig) { c.Fields = []ReportField{{Field: "amount", Alias: "  "}} }, "非法的别名"},
		{"运算符注入", func(c *ReportQueryConfig) {
			c.Filters = []ReportFilter{{Field: "status", Operator: "= 1 OR 1 =", Value: "x"}}
		}, "不支持的运算符"},
		{"非法排序方向", func(c *ReportQueryConfig) {
			c.OrderBy = []ReportOrder{{Field: "amount", Direction: "SIDEWAYS"}}
		}, "不支持的排序方向"},
		{"非法分组", func(c *ReportQueryConfig) { c.GroupBy = []string{"amount)"} }, "非法的分组字段"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.modify(cfg)

			_, err := BuildReportQuery(cfg, repository.DialectSQLite)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := BuildReportQuery(nil, repository.DialectSQLite)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestBuildReportQuery_NaturalLanguageAlias(t *testing.T) {
	cfg := &ReportQueryConfig{
		Tables: []string{"orders"},
		Fields: []ReportField{
			{Table: "orders", Field: "amount", Alias: "金额"},
			{Table: "orders", Field: "status", Alias: "订单 状态"},
			{Field: "id"},
		},
	}

	tests := []struct {
		dialect string
		want    string
	}{
		{repository.DialectSQLite, `SELECT orders.amount AS "金额", orders.status AS "订单 状态", id AS id FROM orders`},
		{repository.DialectPostgres, `SELECT orders.amount AS "金额", orders.status AS "订单 状态", id AS id FROM orders`},
		{repository.DialectMySQL, "SELECT orders.amount AS `金额`, orders.status AS `订单 状态`, id AS id FROM orders"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			built, err := BuildReportQuery(cfg, tt.dialect)
			require.NoError(t, err)
			assert.Equal(t, tt.want, built.SQL)
			assert.NoError(t, ValidateSQL(built.SQL))
		})
	}
}

func TestBuildReportQuery_SavedFrontEndShape(t *testing.T) {
	raw := `{"table":"orders","fields":[{"name":"amount","alias":"金额"},{"name":"status","alias":"状态"}]}`
	cfg, err := ParseReportQueryConfig([]byte(raw))
	require.NoError(t, err)

	built, err := BuildReportQuery(cfg, repository.DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t, `SELECT amount AS "金额", status AS "状态" FROM orders`, built.SQL)
}

func TestReportQueryConfig_UnmarshalJSON(t *testing.T) {
	t.Run("标准格式", func(t *testing.T) {
		var cfg ReportQueryConfig
		raw := `{"tables":["orders"],"fields":[{"field":"amount","alias":"a"}],"group_by":["status"],"order_by":[{"field":"a","direction":"DESC"}]}`
		require.NoError(t, json.Unmarshal([]byte(raw), &cfg))

		assert.Equal(t, []string{"orders"}, cfg.Tables)
		assert.Equal(t, []ReportField{{Field: "amount", Alias: "a"}}, cfg.Fields)
		assert.Equal(t, []string{"status"}, cfg.GroupBy)
		assert.Equal(t, "DESC", cfg.OrderBy[0].Direction)
	})

	t.Run("前端保存的单表格式", func(t *testing.T) {
		var cfg ReportQueryConfig
		raw := `{"table":"users","fields":[{"name":"city","type":"TEXT"},"age"],"filters":[{"field":"age","operator":">","value":30}]}`
		require.NoError(t, json.Unmarshal([]byte(raw), &cfg))

		assert.Equal(t, []string{"users"}, cfg.Tables)
		assert.Equal(t, []ReportField{{Field: "city"}, {Field: "age"}}, cfg.Fields)

		built, err := BuildReportQuery(&cfg, repository.DialectSQLite)
		require.NoError(t, err)
		assert.Equal(t, "SELECT city AS city, age AS age FROM users WHERE age > ?", built.SQL)
		assert.Equal(t, []any{float64(30)}, built.Args)
	})

	t.Run("tables优先于table", func(t *testing.T) {
		var cfg ReportQueryConfig
		require.NoError(t, json.Unmarshal([]byte(`{"table":"users","tables":["orders"],"fields":["id"]}`), &cfg))
		assert.Equal(t, []string{"orders"}, cfg.Tables)
	})
}

func TestParseReportQueryConfig(t *testing.T) {
	_, err := ParseReportQueryConfig(nil)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = ParseReportQueryConfig(json.RawMessage("null"))
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = ParseReportQueryConfig(json.RawMessage(`{"tables": 1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "查询配置格式错误")

	cfg, err := ParseReportQueryConfig(json.RawMessage(`{"tables":["orders"],"fields":["amount"]}`))
	require.NoError(t, err)
	assert.Equal(t, "amount", cfg.Fields[0].Field)
}
