package ai

import "nlquery-go/internal/repository"

// 相对日期短语
const (
	phraseToday     = "今天"
	phraseYesterday = "昨天"
	phraseThisWeek  = "本周"
	phraseThisMonth = "本月"
)

// Dialect 目标数据库的日期表达式
type Dialect struct {
	Name string
	// dates 相对日期短语 -> order_date 上的条件
	dates map[string]string
}

var dialects = map[string]Dialect{
	repository.DialectSQLite: {
		Name: repository.DialectSQLite,
		dates: map[string]string{
			phraseToday:     "DATE(order_date) = DATE('now')",
			phraseYesterday: "DATE(order_date) = DATE('now', '-1 day')",
			// 周一为一周起点，与 mysql YEARWEEK(...,1)、postgres date_trunc('week') 一致
			phraseThisWeek:  "DATE(order_date) >= DATE('now', '-6 days', 'weekday 1')",
			phraseThisMonth: "strftime('%Y-%m', order_date) = strftime('%Y-%m', 'now')",
		},
	},
	repository.DialectMySQL: {
		Name: repository.DialectMySQL,
		dates: map[string]string{
			phraseToday:     "DATE(order_date) = CURDATE()",
			phraseYesterday: "DATE(order_date) = DATE_SUB(CURDATE(), INTERVAL 1 DAY)",
			phraseThisWeek:  "YEARWEEK(order_date, 1) = YEARWEEK(CURDATE(), 1)",
			phraseThisMonth: "DATE_FORMAT(order_date, '%Y-%m') = DATE_FORMAT(CURDATE(), '%Y-%m')",
		},
	},
	repository.DialectPostgres: {
		Name: repository.DialectPostgres,
		dates: map[string]string{
			phraseToday:     "order_date::date = CURRENT_DATE",
			phraseYesterday: "order_date::date = CURRENT_DATE - INTERVAL '1 day'",
			phraseThisWeek:  "order_date >= date_trunc('week', CURRENT_DATE)",
			phraseThisMonth: "date_trunc('month', order_date) = date_trunc('month', CURRENT_DATE)",
		},
	},
}

// DialectFor 按名称获取方言，未知名称回退到 sqlite
func DialectFor(name string) Dialect {
	if d, ok := dialects[name]; ok {
		return d
	}
	return dialects[repository.DialectSQLite]
}

// DateCondition 相对日期短语对应的条件
func (d Dialect) DateCondition(phrase string) (string, bool) {
	cond, ok := d.dates[phrase]
	return cond, ok
}
