package ai

import (
	"regexp"
	"strings"

	"nlquery-go/internal/schema"
)

// ruleInput 规则求值时可见的上下文
type ruleInput struct {
	text    string
	table   string
	columns *schema.Lookup
	dialect Dialect
}

// rule 一条翻译规则，match 命中后由 build 生成子句片段
// 同一阶段内的规则按顺序求值
type rule struct {
	name  string
	match func(in *ruleInput) bool
	build func(in *ruleInput) string
}

// fieldCandidate 关键词 -> 字段
type fieldCandidate struct {
	keywords []string
	field    string
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// firstField 返回第一个关键词出现在文本中的候选字段
func firstField(text string, candidates []fieldCandidate) (string, bool) {
	for _, c := range candidates {
		if containsAny(text, c.keywords...) {
			return c.field, true
		}
	}
	return "", false
}

func fieldOrDefault(text string, candidates []fieldCandidate, def string) string {
	if f, ok := firstField(text, candidates); ok {
		return f
	}
	return def
}

func cue(words ...string) func(in *ruleInput) bool {
	return func(in *ruleInput) bool { return containsAny(in.text, words...) }
}

var (
	groupCue = []string{"每个", "按"}
	orderCue = []string{"排序", "排列", "顺序"}
	descCue  = []string{"降序", "倒序", "DESC"}

	countGroupFields = []fieldCandidate{
		{keywords: []string{"城市"}, field: "city"},
		{keywords: []string{"category", "分类"}, field: "category"},
	}
	sumFields = []fieldCandidate{
		{keywords: []string{"金额", "amount"}, field: "amount"},
		{keywords: []string{"价格", "price"}, field: "price"},
	}
	statFields = []fieldCandidate{
		{keywords: []string{"金额", "amount"}, field: "amount"},
		{keywords: []string{"价格", "price"}, field: "price"},
		{keywords: []string{"年龄", "age"}, field: "age"},
	}
	groupFields = []fieldCandidate{
		{keywords: []string{"城市"}, field: "city"},
		{keywords: []string{"分类", "类别", "category"}, field: "category"},
		{keywords: []string{"用户"}, field: "user_id"},
		{keywords: []string{"日期"}, field: "order_date"},
	}
	orderFields = []fieldCandidate{
		{keywords: []string{"金额", "amount"}, field: "amount"},
		{keywords: []string{"年龄", "age"}, field: "age"},
		{keywords: []string{"日期", "order_date"}, field: "order_date"},
		{keywords: []string{"价格", "price"}, field: "price"},
	}
)

const defaultStatField = "amount"

func aggregate(fn, alias string, candidates []fieldCandidate) func(in *ruleInput) string {
	return func(in *ruleInput) string {
		return fn + "(" + fieldOrDefault(in.text, candidates, defaultStatField) + ") as " + alias
	}
}

// projectionRules SELECT 列表规则，第一条命中的规则生效
var projectionRules = []rule{
	{
		name:  "count",
		match: cue("统计", "总数", "数量"),
		build: func(in *ruleInput) string {
			if !containsAny(in.text, groupCue...) {
				return "COUNT(*) as count"
			}
			if f, ok := firstField(in.text, countGroupFields); ok {
				return f + ", COUNT(*) as count"
			}
			return "*, COUNT(*) as count"
		},
	},
	{name: "sum", match: cue("总和", "总金额", "合计"), build: aggregate("SUM", "total", sumFields)},
	{name: "avg", match: cue("平均", "平均值"), build: aggregate("AVG", "avg_value", statFields)},
	{name: "max", match: cue("最大", "最高"), build: aggregate("MAX", "max_value", statFields)},
	{name: "min", match: cue("最小", "最低"), build: aggregate("MIN", "min_value", statFields)},
	{name: "all", match: cue("所有", "*"), build: func(*ruleInput) string { return "*" }},
	{
		name:  "columns",
		match: func(*ruleInput) bool { return true },
		build: func(in *ruleInput) string {
			var fields []string
			seen := make(map[string]bool)
			in.columns.Each(func(key, value string) bool {
				// 只匹配自然语言名称
				if key != value && !seen[value] && strings.Contains(in.text, key) {
					seen[value] = true
					fields = append(fields, value)
				}
				return true
			})
			if len(fields) == 0 {
				return "*"
			}
			return strings.Join(fields, ", ")
		},
	},
}

var (
	ageComparison    = regexp.MustCompile(`年龄(大于|小于|等于)(\d+)`)
	amountComparison = regexp.MustCompile(`金额(大于|小于|等于)(\d+)`)

	limitPatterns = []*regexp.Regexp{
		regexp.MustCompile(`前(\d+)`),
		regexp.MustCompile(`(\d+)条`),
	}
)

// comparator 比较符取自整段文本中第一个出现的比较词（按 大于 小于 等于 的优先级），
// 不局限于正则命中的片段
func comparator(text string) string {
	switch {
	case strings.Contains(text, "大于"):
		return ">"
	case strings.Contains(text, "小于"):
		return "<"
	default:
		return "="
	}
}

func numericFilter(field string, pattern *regexp.Regexp) rule {
	return rule{
		name:  field + "_comparison",
		match: func(in *ruleInput) bool { return pattern.MatchString(in.text) },
		build: func(in *ruleInput) string {
			m := pattern.FindStringSubmatch(in.text)
			return field + " " + comparator(in.text) + " " + m[2]
		},
	}
}

// filterRules WHERE 条件规则，所有命中的规则以 AND 连接
var filterRules = []rule{
	numericFilter("age", ageComparison),
	numericFilter("amount", amountComparison),
	{
		name:  "status",
		match: cue("已完成", "完成", "待处理", "未完成"),
		build: func(in *ruleInput) string {
			// "未完成" 也包含 "完成"，因此先命中已完成
			if containsAny(in.text, "已完成", "完成") {
				return "status = '已完成'"
			}
			return "status = '待处理'"
		},
	},
	{
		name:  "relative_date",
		match: cue(phraseToday, phraseYesterday, phraseThisWeek, phraseThisMonth),
		build: func(in *ruleInput) string {
			for _, phrase := range []string{phraseToday, phraseYesterday, phraseThisWeek, phraseThisMonth} {
				if strings.Contains(in.text, phrase) {
					cond, _ := in.dialect.DateCondition(phrase)
					return cond
				}
			}
			return ""
		},
	},
}

// groupRule GROUP BY 规则
var groupRule = rule{
	name: "group",
	match: func(in *ruleInput) bool {
		if !containsAny(in.text, groupCue...) {
			return false
		}
		_, ok := firstField(in.text, groupFields)
		return ok
	},
	build: func(in *ruleInput) string {
		f, _ := firstField(in.text, groupFields)
		return f
	},
}

// orderRule ORDER BY 规则，没有可识别字段时不排序
var orderRule = rule{
	name: "order",
	match: func(in *ruleInput) bool {
		if !containsAny(in.text, orderCue...) {
			return false
		}
		_, ok := firstField(in.text, orderFields)
		return ok
	},
	build: func(in *ruleInput) string {
		f, _ := firstField(in.text, orderFields)
		if containsAny(in.text, descCue...) {
			return f + " DESC"
		}
		return f + " ASC"
	},
}

// limitRule LIMIT 规则，依次尝试 前N 和 N条
var limitRule = rule{
	name: "limit",
	match: func(in *ruleInput) bool {
		_, ok := limitValue(in.text)
		return ok
	},
	build: func(in *ruleInput) string {
		n, _ := limitValue(in.text)
		return n
	},
}

func limitValue(text string) (string, bool) {
	for _, p := range limitPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}
