package schema

// Lookup 保留插入顺序的名称映射（自然语言名或数据库名 -> 数据库名）
// 同一个键只记录第一次出现的位置和值
type Lookup struct {
	keys   []string
	values map[string]string
}

// NewLookup 创建空映射
func NewLookup() *Lookup {
	return &Lookup{values: make(map[string]string)}
}

// Set 写入映射，键已存在或为空时忽略
func (l *Lookup) Set(key, value string) {
	if key == "" {
		return
	}
	if _, ok := l.values[key]; ok {
		return
	}
	l.keys = append(l.keys, key)
	l.values[key] = value
}

// Get 查找键对应的数据库名
func (l *Lookup) Get(key string) (string, bool) {
	if l == nil {
		return "", false
	}
	v, ok := l.values[key]
	return v, ok
}

// Keys 按插入顺序返回所有键
func (l *Lookup) Keys() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.keys))
	copy(out, l.keys)
	return out
}

// Len 映射条目数
func (l *Lookup) Len() int {
	if l == nil {
		return 0
	}
	return len(l.keys)
}

// Each 按插入顺序遍历，fn 返回 false 时停止
func (l *Lookup) Each(fn func(key, value string) bool) {
	if l == nil {
		return
	}
	for _, k := range l.keys {
		if !fn(k, l.values[k]) {
			return
		}
	}
}

// NameMapping 由表和字段描述派生的查找结构
type NameMapping struct {
	// Tables 表名映射，包含数据库名到自身的映射
	Tables *Lookup
	// Columns 表数据库名 -> 字段名映射
	Columns map[string]*Lookup
}

// ColumnLookup 返回指定表的字段映射，不存在时返回 nil
func (m *NameMapping) ColumnLookup(table string) *Lookup {
	if m == nil {
		return nil
	}
	return m.Columns[table]
}
