package schema

import (
	"strings"
	"time"
)

// Snapshot 某一时刻的只读schema视图
// 创建后不再修改，重新加载时整体替换
type Snapshot struct {
	tables   []TableDescriptor
	index    map[string]int
	mapping  *NameMapping
	source   Source
	loadedAt time.Time
}

// NewSnapshot 根据表描述构建快照
// DBName 相同的表会合并：后出现的自然语言名称成为别名，字段按 DBName 去重
func NewSnapshot(tables []TableDescriptor, source Source) *Snapshot {
	s := &Snapshot{
		index:    make(map[string]int),
		source:   source,
		loadedAt: time.Now(),
	}

	for _, t := range tables {
		if t.DBName == "" {
			continue
		}
		if i, ok := s.index[t.DBName]; ok {
			s.tables[i] = mergeTable(s.tables[i], t)
			continue
		}
		s.index[t.DBName] = len(s.tables)
		base := TableDescriptor{DBName: t.DBName, NaturalName: t.NaturalName, Description: t.Description}
		s.tables = append(s.tables, mergeTable(base, t))
	}

	s.mapping = buildMapping(s.tables)
	return s
}

func mergeTable(dst, src TableDescriptor) TableDescriptor {
	for _, name := range src.NaturalNames() {
		if name != dst.NaturalName && !contains(dst.Aliases, name) {
			if dst.NaturalName == "" {
				dst.NaturalName = name
				continue
			}
			dst.Aliases = append(dst.Aliases, name)
		}
	}
	if dst.Description == "" {
		dst.Description = src.Description
	}

	cols := make([]ColumnDescriptor, len(dst.Columns))
	copy(cols, dst.Columns)
	for _, c := range src.Columns {
		if c.DBName == "" {
			continue
		}
		c.OwningTable = dst.DBName
		merged := false
		for i := range cols {
			if cols[i].DBName != c.DBName {
				continue
			}
			merged = true
			for _, name := range c.NaturalNames() {
				if name == cols[i].NaturalName || contains(cols[i].Aliases, name) {
					continue
				}
				if cols[i].NaturalName == "" {
					cols[i].NaturalName = name
				} else {
					cols[i].Aliases = append(cols[i].Aliases, name)
				}
			}
			if cols[i].DataType == "" {
				cols[i].DataType = c.DataType
			}
			break
		}
		if !merged {
			c.Aliases = append([]string(nil), c.Aliases...)
			cols = append(cols, c)
		}
	}
	dst.Columns = cols
	return dst
}

func buildMapping(tables []TableDescriptor) *NameMapping {
	m := &NameMapping{
		Tables:  NewLookup(),
		Columns: make(map[string]*Lookup, len(tables)),
	}
	for _, t := range tables {
		for _, name := range t.NaturalNames() {
			m.Tables.Set(name, t.DBName)
		}
		m.Tables.Set(t.DBName, t.DBName)

		cols := NewLookup()
		for _, c := range t.Columns {
			for _, name := range c.NaturalNames() {
				cols.Set(name, c.DBName)
			}
			cols.Set(c.DBName, c.DBName)
		}
		m.Columns[t.DBName] = cols
	}
	return m
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Tables 返回表描述列表的副本
func (s *Snapshot) Tables() []TableDescriptor {
	out := make([]TableDescriptor, len(s.tables))
	copy(out, s.tables)
	return out
}

// Table 按数据库名查找表
func (s *Snapshot) Table(dbName string) (TableDescriptor, bool) {
	i, ok := s.index[dbName]
	if !ok {
		return TableDescriptor{}, false
	}
	return s.tables[i], true
}

// Columns 返回表的字段描述，表不存在时返回 false
func (s *Snapshot) Columns(dbName string) ([]ColumnDescriptor, bool) {
	t, ok := s.Table(dbName)
	if !ok {
		return nil, false
	}
	out := make([]ColumnDescriptor, len(t.Columns))
	copy(out, t.Columns)
	return out, true
}

// Mapping 名称映射
func (s *Snapshot) Mapping() *NameMapping { return s.mapping }

// Source 数据来源
func (s *Snapshot) Source() Source { return s.source }

// LoadedAt 构建时间
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// TableCount 表数量
func (s *Snapshot) TableCount() int { return len(s.tables) }

// ColumnCount 所有表的字段总数
func (s *Snapshot) ColumnCount() int {
	n := 0
	for _, t := range s.tables {
		n += len(t.Columns)
	}
	return n
}

// ResolveTable 按插入顺序查找第一个出现在文本中的表名
func (s *Snapshot) ResolveTable(text string) (string, bool) {
	var (
		found string
		ok    bool
	)
	s.mapping.Tables.Each(func(key, value string) bool {
		if strings.Contains(text, key) {
			found, ok = value, true
			return false
		}
		return true
	})
	return found, ok
}
