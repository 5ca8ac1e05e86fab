package schema

// TableDescriptor 表描述，按 DBName 唯一
type TableDescriptor struct {
	DBName      string `json:"name"`
	NaturalName string `json:"naturalName"`
	Description string `json:"description"`

	// Aliases 指向同一张表的其他自然语言名称
	Aliases []string           `json:"-"`
	Columns []ColumnDescriptor `json:"-"`
}

// ColumnDescriptor 字段描述，按 (OwningTable, DBName) 唯一
type ColumnDescriptor struct {
	DBName      string `json:"name"`
	NaturalName string `json:"naturalName"`
	DataType    string `json:"type"`
	Description string `json:"description"`
	OwningTable string `json:"-"`

	Aliases []string `json:"-"`
}

// NaturalNames 返回主名称及别名，跳过空值
func (t TableDescriptor) NaturalNames() []string {
	return naturalNames(t.NaturalName, t.Aliases)
}

// NaturalNames 返回主名称及别名，跳过空值
func (c ColumnDescriptor) NaturalNames() []string {
	return naturalNames(c.NaturalName, c.Aliases)
}

func naturalNames(primary string, aliases []string) []string {
	names := make([]string, 0, 1+len(aliases))
	if primary != "" {
		names = append(names, primary)
	}
	for _, a := range aliases {
		if a != "" && a != primary {
			names = append(names, a)
		}
	}
	return names
}

// Source 快照数据来源
type Source string

const (
	SourceMapping       Source = "mapping"       // 映射表
	SourceIntrospection Source = "introspection" // 数据库元数据
	SourceDefault       Source = "default"       // 内置默认映射
)
