package repository

import (
	"encoding/json"
	"time"
)

// TableMapping 表名映射
// 对应 table_mapping 表，记录自然语言名称与数据库表名的对应关系
type TableMapping struct {
	ID          int64  `json:"id" db:"id"`
	NaturalName string `json:"naturalName" db:"natural_name"`   // 自然语言名称，如"用户"
	DBTableName string `json:"name" db:"db_table_name"`         // 数据库表名，如"users"
	Description string `json:"description" db:"description"`    // 表描述
}

// ColumnMapping 字段名映射
// 对应 column_mapping 表，通过 table_id 关联 table_mapping
type ColumnMapping struct {
	ID           int64  `json:"id" db:"id"`
	TableID      int64  `json:"table_id" db:"table_id"`
	NaturalName  string `json:"naturalName" db:"natural_name"`
	DBColumnName string `json:"name" db:"db_column_name"`
	DataType     string `json:"type" db:"data_type"`
}

// RawColumn 从数据库元数据直接读取的字段信息
// 映射表不可用时的降级来源，没有自然语言名称
type RawColumn struct {
	Name     string `json:"name" db:"name"`
	DataType string `json:"type" db:"type"`
}

// ReportDefinition 报表定义
// layout_config 和 query_config 以JSON文本形式存储，由服务层负责解析
type ReportDefinition struct {
	ID           int64           `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Description  string          `json:"description" db:"description"`
	DataSource   string          `json:"data_source" db:"data_source"`
	LayoutConfig json.RawMessage `json:"layout_config" db:"layout_config"`
	QueryConfig  json.RawMessage `json:"query_config,omitempty" db:"query_config"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// ResultSet 只读查询的结果集
// Columns 保持数据库返回的字段顺序，Rows 中每行为 字段名->标量值
type ResultSet struct {
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	Truncated bool             `json:"truncated"` // 是否因行数上限被截断
}

// RowCount 返回结果行数
func (rs *ResultSet) RowCount() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}
