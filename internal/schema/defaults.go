package schema

// DefaultTables 映射表和数据库元数据都不可用时使用的内置映射
func DefaultTables() []TableDescriptor {
	return []TableDescriptor{
		{
			DBName:      "users",
			NaturalName: "用户",
			Description: "用户信息表",
			Columns: []ColumnDescriptor{
				{DBName: "name", NaturalName: "姓名", DataType: "TEXT"},
				{DBName: "age", NaturalName: "年龄", DataType: "INTEGER"},
				{DBName: "city", NaturalName: "城市", DataType: "TEXT"},
				{DBName: "email", NaturalName: "邮箱", DataType: "TEXT"},
			},
		},
		{
			DBName:      "orders",
			NaturalName: "订单",
			Description: "订单记录表",
			Columns: []ColumnDescriptor{
				{DBName: "amount", NaturalName: "金额", DataType: "REAL"},
				{DBName: "status", NaturalName: "状态", DataType: "TEXT"},
				{DBName: "order_date", NaturalName: "订单日期", DataType: "DATE"},
				{DBName: "user_id", NaturalName: "用户", DataType: "INTEGER"},
			},
		},
		{
			DBName:      "products",
			NaturalName: "产品",
			Aliases:     []string{"商品"},
			Description: "产品目录表",
			Columns: []ColumnDescriptor{
				{DBName: "name", NaturalName: "名称", DataType: "TEXT"},
				{DBName: "price", NaturalName: "价格", DataType: "REAL"},
				{DBName: "category", NaturalName: "分类", DataType: "TEXT"},
			},
		},
	}
}

// DefaultSnapshot 由内置映射构建的快照
func DefaultSnapshot() *Snapshot {
	return NewSnapshot(DefaultTables(), SourceDefault)
}
