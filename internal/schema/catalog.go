package schema

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"nlquery-go/internal/repository"
)

// Catalog schema目录
// 持有当前快照，读取无锁；Reload 构建新快照后整体替换
type Catalog struct {
	repo   repository.SchemaRepository
	logger *zap.Logger

	current atomic.Pointer[Snapshot]

	// onLoad 每次替换快照后调用，用于上报指标
	onLoad func(*Snapshot)
}

// CatalogOption 目录选项
type CatalogOption func(*Catalog)

// WithLoadHook 设置快照替换后的回调
func WithLoadHook(fn func(*Snapshot)) CatalogOption {
	return func(c *Catalog) { c.onLoad = fn }
}

// NewCatalog 创建schema目录，初始快照为内置默认映射
func NewCatalog(repo repository.SchemaRepository, logger *zap.Logger, opts ...CatalogOption) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{
		repo:   repo,
		logger: logger.Named("schema"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.current.Store(DefaultSnapshot())
	return c
}

// Snapshot 返回当前快照
func (c *Catalog) Snapshot() *Snapshot {
	return c.current.Load()
}

// Reload 重新加载并替换当前快照
// 加载过程中上下文被取消时保留旧快照并返回错误
func (c *Catalog) Reload(ctx context.Context) (*Snapshot, error) {
	snap := c.Load(ctx)
	if err := ctx.Err(); err != nil {
		c.logger.Warn("schema加载被取消，保留当前快照", zap.Error(err))
		return c.Snapshot(), err
	}

	c.current.Store(snap)
	if c.onLoad != nil {
		c.onLoad(snap)
	}

	c.logger.Info("schema快照已更新",
		zap.String("source", string(snap.Source())),
		zap.Int("tables", snap.TableCount()),
		zap.Int("columns", snap.ColumnCount()),
	)
	return snap, nil
}

// Load 从存储构建快照，不替换当前快照
// 依次尝试：映射表 -> 数据库元数据 -> 内置默认映射，任何失败都不会中止
func (c *Catalog) Load(ctx context.Context) *Snapshot {
	if c.repo == nil {
		return DefaultSnapshot()
	}

	if tables := c.loadFromMappings(ctx); len(tables) > 0 {
		return NewSnapshot(tables, SourceMapping)
	}
	if tables := c.loadFromIntrospection(ctx); len(tables) > 0 {
		return NewSnapshot(tables, SourceIntrospection)
	}

	c.logger.Warn("未能从数据库读取schema，使用内置默认映射")
	return DefaultSnapshot()
}

func (c *Catalog) loadFromMappings(ctx context.Context) []TableDescriptor {
	mappings, err := c.repo.ListTableMappings(ctx)
	if err != nil {
		c.logger.Warn("读取表映射失败", zap.Error(err))
		return nil
	}

	tables := make([]TableDescriptor, 0, len(mappings))
	seen := make(map[string]int, len(mappings))
	for _, m := range mappings {
		if m == nil || m.DBTableName == "" {
			continue
		}
		if i, ok := seen[m.DBTableName]; ok {
			tables[i].Aliases = append(tables[i].Aliases, m.NaturalName)
			continue
		}
		seen[m.DBTableName] = len(tables)
		tables = append(tables, TableDescriptor{
			DBName:      m.DBTableName,
			NaturalName: m.NaturalName,
			Description: m.Description,
		})
	}

	for i := range tables {
		tables[i].Columns = c.loadColumns(ctx, tables[i].DBName)
	}
	return tables
}

// loadColumns 先读字段映射，为空或失败时回退到数据库元数据
func (c *Catalog) loadColumns(ctx context.Context, table string) []ColumnDescriptor {
	mappings, err := c.repo.ListColumnMappings(ctx, table)
	if err != nil {
		c.logger.Debug("读取字段映射失败，回退到数据库元数据",
			zap.String("table", table), zap.Error(err))
	}
	if err == nil && len(mappings) > 0 {
		cols := make([]ColumnDescriptor, 0, len(mappings))
		for _, m := range mappings {
			if m == nil {
				continue
			}
			cols = append(cols, ColumnDescriptor{
				DBName:      m.DBColumnName,
				NaturalName: m.NaturalName,
				DataType:    m.DataType,
				OwningTable: table,
			})
		}
		return cols
	}

	return c.introspectColumns(ctx, table)
}

func (c *Catalog) introspectColumns(ctx context.Context, table string) []ColumnDescriptor {
	raw, err := c.repo.IntrospectColumns(ctx, table)
	if err != nil {
		c.logger.Warn("读取表字段失败", zap.String("table", table), zap.Error(err))
		return nil
	}

	cols := make([]ColumnDescriptor, 0, len(raw))
	for _, r := range raw {
		if r == nil {
			continue
		}
		cols = append(cols, ColumnDescriptor{
			DBName:      r.Name,
			DataType:    r.DataType,
			OwningTable: table,
		})
	}
	return cols
}

func (c *Catalog) loadFromIntrospection(ctx context.Context) []TableDescriptor {
	names, err := c.repo.ListRawTables(ctx)
	if err != nil {
		c.logger.Warn("读取数据库表列表失败", zap.Error(err))
		return nil
	}

	tables := make([]TableDescriptor, 0, len(names))
	for _, name := range names {
		tables = append(tables, TableDescriptor{
			DBName:  name,
			Columns: c.introspectColumns(ctx, name),
		})
	}
	return tables
}
