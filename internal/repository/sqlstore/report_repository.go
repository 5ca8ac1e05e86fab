package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"nlquery-go/internal/repository"
)

// ReportRepository 报表定义Repository实现
type ReportRepository struct {
	writeDB *sqlx.DB
	readDB  *sqlx.DB
	logger  *zap.Logger
}

// reportRow report_configs 表的行结构，JSON字段以文本存储
type reportRow struct {
	ID           int64          `db:"id"`
	Name         string         `db:"name"`
	Description  sql.NullString `db:"description"`
	DataSource   string         `db:"data_source"`
	LayoutConfig string         `db:"layout_config"`
	QueryConfig  sql.NullString `db:"query_config"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (row *reportRow) toModel() *repository.ReportDefinition {
	report := &repository.ReportDefinition{
		ID:           row.ID,
		Name:         row.Name,
		Description:  row.Description.String,
		DataSource:   row.DataSource,
		LayoutConfig: json.RawMessage(row.LayoutConfig),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if row.QueryConfig.Valid && row.QueryConfig.String != "" {
		report.QueryConfig = json.RawMessage(row.QueryConfig.String)
	}
	return report
}

const reportColumns = `id, name, description, data_source, layout_config, query_config, created_at, updated_at`

// NewReportRepository 创建报表Repository
func NewReportRepository(writeDB, readDB *sqlx.DB, logger *zap.Logger) *ReportRepository {
	return &ReportRepository{writeDB: writeDB, readDB: readDB, logger: logger}
}

// Create 创建报表定义，回填ID与时间戳
func (r *ReportRepository) Create(ctx context.Context, report *repository.ReportDefinition) error {
	query := r.writeDB.Rebind(`
		INSERT INTO report_configs (name, description, data_source, layout_config, query_config, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)

	now := time.Now().UTC().Truncate(time.Second)
	result, err := r.writeDB.ExecContext(ctx, query,
		report.Name,
		report.Description,
		report.DataSource,
		string(report.LayoutConfig),
		nullableJSON(report.QueryConfig),
		now,
		now,
	)
	if err != nil {
		r.logger.Error("创建报表失败", zap.String("name", report.Name), zap.Error(err))
		return fmt.Errorf("创建报表失败: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("获取报表ID失败: %w", err)
	}

	report.ID = id
	report.CreatedAt = now
	report.UpdatedAt = now

	r.logger.Info("报表创建成功", zap.Int64("report_id", id), zap.String("name", report.Name))
	return nil
}

// GetByID 根据ID获取报表定义
func (r *ReportRepository) GetByID(ctx context.Context, id int64) (*repository.ReportDefinition, error) {
	query := r.readDB.Rebind(`SELECT ` + reportColumns + ` FROM report_configs WHERE id = ?`)

	var row reportRow
	if err := r.readDB.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("报表不存在: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("查询报表失败: %w", err)
	}
	return row.toModel(), nil
}

// List 按更新时间倒序列出所有报表定义
func (r *ReportRepository) List(ctx context.Context) ([]*repository.ReportDefinition, error) {
	query := `SELECT ` + reportColumns + ` FROM report_configs ORDER BY updated_at DESC, id DESC`

	var rows []reportRow
	if err := r.readDB.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("查询报表列表失败: %w", err)
	}

	reports := make([]*repository.ReportDefinition, 0, len(rows))
	for i := range rows {
		reports = append(reports, rows[i].toModel())
	}
	return reports, nil
}

// Update 整行更新报表定义（字段合并由服务层完成）
func (r *ReportRepository) Update(ctx context.Context, report *repository.ReportDefinition) error {
	query := r.writeDB.Rebind(`
		UPDATE report_configs
		SET name = ?, description = ?, data_source = ?, layout_config = ?, query_config = ?, updated_at = ?
		WHERE id = ?`)

	now := time.Now().UTC().Truncate(time.Second)
	result, err := r.writeDB.ExecContext(ctx, query,
		report.Name,
		report.Description,
		report.DataSource,
		string(report.LayoutConfig),
		nullableJSON(report.QueryConfig),
		now,
		report.ID,
	)
	if err != nil {
		r.logger.Error("更新报表失败", zap.Int64("report_id", report.ID), zap.Error(err))
		return fmt.Errorf("更新报表失败: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("获取影响行数失败: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("报表不存在: %w", repository.ErrNotFound)
	}

	report.UpdatedAt = now
	return nil
}

// Delete 删除报表定义（物理删除）
func (r *ReportRepository) Delete(ctx context.Context, id int64) error {
	query := r.writeDB.Rebind(`DELETE FROM report_configs WHERE id = ?`)

	result, err := r.writeDB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("删除报表失败: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("获取影响行数失败: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("报表不存在: %w", repository.ErrNotFound)
	}

	r.logger.Info("报表删除成功", zap.Int64("report_id", id))
	return nil
}

// nullableJSON 空JSON以NULL存储
func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
