package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"nlquery-go/internal/repository"
)

// PostgreSQLReportRepository PostgreSQL报表定义Repository实现
// layout_config / query_config 使用JSONB存储
type PostgreSQLReportRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgreSQLReportRepository 创建报表Repository
func NewPostgreSQLReportRepository(pool *pgxpool.Pool, logger *zap.Logger) repository.ReportRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgreSQLReportRepository{pool: pool, logger: logger}
}

const reportColumns = `id, name, COALESCE(description, ''), data_source, layout_config::text, query_config::text, created_at, updated_at`

// Create 创建报表定义
func (r *PostgreSQLReportRepository) Create(ctx context.Context, report *repository.ReportDefinition) error {
	const query = `
		INSERT INTO report_configs (name, description, data_source, layout_config, query_config, created_at, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6, $7)
		RETURNING id`

	now := time.Now().UTC()

	err := r.pool.QueryRow(ctx, query,
		report.Name,
		report.Description,
		report.DataSource,
		string(report.LayoutConfig),
		nullableJSON(report.QueryConfig),
		now,
		now,
	).Scan(&report.ID)
	if err != nil {
		r.logger.Error("创建报表失败",
			zap.String("name", report.Name),
			zap.Error(err),
		)
		return fmt.Errorf("创建报表失败: %w", err)
	}

	report.CreatedAt = now
	report.UpdatedAt = now

	r.logger.Info("报表创建成功",
		zap.Int64("report_id", report.ID),
		zap.String("name", report.Name),
	)
	return nil
}

// GetByID 根据ID获取报表定义
func (r *PostgreSQLReportRepository) GetByID(ctx context.Context, id int64) (*repository.ReportDefinition, error) {
	query := `SELECT ` + reportColumns + ` FROM report_configs WHERE id = $1`

	report, err := scanReport(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("报表不存在: %w", repository.ErrNotFound)
		}
		r.logger.Error("获取报表失败", zap.Int64("report_id", id), zap.Error(err))
		return nil, fmt.Errorf("获取报表失败: %w", err)
	}
	return report, nil
}

// List 列出所有报表定义
func (r *PostgreSQLReportRepository) List(ctx context.Context) ([]*repository.ReportDefinition, error) {
	query := `SELECT ` + reportColumns + ` FROM report_configs ORDER BY updated_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询报表列表失败: %w", err)
	}
	defer rows.Close()

	reports := []*repository.ReportDefinition{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描报表失败: %w", err)
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历报表列表失败: %w", err)
	}
	return reports, nil
}

// Update 更新报表定义
func (r *PostgreSQLReportRepository) Update(ctx context.Context, report *repository.ReportDefinition) error {
	const query = `
		UPDATE report_configs
		SET name = $2, description = $3, data_source = $4,
			layout_config = $5::jsonb, query_config = $6::jsonb, updated_at = $7
		WHERE id = $1`

	now := time.Now().UTC()

	result, err := r.pool.Exec(ctx, query,
		report.ID,
		report.Name,
		report.Description,
		report.DataSource,
		string(report.LayoutConfig),
		nullableJSON(report.QueryConfig),
		now,
	)
	if err != nil {
		r.logger.Error("更新报表失败", zap.Int64("report_id", report.ID), zap.Error(err))
		return fmt.Errorf("更新报表失败: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("报表不存在: %w", repository.ErrNotFound)
	}

	report.UpdatedAt = now
	return nil
}

// Delete 删除报表定义
func (r *PostgreSQLReportRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM report_configs WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("删除报表失败: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("报表不存在: %w", repository.ErrNotFound)
	}

	r.logger.Info("报表删除成功", zap.Int64("report_id", id))
	return nil
}

// scanReport 从单行结果扫描报表定义
func scanReport(row pgx.Row) (*repository.ReportDefinition, error) {
	var (
		report      repository.ReportDefinition
		layout      string
		queryConfig *string
	)

	if err := row.Scan(
		&report.ID,
		&report.Name,
		&report.Description,
		&report.DataSource,
		&layout,
		&queryConfig,
		&report.CreatedAt,
		&report.UpdatedAt,
	); err != nil {
		return nil, err
	}

	report.LayoutConfig = json.RawMessage(layout)
	if queryConfig != nil {
		report.QueryConfig = json.RawMessage(*queryConfig)
	}
	return &report, nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
