package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"go.uber.org/zap"
)

// 数据库驱动名称
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// SQLite DSN 默认参数
const (
	sqliteBusyTimeout = "5000" // 5秒
	sqliteSynchronous = "NORMAL"
	sqliteJournalMode = "WAL"
)

// DatabaseConfig 数据库连接配置
// driver 决定使用哪组字段：sqlite 使用 path；mysql 使用 dsn；postgres 使用 host 等字段或 dsn
type DatabaseConfig struct {
	Driver string `yaml:"driver" json:"driver"` // sqlite / mysql / postgres

	// SQLite
	Path         string `yaml:"path" json:"path"`                     // 数据库文件路径
	ReadPoolSize int    `yaml:"read_pool_size" json:"read_pool_size"` // 只读连接池大小

	// MySQL / PostgreSQL
	DSN      string `yaml:"dsn" json:"-"`              // 完整连接串，设置后优先使用
	Host     string `yaml:"host" json:"host"`          // 数据库主机地址
	Port     int    `yaml:"port" json:"port"`          // 数据库端口
	User     string `yaml:"user" json:"user"`          // 数据库用户名
	Password string `yaml:"password" json:"-"`         // 数据库密码（不输出到JSON）
	Database string `yaml:"database" json:"database"`  // 数据库名称
	SSLMode  string `yaml:"ssl_mode" json:"ssl_mode"`  // SSL模式：disable, require, verify-ca, verify-full

	// 连接池配置
	MaxConns          int32         `yaml:"max_conns" json:"max_conns"`
	MinConns          int32         `yaml:"min_conns" json:"min_conns"`
	MaxConnLifetime   time.Duration `yaml:"max_conn_lifetime" json:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `yaml:"max_conn_idle_time" json:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `yaml:"health_check_period" json:"health_check_period"`
	ConnectTimeout    time.Duration `yaml:"connect_timeout" json:"connect_timeout"`

	// 监控与日志配置
	LogLevel string `yaml:"log_level" json:"log_level"` // pgx日志级别：trace, debug, info, warn, error, none

	// 应用级配置
	ApplicationName string `yaml:"application_name" json:"application_name"`
	SearchPath      string `yaml:"search_path" json:"search_path"`
	AutoMigrate     bool   `yaml:"auto_migrate" json:"auto_migrate"` // 启动时执行迁移
}

// GetConnectionString 构建PostgreSQL连接字符串
func (c *DatabaseConfig) GetConnectionString() string {
	if c.DSN != "" {
		return c.DSN
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s application_name=%s search_path=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode, c.ApplicationName, c.SearchPath,
	)
	connStr += fmt.Sprintf(" connect_timeout=%d", int(c.ConnectTimeout.Seconds()))

	return connStr
}

// SQLiteDSN 构建带加固参数的SQLite DSN
// write 模式额外使用 _txlock=immediate，避免写事务升级锁时的 SQLITE_BUSY
func (c *DatabaseConfig) SQLiteDSN(write bool) string {
	params := url.Values{}
	params.Set("_journal_mode", sqliteJournalMode)
	params.Set("_busy_timeout", sqliteBusyTimeout)
	params.Set("_synchronous", sqliteSynchronous)
	params.Set("_foreign_keys", "on")

	if write {
		params.Set("_txlock", "immediate")
	}

	return c.Path + "?" + params.Encode()
}

// MySQLConfig 解析MySQL DSN
// 强制 parseTime 以便 DATETIME 扫描为 time.Time；clientFoundRows 让 UPDATE 返回匹配行数
func (c *DatabaseConfig) MySQLConfig() (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(c.DSN)
	if err != nil {
		return nil, fmt.Errorf("解析MySQL连接串失败: %w", err)
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	if cfg.Timeout == 0 {
		cfg.Timeout = c.ConnectTimeout
	}
	return cfg, nil
}

// Validate 验证数据库配置的有效性
func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case DriverSQLite:
		if c.Path == "" {
			return fmt.Errorf("SQLite数据库文件路径不能为空")
		}
		return nil
	case DriverMySQL:
		if c.DSN == "" {
			return fmt.Errorf("MySQL连接串不能为空")
		}
		if _, err := mysql.ParseDSN(c.DSN); err != nil {
			return fmt.Errorf("MySQL连接串无效: %w", err)
		}
		return nil
	case DriverPostgres:
		return c.validatePostgres()
	default:
		return fmt.Errorf("不支持的数据库驱动: %s", c.Driver)
	}
}

func (c *DatabaseConfig) validatePostgres() error {
	if c.MaxConns <= 0 {
		return fmt.Errorf("最大连接数必须大于0")
	}
	if c.MinConns < 0 {
		return fmt.Errorf("最小连接数不能小于0")
	}
	if c.MinConns > c.MaxConns {
		return fmt.Errorf("最小连接数不能大于最大连接数")
	}
	if c.DSN != "" {
		return nil
	}
	if c.Host == "" {
		return fmt.Errorf("数据库主机地址不能为空")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("数据库端口必须在1-65535范围内")
	}
	if c.User == "" {
		return fmt.Errorf("数据库用户名不能为空")
	}
	if c.Database == "" {
		return fmt.Errorf("数据库名称不能为空")
	}

	switch c.SSLMode {
	case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
	default:
		return fmt.Errorf("无效的SSL模式: %s", c.SSLMode)
	}
	return nil
}

// GetPoolConfig 获取pgxpool连接池配置
// 查询日志通过 tracelog 输出到 zap
func (c *DatabaseConfig) GetPoolConfig(logger *zap.Logger) (*pgxpool.Config, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("数据库配置验证失败: %w", err)
	}

	config, err := pgxpool.ParseConfig(c.GetConnectionString())
	if err != nil {
		return nil, fmt.Errorf("解析数据库连接字符串失败: %w", err)
	}

	config.MaxConns = c.MaxConns
	config.MinConns = c.MinConns
	config.MaxConnLifetime = c.MaxConnLifetime
	config.MaxConnIdleTime = c.MaxConnIdleTime
	config.HealthCheckPeriod = c.HealthCheckPeriod

	pgxLogger := NewPgxZapLogger(logger, c.LogLevel)
	config.ConnConfig.Tracer = &tracelog.TraceLog{
		Logger:   pgxLogger,
		LogLevel: pgxLogger.GetLogLevel(),
	}

	return config, nil
}

// DefaultDatabaseConfig 返回默认的数据库配置
// 默认使用本地SQLite文件，适用于开发环境
func DefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Driver:       DriverSQLite,
		Path:         "database/nlquery.db",
		ReadPoolSize: 4,

		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Database: "nlquery",
		SSLMode:  "prefer",

		MaxConns:          20,
		MinConns:          2,
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   30 * time.Minute,
		HealthCheckPeriod: 5 * time.Minute,
		ConnectTimeout:    30 * time.Second,

		LogLevel: "warn",

		ApplicationName: "nlquery",
		SearchPath:      "public",
		AutoMigrate:     true,
	}
}
