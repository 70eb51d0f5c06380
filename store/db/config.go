package db

import (
	"strings"
	"time"
)

// Driver 数据库驱动类型
type Driver string

const (
	// DriverMySQL MySQL 驱动
	DriverMySQL Driver = "mysql"
	// DriverPostgres PostgreSQL 驱动
	DriverPostgres Driver = "postgres"
	// DriverSQLite SQLite 驱动
	DriverSQLite Driver = "sqlite"
)

// String 返回驱动名称
func (d Driver) String() string {
	return string(d)
}

// LogLevel 日志级别，取值与 gorm logger.LogLevel 一致
type LogLevel int

const (
	// LogLevelSilent 静默模式
	LogLevelSilent LogLevel = iota + 1
	// LogLevelError 错误级别
	LogLevelError
	// LogLevelWarn 警告级别
	LogLevelWarn
	// LogLevelInfo 信息级别
	LogLevelInfo
)

// PoolConfig 连接池配置
type PoolConfig struct {
	// MaxIdleConns 最大空闲连接数
	MaxIdleConns int `json:"max_idle_conns" mapstructure:"max_idle_conns" default:"10"`

	// MaxOpenConns 最大打开连接数
	MaxOpenConns int `json:"max_open_conns" mapstructure:"max_open_conns" default:"100"`

	// ConnMaxLifetime 连接最大生命周期
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" mapstructure:"conn_max_lifetime" default:"1h"`

	// ConnMaxIdleTime 连接最大空闲时间
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time" mapstructure:"conn_max_idle_time" default:"10m"`
}

// DriverConfig 驱动配置接口
type DriverConfig interface {
	// Driver 返回驱动类型
	Driver() Driver

	// DSN 返回数据源名称
	DSN() string

	// Pool 返回连接池配置
	Pool() *PoolConfig

	// Init 初始化配置（应用默认值）
	Init() error

	// LogLevel 返回日志级别
	LogLevel() LogLevel
}

// ParseLogLevel 解析日志级别字符串
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return LogLevelSilent
	case "error":
		return LogLevelError
	case "warn":
		return LogLevelWarn
	case "info":
		return LogLevelInfo
	default:
		return LogLevelSilent
	}
}

// Config 数据库选择配置，由 viper 解析，Driver 决定使用哪一段驱动配置
type Config struct {
	Driver   Driver         `json:"driver" mapstructure:"driver" default:"sqlite" validate:"oneof=sqlite postgres mysql"`
	SQLite   SQLiteConfig   `json:"sqlite" mapstructure:"sqlite"`
	Postgres PostgresConfig `json:"postgres" mapstructure:"postgres"`
	MySQL    MySQLConfig    `json:"mysql" mapstructure:"mysql"`
}

// DriverConfig 返回 Driver 对应的驱动配置
func (c *Config) DriverConfig() (DriverConfig, error) {
	switch c.Driver {
	case DriverSQLite, "":
		return &c.SQLite, nil
	case DriverPostgres:
		return &c.Postgres, nil
	case DriverMySQL:
		return &c.MySQL, nil
	}
	return nil, ErrUnsupportedDriver
}
