package db

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/kochabx/authkit/core/tag"
)

// Common 各驱动共享的连接池与日志级别
type Common struct {
	PoolConfig `json:"pool" mapstructure:"pool"`
	Level      string `json:"level" mapstructure:"level" default:"silent"`

	initialized bool
}

func (b *Common) init(cfg any) error {
	if b.initialized {
		return nil
	}
	if err := tag.ApplyDefaults(cfg); err != nil {
		return err
	}
	b.initialized = true
	return nil
}

// LogLevel 日志级别
func (b *Common) LogLevel() LogLevel {
	return ParseLogLevel(b.Level)
}

// SQLiteConfig SQLite，主体表较小时的默认选择
type SQLiteConfig struct {
	FilePath    string `json:"file_path" mapstructure:"file_path" default:"./authkit.db"`
	JournalMode string `json:"journal_mode" mapstructure:"journal_mode" default:"WAL"`
	BusyTimeout int    `json:"busy_timeout" mapstructure:"busy_timeout" default:"5000"`
	SyncMode    string `json:"sync_mode" mapstructure:"sync_mode" default:"NORMAL"`
	ForeignKeys bool   `json:"foreign_keys" mapstructure:"foreign_keys" default:"true"`

	Common `mapstructure:",squash"`
}

func (c *SQLiteConfig) Driver() Driver { return DriverSQLite }
func (c *SQLiteConfig) Init() error { return c.init(c) }

// DSN mattn/go-sqlite3 连接串
func (c *SQLiteConfig) DSN() string {
	var b strings.Builder
	b.WriteString("file:")
	b.WriteString(c.FilePath)
	b.WriteString("?_journal_mode=")
	b.WriteString(c.JournalMode)
	b.WriteString("&_busy_timeout=")
	b.WriteString(strconv.Itoa(c.BusyTimeout))
	b.WriteString("&_synchronous=")
	b.WriteString(c.SyncMode)
	b.WriteString("&_foreign_keys=")
	b.WriteString(strconv.FormatBool(c.ForeignKeys))
	return b.String()
}

// Pool 固定单连接：SQLite 单写者，且 ":memory:" 库只存在于一个连接内
func (c *SQLiteConfig) Pool() *PoolConfig {
	pool := &c.PoolConfig
	pool.MaxIdleConns = 1
	pool.MaxOpenConns = 1
	if c.FilePath == ":memory:" {
		pool.ConnMaxLifetime = 0
		pool.ConnMaxIdleTime = 0
	}
	return pool
}

// PostgresConfig PostgreSQL
type PostgresConfig struct {
	Host           string `json:"host" mapstructure:"host" default:"localhost"`
	Port           int    `json:"port" mapstructure:"port" default:"5432"`
	User           string `json:"user" mapstructure:"user" default:"postgres"`
	Password       string `json:"password" mapstructure:"password"`
	Database       string `json:"database" mapstructure:"database" default:"authkit"`
	SSLMode        string `json:"sslmode" mapstructure:"sslmode" default:"disable"`
	TimeZone       string `json:"timezone" mapstructure:"timezone" default:"UTC"`
	ConnectTimeout int    `json:"connect_timeout" mapstructure:"connect_timeout" default:"10"`

	Common `mapstructure:",squash"`
}

func (c *PostgresConfig) Driver() Driver { return DriverPostgres }
func (c *PostgresConfig) Init() error { return c.init(c) }
func (c *PostgresConfig) Pool() *PoolConfig { return &c.PoolConfig }

// DSN libpq key=value 连接串，值按需加引号
func (c *PostgresConfig) DSN() string {
	pairs := [][2]string{
		{"host", c.Host},
		{"port", strconv.Itoa(c.Port)},
		{"user", c.User},
		{"password", c.Password},
		{"dbname", c.Database},
		{"sslmode", c.SSLMode},
		{"TimeZone", c.TimeZone},
		{"connect_timeout", strconv.Itoa(c.ConnectTimeout)},
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		parts = append(parts, p[0]+"="+pgQuote(p[1]))
	}
	return strings.Join(parts, " ")
}

func pgQuote(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// MySQLConfig MySQL
type MySQLConfig struct {
	Host      string        `json:"host" mapstructure:"host" default:"localhost"`
	Port      int           `json:"port" mapstructure:"port" default:"3306"`
	User      string        `json:"user" mapstructure:"user" default:"root"`
	Password  string        `json:"password" mapstructure:"password"`
	Database  string        `json:"database" mapstructure:"database" default:"authkit"`
	Charset   string        `json:"charset" mapstructure:"charset" default:"utf8mb4"`
	Collation string        `json:"collation" mapstructure:"collation" default:"utf8mb4_unicode_ci"`
	Timeout   time.Duration `json:"timeout" mapstructure:"timeout" default:"10s"`

	Common `mapstructure:",squash"`
}

func (c *MySQLConfig) Driver() Driver { return DriverMySQL }
func (c *MySQLConfig) Init() error { return c.init(c) }
func (c *MySQLConfig) Pool() *PoolConfig { return &c.PoolConfig }

// DSN go-sql-driver/mysql 连接串，时间按 UTC 解析
func (c *MySQLConfig) DSN() string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.Database
	mc.Collation = c.Collation
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Timeout = c.Timeout
	mc.Params = map[string]string{"charset": c.Charset}
	return mc.FormatDSN()
}
