package db

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kochabx/authkit/log"
)

var (
	ErrUnsupportedDriver = errors.New("db: unsupported driver")
	ErrInvalidConfig     = errors.New("db: config is nil")
	ErrNotInitialized    = errors.New("db: client not initialized")
)

// Client gorm 数据库客户端
type Client struct {
	config  DriverConfig
	db      *gorm.DB
	sqlDB   *sql.DB
	options *clientOptions
	logger  *log.Logger
}

// New 创建客户端并在 ctx 与连接超时内完成 Ping
func New(ctx context.Context, cfg DriverConfig, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.Init(); err != nil {
		return nil, err
	}

	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	c := &Client{
		config:  cfg,
		options: options,
		logger:  options.logger,
	}
	if c.logger == nil {
		c.logger = log.G
	}

	if err := c.connect(); err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, options.connectTimeout)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		_ = c.Close()
		return nil, err
	}

	c.logger.Debug().Str("driver", cfg.Driver().String()).Msg("database client created")
	return c, nil
}

func (c *Client) connect() error {
	dialector, err := c.dialector()
	if err != nil {
		return err
	}

	db, err := gorm.Open(dialector, c.gormConfig())
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	pool := c.config.Pool()
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	for _, plugin := range c.options.plugins {
		if err := db.Use(plugin); err != nil {
			_ = sqlDB.Close()
			return err
		}
	}

	c.db = db
	c.sqlDB = sqlDB
	return nil
}

func (c *Client) dialector() (gorm.Dialector, error) {
	dsn := c.config.DSN()
	switch c.config.Driver() {
	case DriverMySQL:
		return mysql.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	}
	return nil, ErrUnsupportedDriver
}

func (c *Client) gormConfig() *gorm.Config {
	lc := logger.Config{
		LogLevel:                  logger.LogLevel(c.config.LogLevel()),
		IgnoreRecordNotFoundError: true,
		SlowThreshold:             c.options.slowQuery,
	}
	return &gorm.Config{
		Logger:         logger.New(gormLogWriter{c.logger}, lc),
		TranslateError: true,
	}
}

// DB gorm 实例
func (c *Client) DB() *gorm.DB {
	return c.db
}

// WithContext 绑定 ctx 的 gorm 会话
func (c *Client) WithContext(ctx context.Context) *gorm.DB {
	return c.db.WithContext(ctx)
}

// Ping 测试连接
func (c *Client) Ping(ctx context.Context) error {
	if c.sqlDB == nil {
		return ErrNotInitialized
	}
	return c.sqlDB.PingContext(ctx)
}

// Close 关闭连接，可重复调用
func (c *Client) Close() error {
	if c.sqlDB == nil {
		return nil
	}
	err := c.sqlDB.Close()
	c.sqlDB = nil
	return err
}

// Stats 连接池统计
func (c *Client) Stats() sql.DBStats {
	if c.sqlDB == nil {
		return sql.DBStats{}
	}
	return c.sqlDB.Stats()
}

// Driver 驱动类型
func (c *Client) Driver() Driver {
	return c.config.Driver()
}

// gormLogWriter 将 gorm 日志写入 log.Logger
type gormLogWriter struct {
	logger *log.Logger
}

func (w gormLogWriter) Printf(format string, args ...any) {
	w.logger.Info().Msgf(format, args...)
}
