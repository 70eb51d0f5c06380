package redis

import (
	"context"
	"errors"
	"runtime"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/kochabx/authkit/log"
)

// ErrInvalidConfig 配置为空
var ErrInvalidConfig = errors.New("redis: config is nil")

// ErrNil 键不存在
var ErrNil = redis.Nil

// Client Redis 统一客户端（单机/集群/哨兵）
type Client struct {
	client redis.UniversalClient
	config *Config
	logger *log.Logger
}

// New 创建客户端并 Ping 一次，失败时释放连接
func New(ctx context.Context, cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := newOptions(opts)
	c := &Client{
		config: cfg,
		logger: o.logger,
		client: redis.NewUniversalClient(universalOptions(cfg)),
	}

	var ok bool
	defer func() {
		if !ok {
			_ = c.client.Close()
		}
	}()

	if err := c.setupHooks(o); err != nil {
		return nil, err
	}
	if err := c.Ping(ctx); err != nil {
		return nil, err
	}

	ok = true
	c.logger.Debug().Str("mode", cfg.Mode()).Strs("addrs", cfg.Addrs).Msg("redis client created")
	return c, nil
}

func universalOptions(cfg *Config) *redis.UniversalOptions {
	poolSize := cfg.PoolSize
	if poolSize == 0 {
		poolSize = 10 * runtime.GOMAXPROCS(0)
	}
	return &redis.UniversalOptions{
		Addrs:      cfg.Addrs,
		MasterName: cfg.MasterName,
		Username:   cfg.Username,
		Password:   cfg.Password,
		DB:         cfg.DB,
		Protocol:   cfg.Protocol,

		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,

		PoolSize:        poolSize,
		MinIdleConns:    cfg.MinIdleConns,
		ConnMaxIdleTime: cfg.MaxIdleTime,
		ConnMaxLifetime: cfg.MaxLifetime,
		PoolTimeout:     cfg.PoolTimeout,

		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,

		MaxRedirects:   cfg.MaxRedirects,
		ReadOnly:       cfg.ReadOnly,
		RouteByLatency: cfg.RouteByLatency,
		RouteRandomly:  cfg.RouteRandomly,
	}
}

func (c *Client) setupHooks(o *clientOptions) error {
	for _, hook := range o.hooks {
		c.client.AddHook(hook)
	}
	if o.withTrace {
		if err := redisotel.InstrumentTracing(c.client, o.tracing...); err != nil {
			return err
		}
	}
	if o.withMeter {
		if err := redisotel.InstrumentMetrics(c.client, o.metrics...); err != nil {
			return err
		}
	}
	if o.debug {
		c.client.AddHook(NewDebugHook(c.logger, o.slow))
	}
	return nil
}

// UniversalClient 底层客户端
func (c *Client) UniversalClient() redis.UniversalClient {
	return c.client
}

// Ping 测试连接
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close 关闭客户端
func (c *Client) Close() error {
	err := c.client.Close()
	c.logger.Debug().Msg("redis client closed")
	return err
}

// Stats 连接池统计
func (c *Client) Stats() *redis.PoolStats {
	return c.client.PoolStats()
}
