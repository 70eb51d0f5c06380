package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kochabx/authkit/log"
)

var (
	ErrNilConfig        = errors.New("mongo: config is nil")
	ErrConnectionFailed = errors.New("mongo: connection failed")
	ErrNotInitialized   = errors.New("mongo: client not initialized")
)

// Client MongoDB 客户端
type Client struct {
	client *mongo.Client
	config *Config
	logger *log.Logger
}

// New 创建客户端并在 Timeout 内完成 Ping
func New(ctx context.Context, cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if err := cfg.Init(); err != nil {
		return nil, err
	}

	o := &clientOptions{logger: log.G}
	for _, opt := range opts {
		opt(o)
	}

	co := options.Client().
		ApplyURI(cfg.uri()).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetBSONOptions(&options.BSONOptions{UseJSONStructTags: true, NilSliceAsEmpty: true}).
		SetMaxPoolSize(uint64(cfg.MaxPoolSize)).
		SetConnectTimeout(cfg.Timeout).
		SetServerSelectionTimeout(cfg.Timeout)

	client, err := mongo.Connect(ctx, append([]*options.ClientOptions{co}, o.extra...)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c := &Client{client: client, config: cfg, logger: o.logger}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		_ = c.Close(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c.logger.Debug().Str("host", cfg.Host).Str("database", cfg.Database).Msg("mongo client created")
	return c, nil
}

// Ping 测试连接
func (c *Client) Ping(ctx context.Context) error {
	if c.client == nil {
		return ErrNotInitialized
	}
	return c.client.Ping(ctx, readpref.Primary())
}

// Close 断开连接，可重复调用
func (c *Client) Close(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	err := c.client.Disconnect(ctx)
	c.client = nil
	return err
}

// Client 驱动原生客户端
func (c *Client) Client() *mongo.Client {
	return c.client
}

// Database 配置中的默认数据库
func (c *Client) Database() *mongo.Database {
	return c.client.Database(c.config.Database)
}

// Collection 默认数据库中的集合
func (c *Client) Collection(name string) *mongo.Collection {
	return c.Database().Collection(name)
}
