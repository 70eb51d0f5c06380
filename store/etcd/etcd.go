package etcd

import (
	"context"
	"errors"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/kochabx/authkit/log"
)

var (
	ErrNilConfig        = errors.New("etcd: config is nil")
	ErrNotInitialized   = errors.New("etcd: client not initialized")
	ErrConnectionFailed = errors.New("etcd: failed to connect")
)

// Client etcd 客户端，失效存储通过租约保存令牌 ID
type Client struct {
	cli    *clientv3.Client
	config *Config
	logger *log.Logger
}

// Option 客户端选项
type Option func(*Client)

// WithLogger 设置日志
func WithLogger(logger *log.Logger) Option {
	return func(e *Client) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New 创建客户端并检查连通性
func New(ctx context.Context, config *Config, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, ErrNilConfig
	}
	e := &Client{config: config, logger: log.G}
	if err := e.config.init(); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	if err := e.connect(); err != nil {
		return nil, err
	}
	if err := e.Ping(ctx); err != nil {
		_ = e.Close()
		return nil, err
	}
	e.logger.Debug().Strs("endpoints", config.Endpoints).Msg("etcd client created")
	return e, nil
}

func (e *Client) connect() error {
	client, err := clientv3.New(clientv3.Config{
		Endpoints:            e.config.Endpoints,
		Username:             e.config.Username,
		Password:             e.config.Password,
		DialTimeout:          e.config.DialTimeout,
		DialKeepAliveTime:    e.config.KeepAliveTime,
		DialKeepAliveTimeout: e.config.KeepAliveTimeout,
		AutoSyncInterval:     e.config.AutoSyncInterval,
		MaxCallSendMsgSize:   e.config.MaxSendMsgSize,
		MaxCallRecvMsgSize:   e.config.MaxRecvMsgSize,
		RejectOldCluster:     e.config.RejectOldCluster,
		PermitWithoutStream:  e.config.PermitWithoutStream,
	})
	if err != nil {
		return errors.Join(ErrConnectionFailed, err)
	}
	e.cli = client
	return nil
}

// Ping 通过第一个端点的 Status 检查连通性
func (e *Client) Ping(ctx context.Context) error {
	if e.cli == nil {
		return ErrNotInitialized
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := e.cli.Status(ctx, e.config.Endpoints[0])
	return err
}

// Raw 底层客户端
func (e *Client) Raw() *clientv3.Client {
	return e.cli
}

// KeyPrefix 配置的键前缀
func (e *Client) KeyPrefix() string {
	return e.config.KeyPrefix
}

// Close 关闭连接，可重复调用
func (e *Client) Close() error {
	if e.cli == nil {
		return nil
	}
	err := e.cli.Close()
	e.cli = nil
	return err
}
