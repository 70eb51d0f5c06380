package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/kochabx/authkit/log"
)

// Option 客户端选项
type Option func(*clientOptions)

type clientOptions struct {
	brokers      []string
	username     string
	password     string
	balancer     Balancer
	timeout      time.Duration
	closeTimeout time.Duration

	dialer *kafka.Dialer
	logger *log.Logger
}

// WithBrokers 设置 Broker 地址
func WithBrokers(brokers ...string) Option {
	return func(o *clientOptions) {
		o.brokers = brokers
	}
}

// WithAuth 设置 SASL/PLAIN 认证
func WithAuth(username, password string) Option {
	return func(o *clientOptions) {
		o.username = username
		o.password = password
	}
}

// WithBalancer 设置分区策略
func WithBalancer(balancer Balancer) Option {
	return func(o *clientOptions) {
		o.balancer = balancer
	}
}

// WithTimeout 设置连接超时
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// WithCloseTimeout 设置关闭超时
func WithCloseTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.closeTimeout = timeout
	}
}

// WithDialer 自定义 Dialer
func WithDialer(dialer *kafka.Dialer) Option {
	return func(o *clientOptions) {
		o.dialer = dialer
	}
}

// WithLogger 设置日志
func WithLogger(logger *log.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

func applyOptions(cfg *Config, opts []Option) *clientOptions {
	o := &clientOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if len(o.brokers) > 0 {
		cfg.Brokers = o.brokers
	}
	if o.username != "" {
		cfg.Username = o.username
		cfg.Password = o.password
	}
	if o.balancer != 0 {
		cfg.Balancer = o.balancer
	}
	if o.timeout > 0 {
		cfg.Timeout = o.timeout
	}
	if o.closeTimeout > 0 {
		cfg.CloseTimeout = o.closeTimeout
	}
	return o
}
