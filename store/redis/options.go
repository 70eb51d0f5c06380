package redis

import (
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/kochabx/authkit/log"
)

// Option 客户端选项，连接参数见 Config
type Option func(*clientOptions)

type clientOptions struct {
	hooks     []redis.Hook
	tracing   []redisotel.TracingOption
	metrics   []redisotel.MetricsOption
	withTrace bool
	withMeter bool
	debug     bool
	slow      time.Duration
	logger    *log.Logger
}

// WithHooks 添加 Hook
func WithHooks(hooks ...redis.Hook) Option {
	return func(o *clientOptions) {
		o.hooks = append(o.hooks, hooks...)
	}
}

// WithTracing 启用 OpenTelemetry 追踪
func WithTracing(opts ...redisotel.TracingOption) Option {
	return func(o *clientOptions) {
		o.withTrace = true
		o.tracing = opts
	}
}

// WithMetrics 启用 OpenTelemetry 指标
func WithMetrics(opts ...redisotel.MetricsOption) Option {
	return func(o *clientOptions) {
		o.withMeter = true
		o.metrics = opts
	}
}

// WithDebug 记录命令名与慢命令，slow 为 0 时不检测慢命令
func WithDebug(slow time.Duration) Option {
	return func(o *clientOptions) {
		o.debug = true
		o.slow = slow
	}
}

// WithLogger 设置日志
func WithLogger(l *log.Logger) Option {
	return func(o *clientOptions) {
		o.logger = l
	}
}

func newOptions(opts []Option) *clientOptions {
	o := &clientOptions{logger: log.G}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.logger == nil {
		o.logger = log.G
	}
	return o
}
