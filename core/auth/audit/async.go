package audit

import (
	"context"
	"errors"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/kochabx/authkit/log"
)

// ErrOverloaded 协程池已满，事件被丢弃
var ErrOverloaded = errors.New("audit: dispatcher overloaded")

// Async 通过 ants 协程池异步投递事件，认证流程不等待接收端
type Async struct {
	sink    Sink
	pool    *ants.Pool
	timeout time.Duration
	logger  *log.Logger
}

// AsyncOption 异步投递选项
type AsyncOption func(*asyncOptions)

type asyncOptions struct {
	size    int
	timeout time.Duration
	logger  *log.Logger
}

// WithPoolSize 协程池大小，默认 16
func WithPoolSize(size int) AsyncOption {
	return func(o *asyncOptions) {
		if size > 0 {
			o.size = size
		}
	}
}

// WithTimeout 单个事件的投递超时，默认 5s
func WithTimeout(d time.Duration) AsyncOption {
	return func(o *asyncOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger 投递失败时的日志
func WithLogger(logger *log.Logger) AsyncOption {
	return func(o *asyncOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewAsync 创建异步投递器，池满时不阻塞调用方
func NewAsync(sink Sink, opts ...AsyncOption) (*Async, error) {
	o := &asyncOptions{size: 16, timeout: 5 * time.Second, logger: log.G}
	for _, opt := range opts {
		opt(o)
	}
	pool, err := ants.NewPool(o.size, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	return &Async{sink: sink, pool: pool, timeout: o.timeout, logger: o.logger}, nil
}

// Record implements Sink，事件在后台写入，调用方 ctx 的取消不影响投递
func (a *Async) Record(ctx context.Context, e Event) error {
	base := context.WithoutCancel(ctx)
	err := a.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(base, a.timeout)
		defer cancel()
		if err := a.sink.Record(ctx, e); err != nil {
			a.logger.Warn().Err(err).Str("audit_id", e.ID).Str("type", string(e.Type)).Msg("audit delivery failed")
		}
	})
	if errors.Is(err, ants.ErrPoolOverload) {
		return ErrOverloaded
	}
	return err
}

// Running 正在执行的投递数
func (a *Async) Running() int {
	return a.pool.Running()
}

// Close 等待已提交的事件投递完成后释放协程池
func (a *Async) Close(ctx context.Context) error {
	timeout := a.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	return a.pool.ReleaseTimeout(timeout)
}
