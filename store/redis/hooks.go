package redis

import (
	"context"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kochabx/authkit/log"
)

// DebugHook 命令日志与慢查询检测。只记录命令名，不记录参数，键值中可能含令牌 ID。
type DebugHook struct {
	logger          *log.Logger
	slowQueryThresh time.Duration
}

// NewDebugHook 创建调试 Hook
func NewDebugHook(logger *log.Logger, slowQueryThresh time.Duration) *DebugHook {
	if logger == nil {
		logger = log.G
	}
	return &DebugHook{logger: logger, slowQueryThresh: slowQueryThresh}
}

func (h *DebugHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		start := time.Now()
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.logger.Error().Str("addr", addr).Dur("duration", time.Since(start)).Err(err).Msg("redis dial failed")
		}
		return conn, err
	}
}

func (h *DebugHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.observe(time.Since(start), err, cmd.FullName())
		return err
	}
}

func (h *DebugHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		names := make([]string, len(cmds))
		for i, cmd := range cmds {
			names[i] = cmd.FullName()
		}
		h.observe(time.Since(start), err, names...)
		return err
	}
}

func (h *DebugHook) observe(d time.Duration, err error, cmds ...string) {
	switch {
	case err != nil && err != redis.Nil:
		h.logger.Warn().Strs("cmds", cmds).Dur("duration", d).Err(err).Msg("redis command failed")
	case h.slowQueryThresh > 0 && d > h.slowQueryThresh:
		h.logger.Warn().Strs("cmds", cmds).Dur("duration", d).Dur("threshold", h.slowQueryThresh).Msg("redis slow command")
	default:
		h.logger.Debug().Strs("cmds", cmds).Dur("duration", d).Msg("redis command")
	}
}
