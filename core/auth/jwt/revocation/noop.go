package revocation

import (
	"context"
	"time"
)

// Noop 不记录任何失效，关闭轮换或测试时使用
type Noop struct{}

func (Noop) Invalidate(context.Context, string, time.Duration) error {
	return nil
}

func (Noop) IsRevoked(context.Context, string) (bool, error) {
	return false, nil
}
