// Package revocation 刷新令牌失效存储。轮换后的旧 jti 写入存储，TTL 为旧令牌剩余有效期。
package revocation

import (
	"context"
	"errors"
	"time"
)

// Store 令牌失效存储
type Store interface {
	// Invalidate 使 tokenID 失效，ttl <= 0 表示令牌已过期，无需记录
	Invalidate(ctx context.Context, tokenID string, ttl time.Duration) error

	// IsRevoked tokenID 是否已失效
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// ErrEmptyTokenID 令牌 ID 为空
var ErrEmptyTokenID = errors.New("revocation: empty token id")

var (
	_ Store = Noop{}
	_ Store = (*Memory)(nil)
	_ Store = (*Redis)(nil)
	_ Store = (*Etcd)(nil)
)
