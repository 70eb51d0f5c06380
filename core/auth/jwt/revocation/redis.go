package revocation

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCmdable Redis 存储所需的命令子集，redis.UniversalClient 满足该接口
type RedisCmdable interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// Redis 基于 Redis 键过期的失效存储，适合多实例部署
type Redis struct {
	client    RedisCmdable
	keyPrefix string
}

// RedisOption Redis 存储选项
type RedisOption func(*Redis)

// WithKeyPrefix 设置键前缀，默认 "authkit:revoked:"
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.keyPrefix = prefix
	}
}

// NewRedis 创建 Redis 失效存储
func NewRedis(client RedisCmdable, opts ...RedisOption) *Redis {
	r := &Redis{client: client, keyPrefix: "authkit:revoked:"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Invalidate implements Store
func (r *Redis) Invalidate(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" {
		return ErrEmptyTokenID
	}
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.keyPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked implements Store
func (r *Redis) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.keyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
