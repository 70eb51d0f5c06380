package middleware

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/authkit/core/rate"
	"github.com/kochabx/authkit/errors"
	"github.com/kochabx/authkit/log"
	"github.com/kochabx/authkit/transport/http/response"
)

// ErrTooManyRequests 超出限流
var ErrTooManyRequests = errors.TooManyRequests("too many requests")

// RateLimitConfig 限流中间件配置
type RateLimitConfig struct {
	Limiter rate.Limiter               // 必需
	KeyFunc func(*gin.Context) string // 默认客户端 IP
	Logger  *log.Logger
}

// RateLimit 按键限流，超出时返回 429 并设置 Retry-After。
// 限流器故障时放行请求。
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		panic("middleware: rate limiter is required")
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	if cfg.Logger == nil {
		cfg.Logger = log.G
	}

	return func(c *gin.Context) {
		key := cfg.KeyFunc(c)
		if key == "" {
			c.Next()
			return
		}

		d, err := cfg.Limiter.Allow(c.Request.Context(), key)
		if err != nil {
			cfg.Logger.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("rate limiter unavailable")
			c.Next()
			return
		}
		if !d.Allowed {
			retry := max(int(math.Ceil(d.RetryAfter.Seconds())), 1)
			c.Header("Retry-After", strconv.Itoa(retry))
			c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			cfg.Logger.Info().Str("key", key).Str("path", c.Request.URL.Path).Msg("rate limit exceeded")
			response.GinJSONE(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
