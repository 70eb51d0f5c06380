package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/kochabx/authkit/core/rate"
)

type limiterFunc func(ctx context.Context, key string) (rate.Decision, error)

func (f limiterFunc) Allow(ctx context.Context, key string) (rate.Decision, error) {
	return f(ctx, key)
}

func TestRateLimit(t *testing.T) {
	lim := rate.NewMemory(rate.Config{Requests: 2, Window: time.Minute, Burst: 2})
	r := setupRouter(RateLimit(RateLimitConfig{Limiter: lim}))

	assert.Equal(t, http.StatusOK, do(r, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(r, "/health", "").Code)

	w := do(r, "/health", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Contains(t, w.Body.String(), "too many requests")
}

func TestRateLimitFailsOpen(t *testing.T) {
	lim := limiterFunc(func(context.Context, string) (rate.Decision, error) {
		return rate.Decision{}, errors.New("redis down")
	})
	r := setupRouter(RateLimit(RateLimitConfig{Limiter: lim}))
	assert.Equal(t, http.StatusOK, do(r, "/health", "").Code)
}

func TestRateLimitKeyFunc(t *testing.T) {
	var keys []string
	lim := limiterFunc(func(_ context.Context, key string) (rate.Decision, error) {
		keys = append(keys, key)
		return rate.Decision{Allowed: true}, nil
	})
	r := setupRouter(RateLimit(RateLimitConfig{Limiter: lim, KeyFunc: func(c *gin.Context) string {
		return c.Request.URL.Path
	}}))
	do(r, "/health", "")
	assert.Equal(t, []string{"/health"}, keys)
}
