// Package rate 按键限流，用于登录等易被暴力尝试的接口
package rate

import (
	"context"
	"time"
)

// Limiter 按键判断请求是否放行
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Decision 限流结果
type Decision struct {
	Allowed    bool
	Limit      int
	RetryAfter time.Duration
}

// Config 限流参数：Window 内最多 Requests 次，Burst 为突发容量
type Config struct {
	Requests int           `json:"requests" mapstructure:"requests" default:"5" validate:"gte=1"`
	Window   time.Duration `json:"window" mapstructure:"window" default:"1m" validate:"gt=0"`
	Burst    int           `json:"burst" mapstructure:"burst" default:"5" validate:"gte=1"`
}
