package rate

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const cleanupInterval = 5 * time.Minute

// Memory 进程内令牌桶，每个键一个 rate.Limiter
type Memory struct {
	limit rate.Limit
	cfg   Config
	now   func() time.Time

	limiters    sync.Map
	mu          sync.Mutex
	lastCleanup time.Time
}

// NewMemory 创建进程内限流器
func NewMemory(cfg Config) *Memory {
	return &Memory{
		limit: rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
		cfg:   cfg,
		now:   time.Now,
	}
}

// Allow implements Limiter
func (m *Memory) Allow(_ context.Context, key string) (Decision, error) {
	now := m.now()
	lim := m.limiter(key, now)

	d := Decision{Limit: m.cfg.Requests}
	if lim.AllowN(now, 1) {
		d.Allowed = true
		return d, nil
	}
	r := lim.ReserveN(now, 1)
	d.RetryAfter = r.DelayFrom(now)
	r.CancelAt(now)
	return d, nil
}

func (m *Memory) limiter(key string, now time.Time) *rate.Limiter {
	if v, ok := m.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}
	v, _ := m.limiters.LoadOrStore(key, rate.NewLimiter(m.limit, m.cfg.Burst))
	m.cleanup(now)
	return v.(*rate.Limiter)
}

// cleanup 删除令牌已满的空闲限流器。
// 首次调用或时钟回拨时只重置计时起点。
func (m *Memory) cleanup(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastCleanup.IsZero() || now.Before(m.lastCleanup) {
		m.lastCleanup = now
		return
	}
	if now.Sub(m.lastCleanup) < cleanupInterval {
		return
	}
	m.lastCleanup = now
	m.limiters.Range(func(k, v any) bool {
		if v.(*rate.Limiter).TokensAt(now) >= float64(m.cfg.Burst) {
			m.limiters.Delete(k)
		}
		return true
	})
}
