package revocation

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kochabx/authkit/log"
)

// Memory 进程内失效存储，适合单实例部署。
// 过期条目在查询时忽略，并由定时任务清理。
type Memory struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time

	spec   string
	cron   *cron.Cron
	logger *log.Logger
}

// MemoryOption 内存存储选项
type MemoryOption func(*Memory)

// WithSweepSpec 清理任务的 cron 表达式，默认 "@every 1m"，空字符串表示不启动清理
func WithSweepSpec(spec string) MemoryOption {
	return func(m *Memory) {
		m.spec = spec
	}
}

// WithMemoryClock 替换时间来源
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// WithMemoryLogger 设置日志
func WithMemoryLogger(logger *log.Logger) MemoryOption {
	return func(m *Memory) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMemory 创建内存存储并启动清理任务
func NewMemory(opts ...MemoryOption) (*Memory, error) {
	m := &Memory{
		entries: make(map[string]time.Time),
		now:     time.Now,
		spec:    "@every 1m",
		logger:  log.G,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.spec != "" {
		m.cron = cron.New()
		if _, err := m.cron.AddFunc(m.spec, m.sweep); err != nil {
			return nil, err
		}
		m.cron.Start()
	}
	return m, nil
}

// Invalidate implements Store
func (m *Memory) Invalidate(_ context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" {
		return ErrEmptyTokenID
	}
	if ttl <= 0 {
		return nil
	}
	expires := m.now().Add(ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.entries[tokenID]; !ok || expires.After(cur) {
		m.entries[tokenID] = expires
	}
	return nil
}

// IsRevoked implements Store
func (m *Memory) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.RLock()
	expires, ok := m.entries[tokenID]
	m.mu.RUnlock()
	return ok && m.now().Before(expires), nil
}

// Len 当前记录数（含未清理的过期条目）
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Sweep 立即清理过期条目，返回清理数量
func (m *Memory) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, expires := range m.entries {
		if !now.Before(expires) {
			delete(m.entries, id)
			n++
		}
	}
	return n
}

func (m *Memory) sweep() {
	if n := m.Sweep(); n > 0 {
		m.logger.Debug().Int("removed", n).Msg("revocation sweep")
	}
}

// Close 停止清理任务并等待正在执行的清理结束
func (m *Memory) Close() error {
	if m.cron != nil {
		<-m.cron.Stop().Done()
	}
	return nil
}
