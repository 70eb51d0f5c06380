package jwt

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// IDGenerator 生成 jti，需并发安全且每次调用唯一
type IDGenerator interface {
	NewID(t time.Time) string
}

// IDGeneratorFunc 函数适配器
type IDGeneratorFunc func(t time.Time) string

// NewID implements IDGenerator
func (f IDGeneratorFunc) NewID(t time.Time) string {
	return f(t)
}

// ULIDGenerator 单调 ULID，同一毫秒内递增，按时间可排序
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewULIDGenerator 创建 ULID 生成器
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// NewID implements IDGenerator
func (g *ULIDGenerator) NewID(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), g.entropy).String()
}

var (
	defaultIDsOnce sync.Once
	defaultIDs     *ULIDGenerator
)

func defaultIDGenerator() IDGenerator {
	defaultIDsOnce.Do(func() {
		defaultIDs = NewULIDGenerator()
	})
	return defaultIDs
}
