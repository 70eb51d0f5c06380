package revocation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clientv3 "go.etcd.io/etcd/client/v3"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var s Store = Noop{}
	require.NoError(t, s.Invalidate(ctx, "id", time.Hour))
	revoked, err := s.IsRevoked(ctx, "id")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	m, err := NewMemory(WithSweepSpec(""), WithMemoryClock(c.Now))
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Invalidate(ctx, "a", time.Minute))
	require.NoError(t, m.Invalidate(ctx, "b", time.Hour))
	require.NoError(t, m.Invalidate(ctx, "expired", 0))
	assert.ErrorIs(t, m.Invalidate(ctx, "", time.Minute), ErrEmptyTokenID)
	assert.Equal(t, 2, m.Len())

	revoked, _ := m.IsRevoked(ctx, "a")
	assert.True(t, revoked)
	revoked, _ = m.IsRevoked(ctx, "expired")
	assert.False(t, revoked)

	c.Advance(time.Minute)
	revoked, _ = m.IsRevoked(ctx, "a")
	assert.False(t, revoked)
	revoked, _ = m.IsRevoked(ctx, "b")
	assert.True(t, revoked)

	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Len())
}

func TestMemoryKeepsLongestTTL(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	m, err := NewMemory(WithSweepSpec(""), WithMemoryClock(c.Now))
	require.NoError(t, err)

	require.NoError(t, m.Invalidate(ctx, "a", time.Hour))
	require.NoError(t, m.Invalidate(ctx, "a", time.Minute))
	c.Advance(30 * time.Minute)
	revoked, _ := m.IsRevoked(ctx, "a")
	assert.True(t, revoked)
}

func TestMemoryCronSweep(t *testing.T) {
	m, err := NewMemory(WithSweepSpec("@every 1s"))
	require.NoError(t, err)
	require.NoError(t, m.Invalidate(context.Background(), "a", 10*time.Millisecond))

	assert.Eventually(t, func() bool { return m.Len() == 0 }, 3*time.Second, 50*time.Millisecond)
	require.NoError(t, m.Close())
}

func TestMemoryInvalidSpec(t *testing.T) {
	_, err := NewMemory(WithSweepSpec("not a spec"))
	assert.Error(t, err)
}

type fakeRedis struct {
	mu   sync.Mutex
	keys map[string]time.Duration
	err  error
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.keys[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.keys[k]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedis(t *testing.T) {
	ctx := context.Background()
	f := &fakeRedis{keys: map[string]time.Duration{}}
	r := NewRedis(f, WithKeyPrefix("t:"))

	require.NoError(t, r.Invalidate(ctx, "a", time.Minute))
	require.NoError(t, r.Invalidate(ctx, "skip", -time.Second))
	assert.Equal(t, map[string]time.Duration{"t:a": time.Minute}, f.keys)

	revoked, err := r.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)
	revoked, err = r.IsRevoked(ctx, "skip")
	require.NoError(t, err)
	assert.False(t, revoked)

	f.err = errors.New("down")
	_, err = r.IsRevoked(ctx, "a")
	assert.Error(t, err)
	assert.Error(t, r.Invalidate(ctx, "b", time.Minute))
}

type fakeEtcd struct {
	granted []int64
	keys    map[string]bool
}

func (f *fakeEtcd) Grant(ctx context.Context, ttl int64) (*clientv3.LeaseGrantResponse, error) {
	f.granted = append(f.granted, ttl)
	return &clientv3.LeaseGrantResponse{ID: clientv3.LeaseID(len(f.granted)), TTL: ttl}, nil
}

func (f *fakeEtcd) Put(ctx context.Context, key, val string, opts ...clientv3.OpOption) (*clientv3.PutResponse, error) {
	f.keys[key] = true
	return &clientv3.PutResponse{}, nil
}

func (f *fakeEtcd) Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error) {
	if f.keys[key] {
		return &clientv3.GetResponse{Count: 1}, nil
	}
	return &clientv3.GetResponse{}, nil
}

func TestEtcd(t *testing.T) {
	ctx := context.Background()
	f := &fakeEtcd{keys: map[string]bool{}}
	e := NewEtcd(f, "")

	require.NoError(t, e.Invalidate(ctx, "a", 1500*time.Millisecond))
	require.NoError(t, e.Invalidate(ctx, "b", time.Hour))
	require.NoError(t, e.Invalidate(ctx, "c", 0))
	assert.Equal(t, []int64{2, 3600}, f.granted)
	assert.True(t, f.keys["/authkit/revoked/a"])

	revoked, err := e.IsRevoked(ctx, "b")
	require.NoError(t, err)
	assert.True(t, revoked)
	revoked, err = e.IsRevoked(ctx, "c")
	require.NoError(t, err)
	assert.False(t, revoked)

	assert.ErrorIs(t, e.Invalidate(ctx, "", time.Minute), ErrEmptyTokenID)
}
