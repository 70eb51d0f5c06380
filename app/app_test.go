package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	stop     chan struct{}
	once     sync.Once
	runErr   error
	shutdown bool
	mu       sync.Mutex
}

func newFakeServer(runErr error) *fakeServer {
	return &fakeServer{stop: make(chan struct{}), runErr: runErr}
}

func (s *fakeServer) Run() error {
	if s.runErr != nil {
		return s.runErr
	}
	<-s.stop
	return nil
}

func (s *fakeServer) Shutdown(context.Context) error {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()
	s.once.Do(func() { close(s.stop) })
	return nil
}

func (s *fakeServer) wasShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown
}

func TestRunStop(t *testing.T) {
	srv := newFakeServer(nil)
	var order []string
	var mu sync.Mutex
	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}

	a := New(
		WithServer(srv),
		WithClose("store", record("store"), 0),
		WithClose("authenticator", record("authenticator"), time.Second),
	)
	require.NoError(t, a.RegisterClose("audit", record("audit"), 0))
	assert.Equal(t, Info{ServerCount: 1, CloseCount: 3}, a.Info())

	time.AfterFunc(50*time.Millisecond, a.Stop)
	require.NoError(t, a.Run())

	assert.True(t, srv.wasShutdown())
	assert.Equal(t, []string{"audit", "authenticator", "store"}, order)
	assert.ErrorIs(t, a.Run(), ErrAlreadyStarted)
}

func TestRunServerError(t *testing.T) {
	boom := errors.New("listen failed")
	healthy := newFakeServer(nil)
	a := New(WithServer(newFakeServer(boom), healthy))

	err := a.Run()
	assert.ErrorIs(t, err, boom)
	assert.True(t, healthy.wasShutdown())
}

func TestRunner(t *testing.T) {
	started := make(chan struct{})
	var stopped bool
	a := New(WithRunner("watch", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		stopped = true
		return ctx.Err()
	}))

	go func() {
		<-started
		a.Stop()
	}()
	require.NoError(t, a.Run())
	assert.True(t, stopped)
	assert.Equal(t, 1, a.Info().RunnerCount)
}

func TestRunnerError(t *testing.T) {
	boom := errors.New("watch failed")
	a := New(WithRunner("watch", func(context.Context) error { return boom }))
	assert.ErrorIs(t, a.Run(), boom)
}

func TestCloseFuncFailures(t *testing.T) {
	var ran bool
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := New(
		WithContext(ctx),
		WithClose("last", func(context.Context) error { ran = true; return nil }, 0),
		WithClose("panics", func(context.Context) error { panic("boom") }, 0),
		WithClose("slow", func(ctx context.Context) error { <-ctx.Done(); return ctx.Err() }, 10*time.Millisecond),
		WithClose("nil", nil, 0),
	)
	assert.Equal(t, 3, a.Info().CloseCount)
	assert.Error(t, a.RegisterClose("nil", nil, 0))

	require.NoError(t, a.Run())
	assert.True(t, ran)
}
