package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/authkit/log"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Record(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestNewEvent(t *testing.T) {
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.FixedZone("CST", 8*3600))
	a, b := NewEvent(TypeLogin, now), NewEvent(TypeLogin, now)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, time.UTC, a.Time.Location())
	assert.True(t, a.Time.Equal(now))
}

func TestMulti(t *testing.T) {
	r1, r2 := &recorder{}, &recorder{}
	failing := SinkFunc(func(context.Context, Event) error { return errors.New("boom") })

	err := Multi(r1, failing, r2).Record(context.Background(), NewEvent(TypeLogout, time.Now()))
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, r1.Len())
	assert.Equal(t, 1, r2.Len())
	assert.NoError(t, Discard.Record(context.Background(), Event{}))
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithWriter(&buf)
	e := NewEvent(TypeRefresh, time.Now())
	e.Subject, e.TokenID, e.Reason = "u1", "jti-1", "revoked"

	require.NoError(t, NewLogSink(logger).Record(context.Background(), e))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "refresh", line["type"])
	assert.Equal(t, "u1", line["subject"])
	assert.Equal(t, "revoked", line["reason"])
}

type fakeWriter struct {
	msgs []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestKafkaSink(t *testing.T) {
	w := &fakeWriter{}
	e := NewEvent(TypeLogin, time.Now())
	e.Success, e.Subject = true, "u1"

	require.NoError(t, NewKafkaSink(w).Record(context.Background(), e))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("u1"), w.msgs[0].Key)
	assert.Equal(t, "type", w.msgs[0].Headers[0].Key)

	var got Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, e.ID, got.ID)
	assert.True(t, got.Success)
}

func TestAsync(t *testing.T) {
	r := &recorder{}
	a, err := NewAsync(r, WithPoolSize(16), WithTimeout(time.Second))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	for range 10 {
		require.NoError(t, a.Record(ctx, NewEvent(TypeLogin, time.Now())))
		time.Sleep(time.Millisecond)
	}
	cancel()

	assert.Eventually(t, func() bool { return r.Len() == 10 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, a.Close(context.Background()))
}

func TestAsyncOverload(t *testing.T) {
	release := make(chan struct{})
	blocking := SinkFunc(func(context.Context, Event) error {
		<-release
		return nil
	})
	a, err := NewAsync(blocking, WithPoolSize(1))
	require.NoError(t, err)

	require.NoError(t, a.Record(context.Background(), Event{}))
	assert.Eventually(t, func() bool { return a.Running() == 1 }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, a.Record(context.Background(), Event{}), ErrOverloaded)

	close(release)
	require.NoError(t, a.Close(context.Background()))
}
