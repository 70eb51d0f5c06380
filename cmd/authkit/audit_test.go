package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/authkit/core/auth/audit"
)

type fakeReader struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(f.msgs) == 0 {
		if f.err != nil {
			return kafka.Message{}, f.err
		}
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := f.msgs[0]
	f.msgs = f.msgs[1:]
	return m, nil
}

func eventMessage(t *testing.T, typ audit.Type, success bool) kafka.Message {
	t.Helper()
	e := audit.NewEvent(typ, time.Now())
	e.Success = success
	value, err := json.Marshal(e)
	require.NoError(t, err)
	return kafka.Message{Value: value}
}

func TestTail(t *testing.T) {
	r := &fakeReader{
		msgs: []kafka.Message{
			eventMessage(t, audit.TypeLogin, true),
			{Value: []byte("not json")},
			eventMessage(t, audit.TypeRefresh, false),
			eventMessage(t, audit.TypeLogin, false),
		},
		err: io.EOF,
	}
	var out bytes.Buffer
	require.NoError(t, tail(context.Background(), r, &out, eventFilter{types: []string{"login"}}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	for _, l := range lines {
		var e audit.Event
		require.NoError(t, json.Unmarshal([]byte(l), &e))
		assert.Equal(t, audit.TypeLogin, e.Type)
	}
}

func TestTailFailuresOnly(t *testing.T) {
	r := &fakeReader{
		msgs: []kafka.Message{
			eventMessage(t, audit.TypeLogin, true),
			eventMessage(t, audit.TypeLogout, false),
		},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	require.NoError(t, tail(ctx, r, &out, eventFilter{failuresOnly: true}))
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
	assert.Contains(t, out.String(), `"type":"logout"`)
}

func TestTailReadError(t *testing.T) {
	boom := errors.New("broker unavailable")
	err := tail(context.Background(), &fakeReader{err: boom}, io.Discard, eventFilter{})
	assert.ErrorIs(t, err, boom)
}
