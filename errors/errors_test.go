package errors

import (
	goerrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(401, "unauthorized")
	assert.Equal(t, 401, err.GetCode())
	assert.Equal(t, "unauthorized", err.GetMessage())
	assert.Equal(t, "code=401, message=unauthorized", err.Error())

	formatted := New(400, "field %s is required", "issuer")
	assert.Equal(t, "field issuer is required", formatted.Message)
}

func TestWithMetadata(t *testing.T) {
	err := New(401, "unauthorized")
	assert.Same(t, err, err.WithMetadata(nil))

	withMeta := err.WithMetadata(map[string]string{"b": "2", "a": "1"})
	assert.NotSame(t, err, withMeta)
	assert.Nil(t, err.Metadata)
	assert.Equal(t, "code=401, message=unauthorized, metadata={a=1, b=2}", withMeta.Error())

	md := withMeta.GetMetadata()
	md["a"] = "changed"
	assert.Equal(t, "1", withMeta.Metadata["a"])
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, 500, "ignored"))

	cause := goerrors.New("connection refused")
	err := Wrap(cause, 503, "redis unavailable")
	require.NotNil(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, err.GetCause())
	assert.Contains(t, err.Error(), "cause=connection refused")
}

func TestIsComparesCodeAndMessage(t *testing.T) {
	a := Unauthorized("unauthorized")
	b := Unauthorized("unauthorized").WithMetadata(map[string]string{"k": "v"})
	c := Unauthorized("expired")

	assert.True(t, Is(b, a))
	assert.False(t, Is(c, a))
	assert.True(t, Is(fmt.Errorf("outer: %w", b), a))
}

func TestFromErrorAndCode(t *testing.T) {
	assert.Nil(t, FromError(nil))
	assert.Equal(t, 0, Code(nil))

	plain := goerrors.New("boom")
	assert.Equal(t, UnknownCode, Code(plain))

	inner := Forbidden("denied")
	wrapped := fmt.Errorf("handler: %w", inner)
	assert.Same(t, inner, FromError(wrapped))
	assert.Equal(t, 403, Code(wrapped))
}
