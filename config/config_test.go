package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/authkit/errors"
)

type server struct {
	Addr    string        `mapstructure:"addr" default:":8080"`
	Timeout time.Duration `mapstructure:"timeout" default:"5s"`
}

type settings struct {
	Issuer   string `mapstructure:"issuer" validate:"required"`
	Audience string `mapstructure:"audience" default:"clients"`
	Minutes  int    `mapstructure:"minutes" default:"15" validate:"gte=0"`
	Server   server `mapstructure:"server"`
}

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, "authkit.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadDefaultsAndFile(t *testing.T) {
	p := writeFile(t, t.TempDir(), "issuer: app\nserver:\n  timeout: 2s\n")

	cfg, err := New[settings](WithFile(p)).Load()
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.Issuer)
	assert.Equal(t, "clients", cfg.Audience)
	assert.Equal(t, 15, cfg.Minutes)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Server.Timeout)
}

func TestLoadReturnsFreshSnapshot(t *testing.T) {
	p := writeFile(t, t.TempDir(), "issuer: app\n")
	c := New[settings](WithFile(p))

	a, err := c.Load()
	require.NoError(t, err)
	b, err := c.Load()
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, a, b)
}

func TestEnvOverride(t *testing.T) {
	p := writeFile(t, t.TempDir(), "issuer: app\nminutes: 15\n")
	t.Setenv("AUTHKIT_ISSUER", "env-app")
	t.Setenv("AUTHKIT_MINUTES", "30")

	cfg, err := New[settings](WithFile(p)).Load()
	require.NoError(t, err)
	assert.Equal(t, "env-app", cfg.Issuer)
	assert.Equal(t, 30, cfg.Minutes)
}

func TestLoadValidationFailure(t *testing.T) {
	p := writeFile(t, t.TempDir(), "audience: x\n")

	_, err := New[settings](WithFile(p)).Load()
	require.Error(t, err)
	assert.Equal(t, 400, errors.Code(err))
}

func TestMissingFile(t *testing.T) {
	dir := t.TempDir()

	_, err := New[settings](WithName("missing.yaml"), WithPaths(dir)).Load()
	require.Error(t, err)
	assert.Equal(t, 404, errors.Code(err))

	t.Setenv("AUTHKIT_ISSUER", "from-env")
	cfg, err := New[settings](WithName("missing.yaml"), WithPaths(dir), WithOptional()).Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Issuer)
}

func TestWatch(t *testing.T) {
	p := writeFile(t, t.TempDir(), "issuer: app\n")
	c := New[settings](WithFile(p))
	_, err := c.Load()
	require.NoError(t, err)

	updates := make(chan *settings, 4)
	c.Watch(func(s *settings, err error) {
		if err == nil {
			updates <- s
		}
	})

	require.NoError(t, os.WriteFile(p, []byte("issuer: rotated\n"), 0o600))

	select {
	case s := <-updates:
		assert.Equal(t, "rotated", s.Issuer)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
}
