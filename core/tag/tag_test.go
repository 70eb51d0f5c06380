package tag

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type params struct {
	ClockSkew      time.Duration `default:"30s"`
	ValidateIssuer *bool         `default:"true"`
	Algorithm      string        `default:"HS256"`
}

type settings struct {
	Issuer     string   `default:"authkit"`
	Minutes    int      `default:"15"`
	Ratio      float64  `default:"0.5"`
	Scopes     []string `default:"read,write"`
	Enabled    bool     `default:"true"`
	Params     params
	Refresh    *params
	untouched  string `default:"x"`
	NoDefault  string
	Overridden int `default:"99"`
}

func TestApplyDefaults(t *testing.T) {
	s := &settings{Overridden: 7}
	require.NoError(t, ApplyDefaults(s))

	assert.Equal(t, "authkit", s.Issuer)
	assert.Equal(t, 15, s.Minutes)
	assert.InDelta(t, 0.5, s.Ratio, 1e-9)
	assert.Equal(t, []string{"read", "write"}, s.Scopes)
	assert.True(t, s.Enabled)
	assert.Equal(t, 30*time.Second, s.Params.ClockSkew)
	require.NotNil(t, s.Params.ValidateIssuer)
	assert.True(t, *s.Params.ValidateIssuer)
	require.NotNil(t, s.Refresh)
	assert.Equal(t, "HS256", s.Refresh.Algorithm)
	assert.Empty(t, s.untouched)
	assert.Empty(t, s.NoDefault)
	assert.Equal(t, 7, s.Overridden)
}

func TestApplyDefaultsKeepsExplicitFalsePointer(t *testing.T) {
	off := false
	p := &params{ValidateIssuer: &off}
	require.NoError(t, ApplyDefaults(p))
	assert.False(t, *p.ValidateIssuer)
}

func TestApplyDefaultsErrors(t *testing.T) {
	assert.ErrorIs(t, ApplyDefaults(settings{}), ErrTargetMustBePointer)
	assert.ErrorIs(t, ApplyDefaults((*settings)(nil)), ErrTargetIsNil)

	n := 1
	assert.ErrorIs(t, ApplyDefaults(&n), ErrUnsupportedType)

	type bad struct {
		Minutes int `default:"fifteen"`
	}
	err := ApplyDefaults(&bad{})
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Minutes", fe.Path)
}

func TestWithSeparator(t *testing.T) {
	type cfg struct {
		Audiences []string `default:"a|b|c"`
	}
	c := &cfg{}
	require.NoError(t, ApplyDefaults(c, WithSeparator("|")))
	assert.Equal(t, []string{"a", "b", "c"}, c.Audiences)
}

type embeddedBase struct {
	Level string `default:"silent"`
	hidden int
}

func TestApplyDefaultsUnexportedEmbedded(t *testing.T) {
	type driver struct {
		Host string `default:"localhost"`
		embeddedBase
	}
	d := &driver{}
	require.NoError(t, ApplyDefaults(d))
	assert.Equal(t, "localhost", d.Host)
	assert.Equal(t, "silent", d.Level)
	assert.Zero(t, d.hidden)
}
