package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signing struct {
	Issuer    string `validate:"required"`
	Secret    string `validate:"min=32"`
	Minutes   int    `validate:"gte=0"`
	Algorithm string `validate:"jwtalg"`
}

func TestStructValid(t *testing.T) {
	s := signing{
		Issuer:    "app",
		Secret:    "0123456789abcdef0123456789abcdef",
		Minutes:   15,
		Algorithm: "HS256",
	}
	assert.NoError(t, Validate.Struct(&s))
}

func TestStructInvalid(t *testing.T) {
	s := signing{Secret: "short-secret-value", Minutes: -1, Algorithm: "none"}
	err := New().Struct(&s)
	require.Error(t, err)

	ve, ok := AsValidationErrors(err)
	require.True(t, ok)
	assert.Len(t, ve.Fields(), 4)
	assert.True(t, HasFieldError(err, "Issuer"))
	assert.True(t, HasFieldError(err, "Algorithm"))
	assert.False(t, HasFieldError(err, "Unknown"))

	assert.NotContains(t, err.Error(), "short-secret-value")
	assert.Contains(t, err.Error(), "Algorithm must be a supported JWS signing algorithm")
}

func TestJWTAlgRule(t *testing.T) {
	v := New()
	for _, alg := range []string{"HS256", "HS512", "RS256", "PS384", "ES256", "EdDSA"} {
		assert.NoError(t, v.Var(alg, TagJWTAlg), alg)
	}
	for _, alg := range []string{"", "none", "HS1", "hs256"} {
		assert.Error(t, v.Var(alg, TagJWTAlg), alg)
	}
}

func TestChineseMessages(t *testing.T) {
	v := New(WithLanguage("zh"))
	err := v.Struct(&signing{Issuer: "app", Secret: "0123456789abcdef0123456789abcdef", Algorithm: "bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "必须是受支持的JWS签名算法")
}

func TestNilTarget(t *testing.T) {
	assert.Error(t, Validate.Struct(nil))
}
