package jwt

import (
	"crypto/elliptic"
	"encoding/json"
	"testing"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWKSSymmetricIsEmpty(t *testing.T) {
	c := mustConfig(t, nil)
	set, err := c.JWKS()
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
	assert.Empty(t, c.Access().KeyID())
	assert.Nil(t, c.Access().PublicKey())
}

func TestJWKSPublishesAccessKey(t *testing.T) {
	key := ecKey(t, elliptic.P256())
	c := mustConfig(t, func(o *Options) {
		o.AccessTokenAlgorithm = "ES256"
		o.AccessTokenPrivateKey = privatePEM(t, key)
	})

	data, err := c.JWKSJSON()
	require.NoError(t, err)

	set, err := jwk.Parse(data)
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())

	got, ok := set.LookupKeyID(c.Access().KeyID())
	require.True(t, ok)
	assert.Equal(t, "ES256", got.Algorithm().String())
	assert.Equal(t, "sig", got.KeyUsage())

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	keys := raw["keys"].([]any)
	first := keys[0].(map[string]any)
	assert.NotContains(t, first, "d")
}
