package jwt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimsSetPreservesOrder(t *testing.T) {
	c := NewClaimsBuilder(0).
		Add("z", "1").
		Add("a", int64(2)).
		Add("m", []string{"x", "y"}).
		Build()

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, `{"z":"1","a":2,"m":["x","y"]}`, string(data))

	var decoded ClaimsSet
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []string{"z", "a", "m"}, decoded.Names())
	assert.Equal(t, []string{"x", "y"}, decoded.GetStrings("m"))

	again, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestClaimsBuilderReplacesInPlace(t *testing.T) {
	b := NewClaimsBuilder(2).Add("a", "1").Add("b", "2")
	first := b.Build()
	b.Add("a", "3")
	second := b.Build()

	v, _ := first.Get("a")
	assert.Equal(t, "1", v)
	v, _ = second.Get("a")
	assert.Equal(t, "3", v)
	assert.Equal(t, []string{"a", "b"}, second.Names())
}

func TestClaimsSetUnmarshalRejects(t *testing.T) {
	cases := map[string]string{
		"not object": `["a"]`,
		"duplicate":  `{"sub":"a","sub":"b"}`,
		"trailing":   `{"sub":"a"}{"x":1}`,
		"truncated":  `{"sub":"a"`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			var c ClaimsSet
			assert.Error(t, json.Unmarshal([]byte(in), &c))
		})
	}
}

func TestClaimsSetAccessors(t *testing.T) {
	var c ClaimsSet
	require.NoError(t, json.Unmarshal([]byte(
		`{"sub":"u1","iss":"app","aud":"app-clients","iat":1700000000,"exp":1700000900.5,"jti":"id","token_type":"refresh"}`), &c))

	assert.Equal(t, "u1", c.Subject())
	assert.Equal(t, "app", c.Issuer())
	assert.Equal(t, []string{"app-clients"}, c.Audience())
	assert.Equal(t, "id", c.ID())
	assert.Equal(t, KindRefresh, c.Kind())

	iat, ok := c.IssuedAt()
	require.True(t, ok)
	assert.Equal(t, time.Unix(1700000000, 0), iat)

	exp, err := c.GetExpirationTime()
	require.NoError(t, err)
	assert.Equal(t, int64(1700000900), exp.Unix())

	nbf, err := c.GetNotBefore()
	assert.NoError(t, err)
	assert.Nil(t, nbf)
}

func TestClaimsSetAllStopsEarly(t *testing.T) {
	c := NewClaimsBuilder(3).Add("a", 1).Add("b", 2).Add("c", 3).Build()
	var seen []string
	for name := range c.All() {
		seen = append(seen, name)
		if name == "b" {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestAccessClaimsProvider(t *testing.T) {
	c := AccessClaimsProvider{}.ClaimsFor(Principal{
		Key:      "u1",
		Username: "alice",
		Email:    "alice@example.com",
		Roles:    []string{"admin"},
		Attributes: map[string]string{
			"tenant": "t1",
			"dept":   "ops",
			"exp":    "9999999999",
			"sub":    "evil",
		},
	})

	assert.Equal(t, []string{"sub", "name", "email", "roles", "dept", "tenant"}, c.Names())
	assert.Equal(t, "u1", c.Subject())
}

func TestRefreshClaimsProvider(t *testing.T) {
	c := RefreshClaimsProvider{}.ClaimsFor(Principal{Key: "u1", Email: "a@b.c", Roles: []string{"r"}})
	assert.Equal(t, []string{"sub"}, c.Names())
}

func TestClaimsProviderFunc(t *testing.T) {
	p := ClaimsProviderFunc(func(p Principal) ClaimsSet {
		return NewClaimsBuilder(1).Add(ClaimSubject, "fixed").Build()
	})
	assert.Equal(t, "fixed", p.ClaimsFor(Principal{}).Subject())
}
