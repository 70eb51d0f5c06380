package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/authkit/core/auth"
	"github.com/kochabx/authkit/core/auth/jwt"
	"github.com/kochabx/authkit/core/auth/principal"
)

func newAdminRouter(t *testing.T) (*gin.Engine, *principal.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := jwt.Build(func(o *jwt.Options) {
		o.AccessTokenSecret = "access-secret-0123456789abcdefghijklmnop"
		o.RefreshTokenSecret = "refresh-secret-0123456789abcdefghijklmno"
		o.Issuer = "authkit"
		o.Audience = "authkit-clients"
	}, nil)
	require.NoError(t, err)

	store, err := principal.NewMemory(principal.NewBcrypt(4))
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, principal.Record{Key: "u-1", Username: "alice", Roles: []string{"admin"}}, "s3cret"))
	require.NoError(t, store.Create(ctx, principal.Record{Key: "u-2", Username: "bob", Roles: []string{"viewer"}}, "s3cret"))

	a, err := auth.New(cfg, store)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	h := NewHandler(a, cfg.JWKSJSON)
	r := gin.New()
	h.Register(r)
	NewAdminHandler(store, h, nil, nil).Register(r)
	return r, store
}

func loginAs(t *testing.T, r http.Handler, user string) string {
	t.Helper()
	w, env := do(t, r, http.MethodPost, "/auth/login", `{"identifier":"`+user+`","secret":"s3cret"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	var tk tokens
	require.NoError(t, json.Unmarshal(env.Data, &tk))
	return tk.AccessToken
}

func TestAdminRequiresRole(t *testing.T) {
	r, _ := newAdminRouter(t)
	body := `{"username":"carol","secret":"long-enough"}`

	w, env := do(t, r, http.MethodPost, "/admin/principals", body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", env.Message)

	w, env = do(t, r, http.MethodPost, "/admin/principals", body, loginAs(t, r, "bob"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", env.Message)
}

func TestAdminCreatePrincipal(t *testing.T) {
	r, store := newAdminRouter(t)
	token := loginAs(t, r, "alice")

	w, env := do(t, r, http.MethodPost, "/admin/principals",
		`{"username":"carol","email":"carol@example.com","secret":"long-enough","roles":["viewer"]}`, token)
	require.Equal(t, http.StatusOK, w.Code)

	var rec principal.Record
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.NotEmpty(t, rec.Key)
	assert.Equal(t, "carol", rec.Username)
	assert.NotContains(t, string(env.Data), "long-enough")

	p, err := store.VerifyCredentials(context.Background(), "carol@example.com", "long-enough")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, rec.Key, p.Key)

	w, env = do(t, r, http.MethodPost, "/admin/principals", `{"key":"u-9","username":"carol","secret":"long-enough"}`, token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "principal already exists", env.Message)

	for _, body := range []string{
		`{"username":"dave","secret":"short"}`,
		`{"secret":"long-enough"}`,
		`{"username":"dave","secret":"long-enough","email":"not-an-email"}`,
		`{"username":"dave","secret":"long-enough","roles":[""]}`,
		`not json`,
	} {
		w, _ = do(t, r, http.MethodPost, "/admin/principals", body, token)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestAdminSetRoles(t *testing.T) {
	r, store := newAdminRouter(t)
	token := loginAs(t, r, "alice")

	w, _ := do(t, r, http.MethodPut, "/admin/principals/u-2/roles", `{"roles":["admin","viewer"]}`, token)
	require.Equal(t, http.StatusOK, w.Code)

	p, err := store.FindByKey(context.Background(), "u-2")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"admin", "viewer"}, p.Roles)

	w, _ = do(t, r, http.MethodPost, "/admin/principals", `{"username":"erin","secret":"long-enough"}`, loginAs(t, r, "bob"))
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := do(t, r, http.MethodPut, "/admin/principals/missing/roles", `{"roles":["viewer"]}`, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "principal not found", env.Message)
}
