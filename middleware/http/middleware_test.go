package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/authkit/core/auth"
	"github.com/kochabx/authkit/core/auth/jwt"
	"github.com/kochabx/authkit/transport/http/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	tokens map[string]jwt.ClaimsSet
}

func (f fakeVerifier) VerifyAccess(_ context.Context, token string) (jwt.ClaimsSet, error) {
	if token == "refresh" {
		return jwt.ClaimsSet{}, auth.ErrWrongTokenKind
	}
	c, ok := f.tokens[token]
	if !ok {
		return jwt.ClaimsSet{}, auth.ErrInvalidSignature
	}
	return c, nil
}

func newVerifier() fakeVerifier {
	return fakeVerifier{tokens: map[string]jwt.ClaimsSet{
		"admin": jwt.NewClaimsBuilder(2).Add(jwt.ClaimSubject, "u-1").Add(jwt.ClaimRoles, []string{"admin"}).Build(),
		"user":  jwt.NewClaimsBuilder(1).Add(jwt.ClaimSubject, "u-2").Build(),
	}}
}

func setupRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	r.GET("/me", func(c *gin.Context) {
		response.GinJSON(c, gin.H{"subject": SubjectFrom(c.Request.Context())})
	})
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func do(r http.Handler, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	r := setupRouter(Auth(AuthConfig{Verifier: newVerifier(), SkipPaths: []string{"/health"}}))

	w := do(r, "/me", "Bearer admin")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subject":"u-1"`)

	w = do(r, "/me", "bearer user")
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusOK, do(r, "/health", "").Code)

	for _, h := range []string{"", "Bearer", "Basic admin", "Bearer forged", "Bearer refresh"} {
		w := do(r, "/me", h)
		assert.Equal(t, http.StatusUnauthorized, w.Code, h)
		assert.Equal(t, `Bearer realm="authkit"`, w.Header().Get("WWW-Authenticate"))

		var body response.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 401, body.Code)
		assert.Equal(t, "unauthorized", body.Message)
	}
}

func TestExtractors(t *testing.T) {
	e := ChainExtractors(BearerExtractor, QueryExtractor("access_token"), CookieExtractor("at"))
	r := setupRouter(Auth(AuthConfig{Verifier: newVerifier(), Extractor: e}))

	assert.Equal(t, http.StatusOK, do(r, "/me?access_token=user", "").Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "at", Value: "admin"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPermission(t *testing.T) {
	r := setupRouter(
		Auth(AuthConfig{Verifier: newVerifier()}),
		Permission(PermissionConfig{Checker: RequireRoles("admin")}),
	)
	assert.Equal(t, http.StatusOK, do(r, "/me", "Bearer admin").Code)

	w := do(r, "/me", "Bearer user")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"forbidden"`)

	// 未经 Auth 的请求
	r = setupRouter(Permission(PermissionConfig{Checker: RequireRoles("admin")}))
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(RecoveryConfig{DisableStack: true}), Logger())
	r.GET("/panic", func(*gin.Context) { panic("boom") })

	w := do(r, "/panic", "Bearer secret-token")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"internal error"`)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestPathMatcher(t *testing.T) {
	pm := NewPathMatcher([]string{"/health", "/auth/**", "/api/*/users"})

	tests := map[string]bool{
		"/health":          true,
		"/health/x":        false,
		"/auth":            true,
		"/auth/login":      true,
		"/authz":           false,
		"/api/v1/users":    true,
		"/api/v1/v2/users": false,
		"/":                false,
	}
	for p, want := range tests {
		assert.Equal(t, want, pm.Match(p), p)
	}

	var nilMatcher *PathMatcher
	assert.False(t, nilMatcher.Match("/health"))
}

func TestRequestID(t *testing.T) {
	r := setupRouter(RequestID(), Logger())

	w := do(r, "/health", "")
	id := w.Header().Get(RequestIDHeader)
	assert.Len(t, id, 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
}
