package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/authkit/transport/http/metrics"
)

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestNewServerInvalidAddr(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewServer("bad::addr::", gin.New())
	assert.Equal(t, defaultAddr, s.Addr())

	s = NewServer("127.0.0.1:9090", gin.New())
	assert.Equal(t, "127.0.0.1:9090", s.Addr())
}

func TestServerMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	prom := metrics.New("authkit")
	r := gin.New()
	r.Use(prom.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	NewServer(":0", r, WithMetrics(MetricsOption{Enabled: true}, prom))

	require.Equal(t, http.StatusOK, get(r, "/ping").Code)
	w := get(r, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "authkit_http_requests_total")
}

func TestServerMetricsDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewServer(":0", r)
	assert.Equal(t, http.StatusNotFound, get(r, "/metrics").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/health").Code)
}

func TestServerHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var failing error
	r := gin.New()
	NewServer(":0", r, WithHealth(HealthOption{Enabled: true},
		HealthCheck{Name: "store", Check: func(context.Context) error { return nil }},
		HealthCheck{Name: "revocation", Check: func(context.Context) error { return failing }},
	))

	w := get(r, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "up", body.Checks["revocation"])

	failing = errors.New("connection refused")
	w = get(r, "/health")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "down", body.Checks["revocation"])
	assert.Equal(t, "up", body.Checks["store"])
}

func TestServerRunShutdown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewServer("127.0.0.1:0", gin.New(), WithTimeouts(Config{ReadHeaderTimeout: time.Second}))

	done := make(chan error, 1)
	go func() { done <- s.Run() }()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
