package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/authkit/log"
	"github.com/kochabx/authkit/transport"
	"github.com/kochabx/authkit/transport/http/metrics"
)

var _ transport.Server = (*Server)(nil)

const (
	defaultName = "http"
	defaultAddr = ":8080"
)

// Server HTTP 服务，handler 为 *gin.Engine 时挂载 /metrics 与 /health
type Server struct {
	meta   Meta
	server *http.Server
	logger *log.Logger

	metricsOpt MetricsOption
	prom       *metrics.Prometheus
	healthOpt  HealthOption
	checks     []HealthCheck
}

// NewServer 创建服务
func NewServer(addr string, handler http.Handler, opts ...Option) *Server {
	s := &Server{
		server: &http.Server{Addr: addr, Handler: handler},
		logger: log.G,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.meta.Name == "" {
		s.meta.Name = defaultName
	}
	if !transport.ValidateAddress(s.server.Addr) {
		s.logger.Warn().Str("addr", s.server.Addr).Str("default", defaultAddr).Msg("invalid address, using default")
		s.server.Addr = defaultAddr
	}

	if r, ok := handler.(*gin.Engine); ok {
		s.mountMetrics(r)
		s.mountHealth(r)
	}
	return s
}

// Addr 监听地址
func (s *Server) Addr() string {
	return s.server.Addr
}

// Run 阻塞直至服务停止，Shutdown 导致的退出返回 nil
func (s *Server) Run() error {
	s.logger.Info().Str("name", s.meta.Name).Str("addr", s.server.Addr).Msg("server listening")
	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) mountMetrics(r *gin.Engine) {
	if !s.metricsOpt.Enabled {
		return
	}
	if s.prom == nil {
		s.prom = metrics.New("")
	}
	if s.metricsOpt.EnabledGoCollector {
		s.prom.WithGoCollector()
	}
	if s.metricsOpt.EnabledBuildInfoCollector {
		s.prom.WithBuildInfoCollector()
	}
	r.GET(s.metricsOpt.Path, gin.WrapH(s.prom.Handler()))
}

func (s *Server) mountHealth(r *gin.Engine) {
	if !s.healthOpt.Enabled {
		return
	}
	r.GET(s.healthOpt.Path, func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), s.healthOpt.Timeout)
		defer cancel()

		status := gin.H{}
		code := http.StatusOK
		for _, hc := range s.checks {
			if err := hc.Check(ctx); err != nil {
				s.logger.Warn().Err(err).Str("check", hc.Name).Msg("health check failed")
				status[hc.Name] = "down"
				code = http.StatusServiceUnavailable
				continue
			}
			status[hc.Name] = "up"
		}
		if code == http.StatusOK {
			c.JSON(code, gin.H{"status": "ok", "checks": status})
			return
		}
		c.JSON(code, gin.H{"status": "degraded", "checks": status})
	})
}
