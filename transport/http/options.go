package http

import (
	"context"
	"time"

	"github.com/kochabx/authkit/core/tag"
	"github.com/kochabx/authkit/log"
	"github.com/kochabx/authkit/transport/http/metrics"
)

// Config HTTP 服务配置
type Config struct {
	Addr              string        `json:"addr" mapstructure:"addr" default:":8080"`
	ReadHeaderTimeout time.Duration `json:"read_header_timeout" mapstructure:"read_header_timeout" default:"5s"`
	ReadTimeout       time.Duration `json:"read_timeout" mapstructure:"read_timeout" default:"15s"`
	WriteTimeout      time.Duration `json:"write_timeout" mapstructure:"write_timeout" default:"15s"`
	IdleTimeout       time.Duration `json:"idle_timeout" mapstructure:"idle_timeout" default:"60s"`
	Metrics           MetricsOption `json:"metrics" mapstructure:"metrics"`
	Health            HealthOption  `json:"health" mapstructure:"health"`
	// TrustedProxies 可信反向代理的 IP 或 CIDR。为空时不信任任何转发头，客户端 IP 取连接对端地址
	TrustedProxies []string `json:"trusted_proxies" mapstructure:"trusted_proxies" validate:"dive,ip|cidr"`
}

// MetricsOption /metrics 配置
type MetricsOption struct {
	Enabled                   bool   `json:"enabled" mapstructure:"enabled" default:"true"`
	Path                      string `json:"path" mapstructure:"path" default:"/metrics"`
	EnabledGoCollector        bool   `json:"enabled_go_collector" mapstructure:"enabled_go_collector"`
	EnabledBuildInfoCollector bool   `json:"enabled_build_info_collector" mapstructure:"enabled_build_info_collector"`
}

func (m *MetricsOption) init() error {
	return tag.ApplyDefaults(m)
}

// HealthOption /health 配置
type HealthOption struct {
	Enabled bool          `json:"enabled" mapstructure:"enabled" default:"true"`
	Path    string        `json:"path" mapstructure:"path" default:"/health"`
	Timeout time.Duration `json:"timeout" mapstructure:"timeout" default:"2s"`
}

func (h *HealthOption) init() error {
	return tag.ApplyDefaults(h)
}

// HealthCheck 依赖健康检查，例如 redis、数据库 Ping
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Meta 服务元数据
type Meta struct {
	Name string
}

// Option 服务选项
type Option func(*Server)

// WithMeta 设置元数据
func WithMeta(meta Meta) Option {
	return func(s *Server) {
		s.meta = meta
	}
}

// WithLogger 设置日志
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics 挂载 /metrics，prom 为 nil 时创建新的注册表
func WithMetrics(opt MetricsOption, prom *metrics.Prometheus) Option {
	return func(s *Server) {
		if err := opt.init(); err != nil {
			s.logger.Error().Err(err).Msg("invalid metrics option")
			return
		}
		s.metricsOpt = opt
		s.prom = prom
	}
}

// WithHealth 挂载 /health
func WithHealth(opt HealthOption, checks ...HealthCheck) Option {
	return func(s *Server) {
		if err := opt.init(); err != nil {
			s.logger.Error().Err(err).Msg("invalid health option")
			return
		}
		s.healthOpt = opt
		s.checks = append(s.checks, checks...)
	}
}

// WithTimeouts 设置 http.Server 超时
func WithTimeouts(cfg Config) Option {
	return func(s *Server) {
		s.server.ReadHeaderTimeout = cfg.ReadHeaderTimeout
		s.server.ReadTimeout = cfg.ReadTimeout
		s.server.WriteTimeout = cfg.WriteTimeout
		s.server.IdleTimeout = cfg.IdleTimeout
	}
}
