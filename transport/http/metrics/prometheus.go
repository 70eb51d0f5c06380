// Package metrics HTTP 层 Prometheus 指标
package metrics

import (
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus 独立的指标注册表与 HTTP 请求指标
type Prometheus struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New 创建注册表并注册请求指标
func New(namespace string) *Prometheus {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Prometheus{
		registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// WithGoCollector 注册 Go 运行时指标
func (p *Prometheus) WithGoCollector() *Prometheus {
	p.registry.MustRegister(collectors.NewGoCollector(
		collectors.WithGoCollectorRuntimeMetrics(collectors.GoRuntimeMetricsRule{Matcher: regexp.MustCompile("/.*")}),
	))
	return p
}

// WithBuildInfoCollector 注册构建信息指标
func (p *Prometheus) WithBuildInfoCollector() *Prometheus {
	p.registry.MustRegister(collectors.NewBuildInfoCollector())
	return p
}

// Registry 注册表，供其他组件注册指标
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler 指标导出处理器
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Middleware 记录请求数与耗时，route 取路由模板，未匹配的路由记为 "unmatched"
func (p *Prometheus) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		p.requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		p.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
