package auth

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 操作名，作为指标标签
const (
	OpLogin   = "login"
	OpRefresh = "refresh"
	OpLogout  = "logout"
	OpVerify  = "verify"
)

// 结果标签
const (
	resultSuccess = "success"
	resultFailure = "failure"
	resultError   = "error"
)

// Metrics Prometheus 认证指标，nil 表示不采集
type Metrics struct {
	Attempts *prometheus.CounterVec   // 按操作、结果、原因计数
	Duration *prometheus.HistogramVec // 按操作统计耗时
}

// NewMetrics 创建并注册指标，reg 为 nil 时不注册
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Attempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Authentication operations by outcome",
		}, []string{"op", "result", "reason"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "duration_seconds",
			Help:      "Authentication operation latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	result, reason := resultSuccess, ""
	if err != nil {
		if r := ReasonOf(err); r != "" {
			result, reason = resultFailure, string(r)
		} else {
			result = resultError
		}
	}
	m.Attempts.WithLabelValues(op, result, reason).Inc()
	m.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
