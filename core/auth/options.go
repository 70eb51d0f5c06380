package auth

import (
	"github.com/kochabx/authkit/core/auth/audit"
	"github.com/kochabx/authkit/core/auth/jwt"
	"github.com/kochabx/authkit/core/auth/jwt/revocation"
	"github.com/kochabx/authkit/log"
)

type options struct {
	accessProvider  jwt.ClaimsProvider
	refreshProvider jwt.ClaimsProvider
	accessGen       jwt.TokenGenerator
	refreshGen      jwt.TokenGenerator
	accessVal       jwt.TokenValidator
	refreshVal      jwt.TokenValidator
	revoked         revocation.Store
	rotation        bool
	clock           jwt.Clock
	logger          *log.Logger
	metrics         *Metrics
	audit           audit.Sink
}

// Option Authenticator 选项
type Option func(*options)

// WithAccessClaimsProvider 替换访问令牌声明提供者
func WithAccessClaimsProvider(p jwt.ClaimsProvider) Option {
	return func(o *options) {
		o.accessProvider = p
	}
}

// WithRefreshClaimsProvider 替换刷新令牌声明提供者
func WithRefreshClaimsProvider(p jwt.ClaimsProvider) Option {
	return func(o *options) {
		o.refreshProvider = p
	}
}

// WithAccessGenerator 注入访问令牌生成器，优先于 WithAccessClaimsProvider
func WithAccessGenerator(g jwt.TokenGenerator) Option {
	return func(o *options) {
		o.accessGen = g
	}
}

// WithRefreshGenerator 注入刷新令牌生成器
func WithRefreshGenerator(g jwt.TokenGenerator) Option {
	return func(o *options) {
		o.refreshGen = g
	}
}

// WithAccessValidator 注入访问令牌校验器
func WithAccessValidator(v jwt.TokenValidator) Option {
	return func(o *options) {
		o.accessVal = v
	}
}

// WithRefreshValidator 注入刷新令牌校验器
func WithRefreshValidator(v jwt.TokenValidator) Option {
	return func(o *options) {
		o.refreshVal = v
	}
}

// WithRevocationStore 失效存储，默认使用进程内存储
func WithRevocationStore(s revocation.Store) Option {
	return func(o *options) {
		o.revoked = s
	}
}

// WithRotation 刷新时是否轮换刷新令牌，默认开启
func WithRotation(enabled bool) Option {
	return func(o *options) {
		o.rotation = enabled
	}
}

// WithClock 替换时间来源，同时作用于默认的生成器与校验器
func WithClock(clock jwt.Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger 设置日志
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics 设置指标
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithAuditSink 设置审计输出
func WithAuditSink(s audit.Sink) Option {
	return func(o *options) {
		if s != nil {
			o.audit = s
		}
	}
}
