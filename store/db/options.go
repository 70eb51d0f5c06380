package db

import (
	"time"

	"gorm.io/gorm"

	"github.com/kochabx/authkit/log"
)

// Option 客户端选项
type Option func(*clientOptions)

type clientOptions struct {
	logger         *log.Logger
	plugins        []gorm.Plugin
	connectTimeout time.Duration
	slowQuery      time.Duration
}

func defaultOptions() *clientOptions {
	return &clientOptions{connectTimeout: 10 * time.Second}
}

// WithLogger gorm 日志写入该 logger
func WithLogger(l *log.Logger) Option {
	return func(o *clientOptions) {
		o.logger = l
	}
}

// WithPlugins 注册 gorm 插件
func WithPlugins(plugins ...gorm.Plugin) Option {
	return func(o *clientOptions) {
		o.plugins = append(o.plugins, plugins...)
	}
}

// WithConnectTimeout 创建客户端时 Ping 的超时
func WithConnectTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		if d > 0 {
			o.connectTimeout = d
		}
	}
}

// WithSlowQuery 慢查询阈值，0 表示不记录
func WithSlowQuery(threshold time.Duration) Option {
	return func(o *clientOptions) {
		o.slowQuery = threshold
	}
}
