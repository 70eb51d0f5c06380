package redis

import (
	"errors"
	"time"

	"github.com/kochabx/authkit/core/tag"
)

var (
	ErrEmptyAddrs     = errors.New("redis: no addrs configured")
	ErrInvalidTimeout = errors.New("redis: timeouts must not be negative")
)

// Config Redis 统一配置（单机/集群/哨兵）
type Config struct {
	// Addrs 地址列表：单机一个地址，集群多个地址，哨兵模式为哨兵地址
	Addrs []string `json:"addrs" mapstructure:"addrs"`
	// MasterName 哨兵模式主节点名称
	MasterName string `json:"master_name" mapstructure:"master_name"`

	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	// DB 仅单机与哨兵模式有效
	DB       int `json:"db" mapstructure:"db"`
	Protocol int `json:"protocol" mapstructure:"protocol" default:"3"`

	DialTimeout  time.Duration `json:"dial_timeout" mapstructure:"dial_timeout" default:"5s"`
	ReadTimeout  time.Duration `json:"read_timeout" mapstructure:"read_timeout" default:"3s"`
	WriteTimeout time.Duration `json:"write_timeout" mapstructure:"write_timeout" default:"3s"`

	// PoolSize 0 表示 10 * GOMAXPROCS
	PoolSize     int           `json:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int           `json:"min_idle_conns" mapstructure:"min_idle_conns"`
	MaxIdleTime  time.Duration `json:"max_idle_time" mapstructure:"max_idle_time" default:"5m"`
	MaxLifetime  time.Duration `json:"max_lifetime" mapstructure:"max_lifetime"`
	PoolTimeout  time.Duration `json:"pool_timeout" mapstructure:"pool_timeout" default:"4s"`

	// MaxRetries -1 禁用重试，0 使用默认 3 次
	MaxRetries      int           `json:"max_retries" mapstructure:"max_retries"`
	MinRetryBackoff time.Duration `json:"min_retry_backoff" mapstructure:"min_retry_backoff" default:"8ms"`
	MaxRetryBackoff time.Duration `json:"max_retry_backoff" mapstructure:"max_retry_backoff" default:"512ms"`

	// MaxRedirects 集群模式最大重定向次数
	MaxRedirects   int  `json:"max_redirects" mapstructure:"max_redirects" default:"3"`
	ReadOnly       bool `json:"read_only" mapstructure:"read_only"`
	RouteByLatency bool `json:"route_by_latency" mapstructure:"route_by_latency"`
	RouteRandomly  bool `json:"route_randomly" mapstructure:"route_randomly"`
}

// ApplyDefaults 应用默认值
func (c *Config) ApplyDefaults() error {
	return tag.ApplyDefaults(c)
}

// Single 单机模式配置
func Single(addr string) *Config {
	return &Config{Addrs: []string{addr}}
}

// Cluster 集群模式配置
func Cluster(addrs ...string) *Config {
	return &Config{Addrs: addrs}
}

// Sentinel 哨兵模式配置
func Sentinel(masterName string, addrs ...string) *Config {
	return &Config{Addrs: addrs, MasterName: masterName}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if len(c.Addrs) == 0 {
		return ErrEmptyAddrs
	}
	if c.DialTimeout < 0 || c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// IsSentinel 是否哨兵模式
func (c *Config) IsSentinel() bool {
	return c.MasterName != ""
}

// IsCluster 是否集群模式
func (c *Config) IsCluster() bool {
	return len(c.Addrs) > 1 && c.MasterName == ""
}

// Mode 模式名称，用于日志
func (c *Config) Mode() string {
	switch {
	case c.IsSentinel():
		return "sentinel"
	case c.IsCluster():
		return "cluster"
	default:
		return "single"
	}
}
