// Package server 按配置组装认证服务：主体存储、撤销存储、审计、限流、HTTP 服务。
package server

import (
	"time"

	"github.com/kochabx/authkit/core/auth/jwt"
	"github.com/kochabx/authkit/core/rate"
	"github.com/kochabx/authkit/log"
	"github.com/kochabx/authkit/store/db"
	"github.com/kochabx/authkit/store/etcd"
	"github.com/kochabx/authkit/store/kafka"
	"github.com/kochabx/authkit/store/mongo"
	"github.com/kochabx/authkit/store/redis"
	khttp "github.com/kochabx/authkit/transport/http"
)

// Config 服务配置，对应 config.yaml 与 AUTHKIT_* 环境变量
type Config struct {
	Log         log.Config        `json:"log" mapstructure:"log"`
	HTTP        khttp.Config      `json:"http" mapstructure:"http"`
	JWT         jwt.Options       `json:"jwt" mapstructure:"jwt"`
	Auth        AuthConfig        `json:"auth" mapstructure:"auth"`
	Principals  PrincipalConfig   `json:"principals" mapstructure:"principals"`
	Revocation  RevocationConfig  `json:"revocation" mapstructure:"revocation"`
	Audit       AuditConfig       `json:"audit" mapstructure:"audit"`
	RateLimit   RateLimitConfig   `json:"rate_limit" mapstructure:"rate_limit"`
	Admin       AdminConfig       `json:"admin" mapstructure:"admin"`
	Diagnostics DiagnosticsConfig `json:"diagnostics" mapstructure:"diagnostics"`

	// 共享的基础设施连接，仅在被某个后端选中时建立
	Database db.Config    `json:"database" mapstructure:"database"`
	Mongo    mongo.Config `json:"mongo" mapstructure:"mongo"`
	Redis    redis.Config `json:"redis" mapstructure:"redis"`
	Etcd     etcd.Config  `json:"etcd" mapstructure:"etcd"`
	Kafka    kafka.Config `json:"kafka" mapstructure:"kafka"`
}

// AuthConfig 认证流程配置
type AuthConfig struct {
	// Rotation 刷新时是否签发新的刷新令牌并撤销旧令牌
	Rotation         *bool  `json:"rotation" mapstructure:"rotation" default:"true"`
	Hasher           string `json:"hasher" mapstructure:"hasher" default:"argon2id" validate:"oneof=argon2id bcrypt"`
	MetricsNamespace string `json:"metrics_namespace" mapstructure:"metrics_namespace" default:"authkit"`
}

// RotationEnabled Rotation 未设置时视为开启
func (c AuthConfig) RotationEnabled() bool {
	return c.Rotation == nil || *c.Rotation
}

// PrincipalConfig 主体存储后端
type PrincipalConfig struct {
	Backend    string `json:"backend" mapstructure:"backend" default:"memory" validate:"oneof=memory database mongo"`
	Collection string `json:"collection" mapstructure:"collection" default:"principals"`
	// Seed 启动时写入 memory 后端的主体，仅用于开发环境
	Seed []SeedPrincipal `json:"seed" mapstructure:"seed"`
}

// SeedPrincipal 预置主体
type SeedPrincipal struct {
	Key        string            `json:"key" mapstructure:"key"`
	Username   string            `json:"username" mapstructure:"username"`
	Email      string            `json:"email" mapstructure:"email"`
	Secret     string            `json:"secret" mapstructure:"secret"`
	Roles      []string          `json:"roles" mapstructure:"roles"`
	Attributes map[string]string `json:"attributes" mapstructure:"attributes"`
}

// RevocationConfig 撤销存储后端
type RevocationConfig struct {
	Backend   string `json:"backend" mapstructure:"backend" default:"memory" validate:"oneof=memory redis etcd noop"`
	KeyPrefix string `json:"key_prefix" mapstructure:"key_prefix" default:"authkit:revoked:"`
	// SweepSpec memory 后端清理过期条目的 cron 表达式
	SweepSpec string `json:"sweep_spec" mapstructure:"sweep_spec" default:"@every 1m"`
}

// AuditConfig 审计事件投递
type AuditConfig struct {
	Backend  string        `json:"backend" mapstructure:"backend" default:"log" validate:"oneof=log kafka none"`
	Topic    string        `json:"topic" mapstructure:"topic" default:"authkit.audit"`
	PoolSize int           `json:"pool_size" mapstructure:"pool_size" default:"16" validate:"gte=1"`
	Timeout  time.Duration `json:"timeout" mapstructure:"timeout" default:"5s"`
}

// RateLimitConfig 登录与刷新接口限流
type RateLimitConfig struct {
	Enabled     bool        `json:"enabled" mapstructure:"enabled" default:"true"`
	Backend     string      `json:"backend" mapstructure:"backend" default:"memory" validate:"oneof=memory redis"`
	KeyPrefix   string      `json:"key_prefix" mapstructure:"key_prefix" default:"authkit:rate:"`
	rate.Config `mapstructure:",squash"`
}

// AdminConfig 主体管理接口
type AdminConfig struct {
	Enabled bool     `json:"enabled" mapstructure:"enabled" default:"true"`
	Roles   []string `json:"roles" mapstructure:"roles" default:"admin"`
}

// DiagnosticsConfig 存储连接的诊断选项
type DiagnosticsConfig struct {
	SlowQuery    time.Duration `json:"slow_query" mapstructure:"slow_query" default:"200ms"` // 慢 SQL 阈值，0 不记录
	RedisDebug   bool          `json:"redis_debug" mapstructure:"redis_debug"`
	RedisSlow    time.Duration `json:"redis_slow" mapstructure:"redis_slow" default:"50ms"`
	RedisTracing bool          `json:"redis_tracing" mapstructure:"redis_tracing"` // 使用全局 OpenTelemetry provider
	RedisMetrics bool          `json:"redis_metrics" mapstructure:"redis_metrics"`
}
