package etcd

import (
	"time"

	"github.com/kochabx/authkit/core/tag"
)

// Config etcd 客户端配置
type Config struct {
	Endpoints           []string      `json:"endpoints" mapstructure:"endpoints" default:"localhost:2379"`
	Username            string        `json:"username" mapstructure:"username"`
	Password            string        `json:"password" mapstructure:"password"`
	DialTimeout         time.Duration `json:"dial_timeout" mapstructure:"dial_timeout" default:"5s"`
	KeepAliveTime       time.Duration `json:"keep_alive_time" mapstructure:"keep_alive_time" default:"30s"`
	KeepAliveTimeout    time.Duration `json:"keep_alive_timeout" mapstructure:"keep_alive_timeout" default:"5s"`
	AutoSyncInterval    time.Duration `json:"auto_sync_interval" mapstructure:"auto_sync_interval"`
	MaxSendMsgSize      int           `json:"max_send_msg_size" mapstructure:"max_send_msg_size" default:"2097152"`
	MaxRecvMsgSize      int           `json:"max_recv_msg_size" mapstructure:"max_recv_msg_size" default:"4194304"`
	RejectOldCluster    bool          `json:"reject_old_cluster" mapstructure:"reject_old_cluster"`
	PermitWithoutStream bool          `json:"permit_without_stream" mapstructure:"permit_without_stream"`
	// KeyPrefix 本服务写入的键前缀
	KeyPrefix string `json:"key_prefix" mapstructure:"key_prefix" default:"/authkit/"`
}

func (c *Config) init() error {
	return tag.ApplyDefaults(c)
}
