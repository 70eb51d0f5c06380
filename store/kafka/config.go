package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/kochabx/authkit/core/tag"
)

// Config Kafka 客户端配置
type Config struct {
	Brokers  []string `json:"brokers" mapstructure:"brokers" default:"localhost:9092"`
	Username string   `json:"username" mapstructure:"username"`
	Password string   `json:"password" mapstructure:"password"`

	// Balancer 0: LeastBytes，1: Hash
	Balancer Balancer `json:"balancer" mapstructure:"balancer"`
	// Partition 仅非消费组的 Consumer 使用
	Partition              int  `json:"partition" mapstructure:"partition"`
	AllowAutoTopicCreation bool `json:"allow_auto_topic_creation" mapstructure:"allow_auto_topic_creation"`

	Timeout      time.Duration `json:"timeout" mapstructure:"timeout" default:"3s"`
	CloseTimeout time.Duration `json:"close_timeout" mapstructure:"close_timeout" default:"5s"`

	MinBytes int `json:"min_bytes" mapstructure:"min_bytes" default:"1024"`
	MaxBytes int `json:"max_bytes" mapstructure:"max_bytes" default:"1048576"`
}

// Balancer 分区策略
type Balancer int

const (
	BalancerLeastBytes Balancer = iota
	BalancerHash
)

// ApplyDefaults 应用默认值
func (c *Config) ApplyDefaults() error {
	return tag.ApplyDefaults(c)
}

func (c *Config) balancer() kafka.Balancer {
	if c.Balancer == BalancerHash {
		return &kafka.Hash{}
	}
	return &kafka.LeastBytes{}
}
