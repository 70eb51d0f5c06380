// Package config loads typed configuration snapshots from a file and the
// environment through viper.
package config

import (
	"errors"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/kochabx/authkit/core/tag"
	"github.com/kochabx/authkit/core/validator"
	kerrors "github.com/kochabx/authkit/errors"
	"github.com/kochabx/authkit/log"
)

// Config 将配置文件与环境变量解析为 T。
// 每次 Load 都构造新的 *T，已发出的快照不会被修改。
type Config[T any] struct {
	mu       sync.Mutex
	viper    *viper.Viper
	validate validator.Validator
	logger   *log.Logger
	optional bool
}

// New 创建配置加载器，默认在当前目录查找 config.yaml，环境变量前缀 AUTHKIT
func New[T any](opts ...Option) *Config[T] {
	o := &options{
		name:      "config",
		ext:       "yaml",
		paths:     []string{"."},
		envPrefix: "AUTHKIT",
		validate:  validator.Validate,
	}
	for _, opt := range opts {
		opt(o)
	}

	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	if o.file != "" {
		v.SetConfigFile(o.file)
	} else {
		v.SetConfigName(o.name)
		v.SetConfigType(o.ext)
		for _, p := range o.paths {
			v.AddConfigPath(p)
		}
	}
	if o.envPrefix != "" {
		v.SetEnvPrefix(o.envPrefix)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	logger := o.logger
	if logger == nil {
		logger = log.G
	}

	return &Config[T]{
		viper:    v,
		validate: o.validate,
		logger:   logger,
		optional: o.optional,
	}
}

// Load 默认值 → 配置文件 → 环境变量 → 校验，返回新的配置快照
func (c *Config[T]) Load() (*T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	target := new(T)
	if err := tag.ApplyDefaults(target); err != nil {
		return nil, kerrors.Wrap(err, 500, "config: apply defaults")
	}

	if err := c.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !c.optional || !errors.As(err, &notFound) {
			return nil, kerrors.Wrap(err, 404, "config: read config file")
		}
	}

	if err := c.viper.Unmarshal(target); err != nil {
		return nil, kerrors.Wrap(err, 500, "config: decode")
	}

	if c.validate != nil {
		if err := c.validate.Struct(target); err != nil {
			return nil, kerrors.Wrap(err, 400, "config: validation failed")
		}
	}
	return target, nil
}

// Watch 监听配置文件变更，每次变更重新 Load 并回调新快照或错误
func (c *Config[T]) Watch(fn func(*T, error)) {
	c.viper.OnConfigChange(func(e fsnotify.Event) {
		c.logger.Info().Str("file", e.Name).Str("op", e.Op.String()).Msg("config change detected")
		cfg, err := c.Load()
		if err != nil {
			c.logger.Error().Err(err).Msg("config reload failed")
		}
		if fn != nil {
			fn(cfg, err)
		}
	})
	c.viper.WatchConfig()
}

// FileUsed 返回实际读取的配置文件路径
func (c *Config[T]) FileUsed() string {
	return c.viper.ConfigFileUsed()
}

// Viper 返回底层 viper 实例，用于绑定命令行参数
func (c *Config[T]) Viper() *viper.Viper {
	return c.viper
}
