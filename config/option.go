package config

import (
	"path/filepath"
	"strings"

	"github.com/kochabx/authkit/core/validator"
	"github.com/kochabx/authkit/log"
)

type options struct {
	file      string
	name      string
	ext       string
	paths     []string
	envPrefix string
	optional  bool
	validate  validator.Validator
	logger    *log.Logger
}

// Option 配置加载选项
type Option func(*options)

// WithFile 指定配置文件路径，优先于 WithName/WithPaths
func WithFile(path string) Option {
	return func(o *options) {
		o.file = path
	}
}

// WithName 按文件名查找，如 "authkit.yaml"
func WithName(name string) Option {
	return func(o *options) {
		ext := filepath.Ext(name)
		o.name = strings.TrimSuffix(name, ext)
		if ext != "" {
			o.ext = strings.TrimPrefix(ext, ".")
		}
	}
}

// WithPaths 查找目录
func WithPaths(paths ...string) Option {
	return func(o *options) {
		if len(paths) > 0 {
			o.paths = paths
		}
	}
}

// WithEnvPrefix 环境变量前缀，空字符串表示不加前缀
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithOptional 找不到配置文件时仅使用默认值与环境变量
func WithOptional() Option {
	return func(o *options) {
		o.optional = true
	}
}

// WithValidator 自定义校验器，nil 表示跳过校验
func WithValidator(v validator.Validator) Option {
	return func(o *options) {
		o.validate = v
	}
}

// WithLogger 自定义日志
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
