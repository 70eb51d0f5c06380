package mongo

import (
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kochabx/authkit/log"
)

type clientOptions struct {
	logger *log.Logger
	extra  []*options.ClientOptions
}

// Option 客户端选项
type Option func(*clientOptions)

// WithLogger 设置日志
func WithLogger(l *log.Logger) Option {
	return func(o *clientOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClientOptions 追加驱动原生选项，后者覆盖前者
func WithClientOptions(opts ...*options.ClientOptions) Option {
	return func(o *clientOptions) {
		o.extra = append(o.extra, opts...)
	}
}
