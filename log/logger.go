package log

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/kochabx/authkit/core/tag"
	"github.com/kochabx/authkit/log/desensitize"
	"github.com/kochabx/authkit/log/writer"
)

func init() {
	zerolog.TimeFieldFormat = time.DateTime
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
}

// Logger 日志记录器
type Logger struct {
	zerolog.Logger
	hook   *desensitize.Hook
	closer io.Closer
}

// DesensitizeHook 返回脱敏钩子，未启用时为 nil
func (l *Logger) DesensitizeHook() *desensitize.Hook {
	return l.hook
}

// Close 释放文件句柄
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// New 输出到控制台的 Logger
func New(opts ...Option) *Logger {
	return NewWithWriter(writer.Console(), opts...)
}

// NewWithWriter 输出到任意 writer 的 Logger
func NewWithWriter(w io.Writer, opts ...Option) *Logger {
	o := &options{level: zerolog.InfoLevel}
	for _, opt := range opts {
		opt(o)
	}

	if o.hook != nil {
		w = desensitize.NewWriter(w, o.hook)
	}

	ctx := zerolog.New(w).Level(o.level).With().Timestamp()
	if o.caller {
		ctx = ctx.Caller()
	}
	for k, v := range o.fields {
		ctx = ctx.Str(k, v)
	}

	return &Logger{Logger: ctx.Logger(), hook: o.hook}
}

// NewFile 输出到轮转文件的 Logger
func NewFile(c FileConfig, opts ...Option) (*Logger, error) {
	if err := tag.ApplyDefaults(&c); err != nil {
		return nil, fmt.Errorf("log: apply defaults: %w", err)
	}
	fw, err := writer.File(c.rotateConfig())
	if err != nil {
		return nil, err
	}
	l := NewWithWriter(fw, opts...)
	l.closer = fw
	return l, nil
}

// FromConfig 按配置构建 Logger，JSON 格式输出到 stdout，开启文件时同时写文件
func FromConfig(c Config) (*Logger, error) {
	if err := tag.ApplyDefaults(&c); err != nil {
		return nil, fmt.Errorf("log: apply defaults: %w", err)
	}
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}

	opts := []Option{WithLevel(level)}
	if c.Caller {
		opts = append(opts, WithCaller())
	}
	if c.Desensitize != nil && *c.Desensitize {
		opts = append(opts, WithDesensitize(desensitize.NewBuiltinHook()))
	}

	var out io.Writer = os.Stdout
	if c.Format == "console" {
		out = writer.Console()
	}

	if c.File == nil || !c.File.Enabled {
		return NewWithWriter(out, opts...), nil
	}

	fc := *c.File
	if err := tag.ApplyDefaults(&fc); err != nil {
		return nil, fmt.Errorf("log: apply defaults: %w", err)
	}
	fw, err := writer.File(fc.rotateConfig())
	if err != nil {
		return nil, err
	}
	l := NewWithWriter(zerolog.MultiLevelWriter(out, fw), opts...)
	l.closer = fw
	return l, nil
}
