// Package writer builds the io.Writer backends used by the log package.
package writer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotateMode 日志文件轮转方式
type RotateMode string

const (
	// RotateModeSize 按大小轮转（lumberjack）
	RotateModeSize RotateMode = "size"
	// RotateModeTime 按时间轮转（file-rotatelogs）
	RotateModeTime RotateMode = "time"
)

// RotateConfig 文件输出配置
type RotateConfig struct {
	Mode     RotateMode
	Dir      string
	Filename string
	Ext      string

	// 按时间轮转
	MaxAgeHours       int
	RotationTimeHours int

	// 按大小轮转
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Console 控制台输出
func Console() zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.DateTime,
		FormatLevel: func(i any) string {
			return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
		},
	}
}

// File 文件输出，返回值同时实现 io.Closer
func File(c RotateConfig) (io.WriteCloser, error) {
	switch c.Mode {
	case RotateModeTime:
		w, err := rotatelogs.New(
			c.path("%Y%m%d%H%M"),
			rotatelogs.WithLinkName(c.path("")),
			rotatelogs.WithMaxAge(time.Duration(c.MaxAgeHours)*time.Hour),
			rotatelogs.WithRotationTime(time.Duration(c.RotationTimeHours)*time.Hour),
		)
		if err != nil {
			return nil, fmt.Errorf("writer: time rotate: %w", err)
		}
		return w, nil
	case RotateModeSize, "":
		return &lumberjack.Logger{
			Filename:   c.path(""),
			MaxSize:    c.MaxSizeMB,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAgeDays,
			Compress:   c.Compress,
		}, nil
	default:
		return nil, fmt.Errorf("writer: unsupported rotate mode %q", c.Mode)
	}
}

func (c RotateConfig) path(layout string) string {
	name := c.Filename
	if layout != "" {
		name += "." + layout
	}
	return filepath.Join(c.Dir, name+"."+c.Ext)
}
