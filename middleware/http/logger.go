package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kochabx/authkit/log"
)

// RequestIDHeader 请求 ID 头
const RequestIDHeader = "X-Request-Id"

// RequestID 请求未携带 X-Request-Id 时生成一个，并回写到响应头
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
			c.Request.Header.Set(RequestIDHeader, id)
		}
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// LoggerConfig 访问日志配置。
// 请求体与响应体可能包含口令和令牌，始终不记录。
type LoggerConfig struct {
	HandlerName bool                    // 是否记录处理器名称
	SkipPaths   []string                // 跳过记录的路径
	SkipFunc    func(*gin.Context) bool // 动态跳过判断函数
	Logger      *log.Logger
}

// Logger 创建访问日志中间件
func Logger(cfgs ...LoggerConfig) gin.HandlerFunc {
	cfg := LoggerConfig{}
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}
	if cfg.Logger == nil {
		cfg.Logger = log.G
	}
	matcher := NewPathMatcher(cfg.SkipPaths)

	return func(c *gin.Context) {
		if shouldSkip(c, matcher, cfg.SkipFunc) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := cfg.Logger.Info()
		if status >= 500 {
			event = cfg.Logger.Warn()
		}
		event = event.
			Int("status", status).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP())

		if requestID := c.GetHeader(RequestIDHeader); requestID != "" {
			event = event.Str("request_id", requestID)
		}
		if sub := SubjectFrom(c.Request.Context()); sub != "" {
			event = event.Str("subject", sub)
		}
		if cfg.HandlerName {
			event = event.Str("handler", c.HandlerName())
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.ByType(gin.ErrorTypePrivate).String())
		}
		event.Send()
	}
}
