package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/authkit/errors"
	"github.com/kochabx/authkit/log"
	"github.com/kochabx/authkit/transport/http/response"
)

// ErrInternal panic 后对外返回的错误
var ErrInternal = errors.Internal("internal error")

// RecoveryConfig Recovery 中间件配置
type RecoveryConfig struct {
	DisableStack bool
	Logger       *log.Logger
}

// Recovery 捕获 panic 并返回 500 信封。
// 日志只含方法与路径，请求头中的令牌不会被转储。
func Recovery(cfgs ...RecoveryConfig) gin.HandlerFunc {
	var cfg RecoveryConfig
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}
	if cfg.Logger == nil {
		cfg.Logger = log.G
	}

	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			if connectionLost(rec) {
				cfg.Logger.Warn().
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Msgf("connection lost: %v", rec)
				c.Abort()
				return
			}

			ev := cfg.Logger.Error().
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("panic", fmt.Sprint(rec))
			if !cfg.DisableStack {
				ev = ev.Bytes("stack", debug.Stack())
			}
			ev.Msg("panic recovered")
			response.GinJSONE(c, ErrInternal)
		}()
		c.Next()
	}
}

// connectionLost 客户端已断开，无法再写响应
func connectionLost(rec any) bool {
	err, ok := rec.(error)
	if !ok {
		return false
	}
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}
