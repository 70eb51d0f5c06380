package middleware

import (
	"context"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/authkit/core/auth/jwt"
	"github.com/kochabx/authkit/errors"
	"github.com/kochabx/authkit/log"
	"github.com/kochabx/authkit/transport/http/response"
)

var (
	ErrUnauthorized = errors.Unauthorized("unauthorized")
	ErrForbidden    = errors.Forbidden("forbidden")
)

// PermissionChecker 基于访问令牌声明的权限检查
type PermissionChecker interface {
	Check(ctx context.Context, claims jwt.ClaimsSet) error
}

// PermissionCheckerFunc 函数适配器
type PermissionCheckerFunc func(ctx context.Context, claims jwt.ClaimsSet) error

// Check implements PermissionChecker
func (f PermissionCheckerFunc) Check(ctx context.Context, claims jwt.ClaimsSet) error {
	return f(ctx, claims)
}

// PermissionConfig 权限中间件配置，须置于 Auth 之后
type PermissionConfig struct {
	Checker      PermissionChecker
	SkipPaths    []string
	SkipFunc     func(*gin.Context) bool
	ErrorHandler func(*gin.Context, error)
	Logger       *log.Logger
}

// Permission 创建权限检查中间件
func Permission(cfg PermissionConfig) gin.HandlerFunc {
	if cfg.Checker == nil {
		panic("middleware: PermissionChecker is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.G
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = response.GinJSONE
	}
	matcher := NewPathMatcher(cfg.SkipPaths)

	return func(c *gin.Context) {
		if shouldSkip(c, matcher, cfg.SkipFunc) {
			c.Next()
			return
		}

		claims, ok := GinClaims(c)
		if !ok {
			cfg.ErrorHandler(c, ErrUnauthorized)
			return
		}
		if err := cfg.Checker.Check(c.Request.Context(), claims); err != nil {
			cfg.Logger.Warn().Err(err).
				Str("subject", claims.Subject()).
				Str("path", c.Request.URL.Path).
				Msg("permission denied")
			cfg.ErrorHandler(c, err)
			return
		}
		c.Next()
	}
}

// RequireRoles 持有任一角色即通过
func RequireRoles(roles ...string) PermissionChecker {
	return PermissionCheckerFunc(func(_ context.Context, claims jwt.ClaimsSet) error {
		for _, r := range claims.GetStrings(jwt.ClaimRoles) {
			if slices.Contains(roles, r) {
				return nil
			}
		}
		return ErrForbidden
	})
}
