package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/authkit/core/auth"
	"github.com/kochabx/authkit/core/auth/jwt"
	"github.com/kochabx/authkit/log"
	"github.com/kochabx/authkit/transport/http/response"
)

// ClaimsKey gin 上下文中保存访问令牌声明的键
const ClaimsKey = "authkit.claims"

type claimsCtxKey struct{}

// AccessVerifier 访问令牌校验，*auth.Authenticator 实现该接口
type AccessVerifier interface {
	VerifyAccess(ctx context.Context, token string) (jwt.ClaimsSet, error)
}

// TokenExtractor 从请求中提取令牌，未找到返回空串
type TokenExtractor func(c *gin.Context) string

// BearerExtractor 读取 "Authorization: Bearer <token>"，scheme 不区分大小写
func BearerExtractor(c *gin.Context) string {
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// QueryExtractor 读取查询参数
func QueryExtractor(name string) TokenExtractor {
	return func(c *gin.Context) string {
		return c.Query(name)
	}
}

// CookieExtractor 读取 cookie
func CookieExtractor(name string) TokenExtractor {
	return func(c *gin.Context) string {
		v, err := c.Cookie(name)
		if err != nil {
			return ""
		}
		return v
	}
}

// ChainExtractors 依次尝试，返回第一个非空结果
func ChainExtractors(extractors ...TokenExtractor) TokenExtractor {
	return func(c *gin.Context) string {
		for _, e := range extractors {
			if t := e(c); t != "" {
				return t
			}
		}
		return ""
	}
}

// AuthConfig 认证中间件配置
type AuthConfig struct {
	Verifier     AccessVerifier            // 必需
	Extractor    TokenExtractor            // 默认 BearerExtractor
	SkipPaths    []string                  // 跳过认证的路径，语法同 PathMatcher
	SkipFunc     func(*gin.Context) bool   // 动态跳过判断函数
	ErrorHandler func(*gin.Context, error) // 默认写入 401 信封
	Logger       *log.Logger
}

// Auth 校验访问令牌，成功后将声明写入请求上下文与 gin 上下文。
// 刷新令牌以 WrongTokenKind 拒绝，所有失败对外均为 401 "unauthorized"。
func Auth(cfg AuthConfig) gin.HandlerFunc {
	if cfg.Verifier == nil {
		panic("middleware: AccessVerifier is required")
	}
	if cfg.Extractor == nil {
		cfg.Extractor = BearerExtractor
	}
	if cfg.Logger == nil {
		cfg.Logger = log.G
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *gin.Context, err error) {
			c.Header("WWW-Authenticate", `Bearer realm="authkit"`)
			response.GinJSONE(c, err)
		}
	}
	matcher := NewPathMatcher(cfg.SkipPaths)

	return func(c *gin.Context) {
		if shouldSkip(c, matcher, cfg.SkipFunc) {
			c.Next()
			return
		}

		token := cfg.Extractor(c)
		if token == "" {
			cfg.ErrorHandler(c, auth.ErrMalformedToken)
			return
		}

		claims, err := cfg.Verifier.VerifyAccess(c.Request.Context(), token)
		if err != nil {
			cfg.Logger.Debug().
				Str("reason", string(auth.ReasonOf(err))).
				Str("path", c.Request.URL.Path).
				Msg("access token rejected")
			cfg.ErrorHandler(c, err)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), claimsCtxKey{}, claims))
		c.Next()
	}
}

// ClaimsFrom 读取 Auth 写入的声明
func ClaimsFrom(ctx context.Context) (jwt.ClaimsSet, bool) {
	claims, ok := ctx.Value(claimsCtxKey{}).(jwt.ClaimsSet)
	return claims, ok
}

// SubjectFrom 读取主体标识，未认证时为空
func SubjectFrom(ctx context.Context) string {
	claims, _ := ClaimsFrom(ctx)
	return claims.Subject()
}

// GinClaims 从 gin 上下文读取声明
func GinClaims(c *gin.Context) (jwt.ClaimsSet, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return jwt.ClaimsSet{}, false
	}
	claims, ok := v.(jwt.ClaimsSet)
	return claims, ok
}

