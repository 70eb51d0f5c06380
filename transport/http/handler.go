package http

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/authkit/core/auth"
	"github.com/kochabx/authkit/core/auth/jwt"
	"github.com/kochabx/authkit/core/rate"
	"github.com/kochabx/authkit/core/validator"
	"github.com/kochabx/authkit/errors"
	"github.com/kochabx/authkit/log"
	middleware "github.com/kochabx/authkit/middleware/http"
	"github.com/kochabx/authkit/transport/http/response"
)

// ErrInvalidRequest 请求体无法解析或缺少字段
var ErrInvalidRequest = errors.BadRequest("invalid request")

// Authenticator 认证服务，*auth.Authenticator 实现该接口
type Authenticator interface {
	Login(ctx context.Context, c auth.Credentials) (*auth.Result, error)
	Refresh(ctx context.Context, token string) (*auth.Result, error)
	Logout(ctx context.Context, token string) error
	VerifyAccess(ctx context.Context, token string) (jwt.ClaimsSet, error)
}

// JWKSFunc 返回 JWKS JSON，通常为 (*jwt.Config).JWKSJSON
type JWKSFunc func() ([]byte, error)

type service struct {
	auth Authenticator
	jwks JWKSFunc
}

// Handler 认证相关路由。配置热更新时通过 Swap 整体替换认证服务。
type Handler struct {
	svc     atomic.Pointer[service]
	logger  *log.Logger
	limiter rate.Limiter
}

// HandlerOption 路由选项
type HandlerOption func(*Handler)

// WithHandlerLogger 设置日志
func WithHandlerLogger(l *log.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithLoginLimiter 按客户端 IP 限制 /auth/login 与 /auth/refresh
func WithLoginLimiter(l rate.Limiter) HandlerOption {
	return func(h *Handler) {
		h.limiter = l
	}
}

// NewHandler 创建路由处理器
func NewHandler(a Authenticator, jwks JWKSFunc, opts ...HandlerOption) *Handler {
	h := &Handler{logger: log.G}
	for _, opt := range opts {
		opt(h)
	}
	h.Swap(a, jwks)
	return h
}

// Swap 替换认证服务，进行中的请求继续使用旧实例
func (h *Handler) Swap(a Authenticator, jwks JWKSFunc) {
	h.svc.Store(&service{auth: a, jwks: jwks})
}

// VerifyAccess implements middleware.AccessVerifier
func (h *Handler) VerifyAccess(ctx context.Context, token string) (jwt.ClaimsSet, error) {
	return h.svc.Load().auth.VerifyAccess(ctx, token)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required,max=8192"`
}

// Register 注册路由：
//
//	POST /auth/login
//	POST /auth/refresh
//	POST /auth/logout
//	GET  /auth/me
//	GET  /.well-known/jwks.json
func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/auth")
	var limit []gin.HandlerFunc
	if h.limiter != nil {
		limit = append(limit, middleware.RateLimit(middleware.RateLimitConfig{Limiter: h.limiter, Logger: h.logger}))
	}
	g.POST("/login", append(limit, h.login)...)
	g.POST("/refresh", append(limit, h.refresh)...)
	g.POST("/logout", h.logout)
	g.GET("/me", middleware.Auth(middleware.AuthConfig{Verifier: h, Logger: h.logger}), h.me)
	r.GET("/.well-known/jwks.json", h.jwks)
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.GinJSONE(c, ErrInvalidRequest)
		return false
	}
	if err := validator.Validate.Struct(req); err != nil {
		response.GinJSONE(c, ErrInvalidRequest)
		return false
	}
	return true
}

func (h *Handler) login(c *gin.Context) {
	var req auth.Credentials
	if !bind(c, &req) {
		return
	}
	res, err := h.svc.Load().auth.Login(c.Request.Context(), req)
	if err != nil {
		response.GinJSONE(c, err)
		return
	}
	noStore(c)
	response.GinJSON(c, res)
}

func (h *Handler) refresh(c *gin.Context) {
	var req refreshRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.svc.Load().auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.GinJSONE(c, err)
		return
	}
	noStore(c)
	response.GinJSON(c, res)
}

func (h *Handler) logout(c *gin.Context) {
	var req refreshRequest
	if !bind(c, &req) {
		return
	}
	if err := h.svc.Load().auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		response.GinJSONE(c, err)
		return
	}
	response.GinJSON(c, nil)
}

func (h *Handler) me(c *gin.Context) {
	claims, _ := middleware.GinClaims(c)
	response.GinJSON(c, claims)
}

func (h *Handler) jwks(c *gin.Context) {
	fn := h.svc.Load().jwks
	if fn == nil {
		c.Data(http.StatusOK, "application/json", []byte(`{"keys":[]}`))
		return
	}
	body, err := fn()
	if err != nil {
		h.logger.Error().Err(err).Msg("jwks export failed")
		response.GinJSONE(c, errors.Internal("internal error"))
		return
	}
	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, "application/jwk-set+json", body)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
