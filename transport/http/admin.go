package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kochabx/authkit/core/auth"
	"github.com/kochabx/authkit/core/auth/principal"
	"github.com/kochabx/authkit/errors"
	"github.com/kochabx/authkit/log"
	middleware "github.com/kochabx/authkit/middleware/http"
	"github.com/kochabx/authkit/transport/http/response"
)

// ErrPrincipalExists key、username 或 email 已被占用
var ErrPrincipalExists = errors.Conflict("principal already exists")

// PrincipalAdmin 主体维护接口
type PrincipalAdmin interface {
	Create(ctx context.Context, rec principal.Record, secret string) error
	SetRoles(ctx context.Context, key string, roles ...string) error
}

// AdminHandler 主体管理路由，仅持有指定角色的访问令牌可调用
type AdminHandler struct {
	store    PrincipalAdmin
	verifier middleware.AccessVerifier
	roles    []string
	logger   *log.Logger
}

// NewAdminHandler 创建管理路由，roles 为空时默认要求 admin 角色
func NewAdminHandler(store PrincipalAdmin, verifier middleware.AccessVerifier, roles []string, logger *log.Logger) *AdminHandler {
	if len(roles) == 0 {
		roles = []string{"admin"}
	}
	if logger == nil {
		logger = log.G
	}
	return &AdminHandler{store: store, verifier: verifier, roles: roles, logger: logger}
}

type createPrincipalRequest struct {
	Key        string            `json:"key" validate:"omitempty,max=64"`
	Username   string            `json:"username" validate:"required,max=256"`
	Email      string            `json:"email" validate:"omitempty,email,max=256"`
	Secret     string            `json:"secret" validate:"required,min=8,max=1024"`
	Roles      []string          `json:"roles" validate:"dive,required,max=64"`
	Attributes map[string]string `json:"attributes"`
}

type setRolesRequest struct {
	Roles []string `json:"roles" validate:"dive,required,max=64"`
}

// Register 注册路由：
//
//	POST /admin/principals
//	PUT  /admin/principals/:key/roles
func (h *AdminHandler) Register(r gin.IRouter) {
	g := r.Group("/admin",
		middleware.Auth(middleware.AuthConfig{Verifier: h.verifier, Logger: h.logger}),
		middleware.Permission(middleware.PermissionConfig{
			Checker: middleware.RequireRoles(h.roles...),
			Logger:  h.logger,
		}),
	)
	g.POST("/principals", h.create)
	g.PUT("/principals/:key/roles", h.setRoles)
}

func (h *AdminHandler) create(c *gin.Context) {
	var req createPrincipalRequest
	if !bind(c, &req) {
		return
	}
	rec := principal.Record{
		Key:        req.Key,
		Username:   req.Username,
		Email:      req.Email,
		Roles:      req.Roles,
		Attributes: req.Attributes,
	}
	if rec.Key == "" {
		rec.Key = uuid.NewString()
	}

	if err := h.store.Create(c.Request.Context(), rec, req.Secret); err != nil {
		h.fail(c, "create", rec.Key, err)
		return
	}
	h.logger.Info().
		Str("operator", middleware.SubjectFrom(c.Request.Context())).
		Str("key", rec.Key).
		Strs("roles", rec.Roles).
		Msg("principal created")
	response.GinJSON(c, rec)
}

func (h *AdminHandler) setRoles(c *gin.Context) {
	var req setRolesRequest
	if !bind(c, &req) {
		return
	}
	key := c.Param("key")
	if err := h.store.SetRoles(c.Request.Context(), key, req.Roles...); err != nil {
		h.fail(c, "set roles", key, err)
		return
	}
	h.logger.Info().
		Str("operator", middleware.SubjectFrom(c.Request.Context())).
		Str("key", key).
		Strs("roles", req.Roles).
		Msg("principal roles updated")
	response.GinJSON(c, gin.H{"key": key, "roles": req.Roles})
}

func (h *AdminHandler) fail(c *gin.Context, op, key string, err error) {
	switch {
	case errors.Is(err, principal.ErrDuplicate):
		response.GinJSONE(c, ErrPrincipalExists)
	case errors.Is(err, principal.ErrInvalidRecord):
		response.GinJSONE(c, ErrInvalidRequest)
	case errors.Is(err, auth.ErrPrincipalNotFound):
		response.GinJSONE(c, auth.ErrPrincipalNotFound)
	default:
		h.logger.Error().Err(err).Str("op", op).Str("key", key).Msg("principal admin failed")
		response.GinJSONE(c, errors.Internal("internal error"))
	}
}
