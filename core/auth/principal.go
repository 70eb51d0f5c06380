// Package auth 登录与刷新流程：校验凭据，签发访问令牌与刷新令牌，并按轮换策略使旧刷新令牌失效。
package auth

import (
	"context"

	"github.com/kochabx/authkit/core/auth/jwt"
	"github.com/kochabx/authkit/errors"
)

// Principal 已认证主体
type Principal = jwt.Principal

// PrincipalStore 主体存储，由宿主应用提供。
// VerifyCredentials 在标识不存在或密钥错误时返回 (nil, nil) 或 ErrPrincipalNotFound，
// 两种情况的耗时应一致；其他错误视为存储故障。
// FindByKey 用于刷新时读取主体的最新属性。
type PrincipalStore interface {
	VerifyCredentials(ctx context.Context, identifier, secret string) (*Principal, error)
	FindByKey(ctx context.Context, key string) (*Principal, error)
}

// ErrPrincipalNotFound 主体不存在或凭据不匹配
var ErrPrincipalNotFound = errors.NotFound("principal not found")

// Credentials 登录凭据
type Credentials struct {
	Identifier string `json:"identifier" validate:"required,max=256"`
	Secret     string `json:"secret" validate:"required,max=1024"`
}

// String 不输出密钥
func (c Credentials) String() string {
	return "Credentials{identifier=" + c.Identifier + " secret=******}"
}
