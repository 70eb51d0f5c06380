package auth

import (
	"fmt"

	"github.com/kochabx/authkit/core/auth/jwt"
)

// TokenTypeBearer Result.TokenType 的取值
const TokenTypeBearer = "Bearer"

// Result 登录或刷新成功后返回的令牌对
type Result struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	// ExpiresIn 访问令牌有效秒数
	ExpiresIn int64  `json:"expires_in"`
	Subject   string `json:"subject"`

	Access  jwt.SignedToken `json:"-"`
	Refresh jwt.SignedToken `json:"-"`
	// Rotated 刷新令牌是否为新签发
	Rotated bool `json:"-"`
}

func newResult(access, refresh jwt.SignedToken, rotated bool) *Result {
	return &Result{
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    int64(access.ExpiresAt.Sub(access.IssuedAt).Seconds()),
		Subject:      access.Subject,
		Access:       access,
		Refresh:      refresh,
		Rotated:      rotated,
	}
}

// String 不输出令牌原文
func (r *Result) String() string {
	return fmt.Sprintf("Result{subject=%s access_jti=%s refresh_jti=%s expires_in=%d rotated=%t}",
		r.Subject, r.Access.ID, r.Refresh.ID, r.ExpiresIn, r.Rotated)
}
