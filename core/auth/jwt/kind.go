package jwt

// Kind 令牌类型，写入 token_type 声明，校验时强制匹配
type Kind string

const (
	// KindAccess 短期访问令牌
	KindAccess Kind = "access"
	// KindRefresh 长期刷新令牌
	KindRefresh Kind = "refresh"
)

// Valid 是否为已知类型
func (k Kind) Valid() bool {
	return k == KindAccess || k == KindRefresh
}

func (k Kind) String() string {
	return string(k)
}

// 声明名
const (
	ClaimSubject   = "sub"
	ClaimName      = "name"
	ClaimEmail     = "email"
	ClaimRoles     = "roles"
	ClaimIssuer    = "iss"
	ClaimAudience  = "aud"
	ClaimIssuedAt  = "iat"
	ClaimExpiresAt = "exp"
	ClaimNotBefore = "nbf"
	ClaimID        = "jti"
	ClaimTokenType = "token_type"
)

// reservedClaims 由生成器写入，声明提供者给出的同名声明会被丢弃
var reservedClaims = map[string]struct{}{
	ClaimIssuer:    {},
	ClaimAudience:  {},
	ClaimIssuedAt:  {},
	ClaimExpiresAt: {},
	ClaimNotBefore: {},
	ClaimID:        {},
	ClaimTokenType: {},
}

// IsReservedClaim 是否为生成器保留的声明名
func IsReservedClaim(name string) bool {
	_, ok := reservedClaims[name]
	return ok
}
