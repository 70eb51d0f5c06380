package jwt

import (
	"maps"
	"slices"
)

// Principal 已认证的主体，由外部主体存储提供，本包只读
type Principal struct {
	Key        string            `json:"key"`
	Username   string            `json:"username,omitempty"`
	Email      string            `json:"email,omitempty"`
	Roles      []string          `json:"roles,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// ClaimsProvider 将主体映射为声明集合，实现必须无副作用且并发安全
type ClaimsProvider interface {
	ClaimsFor(p Principal) ClaimsSet
}

// ClaimsProviderFunc 函数适配器
type ClaimsProviderFunc func(p Principal) ClaimsSet

// ClaimsFor implements ClaimsProvider
func (f ClaimsProviderFunc) ClaimsFor(p Principal) ClaimsSet {
	return f(p)
}

// AccessClaimsProvider 访问令牌声明：sub、name、email、roles，随后是按键排序的扩展属性。
// 与保留声明或上述声明重名的属性被忽略。
type AccessClaimsProvider struct{}

// ClaimsFor implements ClaimsProvider
func (AccessClaimsProvider) ClaimsFor(p Principal) ClaimsSet {
	b := NewClaimsBuilder(4 + len(p.Attributes))
	if p.Key != "" {
		b.Add(ClaimSubject, p.Key)
	}
	if p.Username != "" {
		b.Add(ClaimName, p.Username)
	}
	if p.Email != "" {
		b.Add(ClaimEmail, p.Email)
	}
	if len(p.Roles) > 0 {
		b.Add(ClaimRoles, slices.Clone(p.Roles))
	}
	for _, k := range slices.Sorted(maps.Keys(p.Attributes)) {
		if IsReservedClaim(k) || b.set.Has(k) {
			continue
		}
		b.Add(k, p.Attributes[k])
	}
	return b.Build()
}

// RefreshClaimsProvider 刷新令牌声明：仅 sub。
// jti 与 token_type 由生成器追加，令牌泄露时不暴露其他属性。
type RefreshClaimsProvider struct{}

// ClaimsFor implements ClaimsProvider
func (RefreshClaimsProvider) ClaimsFor(p Principal) ClaimsSet {
	b := NewClaimsBuilder(1)
	if p.Key != "" {
		b.Add(ClaimSubject, p.Key)
	}
	return b.Build()
}
