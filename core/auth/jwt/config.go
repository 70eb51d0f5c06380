package jwt

import (
	"crypto"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config 两类令牌的不可变配置，由 Build 构建，可在 goroutine 间共享
type Config struct {
	access  *TokenConfig
	refresh *TokenConfig
}

// Access 访问令牌配置
func (c *Config) Access() *TokenConfig {
	return c.access
}

// Refresh 刷新令牌配置
func (c *Config) Refresh() *TokenConfig {
	return c.refresh
}

// For 按类型取配置
func (c *Config) For(kind Kind) *TokenConfig {
	switch kind {
	case KindAccess:
		return c.access
	case KindRefresh:
		return c.refresh
	}
	return nil
}

// ValidationPolicy 解析后的校验参数
type ValidationPolicy struct {
	ClockSkew        time.Duration
	ValidateIssuer   bool
	ValidateAudience bool
	ValidIssuer      string
	ValidAudience    string
	Algorithm        string
}

// TokenConfig 单一令牌类型的签发与校验配置。
// 密钥只保存在未导出字段中，String 与错误信息均不包含密钥。
type TokenConfig struct {
	kind       Kind
	method     jwt.SigningMethod
	signKey    any
	verifyKey  any
	publicKey  crypto.PublicKey
	keyID      string
	expiration time.Duration
	issuer     string
	audience   string
	policy     ValidationPolicy
}

// Kind 令牌类型
func (c *TokenConfig) Kind() Kind { return c.kind }

// Algorithm 签名算法
func (c *TokenConfig) Algorithm() string { return c.method.Alg() }

// Expiration 有效期
func (c *TokenConfig) Expiration() time.Duration { return c.expiration }

// Issuer 签发者
func (c *TokenConfig) Issuer() string { return c.issuer }

// Audience 受众
func (c *TokenConfig) Audience() string { return c.audience }

// Policy 校验参数
func (c *TokenConfig) Policy() ValidationPolicy { return c.policy }

// KeyID 非对称密钥的 RFC 7638 指纹，对称算法为空
func (c *TokenConfig) KeyID() string { return c.keyID }

// PublicKey 非对称算法的公钥，对称算法为 nil
func (c *TokenConfig) PublicKey() crypto.PublicKey { return c.publicKey }

func (c *TokenConfig) String() string {
	return fmt.Sprintf("TokenConfig{kind=%s alg=%s exp=%s iss=%q aud=%q}",
		c.kind, c.method.Alg(), c.expiration, c.issuer, c.audience)
}

func (c *TokenConfig) symmetric() bool {
	_, ok := c.method.(*jwt.SigningMethodHMAC)
	return ok
}

type tokenSpec struct {
	prefix     string
	algorithm  string
	secret     string
	privatePEM string
	publicPEM  string
	minutes    int
	issuer     string
	audience   string
	params     ValidationParameters
}

func newTokenConfig(kind Kind, spec tokenSpec) (*TokenConfig, error) {
	method := jwt.GetSigningMethod(spec.algorithm)
	if method == nil {
		return nil, configError(spec.prefix+"Algorithm", "unsupported algorithm", nil)
	}
	if spec.minutes < 0 {
		return nil, configError(spec.prefix+"ExpirationMinutes", "must not be negative", nil)
	}

	keys, err := loadKeys(method, spec)
	if err != nil {
		return nil, err
	}

	policy, err := resolvePolicy(spec, method.Alg())
	if err != nil {
		return nil, err
	}

	cfg := &TokenConfig{
		kind:       kind,
		method:     method,
		signKey:    keys.sign,
		verifyKey:  keys.verify,
		publicKey:  keys.public,
		expiration: time.Duration(spec.minutes) * time.Minute,
		issuer:     spec.issuer,
		audience:   spec.audience,
		policy:     policy,
	}

	if keys.public != nil {
		kid, err := thumbprint(keys.public)
		if err != nil {
			return nil, configError(spec.prefix+"PublicKey", "cannot compute key id", err)
		}
		cfg.keyID = kid
	}
	return cfg, nil
}

func resolvePolicy(spec tokenSpec, alg string) (ValidationPolicy, error) {
	p := spec.params
	field := spec.prefix + "ValidationParameters"

	policy := ValidationPolicy{
		ClockSkew:        p.ClockSkew,
		ValidateIssuer:   p.ValidateIssuer == nil || *p.ValidateIssuer,
		ValidateAudience: p.ValidateAudience == nil || *p.ValidateAudience,
		ValidIssuer:      p.ValidIssuer,
		ValidAudience:    p.ValidAudience,
		Algorithm:        p.RequiredAlgorithm,
	}
	if policy.ClockSkew < 0 {
		return policy, configError(field+".ClockSkew", "must not be negative", nil)
	}
	if policy.ValidIssuer == "" {
		policy.ValidIssuer = spec.issuer
	}
	if policy.ValidAudience == "" {
		policy.ValidAudience = spec.audience
	}
	if policy.ValidateIssuer && policy.ValidIssuer == "" {
		return policy, configError(field+".ValidIssuer", "required when issuer validation is enabled", nil)
	}
	if policy.ValidateAudience && policy.ValidAudience == "" {
		return policy, configError(field+".ValidAudience", "required when audience validation is enabled", nil)
	}
	if policy.Algorithm == "" {
		policy.Algorithm = alg
	}
	if policy.Algorithm != alg {
		return policy, configError(field+".RequiredAlgorithm", "must match the signing algorithm", nil)
	}
	return policy, nil
}
