package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Clock 当前时间来源，测试中可替换
type Clock func() time.Time

// SignedToken 已签名的紧凑 JWS 及其元数据
type SignedToken struct {
	Token     string    `json:"token"`
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Subject   string    `json:"subject"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExpiresIn 相对 now 的剩余有效秒数，不小于 0
func (t SignedToken) ExpiresIn(now time.Time) int64 {
	d := t.ExpiresAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}

// TokenGenerator 为主体签发单一类型的令牌
type TokenGenerator interface {
	Generate(p Principal) (SignedToken, error)
	Kind() Kind
}

// Generator 基于 TokenConfig 与 ClaimsProvider 的令牌生成器，构造后只读，并发安全
type Generator struct {
	config   *TokenConfig
	provider ClaimsProvider
	clock    Clock
	ids      IDGenerator
}

// GeneratorOption 生成器选项
type GeneratorOption func(*Generator)

// WithGeneratorClock 替换时间来源
func WithGeneratorClock(clock Clock) GeneratorOption {
	return func(g *Generator) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// WithIDGenerator 替换 jti 生成器
func WithIDGenerator(ids IDGenerator) GeneratorOption {
	return func(g *Generator) {
		if ids != nil {
			g.ids = ids
		}
	}
}

// NewGenerator 创建生成器，provider 为空时按令牌类型选用默认声明提供者
func NewGenerator(config *TokenConfig, provider ClaimsProvider, opts ...GeneratorOption) (*Generator, error) {
	if config == nil {
		return nil, ErrNilConfig
	}
	if provider == nil {
		provider = defaultProvider(config.kind)
	}
	g := &Generator{
		config:   config,
		provider: provider,
		clock:    time.Now,
		ids:      defaultIDGenerator(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// NewAccessGenerator 访问令牌生成器
func NewAccessGenerator(c *Config, opts ...GeneratorOption) (*Generator, error) {
	if c == nil {
		return nil, ErrNilConfig
	}
	return NewGenerator(c.access, AccessClaimsProvider{}, opts...)
}

// NewRefreshGenerator 刷新令牌生成器
func NewRefreshGenerator(c *Config, opts ...GeneratorOption) (*Generator, error) {
	if c == nil {
		return nil, ErrNilConfig
	}
	return NewGenerator(c.refresh, RefreshClaimsProvider{}, opts...)
}

func defaultProvider(kind Kind) ClaimsProvider {
	if kind == KindRefresh {
		return RefreshClaimsProvider{}
	}
	return AccessClaimsProvider{}
}

// Kind implements TokenGenerator
func (g *Generator) Kind() Kind {
	return g.config.kind
}

// Generate implements TokenGenerator。
// 提供者给出的保留声明被丢弃，随后追加 iss、aud、iat、exp、jti、token_type。
func (g *Generator) Generate(p Principal) (SignedToken, error) {
	claims := g.provider.ClaimsFor(p)
	subject := claims.Subject()
	if subject == "" {
		return SignedToken{}, ErrMissingSubject
	}

	now := g.clock().Truncate(time.Second)
	exp := now.Add(g.config.expiration)
	id := g.ids.NewID(now)

	b := NewClaimsBuilder(claims.Len() + len(reservedClaims))
	for name, v := range claims.All() {
		if IsReservedClaim(name) {
			continue
		}
		b.Add(name, v)
	}
	b.Add(ClaimIssuer, g.config.issuer).
		Add(ClaimAudience, g.config.audience).
		Add(ClaimIssuedAt, now.Unix()).
		Add(ClaimExpiresAt, exp.Unix()).
		Add(ClaimID, id).
		Add(ClaimTokenType, string(g.config.kind))

	token := jwt.NewWithClaims(g.config.method, b.Build())
	if g.config.keyID != "" {
		token.Header["kid"] = g.config.keyID
	}
	signed, err := token.SignedString(g.config.signKey)
	if err != nil {
		// 密钥已在构建时自检，此处失败仅可能来自声明编码
		return SignedToken{}, configError(string(g.config.kind), "cannot sign token", nil)
	}

	return SignedToken{
		Token:     signed,
		ID:        id,
		Kind:      g.config.kind,
		Subject:   subject,
		IssuedAt:  now,
		ExpiresAt: exp,
	}, nil
}
