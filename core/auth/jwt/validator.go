package jwt

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenValidator 校验单一类型的令牌
type TokenValidator interface {
	Validate(token string) (ClaimsSet, error)
	Kind() Kind
}

// Validator 按固定顺序校验令牌：结构 → 签名 → 过期 → 签发者/受众 → 令牌类型。
// 任何失败只返回 *ValidationError，不暴露底层解析错误。
type Validator struct {
	config *TokenConfig
	peers  []*TokenConfig
	parser *jwt.Parser
	clock  Clock
}

// ValidatorOption 校验器选项
type ValidatorOption func(*Validator)

// WithValidatorClock 替换时间来源
func WithValidatorClock(clock Clock) ValidatorOption {
	return func(v *Validator) {
		if clock != nil {
			v.clock = clock
		}
	}
}

// WithPeers 同一签发方的其他令牌配置。
// 由对等密钥签名的令牌通过签名校验后以 WrongTokenKind 拒绝，而不是 InvalidSignature。
func WithPeers(peers ...*TokenConfig) ValidatorOption {
	return func(v *Validator) {
		for _, p := range peers {
			if p != nil && p != v.config {
				v.peers = append(v.peers, p)
			}
		}
	}
}

// NewValidator 创建校验器
func NewValidator(config *TokenConfig, opts ...ValidatorOption) (*Validator, error) {
	if config == nil {
		return nil, ErrNilConfig
	}
	v := &Validator{
		config: config,
		parser: jwt.NewParser(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// NewRefreshValidator 刷新令牌校验器，访问令牌以 WrongTokenKind 拒绝
func NewRefreshValidator(c *Config, opts ...ValidatorOption) (*Validator, error) {
	if c == nil {
		return nil, ErrNilConfig
	}
	return NewValidator(c.refresh, append([]ValidatorOption{WithPeers(c.access)}, opts...)...)
}

// NewAccessValidator 访问令牌校验器，刷新令牌以 WrongTokenKind 拒绝
func NewAccessValidator(c *Config, opts ...ValidatorOption) (*Validator, error) {
	if c == nil {
		return nil, ErrNilConfig
	}
	return NewValidator(c.access, append([]ValidatorOption{WithPeers(c.refresh)}, opts...)...)
}

// Kind implements TokenValidator
func (v *Validator) Kind() Kind {
	return v.config.kind
}

type header struct {
	Alg string `json:"alg"`
	Kid string `json:"kid,omitempty"`
}

// Validate implements TokenValidator
func (v *Validator) Validate(token string) (ClaimsSet, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ClaimsSet{}, ErrMalformedToken
	}

	var h header
	headerBytes, err := v.parser.DecodeSegment(parts[0])
	if err != nil || json.Unmarshal(headerBytes, &h) != nil || h.Alg == "" {
		return ClaimsSet{}, ErrMalformedToken
	}
	payload, err := v.parser.DecodeSegment(parts[1])
	if err != nil {
		return ClaimsSet{}, ErrMalformedToken
	}
	sig, err := v.parser.DecodeSegment(parts[2])
	if err != nil {
		return ClaimsSet{}, ErrMalformedToken
	}

	signer := v.verify(h.Alg, parts[0]+"."+parts[1], sig)
	if signer == nil {
		return ClaimsSet{}, ErrInvalidSignature
	}

	var claims ClaimsSet
	if err := json.Unmarshal(payload, &claims); err != nil {
		return ClaimsSet{}, ErrMalformedToken
	}

	policy := v.config.policy
	if expired(claims, v.clock(), policy.ClockSkew) {
		return ClaimsSet{}, ErrTokenExpired
	}
	if policy.ValidateIssuer && claims.Issuer() != policy.ValidIssuer {
		return ClaimsSet{}, ErrIssuerMismatch
	}
	if policy.ValidateAudience && !slices.Contains(claims.Audience(), policy.ValidAudience) {
		return ClaimsSet{}, ErrAudienceMismatch
	}
	if signer != v.config || claims.Kind() != v.config.kind {
		return ClaimsSet{}, ErrWrongTokenKind
	}
	return claims, nil
}

// verify 返回验签成功的配置；header 中的 alg 必须与该配置要求的算法一致
func (v *Validator) verify(alg, signingString string, sig []byte) *TokenConfig {
	if alg == v.config.policy.Algorithm &&
		v.config.method.Verify(signingString, sig, v.config.verifyKey) == nil {
		return v.config
	}
	for _, p := range v.peers {
		if alg == p.policy.Algorithm && p.method.Verify(signingString, sig, p.verifyKey) == nil {
			return p
		}
	}
	return nil
}

// expired exp 缺失、exp 不晚于 iat，或 now >= exp + skew 均视为过期
func expired(claims ClaimsSet, now time.Time, skew time.Duration) bool {
	exp, ok := claims.ExpiresAt()
	if !ok {
		return true
	}
	if iat, ok := claims.IssuedAt(); ok && !exp.After(iat) {
		return true
	}
	return !now.Before(exp.Add(skew))
}
