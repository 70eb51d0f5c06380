package jwt

import (
	"fmt"
	"time"

	"github.com/kochabx/authkit/core/tag"
	"github.com/kochabx/authkit/core/validator"
)

// Options 令牌配置入口，字段与 viper 配置键一一对应。
// 通过 Build 合并为不可变的 *Config，Options 本身不直接参与签发。
type Options struct {
	AccessTokenSecret  string `json:"access_token_secret" mapstructure:"access_token_secret"`
	RefreshTokenSecret string `json:"refresh_token_secret" mapstructure:"refresh_token_secret"`

	AccessTokenExpirationMinutes  int `json:"access_token_expiration_minutes" mapstructure:"access_token_expiration_minutes" default:"15" validate:"gte=0"`
	RefreshTokenExpirationMinutes int `json:"refresh_token_expiration_minutes" mapstructure:"refresh_token_expiration_minutes" default:"10080" validate:"gte=0"`

	Issuer   string `json:"issuer" mapstructure:"issuer" validate:"required"`
	Audience string `json:"audience" mapstructure:"audience" validate:"required"`

	AccessTokenAlgorithm  string `json:"access_token_algorithm" mapstructure:"access_token_algorithm" default:"HS256" validate:"jwtalg"`
	RefreshTokenAlgorithm string `json:"refresh_token_algorithm" mapstructure:"refresh_token_algorithm" default:"HS256" validate:"jwtalg"`

	// PEM 编码的密钥，仅非对称算法使用。公钥可省略，由私钥推导。
	AccessTokenPrivateKey  string `json:"access_token_private_key" mapstructure:"access_token_private_key"`
	AccessTokenPublicKey   string `json:"access_token_public_key" mapstructure:"access_token_public_key"`
	RefreshTokenPrivateKey string `json:"refresh_token_private_key" mapstructure:"refresh_token_private_key"`
	RefreshTokenPublicKey  string `json:"refresh_token_public_key" mapstructure:"refresh_token_public_key"`

	AccessTokenValidationParameters  ValidationParameters `json:"access_token_validation_parameters" mapstructure:"access_token_validation_parameters"`
	RefreshTokenValidationParameters ValidationParameters `json:"refresh_token_validation_parameters" mapstructure:"refresh_token_validation_parameters"`
}

// ValidationParameters 单一令牌类型的校验参数
type ValidationParameters struct {
	ClockSkew         time.Duration `json:"clock_skew" mapstructure:"clock_skew" validate:"gte=0"`
	ValidateIssuer    *bool         `json:"validate_issuer" mapstructure:"validate_issuer" default:"true"`
	ValidateAudience  *bool         `json:"validate_audience" mapstructure:"validate_audience" default:"true"`
	ValidIssuer       string        `json:"valid_issuer" mapstructure:"valid_issuer"`
	ValidAudience     string        `json:"valid_audience" mapstructure:"valid_audience"`
	RequiredAlgorithm string        `json:"required_algorithm" mapstructure:"required_algorithm" validate:"omitempty,jwtalg"`
}

// Defaults 返回仅含默认值的 Options
func Defaults() Options {
	var o Options
	_ = tag.ApplyDefaults(&o)
	return o
}

// Build 按顺序合并配置并构建不可变的 *Config：
// 标签默认值 → setup 回调 → override 对象（非零字段覆盖）→ 校验 → 解析密钥。
// 任一步失败返回 *ConfigurationError，错误中不含密钥内容。
func Build(setup func(*Options), override *Options) (*Config, error) {
	o := Defaults()
	if setup != nil {
		setup(&o)
	}
	if override != nil {
		o.merge(override)
	}
	return o.build()
}

// MustBuild 同 Build，失败时 panic，用于进程启动
func MustBuild(setup func(*Options), override *Options) *Config {
	c, err := Build(setup, override)
	if err != nil {
		panic(err)
	}
	return c
}

// Redacted 返回屏蔽了密钥字段的副本
func (o Options) Redacted() Options {
	o.AccessTokenSecret = redact(o.AccessTokenSecret)
	o.RefreshTokenSecret = redact(o.RefreshTokenSecret)
	o.AccessTokenPrivateKey = redact(o.AccessTokenPrivateKey)
	o.RefreshTokenPrivateKey = redact(o.RefreshTokenPrivateKey)
	return o
}

// String 不输出密钥
func (o Options) String() string {
	r := o.Redacted()
	return fmt.Sprintf("Options{issuer=%q audience=%q access=%s/%dm refresh=%s/%dm access_secret=%s refresh_secret=%s}",
		r.Issuer, r.Audience,
		r.AccessTokenAlgorithm, r.AccessTokenExpirationMinutes,
		r.RefreshTokenAlgorithm, r.RefreshTokenExpirationMinutes,
		r.AccessTokenSecret, r.RefreshTokenSecret)
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "******"
}

func (o *Options) merge(src *Options) {
	mergeString(&o.AccessTokenSecret, src.AccessTokenSecret)
	mergeString(&o.RefreshTokenSecret, src.RefreshTokenSecret)
	mergeInt(&o.AccessTokenExpirationMinutes, src.AccessTokenExpirationMinutes)
	mergeInt(&o.RefreshTokenExpirationMinutes, src.RefreshTokenExpirationMinutes)
	mergeString(&o.Issuer, src.Issuer)
	mergeString(&o.Audience, src.Audience)
	mergeString(&o.AccessTokenAlgorithm, src.AccessTokenAlgorithm)
	mergeString(&o.RefreshTokenAlgorithm, src.RefreshTokenAlgorithm)
	mergeString(&o.AccessTokenPrivateKey, src.AccessTokenPrivateKey)
	mergeString(&o.AccessTokenPublicKey, src.AccessTokenPublicKey)
	mergeString(&o.RefreshTokenPrivateKey, src.RefreshTokenPrivateKey)
	mergeString(&o.RefreshTokenPublicKey, src.RefreshTokenPublicKey)
	o.AccessTokenValidationParameters.merge(&src.AccessTokenValidationParameters)
	o.RefreshTokenValidationParameters.merge(&src.RefreshTokenValidationParameters)
}

func (p *ValidationParameters) merge(src *ValidationParameters) {
	if src.ClockSkew != 0 {
		p.ClockSkew = src.ClockSkew
	}
	if src.ValidateIssuer != nil {
		v := *src.ValidateIssuer
		p.ValidateIssuer = &v
	}
	if src.ValidateAudience != nil {
		v := *src.ValidateAudience
		p.ValidateAudience = &v
	}
	mergeString(&p.ValidIssuer, src.ValidIssuer)
	mergeString(&p.ValidAudience, src.ValidAudience)
	mergeString(&p.RequiredAlgorithm, src.RequiredAlgorithm)
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func mergeInt(dst *int, src int) {
	if src != 0 {
		*dst = src
	}
}

func (o *Options) build() (*Config, error) {
	if err := validator.Validate.Struct(o); err != nil {
		return nil, configError("", "validation failed", err)
	}

	access, err := newTokenConfig(KindAccess, tokenSpec{
		prefix:     "AccessToken",
		algorithm:  o.AccessTokenAlgorithm,
		secret:     o.AccessTokenSecret,
		privatePEM: o.AccessTokenPrivateKey,
		publicPEM:  o.AccessTokenPublicKey,
		minutes:    o.AccessTokenExpirationMinutes,
		issuer:     o.Issuer,
		audience:   o.Audience,
		params:     o.AccessTokenValidationParameters,
	})
	if err != nil {
		return nil, err
	}

	refresh, err := newTokenConfig(KindRefresh, tokenSpec{
		prefix:     "RefreshToken",
		algorithm:  o.RefreshTokenAlgorithm,
		secret:     o.RefreshTokenSecret,
		privatePEM: o.RefreshTokenPrivateKey,
		publicPEM:  o.RefreshTokenPublicKey,
		minutes:    o.RefreshTokenExpirationMinutes,
		issuer:     o.Issuer,
		audience:   o.Audience,
		params:     o.RefreshTokenValidationParameters,
	})
	if err != nil {
		return nil, err
	}

	if access.symmetric() && refresh.symmetric() && o.AccessTokenSecret == o.RefreshTokenSecret {
		return nil, configError("RefreshTokenSecret", "must differ from AccessTokenSecret", nil)
	}

	return &Config{access: access, refresh: refresh}, nil
}
