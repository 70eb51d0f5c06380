package auth

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kochabx/authkit/core/auth/audit"
	"github.com/kochabx/authkit/core/auth/jwt"
	"github.com/kochabx/authkit/core/auth/jwt/revocation"
	"github.com/kochabx/authkit/errors"
	"github.com/kochabx/authkit/log"
)

// ErrNilStore 未提供主体存储
var ErrNilStore = errors.Internal("auth: principal store is nil")

// Authenticator 登录与刷新编排，构造后并发安全
type Authenticator struct {
	store PrincipalStore

	accessGen  jwt.TokenGenerator
	refreshGen jwt.TokenGenerator
	accessVal  jwt.TokenValidator
	refreshVal jwt.TokenValidator

	revoked  revocation.Store
	closer   io.Closer
	rotation bool
	skew     time.Duration

	clock   jwt.Clock
	logger  *log.Logger
	metrics *Metrics
	audit   audit.Sink
}

// New 创建 Authenticator。
// 未注入的生成器与校验器按 cfg 构建；未注入失效存储时创建进程内存储，由 Close 释放。
func New(cfg *jwt.Config, store PrincipalStore, opts ...Option) (*Authenticator, error) {
	if cfg == nil {
		return nil, jwt.ErrNilConfig
	}
	if store == nil {
		return nil, ErrNilStore
	}

	o := &options{
		rotation: true,
		clock:    time.Now,
		logger:   log.G,
		audit:    audit.Discard,
	}
	for _, opt := range opts {
		opt(o)
	}

	a := &Authenticator{
		store:    store,
		rotation: o.rotation,
		skew:     cfg.Refresh().Policy().ClockSkew,
		clock:    o.clock,
		logger:   o.logger,
		metrics:  o.metrics,
		audit:    o.audit,
	}

	var err error
	if a.accessGen, err = pickGenerator(o.accessGen, cfg.Access(), o.accessProvider, o.clock); err != nil {
		return nil, err
	}
	if a.refreshGen, err = pickGenerator(o.refreshGen, cfg.Refresh(), o.refreshProvider, o.clock); err != nil {
		return nil, err
	}
	if a.accessVal, err = pickValidator(o.accessVal, cfg, jwt.KindAccess, o.clock); err != nil {
		return nil, err
	}
	if a.refreshVal, err = pickValidator(o.refreshVal, cfg, jwt.KindRefresh, o.clock); err != nil {
		return nil, err
	}

	a.revoked = o.revoked
	if a.revoked == nil {
		m, err := revocation.NewMemory(revocation.WithMemoryClock(o.clock), revocation.WithMemoryLogger(o.logger))
		if err != nil {
			return nil, err
		}
		a.revoked, a.closer = m, m
	}
	return a, nil
}

func pickGenerator(g jwt.TokenGenerator, tc *jwt.TokenConfig, p jwt.ClaimsProvider, clock jwt.Clock) (jwt.TokenGenerator, error) {
	if g == nil {
		return jwt.NewGenerator(tc, p, jwt.WithGeneratorClock(clock))
	}
	if g.Kind() != tc.Kind() {
		return nil, fmt.Errorf("auth: %s generator injected as %s generator", g.Kind(), tc.Kind())
	}
	return g, nil
}

func pickValidator(v jwt.TokenValidator, cfg *jwt.Config, kind jwt.Kind, clock jwt.Clock) (jwt.TokenValidator, error) {
	if v == nil {
		if kind == jwt.KindRefresh {
			return jwt.NewRefreshValidator(cfg, jwt.WithValidatorClock(clock))
		}
		return jwt.NewAccessValidator(cfg, jwt.WithValidatorClock(clock))
	}
	if v.Kind() != kind {
		return nil, fmt.Errorf("auth: %s validator injected as %s validator", v.Kind(), kind)
	}
	return v, nil
}

// Close 释放内部创建的失效存储
func (a *Authenticator) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// Login 校验凭据并签发令牌对。
// 标识不存在、密钥错误与存储返回 nil 都得到同一个 ErrInvalidCredentials。
func (a *Authenticator) Login(ctx context.Context, c Credentials) (res *Result, err error) {
	start := time.Now()
	defer func() { a.finish(ctx, OpLogin, start, res, err) }()

	if c.Identifier == "" || c.Secret == "" {
		return nil, ErrInvalidCredentials
	}
	p, err := a.store.VerifyCredentials(ctx, c.Identifier, c.Secret)
	if err != nil && !errors.Is(err, ErrPrincipalNotFound) {
		return nil, errInternal(err)
	}
	if p == nil {
		return nil, ErrInvalidCredentials
	}

	access, err := a.accessGen.Generate(*p)
	if err != nil {
		return nil, errInternal(err)
	}
	refresh, err := a.refreshGen.Generate(*p)
	if err != nil {
		return nil, errInternal(err)
	}
	return newResult(access, refresh, true), nil
}

// Refresh 用刷新令牌换取新的访问令牌。
// 开启轮换时同时签发新的刷新令牌，并使旧令牌在剩余有效期内失效。
func (a *Authenticator) Refresh(ctx context.Context, token string) (res *Result, err error) {
	start := time.Now()
	defer func() { a.finish(ctx, OpRefresh, start, res, err) }()

	claims, err := a.validateRefresh(ctx, token)
	if err != nil {
		return nil, err
	}

	p, err := a.store.FindByKey(ctx, claims.Subject())
	if err != nil && !errors.Is(err, ErrPrincipalNotFound) {
		return nil, errInternal(err)
	}
	if p == nil {
		return nil, ErrInvalidCredentials
	}

	access, err := a.accessGen.Generate(*p)
	if err != nil {
		return nil, errInternal(err)
	}

	if !a.rotation {
		return newResult(access, presented(token, claims), false), nil
	}

	refresh, err := a.refreshGen.Generate(*p)
	if err != nil {
		return nil, errInternal(err)
	}
	if err := a.invalidate(ctx, claims); err != nil {
		return nil, err
	}
	return newResult(access, refresh, true), nil
}

// Logout 校验并使刷新令牌失效
func (a *Authenticator) Logout(ctx context.Context, token string) (err error) {
	start := time.Now()
	var subject, jti string
	defer func() {
		a.observe(ctx, OpLogout, start, subject, jti, err)
	}()

	claims, err := a.validateRefresh(ctx, token)
	if err != nil {
		return err
	}
	subject, jti = claims.Subject(), claims.ID()
	return a.invalidate(ctx, claims)
}

// VerifyAccess 校验访问令牌并返回其声明
func (a *Authenticator) VerifyAccess(_ context.Context, token string) (jwt.ClaimsSet, error) {
	start := time.Now()
	claims, err := a.accessVal.Validate(token)
	if err != nil {
		err = fromValidation(err)
	}
	a.metrics.observe(OpVerify, start, err)
	return claims, err
}

// AccessValidator 访问令牌校验器，供中间件使用
func (a *Authenticator) AccessValidator() jwt.TokenValidator {
	return a.accessVal
}

func (a *Authenticator) validateRefresh(ctx context.Context, token string) (jwt.ClaimsSet, error) {
	claims, err := a.refreshVal.Validate(token)
	if err != nil {
		return jwt.ClaimsSet{}, fromValidation(err)
	}
	jti := claims.ID()
	if jti == "" {
		return jwt.ClaimsSet{}, ErrMalformedToken
	}
	revoked, err := a.revoked.IsRevoked(ctx, jti)
	if err != nil {
		return jwt.ClaimsSet{}, errInternal(err)
	}
	if revoked {
		return jwt.ClaimsSet{}, ErrTokenRevoked
	}
	return claims, nil
}

// invalidate 记录失效，TTL 覆盖令牌在时钟偏差内仍可能通过校验的时间
func (a *Authenticator) invalidate(ctx context.Context, claims jwt.ClaimsSet) error {
	exp, _ := claims.ExpiresAt()
	ttl := exp.Add(a.skew).Sub(a.clock())
	if err := a.revoked.Invalidate(ctx, claims.ID(), ttl); err != nil {
		return errInternal(err)
	}
	return nil
}

func presented(token string, claims jwt.ClaimsSet) jwt.SignedToken {
	st := jwt.SignedToken{
		Token:   token,
		ID:      claims.ID(),
		Kind:    claims.Kind(),
		Subject: claims.Subject(),
	}
	st.IssuedAt, _ = claims.IssuedAt()
	st.ExpiresAt, _ = claims.ExpiresAt()
	return st
}

func (a *Authenticator) finish(ctx context.Context, op string, start time.Time, res *Result, err error) {
	var subject, jti string
	if res != nil {
		subject, jti = res.Subject, res.Refresh.ID
	}
	a.observe(ctx, op, start, subject, jti, err)
}

// observe 记录指标、日志与审计事件，不输出令牌或密钥
func (a *Authenticator) observe(ctx context.Context, op string, start time.Time, subject, jti string, err error) {
	a.metrics.observe(op, start, err)

	ev := audit.NewEvent(audit.Type(op), a.clock())
	ev.Success = err == nil
	ev.Subject = subject
	ev.TokenID = jti

	switch reason := ReasonOf(err); {
	case err == nil:
		a.logger.Debug().Str("op", op).Str("subject", subject).Msg("auth succeeded")
	case reason != "":
		ev.Reason = string(reason)
		a.logger.Info().Str("op", op).Str("reason", string(reason)).Msg("auth rejected")
	default:
		ev.Reason = "internal"
		a.logger.Error().Err(errors.FromError(err).GetCause()).Str("op", op).Msg("auth failed")
	}

	if aerr := a.audit.Record(ctx, ev); aerr != nil {
		a.logger.Warn().Err(aerr).Str("op", op).Msg("audit record failed")
	}
}
