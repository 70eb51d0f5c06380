package server

import (
	"context"
	"fmt"

	"github.com/kochabx/authkit/core/auth"
	"github.com/kochabx/authkit/core/auth/audit"
	"github.com/kochabx/authkit/core/auth/jwt/revocation"
	"github.com/kochabx/authkit/core/auth/principal"
	"github.com/kochabx/authkit/core/rate"
)

// PrincipalWriter 可写入的主体存储，memory、gorm 与 mongo 实现均满足
type PrincipalWriter interface {
	auth.PrincipalStore
	Create(ctx context.Context, rec principal.Record, secret string) error
	SetRoles(ctx context.Context, key string, roles ...string) error
}

func (r *resources) principals(ctx context.Context) (PrincipalWriter, error) {
	h, err := principal.NewHasher(r.cfg.Auth.Hasher)
	if err != nil {
		return nil, err
	}

	switch r.cfg.Principals.Backend {
	case "database":
		c, err := r.database(ctx)
		if err != nil {
			return nil, err
		}
		s, err := principal.NewGorm(c.DB(), h)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("server: migrate principals: %w", err)
		}
		return s, nil
	case "mongo":
		c, err := r.mongoClient(ctx)
		if err != nil {
			return nil, err
		}
		s, err := principal.NewMongo(c.Collection(r.cfg.Principals.Collection), h)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("server: ensure principal indexes: %w", err)
		}
		return s, nil
	case "memory", "":
		s, err := principal.NewMemory(h)
		if err != nil {
			return nil, err
		}
		if err := seed(ctx, s, r.cfg.Principals.Seed); err != nil {
			return nil, err
		}
		if n := len(r.cfg.Principals.Seed); n > 0 {
			r.logger.Warn().Int("count", n).Msg("seeded in-memory principals")
		}
		return s, nil
	}
	return nil, fmt.Errorf("server: unknown principal backend %q", r.cfg.Principals.Backend)
}

func seed(ctx context.Context, w PrincipalWriter, seeds []SeedPrincipal) error {
	for _, p := range seeds {
		rec := principal.Record{
			Key:        p.Key,
			Username:   p.Username,
			Email:      p.Email,
			Roles:      p.Roles,
			Attributes: p.Attributes,
		}
		if rec.Key == "" {
			rec.Key = p.Username
		}
		if err := w.Create(ctx, rec, p.Secret); err != nil {
			return fmt.Errorf("server: seed principal %q: %w", p.Username, err)
		}
	}
	return nil
}

func (r *resources) revocationStore(ctx context.Context) (revocation.Store, error) {
	rc := r.cfg.Revocation
	switch rc.Backend {
	case "redis":
		c, err := r.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return revocation.NewRedis(c.UniversalClient(), revocation.WithKeyPrefix(rc.KeyPrefix)), nil
	case "etcd":
		c, err := r.etcdClient(ctx)
		if err != nil {
			return nil, err
		}
		return revocation.NewEtcd(c.Raw(), c.KeyPrefix()+"revoked/"), nil
	case "noop":
		r.logger.Warn().Msg("revocation disabled, rotated refresh tokens stay valid until expiry")
		return revocation.Noop{}, nil
	case "memory", "":
		m, err := revocation.NewMemory(
			revocation.WithSweepSpec(rc.SweepSpec),
			revocation.WithMemoryLogger(r.logger),
		)
		if err != nil {
			return nil, err
		}
		r.onClose("revocation", func(context.Context) error { return m.Close() })
		return m, nil
	}
	return nil, fmt.Errorf("server: unknown revocation backend %q", rc.Backend)
}

// auditSink 返回 nil 表示不记录审计事件
func (r *resources) auditSink() (audit.Sink, error) {
	ac := r.cfg.Audit
	var sink audit.Sink
	switch ac.Backend {
	case "none":
		return nil, nil
	case "kafka":
		c, err := r.kafkaClient()
		if err != nil {
			return nil, err
		}
		w, err := c.Producer(ac.Topic)
		if err != nil {
			return nil, err
		}
		sink = audit.NewKafkaSink(w)
	case "log", "":
		sink = audit.NewLogSink(r.logger)
	default:
		return nil, fmt.Errorf("server: unknown audit backend %q", ac.Backend)
	}

	a, err := audit.NewAsync(sink,
		audit.WithPoolSize(ac.PoolSize),
		audit.WithTimeout(ac.Timeout),
		audit.WithLogger(r.logger),
	)
	if err != nil {
		return nil, err
	}
	r.onClose("audit", a.Close)
	return a, nil
}

// limiter 返回 nil 表示不限流
func (r *resources) limiter(ctx context.Context) (rate.Limiter, error) {
	rc := r.cfg.RateLimit
	if !rc.Enabled {
		return nil, nil
	}
	switch rc.Backend {
	case "redis":
		c, err := r.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return rate.NewRedis(c.UniversalClient(), rc.KeyPrefix, rc.Config), nil
	case "memory", "":
		return rate.NewMemory(rc.Config), nil
	}
	return nil, fmt.Errorf("server: unknown rate limit backend %q", rc.Backend)
}
