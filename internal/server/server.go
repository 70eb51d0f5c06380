package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/authkit/app"
	"github.com/kochabx/authkit/core/auth"
	"github.com/kochabx/authkit/core/auth/audit"
	"github.com/kochabx/authkit/core/auth/jwt"
	"github.com/kochabx/authkit/core/auth/jwt/revocation"
	"github.com/kochabx/authkit/log"
	middleware "github.com/kochabx/authkit/middleware/http"
	khttp "github.com/kochabx/authkit/transport/http"
	"github.com/kochabx/authkit/transport/http/metrics"
)

// Runtime 组装完成的服务。
// 存储与连接在 Build 时建立一次；Reload 只重建令牌配置与认证器。
type Runtime struct {
	res    *resources
	logger *log.Logger

	store   PrincipalWriter
	revoked revocation.Store
	sink    audit.Sink
	prom    *metrics.Prometheus
	metrics *auth.Metrics

	mu    sync.Mutex
	authn *auth.Authenticator

	handler *khttp.Handler
	engine  *gin.Engine
	server  *khttp.Server
}

// Build 按配置建立连接与存储并组装 HTTP 服务，失败时释放已建立的连接
func Build(ctx context.Context, cfg *Config, logger *log.Logger) (rt *Runtime, err error) {
	if logger == nil {
		logger = log.G
	}
	res := newResources(cfg, logger)
	defer func() {
		if err != nil {
			_ = res.close(context.Background())
		}
	}()

	jwtCfg, err := jwt.Build(nil, &cfg.JWT)
	if err != nil {
		return nil, err
	}

	rt = &Runtime{res: res, logger: logger}
	if rt.store, err = res.principals(ctx); err != nil {
		return nil, err
	}
	if rt.revoked, err = res.revocationStore(ctx); err != nil {
		return nil, err
	}
	if rt.sink, err = res.auditSink(); err != nil {
		return nil, err
	}
	limiter, err := res.limiter(ctx)
	if err != nil {
		return nil, err
	}

	ns := cfg.Auth.MetricsNamespace
	rt.prom = metrics.New(ns)
	rt.metrics = auth.NewMetrics(ns, rt.prom.Registry())

	if rt.authn, err = rt.authenticator(jwtCfg, cfg.Auth); err != nil {
		return nil, err
	}

	rt.handler = khttp.NewHandler(rt.authn, jwtCfg.JWKSJSON,
		khttp.WithHandlerLogger(logger),
		khttp.WithLoginLimiter(limiter),
	)
	if rt.engine, err = rt.newEngine(cfg.HTTP); err != nil {
		return nil, err
	}
	if cfg.Admin.Enabled {
		khttp.NewAdminHandler(rt.store, rt.handler, cfg.Admin.Roles, logger).Register(rt.engine)
	}

	opts := []khttp.Option{
		khttp.WithLogger(logger),
		khttp.WithTimeouts(cfg.HTTP),
	}
	if cfg.HTTP.Metrics.Enabled {
		opts = append(opts, khttp.WithMetrics(cfg.HTTP.Metrics, rt.prom))
	}
	if cfg.HTTP.Health.Enabled {
		opts = append(opts, khttp.WithHealth(cfg.HTTP.Health, res.checks...))
	}
	rt.server = khttp.NewServer(cfg.HTTP.Addr, rt.engine, opts...)

	logger.Info().
		Str("principals", cfg.Principals.Backend).
		Str("revocation", cfg.Revocation.Backend).
		Str("audit", cfg.Audit.Backend).
		Bool("rate_limit", limiter != nil).
		Bool("admin", cfg.Admin.Enabled).
		Stringer("jwt", cfg.JWT).
		Msg("server assembled")
	return rt, nil
}

func (rt *Runtime) authenticator(jwtCfg *jwt.Config, ac AuthConfig) (*auth.Authenticator, error) {
	return auth.New(jwtCfg, rt.store,
		auth.WithRevocationStore(rt.revoked),
		auth.WithRotation(ac.RotationEnabled()),
		auth.WithLogger(rt.logger),
		auth.WithMetrics(rt.metrics),
		auth.WithAuditSink(rt.sink),
	)
}

func (rt *Runtime) newEngine(hc khttp.Config) (*gin.Engine, error) {
	e := gin.New()
	if err := e.SetTrustedProxies(hc.TrustedProxies); err != nil {
		return nil, fmt.Errorf("server: trusted proxies: %w", err)
	}
	e.Use(
		middleware.RequestID(),
		middleware.Recovery(middleware.RecoveryConfig{Logger: rt.logger}),
		middleware.Logger(middleware.LoggerConfig{
			Logger:    rt.logger,
			SkipPaths: []string{hc.Metrics.Path, hc.Health.Path},
		}),
		rt.prom.Middleware(),
	)
	rt.handler.Register(e)
	return e, nil
}

// Reload 按新配置重建令牌配置与认证器并原子替换，进行中的请求继续使用旧实例。
// 存储后端与监听地址的变更需要重启进程。
func (rt *Runtime) Reload(cfg *Config) error {
	jwtCfg, err := jwt.Build(nil, &cfg.JWT)
	if err != nil {
		return err
	}
	a, err := rt.authenticator(jwtCfg, cfg.Auth)
	if err != nil {
		return err
	}

	rt.mu.Lock()
	rt.authn = a
	rt.mu.Unlock()
	rt.handler.Swap(a, jwtCfg.JWKSJSON)

	rt.logger.Info().Stringer("jwt", cfg.JWT).Bool("rotation", cfg.Auth.RotationEnabled()).Msg("token configuration reloaded")
	return nil
}

// Authenticator 当前的认证器
func (rt *Runtime) Authenticator() *auth.Authenticator {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.authn
}

// Principals 主体存储
func (rt *Runtime) Principals() PrincipalWriter {
	return rt.store
}

// Server HTTP 服务
func (rt *Runtime) Server() *khttp.Server {
	return rt.server
}

// Handler 路由入口，测试中可直接配合 httptest 使用
func (rt *Runtime) Handler() http.Handler {
	return rt.engine
}

// CloseFuncs 供 app.WithClose 登记的关闭函数，按建立顺序排列
func (rt *Runtime) CloseFuncs() []app.CloseFunc {
	return append([]app.CloseFunc(nil), rt.res.closers...)
}

// Close 逆序释放全部连接，不经过 app 运行时使用
func (rt *Runtime) Close(ctx context.Context) error {
	return rt.res.close(ctx)
}

// OpenPrincipals 只打开主体存储，用于命令行维护主体
func OpenPrincipals(ctx context.Context, cfg *Config, logger *log.Logger) (PrincipalWriter, func(context.Context) error, error) {
	if logger == nil {
		logger = log.G
	}
	res := newResources(cfg, logger)
	s, err := res.principals(ctx)
	if err != nil {
		_ = res.close(ctx)
		return nil, nil, err
	}
	return s, res.close, nil
}
