// Package app 进程生命周期：运行服务与后台任务，收到信号或任一任务失败后优雅关闭并按逆序释放资源。
package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kochabx/authkit/log"
	"github.com/kochabx/authkit/transport"
)

var (
	ErrAlreadyStarted = errors.New("app: already started")
	ErrClosePanic     = errors.New("app: close function panicked")
)

// Runner 后台任务，ctx 取消时应返回
type Runner func(ctx context.Context) error

// CloseFunc 关闭时执行的清理函数
type CloseFunc struct {
	Name    string
	Fn      func(context.Context) error
	Timeout time.Duration
}

// Option 应用选项
type Option func(*Application)

// WithContext 设置根上下文
func WithContext(ctx context.Context) Option {
	return func(app *Application) {
		if ctx != nil {
			app.ctx, app.cancel = context.WithCancel(ctx)
		}
	}
}

// WithShutdownTimeout 服务关闭超时
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(app *Application) {
		if timeout > 0 {
			app.shutdownTimeout = timeout
		}
	}
}

// WithCloseTimeout 清理函数默认超时
func WithCloseTimeout(timeout time.Duration) Option {
	return func(app *Application) {
		if timeout > 0 {
			app.closeTimeout = timeout
		}
	}
}

// WithSignals 触发关闭的信号
func WithSignals(signals ...os.Signal) Option {
	return func(app *Application) {
		if len(signals) > 0 {
			app.signals = append([]os.Signal(nil), signals...)
		}
	}
}

// WithServer 添加服务
func WithServer(servers ...transport.Server) Option {
	return func(app *Application) {
		for _, s := range servers {
			if s != nil {
				app.servers = append(app.servers, s)
			}
		}
	}
}

// WithRunner 添加后台任务，例如配置监听
func WithRunner(name string, r Runner) Option {
	return func(app *Application) {
		if r != nil {
			app.runners = append(app.runners, namedRunner{name: name, run: r})
		}
	}
}

// WithClose 添加清理函数，timeout 为 0 时使用默认超时
func WithClose(name string, fn func(context.Context) error, timeout time.Duration) Option {
	return func(app *Application) {
		if err := app.addClose(name, fn, timeout); err != nil {
			app.logger.Warn().Str("name", name).Msg("nil close function ignored")
		}
	}
}

// WithLogger 设置日志
func WithLogger(l *log.Logger) Option {
	return func(app *Application) {
		if l != nil {
			app.logger = l
		}
	}
}

type namedRunner struct {
	name string
	run  Runner
}

// Application 管理服务、后台任务与清理函数
type Application struct {
	ctx             context.Context
	cancel          context.CancelFunc
	logger          *log.Logger
	shutdownTimeout time.Duration
	closeTimeout    time.Duration
	signals         []os.Signal

	mu         sync.Mutex
	servers    []transport.Server
	runners    []namedRunner
	closeFuncs []CloseFunc
	started    bool
}

// New 创建应用
func New(opts ...Option) *Application {
	app := &Application{
		logger:          log.G,
		shutdownTimeout: 30 * time.Second,
		closeTimeout:    10 * time.Second,
		signals:         []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT},
	}
	app.ctx, app.cancel = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// RegisterClose 运行期追加清理函数
func (app *Application) RegisterClose(name string, fn func(context.Context) error, timeout time.Duration) error {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.addClose(name, fn, timeout)
}

func (app *Application) addClose(name string, fn func(context.Context) error, timeout time.Duration) error {
	if fn == nil {
		return errors.New("app: close function is nil")
	}
	if timeout <= 0 {
		timeout = app.closeTimeout
	}
	app.closeFuncs = append(app.closeFuncs, CloseFunc{Name: name, Fn: fn, Timeout: timeout})
	return nil
}

// Run 阻塞运行直至收到信号、调用 Stop 或任一服务/任务出错。
// 返回前按注册的逆序执行清理函数，返回首个服务或任务错误。
func (app *Application) Run() error {
	app.mu.Lock()
	if app.started {
		app.mu.Unlock()
		return ErrAlreadyStarted
	}
	app.started = true
	servers := append([]transport.Server(nil), app.servers...)
	runners := append([]namedRunner(nil), app.runners...)
	app.mu.Unlock()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, app.signals...)
	defer signal.Stop(sigCh)

	eg, ctx := errgroup.WithContext(app.ctx)

	for _, s := range servers {
		eg.Go(s.Run)
		eg.Go(func() error {
			<-ctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout)
			defer cancel()
			return s.Shutdown(sctx)
		})
	}
	for _, r := range runners {
		eg.Go(func() error {
			if err := r.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				app.logger.Error().Err(err).Str("runner", r.name).Msg("runner failed")
				return err
			}
			return nil
		})
	}
	eg.Go(func() error {
		select {
		case sig := <-sigCh:
			app.logger.Info().Str("signal", sig.String()).Msg("shutting down")
			app.cancel()
		case <-ctx.Done():
		}
		return nil
	})

	err := eg.Wait()
	app.runCloseFuncs()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stop 触发关闭
func (app *Application) Stop() {
	app.cancel()
}

func (app *Application) runCloseFuncs() {
	app.mu.Lock()
	funcs := append([]CloseFunc(nil), app.closeFuncs...)
	app.mu.Unlock()

	for i := len(funcs) - 1; i >= 0; i-- {
		if err := app.runClose(funcs[i]); err != nil {
			app.logger.Error().Err(err).Str("close", funcs[i].Name).Msg("close failed")
		}
	}
}

func (app *Application) runClose(cf CloseFunc) error {
	ctx, cancel := context.WithTimeout(context.Background(), cf.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				app.logger.Error().Interface("panic", r).Str("close", cf.Name).Msg("close function panicked")
				done <- ErrClosePanic
			}
		}()
		done <- cf.Fn(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Info 应用状态
func (app *Application) Info() Info {
	app.mu.Lock()
	defer app.mu.Unlock()
	return Info{
		Started:     app.started,
		ServerCount: len(app.servers),
		RunnerCount: len(app.runners),
		CloseCount:  len(app.closeFuncs),
	}
}

// Info 应用状态
type Info struct {
	Started     bool `json:"started"`
	ServerCount int  `json:"server_count"`
	RunnerCount int  `json:"runner_count"`
	CloseCount  int  `json:"close_count"`
}
