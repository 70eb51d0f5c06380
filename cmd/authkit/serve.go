package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kochabx/authkit/app"
	"github.com/kochabx/authkit/internal/server"
	"github.com/kochabx/authkit/log"
)

var serveWatch bool

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the authkit HTTP server",
	Long: `Serve exposes /auth/login, /auth/refresh, /auth/logout, /auth/me and
/.well-known/jwks.json, plus /metrics and /health when enabled.
With --watch, changes to the jwt and auth sections of the config file are
applied without a restart.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		logger, err := log.FromConfig(cfg.Log)
		if err != nil {
			return err
		}
		log.SetGlobalLogger(logger)

		rt, err := server.Build(cmd.Context(), cfg, logger)
		if err != nil {
			_ = logger.Close()
			return err
		}

		// 关闭逆序执行，日志最先登记、最后关闭
		opts := []app.Option{
			app.WithContext(cmd.Context()),
			app.WithLogger(logger),
			app.WithClose("logger", func(context.Context) error { return logger.Close() }, 0),
			app.WithServer(rt.Server()),
		}
		for _, c := range rt.CloseFuncs() {
			opts = append(opts, app.WithClose(c.Name, c.Fn, c.Timeout))
		}
		if serveWatch && loader.FileUsed() != "" {
			opts = append(opts, app.WithRunner("config-watch", watchConfig(loader.Watch, rt, logger)))
		}

		logger.Info().Str("addr", rt.Server().Addr()).Msg("starting authkit")
		return app.New(opts...).Run()
	},
}

// watchConfig 配置变更时重建令牌配置；新配置无效时保留当前配置
func watchConfig(watch func(func(*server.Config, error)), rt *server.Runtime, logger *log.Logger) app.Runner {
	return func(ctx context.Context) error {
		watch(func(next *server.Config, err error) {
			if err != nil {
				return
			}
			if err := rt.Reload(next); err != nil {
				logger.Error().Err(err).Msg("reload rejected, keeping current configuration")
			}
		})
		<-ctx.Done()
		return nil
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "Listen address, overrides http.addr")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", true, "Reload token configuration when the config file changes")
}
