package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kochabx/authkit/config"
	"github.com/kochabx/authkit/internal/server"
	"github.com/kochabx/authkit/log"
)

// global flags
var cfgFile string

const (
	LogLevelKey  = "log.level"
	LogFormatKey = "log.format"
	HTTPAddrKey  = "http.addr"
)

var rootCmd = &cobra.Command{
	Use:   "authkit",
	Short: "JWT access and refresh token service",
	Long: `authkit issues short-lived access tokens and long-lived refresh tokens
for authenticated principals, validates them, and rotates refresh tokens.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		lvl, err := zerolog.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		// 命令输出写 stdout，日志写 stderr
		log.SetGlobalLogger(log.NewWithWriter(os.Stderr, log.WithLevel(lvl)))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"Configuration file (default is ./config.yaml or /etc/authkit/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format for serve (console, json)")
}

// loadConfig 读取配置文件与 AUTHKIT_* 环境变量，命令行参数优先
func loadConfig(cmd *cobra.Command) (*config.Config[server.Config], *server.Config, error) {
	var opts []config.Option
	if cfgFile != "" {
		opts = append(opts, config.WithFile(cfgFile))
	} else {
		opts = append(opts, config.WithOptional(), config.WithPaths(".", "/etc/authkit"))
	}
	opts = append(opts, config.WithLogger(log.G))

	loader := config.New[server.Config](opts...)
	v := loader.Viper()
	_ = v.BindPFlag(LogLevelKey, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag(LogFormatKey, rootCmd.PersistentFlags().Lookup("log-format"))
	if f := cmd.Flags().Lookup("addr"); f != nil {
		_ = v.BindPFlag(HTTPAddrKey, f)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if used := loader.FileUsed(); used != "" {
		log.Debug().Str("file", used).Msg("using config file")
	}
	return loader, cfg, nil
}
