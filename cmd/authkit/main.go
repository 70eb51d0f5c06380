// Command authkit 令牌签发与校验服务及其维护工具
package main

import (
	"context"
	"os"

	"github.com/kochabx/authkit/log"
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("authkit failed")
		os.Exit(1)
	}
}
