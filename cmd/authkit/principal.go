package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kochabx/authkit/core/auth/principal"
	"github.com/kochabx/authkit/internal/server"
	"github.com/kochabx/authkit/log"
)

var (
	principalKey      string
	principalUsername string
	principalEmail    string
	principalRoles    []string
)

// principalCmd represents the principal command
var principalCmd = &cobra.Command{
	Use:   "principal",
	Short: "Manage principals in the configured store",
}

// principalCreateCmd represents the principal create command
var principalCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a principal, reading its secret from stdin",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		secret, err := readSecret(cmd.InOrStdin())
		if err != nil {
			return err
		}
		if cfg.Principals.Backend == "memory" {
			log.Warn().Msg("memory principal backend does not persist, the principal is discarded on exit")
		}

		store, closeFn, err := server.OpenPrincipals(cmd.Context(), cfg, log.G)
		if err != nil {
			return err
		}
		defer func() { _ = closeFn(context.WithoutCancel(cmd.Context())) }()

		rec := principal.Record{
			Key:      principalKey,
			Username: principalUsername,
			Email:    principalEmail,
			Roles:    principalRoles,
		}
		if rec.Key == "" {
			rec.Key = uuid.NewString()
		}
		if err := store.Create(cmd.Context(), rec, secret); err != nil {
			return err
		}

		log.Info().Str("key", rec.Key).Str("backend", cfg.Principals.Backend).Msg("principal created")
		return writeJSON(cmd.OutOrStdout(), rec)
	},
}

func init() {
	rootCmd.AddCommand(principalCmd)
	principalCmd.AddCommand(principalCreateCmd)

	principalCreateCmd.Flags().StringVar(&principalKey, "key", "", "Principal key (default is a random UUID)")
	principalCreateCmd.Flags().StringVar(&principalUsername, "username", "", "Login identifier")
	principalCreateCmd.Flags().StringVar(&principalEmail, "email", "", "Email, also accepted as login identifier")
	principalCreateCmd.Flags().StringSliceVar(&principalRoles, "role", nil, "Role, repeatable")

	_ = principalCreateCmd.MarkFlagRequired("username")
}
