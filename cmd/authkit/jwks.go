package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kochabx/authkit/core/auth/jwt"
)

// jwksCmd represents the jwks command
var jwksCmd = &cobra.Command{
	Use:   "jwks",
	Short: "Print the JSON Web Key Set of the access token public key",
	Long: `Jwks prints the document served at /.well-known/jwks.json. Symmetric
algorithms have no public key and produce an empty key set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		jc, err := jwt.Build(nil, &cfg.JWT)
		if err != nil {
			return err
		}
		body, err := jc.JWKSJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(body))
		return err
	},
}

func init() {
	rootCmd.AddCommand(jwksCmd)
}
