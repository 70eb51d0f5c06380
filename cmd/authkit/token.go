package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kochabx/authkit/core/auth/jwt"
)

var (
	tokenIssueSubject  string
	tokenIssueUsername string
	tokenIssueEmail    string
	tokenIssueRoles    []string
	tokenIssueAttrs    map[string]string
	tokenIssueKind     string
)

// errTokenInvalid inspect 的令牌未通过校验，结果已输出
var errTokenInvalid = errors.New("token is not valid")

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue and inspect tokens with the configured keys",
}

// tokenIssueCmd represents the token issue command
var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue tokens for a subject without checking credentials",
	Long: `Issue signs tokens directly with the configured keys. The principal store
is not consulted and no credentials are verified; use it for service accounts
and local testing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		jc, err := jwt.Build(nil, &cfg.JWT)
		if err != nil {
			return err
		}

		p := jwt.Principal{
			Key:        tokenIssueSubject,
			Username:   tokenIssueUsername,
			Email:      tokenIssueEmail,
			Roles:      tokenIssueRoles,
			Attributes: tokenIssueAttrs,
		}
		out, err := issue(jc, p, tokenIssueKind)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), out)
	},
}

func issue(jc *jwt.Config, p jwt.Principal, kind string) (map[jwt.Kind]jwt.SignedToken, error) {
	var gens []*jwt.Generator
	if kind == "access" || kind == "both" {
		g, err := jwt.NewAccessGenerator(jc)
		if err != nil {
			return nil, err
		}
		gens = append(gens, g)
	}
	if kind == "refresh" || kind == "both" {
		g, err := jwt.NewRefreshGenerator(jc)
		if err != nil {
			return nil, err
		}
		gens = append(gens, g)
	}
	if len(gens) == 0 {
		return nil, fmt.Errorf("unknown token kind %q (access, refresh, both)", kind)
	}

	out := make(map[jwt.Kind]jwt.SignedToken, len(gens))
	for _, g := range gens {
		t, err := g.Generate(p)
		if err != nil {
			return nil, err
		}
		out[g.Kind()] = t
	}
	return out, nil
}

// inspection token inspect 的输出
type inspection struct {
	Valid  bool           `json:"valid"`
	Kind   jwt.Kind       `json:"kind,omitempty"`
	Reason jwt.Reason     `json:"reason,omitempty"`
	Claims *jwt.ClaimsSet `json:"claims,omitempty"`
}

// tokenInspectCmd represents the token inspect command
var tokenInspectCmd = &cobra.Command{
	Use:   "inspect <token|->",
	Short: "Validate a token against the configured keys and print its claims",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		jc, err := jwt.Build(nil, &cfg.JWT)
		if err != nil {
			return err
		}

		token := args[0]
		if token == "-" {
			b, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), 16<<10))
			if err != nil {
				return err
			}
			token = string(b)
		}

		res, err := inspect(jc, strings.TrimSpace(token))
		if err != nil {
			return err
		}
		if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
			return err
		}
		if !res.Valid {
			return errTokenInvalid
		}
		return nil
	},
}

// inspect 依次尝试访问令牌与刷新令牌校验器，只有 WrongTokenKind 时才换下一个
func inspect(jc *jwt.Config, token string) (inspection, error) {
	av, err := jwt.NewAccessValidator(jc)
	if err != nil {
		return inspection{}, err
	}
	rv, err := jwt.NewRefreshValidator(jc)
	if err != nil {
		return inspection{}, err
	}

	for _, v := range []jwt.TokenValidator{av, rv} {
		claims, err := v.Validate(token)
		if err == nil {
			return inspection{Valid: true, Kind: v.Kind(), Claims: &claims}, nil
		}
		reason := jwt.ReasonOf(err)
		if reason == "" {
			return inspection{}, err
		}
		if reason != jwt.ReasonWrongTokenKind {
			return inspection{Reason: reason}, nil
		}
	}
	return inspection{Reason: jwt.ReasonWrongTokenKind}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenIssueCmd, tokenInspectCmd)

	tokenIssueCmd.Flags().StringVar(&tokenIssueSubject, "subject", "", "Principal key written to sub")
	tokenIssueCmd.Flags().StringVar(&tokenIssueUsername, "username", "", "Value of the name claim")
	tokenIssueCmd.Flags().StringVar(&tokenIssueEmail, "email", "", "Value of the email claim")
	tokenIssueCmd.Flags().StringSliceVar(&tokenIssueRoles, "role", nil, "Role, repeatable")
	tokenIssueCmd.Flags().StringToStringVar(&tokenIssueAttrs, "attr", nil, "Extra access token claim as key=value, repeatable")
	tokenIssueCmd.Flags().StringVar(&tokenIssueKind, "kind", "both", "Token kind to issue (access, refresh, both)")

	_ = tokenIssueCmd.MarkFlagRequired("subject")
}
