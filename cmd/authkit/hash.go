package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kochabx/authkit/core/auth/principal"
)

var hashAlgorithm string

// errEmptySecret 未提供口令
var errEmptySecret = errors.New("secret must not be empty")

// hashCmd represents the hash command
var hashCmd = &cobra.Command{
	Use:   "hash [secret]",
	Short: "Hash a secret for a principal record",
	Long: `Hash prints the encoded hash of a secret in the format stored by the
database and mongo principal backends. Without an argument the secret is read
from the first line of stdin, which keeps it out of the shell history.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := principal.NewHasher(hashAlgorithm)
		if err != nil {
			return err
		}

		var secret string
		if len(args) == 1 {
			secret = args[0]
		} else if secret, err = readSecret(cmd.InOrStdin()); err != nil {
			return err
		}

		out, err := h.Hash(secret)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
		return err
	},
}

// readSecret 读取第一行并去掉行尾换行
func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errEmptySecret
	}
	return line, nil
}

func init() {
	rootCmd.AddCommand(hashCmd)

	hashCmd.Flags().StringVar(&hashAlgorithm, "algorithm", principal.AlgorithmArgon2id, "Hash algorithm (argon2id, bcrypt)")
}
