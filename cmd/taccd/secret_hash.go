package main

import (
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"taccd/internal/auth"
)

func newSecretHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "secret-hash [secret]",
		Short: "Hash a gate bypass secret for gate.bypass_secret_hash",
		Long: `Secret-hash prints the bcrypt hash of a bypass secret. Store the
hash under gate.bypass_secret_hash; the plaintext is never persisted.
With no argument the secret is read from the terminal without echo.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var secret string
			if len(args) == 1 {
				secret = args[0]
			} else {
				fmt.Fprint(cmd.ErrOrStderr(), "Secret: ")
				raw, err := term.ReadPassword(int(syscall.Stdin))
				fmt.Fprintln(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				secret = string(raw)
			}

			if strings.TrimSpace(secret) == "" {
				return fmt.Errorf("secret must not be empty")
			}

			hash, err := auth.HashSecret(secret)
			if err != nil {
				return err
			}
			return writePlain("%s\n", hash)
		},
	}
}
