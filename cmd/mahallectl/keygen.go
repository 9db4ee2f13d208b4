package main

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/gorilla/securecookie"
	"github.com/spf13/cobra"
)

// minKeyBytes is the shortest key the server accepts without a warning.
const minKeyBytes = 32

func newKeygenCmd(a *app) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Print a random value for MAHALLEHUB_SESSION_KEY",
		Args:  cobra.NoArgs,
		// No config or database needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := generateKey(n)
			if err != nil {
				return err
			}
			a.printf("%s\n", key)
			return nil
		},
	}
	cmd.Flags().IntVar(&n, "bytes", 48, "Number of random bytes before encoding")
	return cmd
}

func generateKey(n int) (string, error) {
	if n < minKeyBytes {
		return "", fmt.Errorf("--bytes must be at least %d", minKeyBytes)
	}
	b := securecookie.GenerateRandomKey(n)
	if b == nil {
		return "", errors.New("random source unavailable")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
