package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	accountstore "github.com/dalemusser/mahallehub/internal/app/store/accounts"
	"github.com/spf13/cobra"
)

// readPassword takes the first line of r.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newAccountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Provision sign-in accounts",
	}

	var name string
	setPw := &cobra.Command{
		Use:   "set-password NATIONAL_ID",
		Short: "Create an account or reset its password",
		Long: `Create an account or reset its password. The password is read from the
first line of standard input, for example:

  printf '%s\n' "$PW" | mahallectl account set-password 12345678950 --name "Ayşe Yılmaz"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nid, err := checkNationalID(args[0])
			if err != nil {
				return err
			}
			pw, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			ctx, cancel := a.context(cmd)
			defer cancel()
			svc, err := a.services(ctx)
			if err != nil {
				return err
			}
			created, err := svc.Accounts.SetPassword(ctx, nid, name, pw)
			if errors.Is(err, accountstore.ErrPasswordTooWeak) {
				return fmt.Errorf("password must be at least %d characters", accountstore.MinPasswordLen)
			}
			if err != nil {
				return err
			}
			svc.AuditLog.PasswordSet(ctx, cliActor, nid, created)
			if created {
				a.printf("account %s created\n", nid)
			} else {
				a.printf("password of %s updated\n", nid)
			}
			return nil
		},
	}
	setPw.Flags().StringVar(&name, "name", "", "Display name shown after sign-in")

	toggle := func(use, short string, disabled bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " NATIONAL_ID",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				nid, err := checkNationalID(args[0])
				if err != nil {
					return err
				}
				ctx, cancel := a.context(cmd)
				defer cancel()
				svc, err := a.services(ctx)
				if err != nil {
					return err
				}
				if err := svc.Accounts.SetDisabled(ctx, nid, disabled); err != nil {
					return err
				}
				a.printf("%s %sd\n", nid, use)
				return nil
			},
		}
	}

	cmd.AddCommand(setPw,
		toggle("disable", "Block sign-in for an account", true),
		toggle("enable", "Allow sign-in for a disabled account", false),
	)
	return cmd
}
