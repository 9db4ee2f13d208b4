package main

import (
	"github.com/dalemusser/mahallehub/internal/app/system/indexes"
	"github.com/dalemusser/mahallehub/internal/app/system/validators"
	"github.com/spf13/cobra"
)

func newIndexesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "indexes",
		Short: "Manage MongoDB indexes",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "ensure",
		Short: "Create collections, schema validators and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			if _, err := a.services(ctx); err != nil {
				return err
			}
			if err := validators.EnsureAll(ctx, a.db); err != nil {
				return err
			}
			if err := indexes.EnsureAll(ctx, a.db); err != nil {
				return err
			}
			a.printf("indexes ensured on %s\n", a.cfg.MongoDatabase)
			return nil
		},
	})
	return cmd
}
