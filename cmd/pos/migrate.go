package main

import (
	"context"

	"github.com/ariefcatur/go-pos-tables/internal/logx"
	"github.com/ariefcatur/go-pos-tables/internal/postgres"
	"github.com/spf13/cobra"
)

func NewMigrateCommand(root *RootOptions) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			db, err := postgres.Connect(ctx, root.Config.PostgresDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.Migrate(ctx, db); err != nil {
				return err
			}
			if seed {
				if err := postgres.Seed(ctx, db); err != nil {
					return err
				}
			}
			logx.Info().Bool("seed", seed).Msg("schema applied")
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "also load the demo catalog and discount codes")
	return cmd
}
