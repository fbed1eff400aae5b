package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/ariefcatur/go-pos-tables/internal/inventory"
	"github.com/spf13/cobra"
)

func NewRestockCommand(root *RootOptions) *cobra.Command {
	var qty int
	cmd := &cobra.Command{
		Use:   "restock <product-id>",
		Short: "Add stock to a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, release, err := openStore(ctx, root.Config)
			if err != nil {
				return err
			}
			defer release()

			p, err := inventory.NewService(store, nil, false).Restock(ctx, args[0], qty)
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(p)
		},
	}
	cmd.Flags().IntVar(&qty, "qty", 0, "units to add")
	_ = cmd.MarkFlagRequired("qty")
	return cmd
}
