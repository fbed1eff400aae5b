package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ariefcatur/go-pos-tables/internal/closeday"
	"github.com/spf13/cobra"
)

func NewCloseDayCommand(root *RootOptions) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "close-day",
		Short: "Summarise a day's completed sales by payment method",
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now()
			if date != "" {
				d, err := time.ParseInLocation(time.DateOnly, date, time.Local)
				if err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
				}
				day = d
			}

			ctx := context.Background()
			store, release, err := openStore(ctx, root.Config)
			if err != nil {
				return err
			}
			defer release()

			sum, err := closeday.Summarize(ctx, store, day)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(sum)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to summarise (default today, local time)")
	return cmd
}
