package main

import (
	"github.com/ariefcatur/go-pos-tables/internal/config"
	"github.com/ariefcatur/go-pos-tables/internal/logx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// RootOptions is shared by every subcommand.
type RootOptions struct {
	EnvFile string
	Config  config.Config
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "pos",
		Short:         "Counter POS: open tables, take orders, close sales",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load(opts.EnvFile)
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.Config = cfg
			logx.Init(cfg.Environment())
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file to load before reading the environment")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewRestockCommand(opts))
	cmd.AddCommand(NewCloseDayCommand(opts))
	cmd.AddCommand(NewPrinterCommand(opts))
	return cmd
}
