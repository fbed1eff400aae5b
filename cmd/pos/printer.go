package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	kafkax "github.com/ariefcatur/go-pos-tables/internal/kafka"
	"github.com/ariefcatur/go-pos-tables/internal/logx"
	"github.com/ariefcatur/go-pos-tables/internal/orders"
	"github.com/ariefcatur/go-pos-tables/internal/printer"
	"github.com/ariefcatur/go-pos-tables/internal/redisx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func NewPrinterCommand(root *RootOptions) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "printer",
		Short: "Print receipts for completed sales from kafka",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.Config
			if len(cfg.KafkaBrokers) == 0 {
				return fmt.Errorf("KAFKA_BROKERS is required")
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var rdb *redis.Client
			if cfg.RedisAddr != "" {
				rdb = redisx.New(cfg.RedisAddr)
				defer rdb.Close()
			}

			p := printer.New(os.Stdout, rdb)
			cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.PrinterGroup, orders.TopicSaleCompleted, workers)
			logx.Info().Str("group", cfg.PrinterGroup).Str("topic", orders.TopicSaleCompleted).Int("workers", workers).Msg("printer started")
			return cons.Start(ctx, p.Handle)
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 1, "concurrent print workers")
	return cmd
}
