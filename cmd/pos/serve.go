package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-pos-tables/internal/catalog"
	"github.com/ariefcatur/go-pos-tables/internal/checkout"
	"github.com/ariefcatur/go-pos-tables/internal/discount"
	"github.com/ariefcatur/go-pos-tables/internal/httpx"
	"github.com/ariefcatur/go-pos-tables/internal/inventory"
	kafkax "github.com/ariefcatur/go-pos-tables/internal/kafka"
	"github.com/ariefcatur/go-pos-tables/internal/logx"
	"github.com/ariefcatur/go-pos-tables/internal/orders"
	"github.com/ariefcatur/go-pos-tables/internal/redisx"
	"github.com/ariefcatur/go-pos-tables/internal/tables"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func NewServeCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the counter HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(root)
		},
	}
}

func runServe(root *RootOptions) error {
	cfg := root.Config
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store
	store, release, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	// Redis (optional)
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redisx.New(cfg.RedisAddr)
		defer rdb.Close()
	}

	// Kafka producer (optional)
	var (
		sink orders.EventSink = orders.NopSink{}
		prod *kafkax.Producer
	)
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, 1024)
		prod.Start(ctx)
		sink = &kafkax.Publisher{P: prod}
	}

	// Catalog, discounts, tables
	cat := catalog.New(store)
	if err := cat.Reload(ctx); err != nil {
		return err
	}
	resolverOpts := []discount.Option{}
	if rdb != nil {
		resolverOpts = append(resolverOpts, discount.WithCache(rdb, cfg.DiscountCacheTTL))
	}
	regOpts := []tables.Option{
		tables.WithCapacity(cfg.Tables),
		tables.WithDraftDelay(cfg.DraftDelay),
		tables.WithEventSink(sink, cfg.ServiceName),
	}
	if rdb != nil {
		regOpts = append(regOpts, tables.WithStatusCache(rdb))
	}
	discounts := discount.NewResolver(store, resolverOpts...)
	reg := tables.New(store, cat, discounts, regOpts...)
	if _, err := reg.Restore(ctx); err != nil {
		return err
	}

	inv := inventory.NewService(store, cat, cfg.AtomicStockDecrement)
	coord := checkout.New(reg, store, inv, checkout.WithEventSink(sink, cfg.ServiceName))

	// HTTP
	router := httpx.NewRouter()
	httpx.Mount(router, httpx.Handlers{
		Tables:  &httpx.TablesHandler{Registry: reg, Checkout: coord},
		Catalog: &httpx.CatalogHandler{Catalog: cat, Inventory: inv, Sales: store, Discounts: discounts},
		Events:  &httpx.EventsHandler{Registry: reg},
	})
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logx.Info().Str("addr", cfg.HTTPAddr).Str("storage", cfg.Storage).Int("tables", cfg.Tables).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Error().Err(err).Msg("listen")
			cancel()
		}
	}()

	// wait for a signal or a dead listener
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logx.Info().Msg("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	reg.Close(ctx2) // flush pending drafts
	if prod != nil {
		prod.Close()
		prod.WaitClosed()
	}
	return nil
}
