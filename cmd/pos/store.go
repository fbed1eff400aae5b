package main

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-pos-tables/internal/config"
	"github.com/ariefcatur/go-pos-tables/internal/orders"
	"github.com/ariefcatur/go-pos-tables/internal/postgres"
	"github.com/shopspring/decimal"
)

// openStore returns the configured store and a release func.
func openStore(ctx context.Context, cfg config.Config) (orders.Store, func(), error) {
	if cfg.Storage == config.StorageMemory {
		return demoStore(), func() {}, nil
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db connect: %w", err)
	}
	return &postgres.Repo{DB: db}, db.Close, nil
}

// demoStore backs STORAGE=memory with the same catalog the seed file loads.
func demoStore() *orders.MemStore {
	st := orders.NewMemStore()
	minimum := func(n int) *int { return &n }
	for _, p := range []orders.Product{
		{ID: "p-americano", Name: "Americano", Price: decimal.NewFromInt(2000), Stock: 40, StockMinimum: minimum(10), Brand: "House", Category: "Coffee"},
		{ID: "p-latte", Name: "Caffe Latte", Price: decimal.NewFromInt(2500), Stock: 40, StockMinimum: minimum(10), Brand: "House", Category: "Coffee"},
		{ID: "p-sandwich", Name: "Club Sandwich", Price: decimal.NewFromInt(2500), Stock: 12, StockMinimum: minimum(3), Category: "Food"},
		{ID: "p-croissant", Name: "Croissant", Price: decimal.NewFromInt(1800), Stock: 8, StockMinimum: minimum(2), Category: "Bakery"},
		{ID: "p-juice", Name: "Orange Juice", Price: decimal.NewFromInt(1500), Stock: 10, StockMinimum: minimum(2), Category: "Drinks"},
	} {
		st.PutProduct(p)
	}
	st.PutDiscount(orders.Discount{Code: "10OFF", Percentage: decimal.NewFromInt(10)})
	st.PutDiscount(orders.Discount{Code: "COFFEE", Percentage: decimal.NewFromInt(25), ProductIDs: []string{"p-americano", "p-latte"}})
	return st
}
