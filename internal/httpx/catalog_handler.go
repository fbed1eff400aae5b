package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/ariefcatur/go-pos-tables/internal/catalog"
	"github.com/ariefcatur/go-pos-tables/internal/closeday"
	"github.com/ariefcatur/go-pos-tables/internal/discount"
	"github.com/ariefcatur/go-pos-tables/internal/inventory"
	"github.com/ariefcatur/go-pos-tables/internal/orders"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	Catalog   *catalog.Snapshot
	Inventory *inventory.Service
	Sales     closeday.Lister
	Discounts *discount.Resolver
}

type restockReq struct {
	Qty int `json:"qty"`
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Get("/products/categories", h.categories)
	r.Get("/products/low-stock", h.lowStock)
	r.Post("/products/{id}/restock", h.restock)
	r.Post("/catalog/reload", h.reload)
	r.Get("/discounts/{code}", h.discount)
	r.Delete("/discounts/{code}/cache", h.invalidateDiscount)
	r.Get("/reports/close-day", h.closeDay)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ps := h.Catalog.Search(q.Get("q"), q.Get("category"))
	if ps == nil {
		ps = []orders.Product{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *CatalogHandler) categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Catalog.Categories())
}

func (h *CatalogHandler) lowStock(w http.ResponseWriter, r *http.Request) {
	ps := h.Inventory.LowStock()
	if ps == nil {
		ps = []orders.Product{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *CatalogHandler) restock(w http.ResponseWriter, r *http.Request) {
	var req restockReq
	if !decode(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Inventory.Restock(ctx, chi.URLParam(r, "id"), req.Qty)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) reload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Catalog.Reload(ctx); err != nil {
		writeError(w, r, orders.WrapPersistence("reload catalog", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"products": len(h.Catalog.All())})
}

func (h *CatalogHandler) discount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	d, err := h.Discounts.Lookup(ctx, chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// invalidateDiscount drops the cached copy after a code was edited in storage.
func (h *CatalogHandler) invalidateDiscount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Discounts.Invalidate(ctx, chi.URLParam(r, "code")); err != nil {
		writeError(w, r, orders.WrapPersistence("invalidate discount", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// closeDay reports the sales of ?date=YYYY-MM-DD (UTC), today by default.
func (h *CatalogHandler) closeDay(w http.ResponseWriter, r *http.Request) {
	day := time.Now().UTC()
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := time.Parse(time.DateOnly, v)
		if err != nil {
			badRequest(w, "date must be YYYY-MM-DD")
			return
		}
		day = d
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sum, err := closeday.Summarize(ctx, h.Sales, day)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
