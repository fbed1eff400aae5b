package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-pos-tables/internal/checkout"
	"github.com/ariefcatur/go-pos-tables/internal/orders"
	"github.com/ariefcatur/go-pos-tables/internal/tables"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type TablesHandler struct {
	Registry *tables.Registry
	Checkout *checkout.Coordinator
}

type openReq struct {
	Slot int `json:"slot"` // 0 picks the lowest free slot
}

type addItemReq struct {
	ProductID string `json:"product_id"`
}

type customItemReq struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type patchItemReq struct {
	Quantity *int             `json:"quantity"`
	Price    *decimal.Decimal `json:"price"`
}

type additionReq struct {
	Name       string          `json:"name"`
	PriceDelta decimal.Decimal `json:"price_delta"`
}

type commentReq struct {
	Comment string `json:"comment"`
}

type discountReq struct {
	Code string `json:"code"`
}

type sessionResp struct {
	orders.Session
	Totals orders.Effect `json:"totals"`
}

func withTotals(s orders.Session) sessionResp {
	return sessionResp{Session: s, Totals: s.Effect()}
}

func (h *TablesHandler) Register(r chi.Router) {
	r.Route("/tables", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.open)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Delete("/", h.delete)
			r.Get("/totals", h.totals)
			r.Post("/items", h.addItem)
			r.Post("/custom-items", h.addCustomItem)
			r.Patch("/items/{idx}", h.patchItem)
			r.Delete("/items/{idx}", h.removeItem)
			r.Post("/items/{idx}/additions", h.addAddition)
			r.Delete("/items/{idx}/additions/{aidx}", h.removeAddition)
			r.Put("/comment", h.setComment)
			r.Post("/discount", h.applyDiscount)
			r.Delete("/discount", h.removeDiscount)
			r.Post("/checkout", h.checkout)
		})
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "invalid json")
		return false
	}
	return true
}

func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		badRequest(w, "invalid "+name)
		return 0, false
	}
	return n, true
}

// reply writes the session with its totals, or the error.
func reply(w http.ResponseWriter, r *http.Request, s orders.Session, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, withTotals(s))
}

func (h *TablesHandler) list(w http.ResponseWriter, r *http.Request) {
	active := h.Registry.ListActive()
	out := make([]sessionResp, 0, len(active))
	for _, s := range active {
		out = append(out, withTotals(s))
	}
	writeJSON(w, http.StatusOK, map[string]any{"capacity": h.Registry.Capacity(), "tables": out})
}

func (h *TablesHandler) open(w http.ResponseWriter, r *http.Request) {
	var req openReq
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s, err := h.Registry.Open(ctx, req.Slot)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, withTotals(s))
}

func (h *TablesHandler) get(w http.ResponseWriter, r *http.Request) {
	s, err := h.Registry.Select(chi.URLParam(r, "id"))
	reply(w, r, s, err)
}

func (h *TablesHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Registry.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TablesHandler) totals(w http.ResponseWriter, r *http.Request) {
	e, err := h.Registry.Effect(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *TablesHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if !decode(w, r, &req) {
		return
	}
	s, err := h.Registry.AddCatalogItem(chi.URLParam(r, "id"), req.ProductID)
	reply(w, r, s, err)
}

func (h *TablesHandler) addCustomItem(w http.ResponseWriter, r *http.Request) {
	var req customItemReq
	if !decode(w, r, &req) {
		return
	}
	s, err := h.Registry.AddCustomItem(chi.URLParam(r, "id"), req.Name, req.Price)
	reply(w, r, s, err)
}

// patchItem sets quantity and price together; both are optional and a
// failure leaves the line as it was.
func (h *TablesHandler) patchItem(w http.ResponseWriter, r *http.Request) {
	idx, ok := intParam(w, r, "idx")
	if !ok {
		return
	}
	var req patchItemReq
	if !decode(w, r, &req) {
		return
	}
	if req.Quantity == nil && req.Price == nil {
		badRequest(w, "quantity or price required")
		return
	}
	s, err := h.Registry.EditLine(chi.URLParam(r, "id"), idx, req.Quantity, req.Price)
	reply(w, r, s, err)
}

func (h *TablesHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	idx, ok := intParam(w, r, "idx")
	if !ok {
		return
	}
	s, err := h.Registry.RemoveLineItem(chi.URLParam(r, "id"), idx)
	reply(w, r, s, err)
}

func (h *TablesHandler) addAddition(w http.ResponseWriter, r *http.Request) {
	idx, ok := intParam(w, r, "idx")
	if !ok {
		return
	}
	var req additionReq
	if !decode(w, r, &req) {
		return
	}
	s, err := h.Registry.AddAddition(chi.URLParam(r, "id"), idx, req.Name, req.PriceDelta)
	reply(w, r, s, err)
}

func (h *TablesHandler) removeAddition(w http.ResponseWriter, r *http.Request) {
	idx, ok := intParam(w, r, "idx")
	if !ok {
		return
	}
	aidx, ok := intParam(w, r, "aidx")
	if !ok {
		return
	}
	s, err := h.Registry.RemoveAddition(chi.URLParam(r, "id"), idx, aidx)
	reply(w, r, s, err)
}

func (h *TablesHandler) setComment(w http.ResponseWriter, r *http.Request) {
	var req commentReq
	if !decode(w, r, &req) {
		return
	}
	s, err := h.Registry.SetComment(chi.URLParam(r, "id"), req.Comment)
	reply(w, r, s, err)
}

func (h *TablesHandler) applyDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountReq
	if !decode(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	s, err := h.Registry.ApplyDiscount(ctx, chi.URLParam(r, "id"), req.Code)
	reply(w, r, s, err)
}

func (h *TablesHandler) removeDiscount(w http.ResponseWriter, r *http.Request) {
	s, err := h.Registry.RemoveDiscount(chi.URLParam(r, "id"))
	reply(w, r, s, err)
}

func (h *TablesHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkout.Payment
	if !decode(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Checkout.Finalize(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
