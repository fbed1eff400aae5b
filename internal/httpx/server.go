package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ariefcatur/go-pos-tables/internal/logx"
	"github.com/ariefcatur/go-pos-tables/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter carries the shared middleware. Request timeouts are applied per
// route group so the event stream can stay open.
func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error     string                 `json:"error"`
	Kind      orders.Kind            `json:"kind"`
	Items     []orders.StockShortage `json:"items,omitempty"`
	Shortfall string                 `json:"shortfall,omitempty"`
}

func statusFor(k orders.Kind) int {
	switch k {
	case orders.KindValidation:
		return http.StatusBadRequest
	case orders.KindNotFound:
		return http.StatusNotFound
	case orders.KindStock, orders.KindConflict:
		return http.StatusConflict
	case orders.KindPersistence:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps the error taxonomy onto HTTP.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := orders.KindOf(err)
	body := errorBody{Error: err.Error(), Kind: kind}

	var (
		stockErr *orders.InsufficientStockError
		payErr   *orders.InsufficientPaymentError
	)
	if errors.As(err, &stockErr) {
		body.Items = stockErr.Items
	}
	if errors.As(err, &payErr) {
		body.Shortfall = payErr.Shortfall.String()
	}

	code := statusFor(kind)
	if code >= http.StatusInternalServerError {
		logx.Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, code, body)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Kind: orders.KindValidation})
}
