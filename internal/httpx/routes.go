package httpx

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Tables  *TablesHandler
	Catalog *CatalogHandler
	Events  *EventsHandler
}

// Mount wires every handler onto r.
func Mount(r chi.Router, h Handlers) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		h.Tables.Register(r)
		h.Catalog.Register(r)
	})
	r.Method("GET", "/events", h.Events)
}
