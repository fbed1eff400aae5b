package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ariefcatur/go-pos-tables/internal/tables"
)

// EventsHandler streams registry changes as server-sent events.
type EventsHandler struct {
	Registry *tables.Registry
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "streaming unsupported"})
		return
	}
	changes, cancel := h.Registry.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			b, _ := json.Marshal(c)
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", c.Kind, b); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
