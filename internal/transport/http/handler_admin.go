package httptransport

import (
	"context"
	"net/http"
	"time"

	"trivia-wager/internal/ledger"
)

// Pinger is implemented by ledger backends that hold a connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

type AdminHandlers struct {
	ledger ledger.Store
}

func NewAdminHandlers(st ledger.Store) *AdminHandlers {
	return &AdminHandlers{ledger: st}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := h.ledger.(Pinger)
		if !ok {
			writeJSON(w, map[string]any{"ok": true, "db": "none"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"ok":false,"db":"down"}` + "\n"))
			return
		}
		writeJSON(w, map[string]any{"ok": true, "db": "up"})
	}
}
