package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"betking-casino/internal/ledger"

	"github.com/shopspring/decimal"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type AdminHandlers struct {
	db     Pinger
	ledger *ledger.Ledger
}

func NewAdminHandlers(db Pinger, l *ledger.Ledger) *AdminHandlers {
	return &AdminHandlers{db: db, ledger: l}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := h.db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up"})
	}
}

func (h *AdminHandlers) Limits() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			lim, err := h.ledger.Limits(r.Context())
			if err != nil {
				writeError(w, r, err)
				return
			}
			writeJSON(w, map[string]any{"min_bet": lim.Min, "max_bet": lim.Max})
		case http.MethodPut:
			var body struct {
				MinBet decimal.Decimal `json:"min_bet"`
				MaxBet decimal.Decimal `json:"max_bet"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
				return
			}
			if !body.MinBet.IsPositive() || body.MaxBet.LessThan(body.MinBet) {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
				return
			}
			if err := h.ledger.SetLimits(r.Context(), ledger.Limits{Min: body.MinBet, Max: body.MaxBet}); err != nil {
				writeError(w, r, err)
				return
			}
			writeJSON(w, map[string]any{"ok": true, "min_bet": body.MinBet, "max_bet": body.MaxBet})
		default:
			WriteHTTPError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		}
	}
}
