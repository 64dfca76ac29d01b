package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"betking-casino/internal/auth"
	"betking-casino/internal/ledger"
	"betking-casino/internal/store"

	"github.com/shopspring/decimal"
)

type WalletHandlers struct {
	ledger *ledger.Ledger
}

func NewWalletHandlers(l *ledger.Ledger) *WalletHandlers {
	return &WalletHandlers{ledger: l}
}

func (h *WalletHandlers) Balance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.FromContext(r.Context())
		bal, err := h.ledger.Balance(r.Context(), id.UserID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, map[string]any{"balance": bal})
	}
}

type transferRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *WalletHandlers) Deposit() http.HandlerFunc {
	return h.transfer(h.ledger.Deposit)
}

func (h *WalletHandlers) Withdraw() http.HandlerFunc {
	return h.transfer(h.ledger.Withdraw)
}

func (h *WalletHandlers) transfer(move func(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.FromContext(r.Context())
		var body transferRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		bal, err := move(r.Context(), id.UserID, body.Amount)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, map[string]any{"balance": bal})
	}
}

func (h *WalletHandlers) Transactions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.FromContext(r.Context())
		limit, offset := ParsePagination(r)
		f := store.TransactionFilter{UserID: id.UserID, Type: store.TxType(r.URL.Query().Get("type"))}
		if f.Type != "" && !f.Type.Valid() {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		items, total, err := h.ledger.Transactions(r.Context(), f, limit, offset)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, map[string]any{"items": items, "total": total, "limit": limit, "offset": offset})
	}
}
