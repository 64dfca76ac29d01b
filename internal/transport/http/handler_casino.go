package httptransport

import (
	"encoding/json"
	"net/http"

	"betking-casino/internal/app/casino"
	"betking-casino/internal/auth"
	"betking-casino/internal/game"
	"betking-casino/internal/rounds"

	"github.com/shopspring/decimal"
)

type CrashStater interface {
	State(userID string) rounds.CrashState
}

type ColorStater interface {
	State(userID string) rounds.ColorState
}

type CasinoHandlers struct {
	svc   *casino.Service
	crash CrashStater
	color ColorStater
}

func NewCasinoHandlers(svc *casino.Service, crash CrashStater, color ColorStater) *CasinoHandlers {
	return &CasinoHandlers{svc: svc, crash: crash, color: color}
}

type stakeRequest struct {
	Stake decimal.Decimal `json:"stake"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
		return false
	}
	return true
}

func (h *CasinoHandlers) SlotsSpin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.FromContext(r.Context())
		var body stakeRequest
		if !decode(w, r, &body) {
			return
		}
		resp, err := h.svc.SpinSlots(r.Context(), id.UserID, body.Stake)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, resp)
	}
}

func (h *CasinoHandlers) RouletteSpin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.FromContext(r.Context())
		var body struct {
			Bets []game.RouletteBet `json:"bets"`
		}
		if !decode(w, r, &body) {
			return
		}
		resp, err := h.svc.SpinRoulette(r.Context(), id.UserID, body.Bets)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, resp)
	}
}

func (h *CasinoHandlers) BlackjackStart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.FromContext(r.Context())
		var body stakeRequest
		if !decode(w, r, &body) {
			return
		}
		resp, err := h.svc.StartBlackjack(r.Context(), id.UserID, body.Stake)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, resp)
	}
}

func (h *CasinoHandlers) BlackjackAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.FromContext(r.Context())
		var body struct {
			HandID string               `json:"handId"`
			Action game.BlackjackAction `json:"action"`
		}
		if !decode(w, r, &body) {
			return
		}
		if body.HandID == "" {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		resp, err := h.svc.BlackjackAction(r.Context(), id.UserID, body.HandID, body.Action)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, resp)
	}
}

func (h *CasinoHandlers) PokerDeal() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.FromContext(r.Context())
		var body stakeRequest
		if !decode(w, r, &body) {
			return
		}
		resp, err := h.svc.DealPoker(r.Context(), id.UserID, body.Stake)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, resp)
	}
}

func (h *CasinoHandlers) PokerDraw() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.FromContext(r.Context())
		var body struct {
			HandID      string `json:"handId"`
			HoldIndices []int  `json:"holdIndices"`
		}
		if !decode(w, r, &body) {
			return
		}
		if body.HandID == "" {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		resp, err := h.svc.DrawPoker(r.Context(), id.UserID, body.HandID, body.HoldIndices)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, resp)
	}
}

func (h *CasinoHandlers) History() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.FromContext(r.Context())
		limit, offset := ParsePagination(r)
		resp, err := h.svc.History(r.Context(), id.UserID, r.URL.Query().Get("game"), limit, offset)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, resp)
	}
}

func (h *CasinoHandlers) CrashState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.FromContext(r.Context())
		writeJSON(w, h.crash.State(id.UserID))
	}
}

func (h *CasinoHandlers) ColorState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.FromContext(r.Context())
		writeJSON(w, h.color.State(id.UserID))
	}
}
