package httptransport

import (
	"encoding/json"
	"net/http"

	"betking-casino/internal/app/public"
)

type PublicHandlers struct {
	svc *public.Service
}

func NewPublicHandlers(svc *public.Service) *PublicHandlers {
	return &PublicHandlers{svc: svc}
}

func (h *PublicHandlers) Rounds() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		resp, err := h.svc.Rounds(r.Context(), r.URL.Query().Get("game"), limit, offset)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, resp)
	}
}

func (h *PublicHandlers) Verify() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body public.VerifyInput
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.Verify(r.Context(), body)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, resp)
	}
}
