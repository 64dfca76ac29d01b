package httptransport

import (
	"errors"
	"net/http"

	"betking-casino/internal/app/casino"
	"betking-casino/internal/app/public"
	"betking-casino/internal/game"
	"betking-casino/internal/ledger"
	"betking-casino/internal/logging"
	"betking-casino/internal/ratelimit"
	"betking-casino/internal/store"

	chimw "github.com/go-chi/chi/v5/middleware"
)

var statusByError = []struct {
	err    error
	status int
}{
	{casino.ErrInvalidRequest, http.StatusBadRequest},
	{public.ErrInvalidRequest, http.StatusBadRequest},
	{game.ErrInvalidStake, http.StatusBadRequest},
	{game.ErrInvalidBet, http.StatusBadRequest},
	{game.ErrInvalidAction, http.StatusBadRequest},
	{game.ErrInvalidHold, http.StatusBadRequest},
	{ledger.ErrBetTooSmall, http.StatusBadRequest},
	{ledger.ErrBetTooLarge, http.StatusBadRequest},
	{ledger.ErrInvalidAmount, http.StatusBadRequest},
	{game.ErrHandNotFound, http.StatusNotFound},
	{public.ErrRoundNotFound, http.StatusNotFound},
	{game.ErrHandNotActive, http.StatusConflict},
	{game.ErrCannotDouble, http.StatusConflict},
	{game.ErrAlreadyDrawn, http.StatusConflict},
	{public.ErrRoundNotReady, http.StatusConflict},
	{store.ErrInsufficientBalance, http.StatusConflict},
	{ratelimit.ErrRateLimited, http.StatusTooManyRequests},
}

// writeError maps a service error to its status and snake_case code.
// Anything unrecognised is logged and reported as internal_error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			metricRequestErrors.Add(m.err.Error(), 1)
			WriteHTTPError(w, m.status, m.err.Error())
			return
		}
	}
	metricInternalError.Add(1)
	log := logging.Component("http")
	log.Error().Err(err).
		Str("request_id", chimw.GetReqID(r.Context())).
		Str("path", r.URL.Path).
		Msg("request failed")
	WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
}
