package rounds

import "errors"

var (
	ErrBettingClosed    = errors.New("betting_closed")
	ErrAlreadyBet       = errors.New("already_bet")
	ErrNotRunning       = errors.New("round_not_running")
	ErrNoBet            = errors.New("no_bet")
	ErrBetPending       = errors.New("bet_pending")
	ErrAlreadyCashedOut = errors.New("already_cashed_out")
	ErrInvalidColor     = errors.New("invalid_color")
	ErrStopped          = errors.New("scheduler_stopped")
)
