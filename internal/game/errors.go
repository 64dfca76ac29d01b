package game

import "errors"

var (
	ErrInvalidStake  = errors.New("invalid_stake")
	ErrInvalidBet    = errors.New("invalid_bet")
	ErrInvalidAction = errors.New("invalid_action")
	ErrHandNotFound  = errors.New("hand_not_found")
	ErrHandNotActive = errors.New("hand_not_active")
	ErrCannotDouble  = errors.New("cannot_double")
	ErrAlreadyDrawn  = errors.New("already_drawn")
	ErrInvalidHold   = errors.New("invalid_hold")
	ErrShoeEmpty     = errors.New("shoe_empty")
	ErrUnknownGame   = errors.New("unknown_game")
)
