package public

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrRoundNotFound  = errors.New("round_not_found")
	ErrRoundNotReady  = errors.New("round_not_revealed")
)
