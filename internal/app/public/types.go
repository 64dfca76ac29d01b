package public

import (
	"time"

	"betking-casino/internal/game"

	"github.com/shopspring/decimal"
)

type RoundItem struct {
	RoundID     string           `json:"round_id"`
	Game        string           `json:"game"`
	RoundNumber int64            `json:"round_number"`
	Commitment  string           `json:"commitment"`
	ServerSeed  string           `json:"server_seed,omitempty"`
	Result      string           `json:"result,omitempty"`
	Multiplier  *decimal.Decimal `json:"multiplier,omitempty"`
	Status      string           `json:"status"`
	StartedAt   time.Time        `json:"started_at"`
	ResolvedAt  *time.Time       `json:"resolved_at,omitempty"`
}

type RoundsResponse struct {
	Items  []RoundItem `json:"items"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// VerifyInput names either a recorded round or a seed to recompute directly.
type VerifyInput struct {
	RoundID     string    `json:"round_id"`
	Game        game.Kind `json:"game"`
	ServerSeed  string    `json:"server_seed"`
	RoundNumber int64     `json:"round_number"`
	Commitment  string    `json:"commitment"`
}

type VerifyResponse struct {
	game.Verification
	// RecordMatch is set when a recorded round was checked against its
	// stored result.
	RecordMatch *bool `json:"record_match,omitempty"`
}
