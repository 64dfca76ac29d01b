package store

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type TxType string

const (
	TxDeposit   TxType = "deposit"
	TxWithdraw  TxType = "withdraw"
	TxBetPlaced TxType = "bet_placed"
	TxBetWon    TxType = "bet_won"
	TxBetLost   TxType = "bet_lost"
	TxBonus     TxType = "bonus"
	TxRefund    TxType = "refund"
)

func (t TxType) Valid() bool {
	switch t {
	case TxDeposit, TxWithdraw, TxBetPlaced, TxBetWon, TxBetLost, TxBonus, TxRefund:
		return true
	}
	return false
}

type BetStatus string

const (
	BetPending BetStatus = "pending"
	BetWon     BetStatus = "won"
	BetLost    BetStatus = "lost"
	BetVoid    BetStatus = "void"
)

const (
	RoundOpen     = "open"
	RoundResolved = "resolved"
)

type Account struct {
	UserID    string          `json:"user_id"`
	Username  string          `json:"username"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Transaction is an append-only record of one balance mutation.
type Transaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Type         TxType          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	ReferenceID  string          `json:"reference_id"`
	Description  string          `json:"description"`
	CreatedAt    time.Time       `json:"created_at"`
}

type Bet struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	GameType  string          `json:"game_type"`
	Selection string          `json:"selection"`
	Stake     decimal.Decimal `json:"stake"`
	Payout    decimal.Decimal `json:"payout"`
	Status    BetStatus       `json:"status"`
	RoundID   string          `json:"round_id"`
	Details   json.RawMessage `json:"details"`
	PlacedAt  time.Time       `json:"placed_at"`
	SettledAt *time.Time      `json:"settled_at,omitempty"`
}

// BetSettlement moves a pending bet to its final status. Stake, when set,
// replaces the recorded stake for bets that grew after placement.
type BetSettlement struct {
	BetID   string
	Status  BetStatus
	Payout  decimal.Decimal
	Stake   decimal.NullDecimal
	Details json.RawMessage
}

// Posting is a signed balance change paired with its transaction record.
type Posting struct {
	UserID      string
	Type        TxType
	Amount      decimal.Decimal
	ReferenceID string
	Description string
}

// Round is the audit row of one multiplayer round. ServerSeed stays empty
// until the round is resolved.
type Round struct {
	ID          string              `json:"id"`
	GameType    string              `json:"game_type"`
	RoundNumber int64               `json:"round_number"`
	Commitment  string              `json:"commitment"`
	ServerSeed  string              `json:"server_seed,omitempty"`
	Result      string              `json:"result,omitempty"`
	Multiplier  decimal.NullDecimal `json:"multiplier"`
	Status      string              `json:"status"`
	StartedAt   time.Time           `json:"started_at"`
	ResolvedAt  *time.Time          `json:"resolved_at,omitempty"`
}

type RoundReveal struct {
	ID         string
	ServerSeed string
	Result     string
	Multiplier decimal.NullDecimal
}

type TransactionFilter struct {
	UserID string
	Type   TxType
}

type BetFilter struct {
	UserID        string
	GameType      string
	ExcludeSports bool
}

type RoundFilter struct {
	GameType     string
	ResolvedOnly bool
}
