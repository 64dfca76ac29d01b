package ws

import "github.com/shopspring/decimal"

const (
	TypeCrashJoin     = "crash:join"
	TypeCrashLeave    = "crash:leave"
	TypeCrashPlaceBet = "crash:place_bet"
	TypeCrashCashout  = "crash:cashout"
	TypeColorJoin     = "color:join"
	TypeColorLeave    = "color:leave"
	TypeColorPlaceBet = "color:place_bet"

	TypeAck   = "ack"
	TypeError = "error"

	EventCrashState = "crash:state"
	EventColorState = "color:state"

	maxRequestIDLen = 64
)

// ClientMessage is every client to server frame. Fields not used by Type
// are ignored.
type ClientMessage struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Color     string          `json:"color,omitempty"`
}

// Event is a server push. Data is the event payload.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type Ack struct {
	Type       string           `json:"type"`
	RequestID  string           `json:"request_id,omitempty"`
	BetID      string           `json:"bet_id,omitempty"`
	Balance    decimal.Decimal  `json:"balance"`
	Payout     *decimal.Decimal `json:"payout,omitempty"`
	Multiplier *decimal.Decimal `json:"multiplier,omitempty"`
}

type ErrorReply struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error"`
}
