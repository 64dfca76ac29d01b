package rounds

import (
	"context"

	"betking-casino/internal/game"
	"betking-casino/internal/ledger"
	"betking-casino/internal/store"

	"github.com/shopspring/decimal"
)

const (
	RoomCrash = "crash"
	RoomColor = "color"
)

// Broadcaster fans round events out to connected clients.
type Broadcaster interface {
	Broadcast(room, event string, payload any)
	SendToUser(userID, event string, payload any)
}

// Wallet is the slice of the ledger the schedulers settle through.
type Wallet interface {
	PlaceBet(ctx context.Context, w ledger.Wager, selection string, details any) (ledger.Placement, error)
	SettleBet(ctx context.Context, userID, betID string, res game.Result) (ledger.Settlement, error)
	VoidBet(ctx context.Context, userID, betID string, refund decimal.Decimal, reason string) (decimal.Decimal, error)
}

// Recorder persists the commit and reveal of every round.
type Recorder interface {
	LatestRoundNumber(ctx context.Context, gameType string) (int64, error)
	Opened(r store.Round)
	Resolved(rv store.RoundReveal)
}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(string, string, any)  {}
func (nopBroadcaster) SendToUser(string, string, any) {}
