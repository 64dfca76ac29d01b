package casino

import (
	"betking-casino/internal/game"
	"betking-casino/internal/store"

	"github.com/shopspring/decimal"
)

type SpinResponse struct {
	BetID   string          `json:"bet_id"`
	Result  game.Result     `json:"result"`
	Payout  decimal.Decimal `json:"payout"`
	Balance decimal.Decimal `json:"balance"`
}

type BlackjackResponse struct {
	game.BlackjackView
	Balance decimal.Decimal `json:"balance"`
}

type PokerDealResponse struct {
	game.PokerDealView
	Balance decimal.Decimal `json:"balance"`
}

type PokerDrawResponse struct {
	game.PokerResult
	Balance decimal.Decimal `json:"balance"`
}

type HistoryResponse struct {
	Items  []store.Bet `json:"items"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}
