package game

import "github.com/shopspring/decimal"

type Kind string

const (
	KindSlots     Kind = "slots"
	KindRoulette  Kind = "roulette"
	KindBlackjack Kind = "blackjack"
	KindPoker     Kind = "poker"
	KindCrash     Kind = "crash"
	KindColor     Kind = "color"
)

// Projection is the game-independent view of a result that settlement needs.
// Stake is set only by games whose stake can grow after the bet is placed.
type Projection struct {
	Kind      Kind
	Payout    decimal.Decimal
	Stake     decimal.Decimal
	Selection string
	Display   string
}

// Result is implemented only by the result types of this package:
// SlotsResult, RouletteResult, BlackjackView, PokerResult, CrashBetResult and
// ColorBetResult.
type Result interface {
	Project() Projection
	isResult()
}

func money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ValidStake reports whether stake is positive with at most two decimals.
func ValidStake(stake decimal.Decimal) bool {
	return stake.IsPositive() && stake.Equal(stake.Round(2))
}
