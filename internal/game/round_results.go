package game

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// CrashBetResult is a settled crash bet: cashed out at Multiplier, or lost
// when the round crashed first. CrashPoint is only set on losses, since a
// cashout settles before the point is revealed.
type CrashBetResult struct {
	Round      int64            `json:"round"`
	Stake      decimal.Decimal  `json:"stake"`
	CashedOut  bool             `json:"cashed_out"`
	Multiplier decimal.Decimal  `json:"multiplier"`
	CrashPoint *decimal.Decimal `json:"crash_point,omitempty"`
	Payout     decimal.Decimal  `json:"payout"`
}

func (CrashBetResult) isResult() {}

func (r CrashBetResult) Project() Projection {
	display := "crashed"
	switch {
	case r.CashedOut:
		display = "cashed out @ " + r.Multiplier.StringFixed(2) + "x"
	case r.CrashPoint != nil:
		display = "crashed @ " + r.CrashPoint.StringFixed(2) + "x"
	}
	return Projection{Kind: KindCrash, Payout: r.Payout, Selection: CrashSelection(r.Round), Display: display}
}

// CrashSelection labels a crash bet by its round; a crash bet has no pick.
func CrashSelection(round int64) string {
	return "round " + strconv.FormatInt(round, 10)
}

// CrashPayout is stake times the multiplier, rounded to cents.
func CrashPayout(stake, multiplier decimal.Decimal) decimal.Decimal {
	return money(stake.Mul(multiplier))
}

type ColorBetResult struct {
	Round  int64           `json:"round"`
	Color  Color           `json:"color"`
	Result Color           `json:"result"`
	Stake  decimal.Decimal `json:"stake"`
	Payout decimal.Decimal `json:"payout"`
}

func (ColorBetResult) isResult() {}

func (r ColorBetResult) Won() bool {
	return r.Color == r.Result
}

func (r ColorBetResult) Project() Projection {
	return Projection{Kind: KindColor, Payout: r.Payout, Selection: string(r.Color), Display: string(r.Result)}
}

// SettleColorBet pays stake times the color multiplier on a match.
func SettleColorBet(round int64, pick, result Color, stake decimal.Decimal) ColorBetResult {
	r := ColorBetResult{Round: round, Color: pick, Result: result, Stake: stake, Payout: decimal.Zero}
	if pick == result {
		r.Payout = money(stake.Mul(pick.Multiplier()))
	}
	return r
}
