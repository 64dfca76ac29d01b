package game

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type RouletteBetType string

const (
	BetStraight RouletteBetType = "straight"
	BetSplit    RouletteBetType = "split"
	BetStreet   RouletteBetType = "street"
	BetCorner   RouletteBetType = "corner"
	BetLine     RouletteBetType = "line"
	BetColumn   RouletteBetType = "column"
	BetDozen    RouletteBetType = "dozen"
	BetRed      RouletteBetType = "red"
	BetBlack    RouletteBetType = "black"
	BetOdd      RouletteBetType = "odd"
	BetEven     RouletteBetType = "even"
	BetLow      RouletteBetType = "low"
	BetHigh     RouletteBetType = "high"
)

const rouletteSlots = 37

var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true, 16: true, 18: true,
	19: true, 21: true, 23: true, 25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

type rouletteRule struct {
	payout  int64
	numbers int
	check   func(b RouletteBet, n int) bool
}

func coveredBy(b RouletteBet, n int) bool {
	for _, x := range b.Numbers {
		if x == n {
			return true
		}
	}
	return false
}

var rouletteRules = map[RouletteBetType]rouletteRule{
	BetStraight: {payout: 35, check: func(b RouletteBet, n int) bool { return b.Number != nil && *b.Number == n }},
	BetSplit:    {payout: 17, numbers: 2, check: coveredBy},
	BetStreet:   {payout: 11, numbers: 3, check: coveredBy},
	BetCorner:   {payout: 8, numbers: 4, check: coveredBy},
	BetLine:     {payout: 5, numbers: 6, check: coveredBy},
	BetColumn:   {payout: 2, check: func(b RouletteBet, n int) bool { return n != 0 && (n-1)%3 == b.Column-1 }},
	BetDozen:    {payout: 2, check: func(b RouletteBet, n int) bool { return n != 0 && (n-1)/12 == b.Dozen-1 }},
	BetRed:      {payout: 1, check: func(_ RouletteBet, n int) bool { return redNumbers[n] }},
	BetBlack:    {payout: 1, check: func(_ RouletteBet, n int) bool { return n != 0 && !redNumbers[n] }},
	BetOdd:      {payout: 1, check: func(_ RouletteBet, n int) bool { return n != 0 && n%2 == 1 }},
	BetEven:     {payout: 1, check: func(_ RouletteBet, n int) bool { return n != 0 && n%2 == 0 }},
	BetLow:      {payout: 1, check: func(_ RouletteBet, n int) bool { return n >= 1 && n <= 18 }},
	BetHigh:     {payout: 1, check: func(_ RouletteBet, n int) bool { return n >= 19 && n <= 36 }},
}

type RouletteBet struct {
	Type    RouletteBetType `json:"type"`
	Stake   decimal.Decimal `json:"stake"`
	Number  *int            `json:"number,omitempty"`
	Numbers []int           `json:"numbers,omitempty"`
	Column  int             `json:"column,omitempty"`
	Dozen   int             `json:"dozen,omitempty"`
}

// Validate rejects unknown bet types and malformed shapes.
func (b RouletteBet) Validate() error {
	rule, ok := rouletteRules[b.Type]
	if !ok {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidBet, b.Type)
	}
	if !ValidStake(b.Stake) {
		return ErrInvalidStake
	}
	switch b.Type {
	case BetStraight:
		if b.Number == nil || *b.Number < 0 || *b.Number > 36 {
			return fmt.Errorf("%w: straight needs a number 0-36", ErrInvalidBet)
		}
	case BetColumn:
		if b.Column < 1 || b.Column > 3 {
			return fmt.Errorf("%w: column must be 1-3", ErrInvalidBet)
		}
	case BetDozen:
		if b.Dozen < 1 || b.Dozen > 3 {
			return fmt.Errorf("%w: dozen must be 1-3", ErrInvalidBet)
		}
	}
	if rule.numbers > 0 {
		if len(b.Numbers) != rule.numbers {
			return fmt.Errorf("%w: %s covers %d numbers", ErrInvalidBet, b.Type, rule.numbers)
		}
		seen := map[int]bool{}
		for _, n := range b.Numbers {
			if n < 0 || n > 36 || seen[n] {
				return fmt.Errorf("%w: bad number %d", ErrInvalidBet, n)
			}
			seen[n] = true
		}
		if !onTable(b.Type, b.Numbers) {
			return fmt.Errorf("%w: %v is not a %s on the table", ErrInvalidBet, b.Numbers, b.Type)
		}
	}
	return nil
}

// onTable reports whether nums form an inside bet of the given type on the
// single-zero layout, where n, n+1, n+2 share a street for n%3 == 1.
func onTable(t RouletteBetType, nums []int) bool {
	s := slices.Clone(nums)
	slices.Sort(s)
	a := s[0]
	switch t {
	case BetSplit:
		if a == 0 {
			return s[1] <= 3
		}
		return s[1] == a+3 || (s[1] == a+1 && a%3 != 0)
	case BetStreet:
		if a == 0 {
			return slices.Equal(s, []int{0, 1, 2}) || slices.Equal(s, []int{0, 2, 3})
		}
		return a%3 == 1 && slices.Equal(s, []int{a, a + 1, a + 2})
	case BetCorner:
		return a >= 1 && a%3 != 0 && slices.Equal(s, []int{a, a + 1, a + 3, a + 4})
	case BetLine:
		return a >= 1 && a%3 == 1 && slices.Equal(s, []int{a, a + 1, a + 2, a + 3, a + 4, a + 5})
	}
	return true
}

func (b RouletteBet) selection() string {
	switch {
	case b.Number != nil:
		return string(b.Type) + ":" + strconv.Itoa(*b.Number)
	case len(b.Numbers) > 0:
		parts := make([]string, 0, len(b.Numbers))
		for _, n := range b.Numbers {
			parts = append(parts, strconv.Itoa(n))
		}
		return string(b.Type) + ":" + strings.Join(parts, "-")
	case b.Column > 0:
		return string(b.Type) + ":" + strconv.Itoa(b.Column)
	case b.Dozen > 0:
		return string(b.Type) + ":" + strconv.Itoa(b.Dozen)
	}
	return string(b.Type)
}

type RouletteBetResult struct {
	RouletteBet
	Won    bool            `json:"won"`
	Payout decimal.Decimal `json:"payout"`
}

type RouletteResult struct {
	WinningNumber int                 `json:"winning_number"`
	Color         string              `json:"color"`
	Results       []RouletteBetResult `json:"results"`
	TotalStake    decimal.Decimal     `json:"total_stake"`
	TotalPayout   decimal.Decimal     `json:"total_payout"`
	NetWin        decimal.Decimal     `json:"net_win"`
}

func (RouletteResult) isResult() {}

func (r RouletteResult) Project() Projection {
	sel := make([]string, 0, len(r.Results))
	for _, b := range r.Results {
		sel = append(sel, b.selection())
	}
	return Projection{
		Kind:      KindRoulette,
		Payout:    r.TotalPayout,
		Selection: strings.Join(sel, ", "),
		Display:   strconv.Itoa(r.WinningNumber) + " " + r.Color,
	}
}

func RouletteColor(n int) string {
	switch {
	case n == 0:
		return "green"
	case redNumbers[n]:
		return "red"
	default:
		return "black"
	}
}

// TotalRouletteStake sums the stakes of a bet slip.
func TotalRouletteStake(bets []RouletteBet) decimal.Decimal {
	total := decimal.Zero
	for _, b := range bets {
		total = total.Add(b.Stake)
	}
	return total
}

type Roulette struct {
	rng Source
}

func NewRoulette(rng Source) *Roulette {
	return &Roulette{rng: rng}
}

// Spin draws one number in [0, 36] and settles every bet against it.
func (r *Roulette) Spin(bets []RouletteBet) (RouletteResult, error) {
	if len(bets) == 0 {
		return RouletteResult{}, fmt.Errorf("%w: no bets", ErrInvalidBet)
	}
	for _, b := range bets {
		if err := b.Validate(); err != nil {
			return RouletteResult{}, err
		}
	}
	n, err := RandomInt(r.rng, 0, rouletteSlots)
	if err != nil {
		return RouletteResult{}, err
	}
	return SettleRoulette(n, bets), nil
}

// SettleRoulette pays each bet independently: stake plus stake times the
// type's multiplier when it covers n.
func SettleRoulette(n int, bets []RouletteBet) RouletteResult {
	out := RouletteResult{
		WinningNumber: n,
		Color:         RouletteColor(n),
		Results:       make([]RouletteBetResult, 0, len(bets)),
		TotalStake:    TotalRouletteStake(bets),
		TotalPayout:   decimal.Zero,
	}
	for _, b := range bets {
		res := RouletteBetResult{RouletteBet: b, Payout: decimal.Zero}
		rule := rouletteRules[b.Type]
		if rule.check != nil && rule.check(b, n) {
			res.Won = true
			res.Payout = money(b.Stake.Add(b.Stake.Mul(decimal.NewFromInt(rule.payout))))
		}
		out.TotalPayout = out.TotalPayout.Add(res.Payout)
		out.Results = append(out.Results, res)
	}
	out.NetWin = money(out.TotalPayout.Sub(out.TotalStake))
	return out
}
