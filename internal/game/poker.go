package game

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

const PokerHandSize = 5

type PokerRank int

const (
	NoWin PokerRank = iota
	JacksOrBetter
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

var pokerNames = map[PokerRank]string{
	RoyalFlush:    "Royal Flush",
	StraightFlush: "Straight Flush",
	FourOfAKind:   "Four of a Kind",
	FullHouse:     "Full House",
	Flush:         "Flush",
	Straight:      "Straight",
	ThreeOfAKind:  "Three of a Kind",
	TwoPair:       "Two Pair",
	JacksOrBetter: "Jacks or Better",
	NoWin:         "No Win",
}

var pokerPays = map[PokerRank]int64{
	RoyalFlush:    800,
	StraightFlush: 50,
	FourOfAKind:   25,
	FullHouse:     9,
	Flush:         6,
	Straight:      4,
	ThreeOfAKind:  3,
	TwoPair:       2,
	JacksOrBetter: 1,
	NoWin:         0,
}

func (r PokerRank) String() string {
	return pokerNames[r]
}

func (r PokerRank) Multiplier() int64 {
	return pokerPays[r]
}

// EvaluatePoker classifies a five-card Jacks or Better hand.
func EvaluatePoker(cards []Card) PokerRank {
	if len(cards) != PokerHandSize {
		return NoWin
	}
	counts := map[Rank]int{}
	flush := true
	for i, c := range cards {
		counts[c.Rank]++
		if i > 0 && c.Suit != cards[0].Suit {
			flush = false
		}
	}
	ranks := make([]int, 0, len(counts))
	for r := range counts {
		ranks = append(ranks, int(r))
	}
	sort.Ints(ranks)

	straight := false
	if len(ranks) == 5 {
		if ranks[4]-ranks[0] == 4 {
			straight = true
		} else if ranks[4] == int(Ace) && ranks[3] == int(Five) {
			// A-2-3-4-5
			straight = true
		}
	}

	groups := make([]int, 0, len(counts))
	pairHigh := false
	for r, n := range counts {
		groups = append(groups, n)
		if n == 2 && r >= Jack {
			pairHigh = true
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(groups)))

	switch {
	case straight && flush && ranks[0] == int(Ten):
		return RoyalFlush
	case straight && flush:
		return StraightFlush
	case groups[0] == 4:
		return FourOfAKind
	case groups[0] == 3 && groups[1] == 2:
		return FullHouse
	case flush:
		return Flush
	case straight:
		return Straight
	case groups[0] == 3:
		return ThreeOfAKind
	case groups[0] == 2 && groups[1] == 2:
		return TwoPair
	case groups[0] == 2 && pairHigh:
		return JacksOrBetter
	}
	return NoWin
}

// PokerHand is a single-deck draw hand between deal and draw.
type PokerHand struct {
	ID    string
	Cards []Card
	Stake decimal.Decimal
	Drawn bool

	shoe *Shoe
}

func DealPoker(rng Source, stake decimal.Decimal) (*PokerHand, error) {
	if !ValidStake(stake) {
		return nil, ErrInvalidStake
	}
	shoe, err := ShuffledShoe(rng, 1)
	if err != nil {
		return nil, err
	}
	return DealPokerFrom(shoe, stake)
}

func DealPokerFrom(shoe *Shoe, stake decimal.Decimal) (*PokerHand, error) {
	h := &PokerHand{Stake: stake, shoe: shoe}
	for i := 0; i < PokerHandSize; i++ {
		c, err := shoe.Deal()
		if err != nil {
			return nil, err
		}
		h.Cards = append(h.Cards, c)
	}
	return h, nil
}

// Draw replaces every position not in holds and scores the final hand.
func (h *PokerHand) Draw(holds []int) (PokerResult, error) {
	if h.Drawn {
		return PokerResult{}, ErrAlreadyDrawn
	}
	held := [PokerHandSize]bool{}
	for _, i := range holds {
		if i < 0 || i >= PokerHandSize {
			return PokerResult{}, ErrInvalidHold
		}
		held[i] = true
	}
	for i := range h.Cards {
		if held[i] {
			continue
		}
		c, err := h.shoe.Deal()
		if err != nil {
			return PokerResult{}, err
		}
		h.Cards[i] = c
	}
	h.Drawn = true

	rank := EvaluatePoker(h.Cards)
	kept := make([]int, 0, len(holds))
	for i, ok := range held {
		if ok {
			kept = append(kept, i)
		}
	}
	return PokerResult{
		HandID:     h.ID,
		Cards:      cardStrings(h.Cards),
		Held:       kept,
		Hand:       rank.String(),
		Rank:       int(rank),
		Multiplier: rank.Multiplier(),
		Stake:      h.Stake,
		Payout:     money(h.Stake.Mul(decimal.NewFromInt(rank.Multiplier()))),
	}, nil
}

// PokerDealView is the pre-draw state returned by deal.
type PokerDealView struct {
	HandID string          `json:"handId"`
	Cards  []string        `json:"cards"`
	Stake  decimal.Decimal `json:"stake"`
}

func (h *PokerHand) View() PokerDealView {
	return PokerDealView{HandID: h.ID, Cards: cardStrings(h.Cards), Stake: h.Stake}
}

type PokerResult struct {
	HandID     string          `json:"handId"`
	Cards      []string        `json:"cards"`
	Held       []int           `json:"held"`
	Hand       string          `json:"hand"`
	Rank       int             `json:"rank"`
	Multiplier int64           `json:"multiplier"`
	Stake      decimal.Decimal `json:"stake"`
	Payout     decimal.Decimal `json:"payout"`
}

func (PokerResult) isResult() {}

func (r PokerResult) Project() Projection {
	return Projection{
		Kind:      KindPoker,
		Payout:    r.Payout,
		Selection: "draw",
		Display:   r.Hand + " " + strings.Join(r.Cards, " "),
	}
}
