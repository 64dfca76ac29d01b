package game

import (
	"github.com/shopspring/decimal"
)

const blackjackDecks = 6

type HandStatus string

const (
	StatusActive  HandStatus = "active"
	StatusSettled HandStatus = "settled"
)

type BlackjackOutcome string

const (
	OutcomeBlackjack  BlackjackOutcome = "blackjack"
	OutcomeWin        BlackjackOutcome = "win"
	OutcomeDealerBust BlackjackOutcome = "dealer_bust"
	OutcomePush       BlackjackOutcome = "push"
	OutcomeLose       BlackjackOutcome = "lose"
	OutcomeBust       BlackjackOutcome = "bust"
)

// Gross payout multiples of the (possibly doubled) stake.
var blackjackPays = map[BlackjackOutcome]decimal.Decimal{
	OutcomeBlackjack:  decimal.RequireFromString("2.5"),
	OutcomeWin:        decimal.NewFromInt(2),
	OutcomeDealerBust: decimal.NewFromInt(2),
	OutcomePush:       decimal.NewFromInt(1),
	OutcomeLose:       decimal.Zero,
	OutcomeBust:       decimal.Zero,
}

type BlackjackAction string

const (
	ActionHit    BlackjackAction = "hit"
	ActionStand  BlackjackAction = "stand"
	ActionDouble BlackjackAction = "double"
)

// BlackjackHand is one round against the dealer. It is not safe for
// concurrent use; HandStore serializes access.
type BlackjackHand struct {
	ID      string
	Player  []Card
	Dealer  []Card
	Stake   decimal.Decimal
	Status  HandStatus
	Outcome BlackjackOutcome
	Payout  decimal.Decimal
	Doubled bool

	shoe *Shoe
}

// DealBlackjack deals p1, p2, d1, d2 from a freshly shuffled 6-deck shoe.
func DealBlackjack(rng Source, stake decimal.Decimal) (*BlackjackHand, error) {
	if !ValidStake(stake) {
		return nil, ErrInvalidStake
	}
	shoe, err := ShuffledShoe(rng, blackjackDecks)
	if err != nil {
		return nil, err
	}
	return DealBlackjackFrom(shoe, stake)
}

// DealBlackjackFrom deals from a prepared shoe. A natural settles at once.
func DealBlackjackFrom(shoe *Shoe, stake decimal.Decimal) (*BlackjackHand, error) {
	h := &BlackjackHand{Stake: stake, Status: StatusActive, Payout: decimal.Zero, shoe: shoe}
	for i := 0; i < 4; i++ {
		c, err := shoe.Deal()
		if err != nil {
			return nil, err
		}
		if i == 2 || i == 3 {
			h.Dealer = append(h.Dealer, c)
		} else {
			h.Player = append(h.Player, c)
		}
	}
	if HandTotal(h.Player) == 21 {
		if HandTotal(h.Dealer) == 21 {
			h.settle(OutcomePush)
		} else {
			h.settle(OutcomeBlackjack)
		}
	}
	return h, nil
}

func (h *BlackjackHand) Active() bool {
	return h.Status == StatusActive
}

func (h *BlackjackHand) CanHit() bool {
	return h.Active() && HandTotal(h.Player) < 21
}

// CanDouble is true only before the first hit.
func (h *BlackjackHand) CanDouble() bool {
	return h.Active() && len(h.Player) == 2 && !h.Doubled
}

func (h *BlackjackHand) Hit() error {
	if !h.Active() {
		return ErrHandNotActive
	}
	c, err := h.shoe.Deal()
	if err != nil {
		return err
	}
	h.Player = append(h.Player, c)
	switch total := HandTotal(h.Player); {
	case total > 21:
		h.settle(OutcomeBust)
	case total == 21:
		return h.resolveDealer()
	}
	return nil
}

func (h *BlackjackHand) Stand() error {
	if !h.Active() {
		return ErrHandNotActive
	}
	return h.resolveDealer()
}

// Double doubles the stake and draws exactly one card. The caller debits the
// extra stake first.
func (h *BlackjackHand) Double() error {
	if !h.Active() {
		return ErrHandNotActive
	}
	if !h.CanDouble() {
		return ErrCannotDouble
	}
	c, err := h.shoe.Deal()
	if err != nil {
		return err
	}
	h.Stake = h.Stake.Mul(decimal.NewFromInt(2))
	h.Doubled = true
	h.Player = append(h.Player, c)
	if HandTotal(h.Player) > 21 {
		h.settle(OutcomeBust)
		return nil
	}
	return h.resolveDealer()
}

// Apply dispatches one player action.
func (h *BlackjackHand) Apply(action BlackjackAction) error {
	switch action {
	case ActionHit:
		return h.Hit()
	case ActionStand:
		return h.Stand()
	case ActionDouble:
		return h.Double()
	}
	return ErrInvalidAction
}

func (h *BlackjackHand) resolveDealer() error {
	for HandTotal(h.Dealer) < 17 {
		c, err := h.shoe.Deal()
		if err != nil {
			return err
		}
		h.Dealer = append(h.Dealer, c)
	}
	player, dealer := HandTotal(h.Player), HandTotal(h.Dealer)
	switch {
	case dealer > 21:
		h.settle(OutcomeDealerBust)
	case player > dealer:
		h.settle(OutcomeWin)
	case player == dealer:
		h.settle(OutcomePush)
	default:
		h.settle(OutcomeLose)
	}
	return nil
}

func (h *BlackjackHand) settle(o BlackjackOutcome) {
	h.Status = StatusSettled
	h.Outcome = o
	h.Payout = money(h.Stake.Mul(blackjackPays[o]))
}

// View renders the hand for the player. While the hand is active the hole
// card is masked and only the up card counts toward the dealer total.
func (h *BlackjackHand) View() BlackjackView {
	v := BlackjackView{
		HandID:      h.ID,
		PlayerCards: cardStrings(h.Player),
		PlayerTotal: HandTotal(h.Player),
		Stake:       h.Stake,
		Status:      h.Status,
		Result:      h.Outcome,
		Payout:      h.Payout,
		DoubledDown: h.Doubled,
		CanDouble:   h.CanDouble(),
		CanHit:      h.CanHit(),
	}
	if h.Active() {
		v.DealerCards = []string{h.Dealer[0].String(), "??"}
		v.DealerTotal = HandTotal(h.Dealer[:1])
	} else {
		v.DealerCards = cardStrings(h.Dealer)
		v.DealerTotal = HandTotal(h.Dealer)
	}
	return v
}

type BlackjackView struct {
	HandID      string           `json:"handId"`
	PlayerCards []string         `json:"playerCards"`
	DealerCards []string         `json:"dealerCards"`
	PlayerTotal int              `json:"playerTotal"`
	DealerTotal int              `json:"dealerTotal"`
	Stake       decimal.Decimal  `json:"stake"`
	Status      HandStatus       `json:"status"`
	Result      BlackjackOutcome `json:"result,omitempty"`
	Payout      decimal.Decimal  `json:"payout"`
	DoubledDown bool             `json:"doubledDown"`
	CanDouble   bool             `json:"canDouble"`
	CanHit      bool             `json:"canHit"`
}

func (BlackjackView) isResult() {}

func (v BlackjackView) Project() Projection {
	sel := "stand"
	if v.DoubledDown {
		sel = "double"
	}
	return Projection{
		Kind:      KindBlackjack,
		Payout:    v.Payout,
		Stake:     v.Stake,
		Selection: sel,
		Display:   string(v.Result),
	}
}
