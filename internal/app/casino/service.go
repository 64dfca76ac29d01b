package casino

import (
	"context"
	"time"

	"betking-casino/internal/game"
	"betking-casino/internal/ledger"
	"betking-casino/internal/logging"
	"betking-casino/internal/store"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Wallet is the slice of the ledger the single-player games settle through.
type Wallet interface {
	Settle(ctx context.Context, w ledger.Wager, play func() (game.Result, error)) (ledger.Settlement, error)
	PlaceBet(ctx context.Context, w ledger.Wager, selection string, details any) (ledger.Placement, error)
	AddStake(ctx context.Context, userID, betID string, kind game.Kind, amount decimal.Decimal) (decimal.Decimal, error)
	SettleBet(ctx context.Context, userID, betID string, res game.Result) (ledger.Settlement, error)
	VoidBet(ctx context.Context, userID, betID string, refund decimal.Decimal, reason string) (decimal.Decimal, error)
	Balance(ctx context.Context, userID string) (decimal.Decimal, error)
	Bets(ctx context.Context, f store.BetFilter, limit, offset int) ([]store.Bet, error)
}

// A hand whose result could not be credited keeps it in unsettled until a
// later action or the reaper settles it.
type blackjackHand struct {
	hand      *game.BlackjackHand
	betID     string
	owner     string
	unsettled *game.BlackjackView
}

type pokerHand struct {
	hand      *game.PokerHand
	betID     string
	owner     string
	unsettled *game.PokerResult
}

// Service runs the single-player games against the ledger.
type Service struct {
	wallet   Wallet
	rng      game.Source
	slots    *game.Slots
	roulette *game.Roulette
	bj       *game.HandStore[*blackjackHand]
	vp       *game.HandStore[*pokerHand]
	log      zerolog.Logger
}

func NewService(w Wallet, rng game.Source, clock quartz.Clock, handIdle time.Duration) *Service {
	if rng == nil {
		rng = game.Crypto
	}
	return &Service{
		wallet:   w,
		rng:      rng,
		slots:    game.NewSlots(rng),
		roulette: game.NewRoulette(rng),
		bj:       game.NewHandStore[*blackjackHand]("bj_", clock, handIdle),
		vp:       game.NewHandStore[*pokerHand]("vp_", clock, handIdle),
		log:      logging.Component("casino"),
	}
}

// StartReapers drops idle hands every interval. The stake of an unfinished
// reaped hand stays forfeited and its bet is voided. A finished hand whose
// credit failed is settled instead, and kept for the next sweep if that
// fails again.
func (s *Service) StartReapers(ctx context.Context, interval time.Duration) {
	s.bj.StartReaper(ctx, interval, func(hands []*blackjackHand) {
		for _, h := range hands {
			if h.unsettled == nil {
				s.expire(ctx, h.owner, h.betID, game.KindBlackjack)
				continue
			}
			if _, err := s.settle(ctx, h.owner, h.betID, *h.unsettled); err != nil {
				s.bj.Put(h.hand.ID, h.owner, h)
			}
		}
	})
	s.vp.StartReaper(ctx, interval, func(hands []*pokerHand) {
		for _, h := range hands {
			if h.unsettled == nil {
				s.expire(ctx, h.owner, h.betID, game.KindPoker)
				continue
			}
			if _, err := s.settle(ctx, h.owner, h.betID, *h.unsettled); err != nil {
				s.vp.Put(h.hand.ID, h.owner, h)
			}
		}
	})
}

// settle credits a finished multi-step hand.
func (s *Service) settle(ctx context.Context, userID, betID string, res game.Result) (ledger.Settlement, error) {
	st, err := s.wallet.SettleBet(ctx, userID, betID, res)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Str("bet_id", betID).Str("game", string(res.Project().Kind)).Msg("settle hand")
		return ledger.Settlement{}, err
	}
	return st, nil
}

func (s *Service) expire(ctx context.Context, userID, betID string, kind game.Kind) {
	if _, err := s.wallet.VoidBet(ctx, userID, betID, decimal.Zero, "hand expired"); err != nil {
		s.log.Error().Err(err).Str("bet_id", betID).Str("game", string(kind)).Msg("void expired hand")
		return
	}
	s.log.Info().Str("user_id", userID).Str("bet_id", betID).Str("game", string(kind)).Msg("expired idle hand")
}

func (s *Service) SpinSlots(ctx context.Context, userID string, stake decimal.Decimal) (*SpinResponse, error) {
	st, err := s.wallet.Settle(ctx, ledger.Wager{UserID: userID, Game: game.KindSlots, Stake: stake}, func() (game.Result, error) {
		return s.slots.Spin(stake)
	})
	if err != nil {
		return nil, err
	}
	return &SpinResponse{BetID: st.BetID, Result: st.Result, Payout: st.Payout, Balance: st.Balance}, nil
}

func (s *Service) SpinRoulette(ctx context.Context, userID string, bets []game.RouletteBet) (*SpinResponse, error) {
	if len(bets) == 0 {
		return nil, game.ErrInvalidBet
	}
	for _, b := range bets {
		if err := b.Validate(); err != nil {
			return nil, err
		}
	}
	total := game.TotalRouletteStake(bets)
	st, err := s.wallet.Settle(ctx, ledger.Wager{UserID: userID, Game: game.KindRoulette, Stake: total}, func() (game.Result, error) {
		return s.roulette.Spin(bets)
	})
	if err != nil {
		return nil, err
	}
	return &SpinResponse{BetID: st.BetID, Result: st.Result, Payout: st.Payout, Balance: st.Balance}, nil
}

func (s *Service) StartBlackjack(ctx context.Context, userID string, stake decimal.Decimal) (*BlackjackResponse, error) {
	hand, err := game.DealBlackjack(s.rng, stake)
	if err != nil {
		return nil, err
	}
	hand.ID = s.bj.NewID()
	wager := ledger.Wager{UserID: userID, Game: game.KindBlackjack, Stake: stake}
	if !hand.Active() {
		view := hand.View()
		st, err := s.wallet.Settle(ctx, wager, func() (game.Result, error) { return view, nil })
		if err != nil {
			return nil, err
		}
		return &BlackjackResponse{BlackjackView: view, Balance: st.Balance}, nil
	}
	p, err := s.wallet.PlaceBet(ctx, wager, "blackjack", nil)
	if err != nil {
		return nil, err
	}
	s.bj.Put(hand.ID, userID, &blackjackHand{hand: hand, betID: p.BetID, owner: userID})
	return &BlackjackResponse{BlackjackView: hand.View(), Balance: p.Balance}, nil
}

// BlackjackAction applies hit, stand or double. A double debits the extra
// stake before the card is drawn; if the debit fails the hand is unchanged.
// On a finished hand whose credit failed, any action retries the credit.
func (s *Service) BlackjackAction(ctx context.Context, userID, handID string, action game.BlackjackAction) (*BlackjackResponse, error) {
	var out *BlackjackResponse
	err := s.bj.With(handID, userID, func(h *blackjackHand) (bool, error) {
		if h.unsettled != nil {
			return s.finishBlackjack(ctx, userID, h, &out)
		}
		balance := decimal.Zero
		haveBalance := false
		switch action {
		case game.ActionHit, game.ActionStand:
		case game.ActionDouble:
			if !h.hand.CanDouble() {
				return false, game.ErrCannotDouble
			}
			bal, err := s.wallet.AddStake(ctx, userID, h.betID, game.KindBlackjack, h.hand.Stake)
			if err != nil {
				return false, err
			}
			balance, haveBalance = bal, true
		default:
			return false, game.ErrInvalidAction
		}
		if err := h.hand.Apply(action); err != nil {
			return false, err
		}
		view := h.hand.View()
		if !h.hand.Active() {
			h.unsettled = &view
			return s.finishBlackjack(ctx, userID, h, &out)
		}
		if !haveBalance {
			bal, err := s.wallet.Balance(ctx, userID)
			if err != nil {
				return false, err
			}
			balance = bal
		}
		out = &BlackjackResponse{BlackjackView: view, Balance: balance}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) finishBlackjack(ctx context.Context, userID string, h *blackjackHand, out **BlackjackResponse) (bool, error) {
	st, err := s.settle(ctx, userID, h.betID, *h.unsettled)
	if err != nil {
		return false, err
	}
	*out = &BlackjackResponse{BlackjackView: *h.unsettled, Balance: st.Balance}
	return true, nil
}

func (s *Service) DealPoker(ctx context.Context, userID string, stake decimal.Decimal) (*PokerDealResponse, error) {
	hand, err := game.DealPoker(s.rng, stake)
	if err != nil {
		return nil, err
	}
	p, err := s.wallet.PlaceBet(ctx, ledger.Wager{UserID: userID, Game: game.KindPoker, Stake: stake}, "deal", nil)
	if err != nil {
		return nil, err
	}
	hand.ID = s.vp.NewID()
	s.vp.Put(hand.ID, userID, &pokerHand{hand: hand, betID: p.BetID, owner: userID})
	return &PokerDealResponse{PokerDealView: hand.View(), Balance: p.Balance}, nil
}

// DrawPoker replaces the unheld cards and settles the hand. If the credit
// fails the drawn result is kept and the next draw call retries it,
// ignoring its holds.
func (s *Service) DrawPoker(ctx context.Context, userID, handID string, holds []int) (*PokerDrawResponse, error) {
	var out *PokerDrawResponse
	err := s.vp.With(handID, userID, func(h *pokerHand) (bool, error) {
		if h.unsettled == nil {
			res, err := h.hand.Draw(holds)
			if err != nil {
				return false, err
			}
			h.unsettled = &res
		}
		st, err := s.settle(ctx, userID, h.betID, *h.unsettled)
		if err != nil {
			return false, err
		}
		out = &PokerDrawResponse{PokerResult: *h.unsettled, Balance: st.Balance}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) History(ctx context.Context, userID, gameType string, limit, offset int) (*HistoryResponse, error) {
	if gameType != "" && !validKind(game.Kind(gameType)) {
		return nil, ErrInvalidRequest
	}
	items, err := s.wallet.Bets(ctx, store.BetFilter{UserID: userID, GameType: gameType}, limit, offset)
	if err != nil {
		return nil, err
	}
	return &HistoryResponse{Items: items, Limit: limit, Offset: offset}, nil
}

func validKind(k game.Kind) bool {
	switch k {
	case game.KindSlots, game.KindRoulette, game.KindBlackjack, game.KindPoker, game.KindCrash, game.KindColor:
		return true
	}
	return false
}
