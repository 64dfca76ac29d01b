package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"betking-casino/internal/game"
	"betking-casino/internal/logging"
	"betking-casino/internal/store"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	ErrBetTooSmall   = errors.New("bet_below_minimum")
	ErrBetTooLarge   = errors.New("bet_above_maximum")
	ErrInvalidAmount = errors.New("invalid_amount")
)

const (
	SettingMinBet = "min_bet"
	SettingMaxBet = "max_bet"
)

var (
	minTransfer = decimal.NewFromInt(100)
	maxTransfer = decimal.NewFromInt(1_000_000)
)

type Limits struct {
	Min decimal.Decimal `json:"min_bet"`
	Max decimal.Decimal `json:"max_bet"`
}

// Ledger is the settlement boundary: every balance change goes through one
// store unit of work together with its transaction record.
type Ledger struct {
	store    store.Backend
	defaults Limits
	starting decimal.Decimal
	log      zerolog.Logger
}

func New(s store.Backend, defaults Limits, startingBalance decimal.Decimal) *Ledger {
	return &Ledger{
		store:    s,
		defaults: defaults,
		starting: startingBalance,
		log:      logging.Component("ledger"),
	}
}

// Wager is the stake side of a bet.
type Wager struct {
	UserID  string
	Game    game.Kind
	Stake   decimal.Decimal
	RoundID string
}

type Settlement struct {
	BetID   string          `json:"bet_id"`
	Result  game.Result     `json:"result"`
	Payout  decimal.Decimal `json:"payout"`
	Balance decimal.Decimal `json:"balance"`
	Status  store.BetStatus `json:"status"`
}

// Placement is a debited, still pending bet.
type Placement struct {
	BetID   string          `json:"bet_id"`
	Balance decimal.Decimal `json:"balance"`
}

func (l *Ledger) EnsureAccount(ctx context.Context, userID, username string) error {
	return l.store.EnsureAccount(ctx, userID, username, l.starting)
}

func (l *Ledger) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	acc, err := l.store.GetAccount(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return acc.Balance, nil
}

// Limits reads the table limits, letting app_settings override the defaults.
func (l *Ledger) Limits(ctx context.Context) (Limits, error) {
	lim := l.defaults
	for key, dst := range map[string]*decimal.Decimal{SettingMinBet: &lim.Min, SettingMaxBet: &lim.Max} {
		raw, err := l.store.GetSetting(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return Limits{}, err
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			l.log.Warn().Str("key", key).Str("value", raw).Msg("ignoring malformed limit setting")
			continue
		}
		*dst = v
	}
	return lim, nil
}

func (l *Ledger) SetLimits(ctx context.Context, lim Limits) error {
	if !lim.Min.IsPositive() || lim.Max.LessThan(lim.Min) {
		return ErrInvalidAmount
	}
	if err := l.store.SetSetting(ctx, SettingMinBet, lim.Min.String()); err != nil {
		return err
	}
	return l.store.SetSetting(ctx, SettingMaxBet, lim.Max.String())
}

// CheckStake validates the stake shape and the table limits.
func (l *Ledger) CheckStake(ctx context.Context, stake decimal.Decimal) error {
	if !game.ValidStake(stake) {
		return game.ErrInvalidStake
	}
	lim, err := l.Limits(ctx)
	if err != nil {
		return err
	}
	if stake.LessThan(lim.Min) {
		return fmt.Errorf("%w: minimum is %s", ErrBetTooSmall, lim.Min)
	}
	if stake.GreaterThan(lim.Max) {
		return fmt.Errorf("%w: maximum is %s", ErrBetTooLarge, lim.Max)
	}
	return nil
}

// Settle runs a single-shot game inside one unit of work: debit the stake,
// run play, credit any payout and record the settled bet. If play fails
// nothing is written.
func (l *Ledger) Settle(ctx context.Context, w Wager, play func() (game.Result, error)) (Settlement, error) {
	if err := l.CheckStake(ctx, w.Stake); err != nil {
		return Settlement{}, err
	}
	out := Settlement{BetID: store.NewID()}
	err := l.store.InTx(ctx, func(b store.Book) error {
		debit, err := b.Post(ctx, store.Posting{
			UserID:      w.UserID,
			Type:        store.TxBetPlaced,
			Amount:      w.Stake.Neg(),
			ReferenceID: out.BetID,
			Description: string(w.Game) + " bet",
		})
		if err != nil {
			return err
		}
		out.Balance = debit.BalanceAfter

		res, err := play()
		if err != nil {
			return err
		}
		p := res.Project()
		out.Result = res
		out.Payout = p.Payout
		out.Status = store.BetLost
		if p.Payout.IsPositive() {
			out.Status = store.BetWon
			credit, err := b.Post(ctx, store.Posting{
				UserID:      w.UserID,
				Type:        store.TxBetWon,
				Amount:      p.Payout,
				ReferenceID: out.BetID,
				Description: string(w.Game) + " win",
			})
			if err != nil {
				return err
			}
			out.Balance = credit.BalanceAfter
		}

		details, err := json.Marshal(res)
		if err != nil {
			return err
		}
		return b.InsertBet(ctx, store.Bet{
			ID:        out.BetID,
			UserID:    w.UserID,
			GameType:  string(w.Game),
			Selection: p.Selection,
			Stake:     w.Stake,
			Payout:    p.Payout,
			Status:    out.Status,
			RoundID:   w.RoundID,
			Details:   details,
		})
	})
	if err != nil {
		return Settlement{}, err
	}
	l.log.Debug().
		Str("user_id", w.UserID).
		Str("game", string(w.Game)).
		Str("bet_id", out.BetID).
		Str("stake", w.Stake.String()).
		Str("payout", out.Payout.String()).
		Msg("bet settled")
	return out, nil
}

// PlaceBet debits the stake and records a pending bet for a game that
// resolves later.
func (l *Ledger) PlaceBet(ctx context.Context, w Wager, selection string, details any) (Placement, error) {
	if err := l.CheckStake(ctx, w.Stake); err != nil {
		return Placement{}, err
	}
	raw, err := marshalDetails(details)
	if err != nil {
		return Placement{}, err
	}
	out := Placement{BetID: store.NewID()}
	err = l.store.InTx(ctx, func(b store.Book) error {
		tx, err := b.Post(ctx, store.Posting{
			UserID:      w.UserID,
			Type:        store.TxBetPlaced,
			Amount:      w.Stake.Neg(),
			ReferenceID: out.BetID,
			Description: string(w.Game) + " bet",
		})
		if err != nil {
			return err
		}
		out.Balance = tx.BalanceAfter
		return b.InsertBet(ctx, store.Bet{
			ID:        out.BetID,
			UserID:    w.UserID,
			GameType:  string(w.Game),
			Selection: selection,
			Stake:     w.Stake,
			Payout:    decimal.Zero,
			Status:    store.BetPending,
			RoundID:   w.RoundID,
			Details:   raw,
		})
	})
	if err != nil {
		return Placement{}, err
	}
	return out, nil
}

// AddStake debits more stake against an open bet, e.g. a blackjack double.
func (l *Ledger) AddStake(ctx context.Context, userID, betID string, kind game.Kind, amount decimal.Decimal) (decimal.Decimal, error) {
	return l.Debit(ctx, userID, amount, store.TxBetPlaced, betID, string(kind)+" additional stake")
}

// SettleBet credits the result's payout and closes a pending bet.
func (l *Ledger) SettleBet(ctx context.Context, userID, betID string, res game.Result) (Settlement, error) {
	p := res.Project()
	details, err := json.Marshal(res)
	if err != nil {
		return Settlement{}, err
	}
	out := Settlement{BetID: betID, Result: res, Payout: p.Payout, Status: store.BetLost}
	err = l.store.InTx(ctx, func(b store.Book) error {
		if p.Payout.IsPositive() {
			out.Status = store.BetWon
			tx, err := b.Post(ctx, store.Posting{
				UserID:      userID,
				Type:        store.TxBetWon,
				Amount:      p.Payout,
				ReferenceID: betID,
				Description: string(p.Kind) + " win",
			})
			if err != nil {
				return err
			}
			out.Balance = tx.BalanceAfter
		} else {
			bal, err := b.Balance(ctx, userID)
			if err != nil {
				return err
			}
			out.Balance = bal
		}
		st := store.BetSettlement{BetID: betID, Status: out.Status, Payout: p.Payout, Details: details}
		if p.Stake.IsPositive() {
			st.Stake = decimal.NewNullDecimal(p.Stake)
		}
		return b.SettleBet(ctx, st)
	})
	if err != nil {
		return Settlement{}, err
	}
	return out, nil
}

// VoidBet refunds a pending bet's stake and marks it void.
func (l *Ledger) VoidBet(ctx context.Context, userID, betID string, refund decimal.Decimal, reason string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := l.store.InTx(ctx, func(b store.Book) error {
		if refund.IsPositive() {
			tx, err := b.Post(ctx, store.Posting{
				UserID:      userID,
				Type:        store.TxRefund,
				Amount:      refund,
				ReferenceID: betID,
				Description: reason,
			})
			if err != nil {
				return err
			}
			balance = tx.BalanceAfter
		}
		return b.SettleBet(ctx, store.BetSettlement{BetID: betID, Status: store.BetVoid, Payout: refund})
	})
	if err != nil {
		return decimal.Zero, err
	}
	l.log.Info().Str("user_id", userID).Str("bet_id", betID).Str("reason", reason).Msg("bet voided")
	return balance, nil
}

// Debit is a single paired balance decrease.
func (l *Ledger) Debit(ctx context.Context, userID string, amount decimal.Decimal, typ store.TxType, ref, desc string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return l.post(ctx, store.Posting{UserID: userID, Type: typ, Amount: amount.Neg(), ReferenceID: ref, Description: desc})
}

// Credit is a single paired balance increase.
func (l *Ledger) Credit(ctx context.Context, userID string, amount decimal.Decimal, typ store.TxType, ref, desc string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return l.post(ctx, store.Posting{UserID: userID, Type: typ, Amount: amount, ReferenceID: ref, Description: desc})
}

func (l *Ledger) post(ctx context.Context, p store.Posting) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := l.store.InTx(ctx, func(b store.Book) error {
		tx, err := b.Post(ctx, p)
		if err != nil {
			return err
		}
		balance = tx.BalanceAfter
		return nil
	})
	return balance, err
}

func validTransfer(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(2)) && !amount.LessThan(minTransfer) && !amount.GreaterThan(maxTransfer)
}

func (l *Ledger) Deposit(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !validTransfer(amount) {
		return decimal.Zero, ErrInvalidAmount
	}
	return l.Credit(ctx, userID, amount, store.TxDeposit, "", "deposit")
}

func (l *Ledger) Withdraw(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !validTransfer(amount) {
		return decimal.Zero, ErrInvalidAmount
	}
	return l.Debit(ctx, userID, amount, store.TxWithdraw, "", "withdrawal")
}

func (l *Ledger) Transactions(ctx context.Context, f store.TransactionFilter, limit, offset int) ([]store.Transaction, int, error) {
	return l.store.ListTransactions(ctx, f, limit, offset)
}

func (l *Ledger) Bets(ctx context.Context, f store.BetFilter, limit, offset int) ([]store.Bet, error) {
	return l.store.ListBets(ctx, f, limit, offset)
}

func marshalDetails(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(v)
}
