package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Memory is a single-process Backend. InTx holds one lock for the whole unit
// of work and applies staged writes only when fn succeeds.
type Memory struct {
	mu       sync.Mutex
	accounts map[string]*Account
	txs      []Transaction
	bets     map[string]*Bet
	betOrder []string
	rounds   map[string]*Round
	settings map[string]string
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		accounts: map[string]*Account{},
		bets:     map[string]*Bet{},
		rounds:   map[string]*Round{},
		settings: map[string]string{},
		now:      time.Now,
	}
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() {}

func (m *Memory) InTx(ctx context.Context, fn func(Book) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	b := &memBook{m: m, balances: map[string]decimal.Decimal{}, newBets: map[string]*Bet{}}
	if err := fn(b); err != nil {
		return err
	}
	b.apply()
	return nil
}

type memBook struct {
	m           *Memory
	balances    map[string]decimal.Decimal
	txs         []Transaction
	newBets     map[string]*Bet
	newBetOrder []string
	settles     []BetSettlement
}

func (b *memBook) Balance(_ context.Context, userID string) (decimal.Decimal, error) {
	if bal, ok := b.balances[userID]; ok {
		return bal, nil
	}
	acc, ok := b.m.accounts[userID]
	if !ok {
		return decimal.Zero, ErrNotFound
	}
	return acc.Balance, nil
}

func (b *memBook) Post(ctx context.Context, p Posting) (Transaction, error) {
	if !p.Type.Valid() {
		return Transaction{}, fmt.Errorf("invalid transaction type %q", p.Type)
	}
	if p.Amount.IsZero() {
		return Transaction{}, errors.New("zero posting")
	}
	bal, err := b.Balance(ctx, p.UserID)
	if err != nil {
		return Transaction{}, err
	}
	newBal := bal.Add(p.Amount)
	if newBal.IsNegative() {
		return Transaction{}, ErrInsufficientBalance
	}
	b.balances[p.UserID] = newBal
	t := Transaction{
		ID:           NewID(),
		UserID:       p.UserID,
		Type:         p.Type,
		Amount:       p.Amount,
		BalanceAfter: newBal,
		ReferenceID:  p.ReferenceID,
		Description:  p.Description,
		CreatedAt:    b.m.now(),
	}
	b.txs = append(b.txs, t)
	return t, nil
}

func (b *memBook) InsertBet(_ context.Context, bet Bet) error {
	if _, ok := b.m.bets[bet.ID]; ok {
		return fmt.Errorf("duplicate bet %s", bet.ID)
	}
	if _, ok := b.newBets[bet.ID]; ok {
		return fmt.Errorf("duplicate bet %s", bet.ID)
	}
	now := b.m.now()
	bet.PlacedAt = now
	if bet.Status != BetPending {
		bet.SettledAt = &now
	}
	b.newBets[bet.ID] = &bet
	b.newBetOrder = append(b.newBetOrder, bet.ID)
	return nil
}

func (b *memBook) SettleBet(_ context.Context, s BetSettlement) error {
	bet, ok := b.newBets[s.BetID]
	if !ok {
		bet, ok = b.m.bets[s.BetID]
	}
	if !ok || bet.Status != BetPending {
		return ErrNotFound
	}
	for _, prev := range b.settles {
		if prev.BetID == s.BetID {
			return ErrNotFound
		}
	}
	b.settles = append(b.settles, s)
	return nil
}

func (b *memBook) apply() {
	m := b.m
	now := m.now()
	for id, bal := range b.balances {
		acc := m.accounts[id]
		acc.Balance = bal
		acc.UpdatedAt = now
	}
	m.txs = append(m.txs, b.txs...)
	for _, id := range b.newBetOrder {
		m.bets[id] = b.newBets[id]
		m.betOrder = append(m.betOrder, id)
	}
	for _, s := range b.settles {
		bet := m.bets[s.BetID]
		bet.Status = s.Status
		bet.Payout = s.Payout
		if s.Stake.Valid {
			bet.Stake = s.Stake.Decimal
		}
		if len(s.Details) > 0 {
			bet.Details = s.Details
		}
		settled := now
		bet.SettledAt = &settled
	}
}

func (m *Memory) EnsureAccount(_ context.Context, userID, username string, initial decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[userID]; ok {
		return nil
	}
	now := m.now()
	m.accounts[userID] = &Account{UserID: userID, Username: username, Balance: initial, CreatedAt: now, UpdatedAt: now}
	return nil
}

func (m *Memory) GetAccount(_ context.Context, userID string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	out := *acc
	return &out, nil
}

func (m *Memory) ListTransactions(_ context.Context, f TransactionFilter, limit, offset int) ([]Transaction, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	matched := []Transaction{}
	for i := len(m.txs) - 1; i >= 0; i-- {
		t := m.txs[i]
		if t.UserID != f.UserID || (f.Type != "" && t.Type != f.Type) {
			continue
		}
		matched = append(matched, t)
	}
	return page(matched, limit, offset), len(matched), nil
}

func (m *Memory) ListBets(_ context.Context, f BetFilter, limit, offset int) ([]Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	matched := []Bet{}
	for i := len(m.betOrder) - 1; i >= 0; i-- {
		b := m.bets[m.betOrder[i]]
		if b.UserID != f.UserID {
			continue
		}
		if f.GameType != "" && b.GameType != f.GameType {
			continue
		}
		if f.ExcludeSports && b.GameType == "sports" {
			continue
		}
		matched = append(matched, *b)
	}
	return page(matched, limit, offset), nil
}

func (m *Memory) GetBet(_ context.Context, id string) (*Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bets[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *b
	return &out, nil
}

func (m *Memory) InsertRound(_ context.Context, r Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rounds {
		if existing.GameType == r.GameType && existing.RoundNumber == r.RoundNumber {
			return fmt.Errorf("duplicate round %s/%d", r.GameType, r.RoundNumber)
		}
	}
	r.Status = RoundOpen
	if r.StartedAt.IsZero() {
		r.StartedAt = m.now()
	}
	m.rounds[r.ID] = &r
	return nil
}

func (m *Memory) RevealRound(_ context.Context, rv RoundReveal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[rv.ID]
	if !ok {
		return ErrNotFound
	}
	now := m.now()
	r.ServerSeed = rv.ServerSeed
	r.Result = rv.Result
	r.Multiplier = rv.Multiplier
	r.Status = RoundResolved
	r.ResolvedAt = &now
	return nil
}

func (m *Memory) GetRound(_ context.Context, id string) (*Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *r
	return &out, nil
}

func (m *Memory) ListRounds(_ context.Context, f RoundFilter, limit, offset int) ([]Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	matched := []Round{}
	for _, r := range m.rounds {
		if f.GameType != "" && r.GameType != f.GameType {
			continue
		}
		if f.ResolvedOnly && r.Status != RoundResolved {
			continue
		}
		matched = append(matched, *r)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].StartedAt.Equal(matched[j].StartedAt) {
			return matched[i].StartedAt.After(matched[j].StartedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return page(matched, limit, offset), nil
}

func (m *Memory) LatestRoundNumber(_ context.Context, gameType string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.rounds {
		if r.GameType == gameType && r.RoundNumber > n {
			n = r.RoundNumber
		}
	}
	return n, nil
}

func (m *Memory) GetSetting(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.settings[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) SetSetting(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
