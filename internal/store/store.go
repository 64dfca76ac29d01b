package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInsufficientBalance = errors.New("insufficient_balance")
)

// Book is the set of ledger writes available inside one atomic unit of work.
type Book interface {
	// Balance returns the user's balance and holds it for the rest of the unit.
	Balance(ctx context.Context, userID string) (decimal.Decimal, error)
	// Post applies a signed amount and appends the matching transaction row.
	// A posting that would take the balance below zero fails with
	// ErrInsufficientBalance and changes nothing.
	Post(ctx context.Context, p Posting) (Transaction, error)
	InsertBet(ctx context.Context, b Bet) error
	SettleBet(ctx context.Context, s BetSettlement) error
}

// Backend is implemented by the Postgres Store and the in-memory Memory store.
type Backend interface {
	InTx(ctx context.Context, fn func(Book) error) error

	EnsureAccount(ctx context.Context, userID, username string, initial decimal.Decimal) error
	GetAccount(ctx context.Context, userID string) (*Account, error)
	ListTransactions(ctx context.Context, f TransactionFilter, limit, offset int) ([]Transaction, int, error)
	ListBets(ctx context.Context, f BetFilter, limit, offset int) ([]Bet, error)
	GetBet(ctx context.Context, id string) (*Bet, error)

	InsertRound(ctx context.Context, r Round) error
	RevealRound(ctx context.Context, r RoundReveal) error
	GetRound(ctx context.Context, id string) (*Round, error)
	ListRounds(ctx context.Context, f RoundFilter, limit, offset int) ([]Round, error)
	LatestRoundNumber(ctx context.Context, gameType string) (int64, error)

	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	Ping(ctx context.Context) error
	Close()
}

var (
	_ Backend = (*Store)(nil)
	_ Backend = (*Memory)(nil)
)

// Store wraps Postgres access.
type Store struct {
	Pool *pgxpool.Pool
}

func New(dsn string) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Pool.Ping(ctx)
}
