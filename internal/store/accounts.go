package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func (s *Store) EnsureAccount(ctx context.Context, userID, username string, initial decimal.Decimal) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO users (id, username, balance) VALUES ($1, $2, $3::numeric)
		ON CONFLICT (id) DO NOTHING`,
		userID, username, initial.StringFixed(2),
	)
	return err
}

func (s *Store) GetAccount(ctx context.Context, userID string) (*Account, error) {
	var (
		acc Account
		bal string
	)
	err := s.Pool.QueryRow(ctx, `
		SELECT id, username, balance::text, created_at, updated_at FROM users WHERE id = $1`, userID,
	).Scan(&acc.UserID, &acc.Username, &bal, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if acc.Balance, err = decimalVal(bal); err != nil {
		return nil, err
	}
	return &acc, nil
}

func (s *Store) ListTransactions(ctx context.Context, f TransactionFilter, limit, offset int) ([]Transaction, int, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, user_id, type, amount::text, balance_after::text, reference_id, description, created_at
		FROM transactions
		WHERE user_id = $1 AND ($2::text IS NULL OR type = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`,
		f.UserID, textParam(string(f.Type)), limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []Transaction{}
	for rows.Next() {
		var (
			t           Transaction
			typ         string
			amount, bal string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &typ, &amount, &bal, &t.ReferenceID, &t.Description, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		t.Type = TxType(typ)
		if t.Amount, err = decimalVal(amount); err != nil {
			return nil, 0, err
		}
		if t.BalanceAfter, err = decimalVal(bal); err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.Pool.QueryRow(ctx, `
		SELECT count(*) FROM transactions WHERE user_id = $1 AND ($2::text IS NULL OR type = $2)`,
		f.UserID, textParam(string(f.Type)),
	).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

const betColumns = `id, user_id, game_type, selection, stake::text, payout::text, status, round_id, details::text, placed_at, settled_at`

func scanBet(row interface{ Scan(...any) error }) (Bet, error) {
	var (
		b                   Bet
		stake, payout, stat string
		details             string
		settledAt           pgtype.Timestamptz
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.GameType, &b.Selection, &stake, &payout, &stat, &b.RoundID, &details, &b.PlacedAt, &settledAt); err != nil {
		return Bet{}, err
	}
	var err error
	if b.Stake, err = decimalVal(stake); err != nil {
		return Bet{}, err
	}
	if b.Payout, err = decimalVal(payout); err != nil {
		return Bet{}, err
	}
	b.Status = BetStatus(stat)
	b.Details = []byte(details)
	b.SettledAt = timePtrVal(settledAt)
	return b, nil
}

func (s *Store) ListBets(ctx context.Context, f BetFilter, limit, offset int) ([]Bet, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT `+betColumns+`
		FROM bets
		WHERE user_id = $1
			AND ($2::text IS NULL OR game_type = $2)
			AND (NOT $3 OR game_type <> 'sports')
		ORDER BY placed_at DESC, id DESC
		LIMIT $4 OFFSET $5`,
		f.UserID, textParam(f.GameType), f.ExcludeSports, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Bet{}
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) GetBet(ctx context.Context, id string) (*Bet, error) {
	b, err := scanBet(s.Pool.QueryRow(ctx, `SELECT `+betColumns+` FROM bets WHERE id = $1`, id))
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &b, nil
}
