package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// InTx runs fn inside one database transaction. Any error from fn rolls back
// every balance change, transaction row and bet row written through the Book.
func (s *Store) InTx(ctx context.Context, fn func(Book) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgBook{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgBook struct {
	tx pgx.Tx
}

func (b *pgBook) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var raw string
	err := b.tx.QueryRow(ctx, `SELECT balance::text FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&raw)
	if err != nil {
		return decimal.Zero, mapNotFound(err)
	}
	return decimalVal(raw)
}

func (b *pgBook) Post(ctx context.Context, p Posting) (Transaction, error) {
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
	if _, err := b.tx.Exec(ctx,
		`UPDATE users SET balance = $1::numeric, updated_at = now() WHERE id = $2`,
		newBal.StringFixed(2), p.UserID,
	); err != nil {
		return Transaction{}, err
	}
	out := Transaction{
		ID:           NewID(),
		UserID:       p.UserID,
		Type:         p.Type,
		Amount:       p.Amount,
		BalanceAfter: newBal,
		ReferenceID:  p.ReferenceID,
		Description:  p.Description,
	}
	err = b.tx.QueryRow(ctx, `
		INSERT INTO transactions (id, user_id, type, amount, balance_after, reference_id, description)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7)
		RETURNING created_at`,
		out.ID, out.UserID, string(out.Type), out.Amount.StringFixed(2), newBal.StringFixed(2),
		out.ReferenceID, out.Description,
	).Scan(&out.CreatedAt)
	if err != nil {
		return Transaction{}, err
	}
	return out, nil
}

func (b *pgBook) InsertBet(ctx context.Context, bet Bet) error {
	_, err := b.tx.Exec(ctx, `
		INSERT INTO bets (id, user_id, game_type, selection, stake, payout, status, round_id, details, settled_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7, $8, $9::jsonb,
			CASE WHEN $7 = 'pending' THEN NULL ELSE now() END)`,
		bet.ID, bet.UserID, bet.GameType, bet.Selection, bet.Stake.StringFixed(2),
		bet.Payout.StringFixed(2), string(bet.Status), bet.RoundID, jsonParam(bet.Details),
	)
	return err
}

func (b *pgBook) SettleBet(ctx context.Context, st BetSettlement) error {
	tag, err := b.tx.Exec(ctx, `
		UPDATE bets
		SET status = $2, payout = $3::numeric, details = COALESCE($4::jsonb, details),
		    stake = COALESCE($5::numeric, stake), settled_at = now()
		WHERE id = $1 AND status = 'pending'`,
		st.BetID, string(st.Status), st.Payout.StringFixed(2), textParam(string(st.Details)), nullDecimalParam(st.Stake),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
