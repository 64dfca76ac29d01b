package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

func (s *Store) InsertRound(ctx context.Context, r Round) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO casino_rounds (id, game_type, round_number, commitment, status, started_at)
		VALUES ($1, $2, $3, $4, 'open', $5)`,
		r.ID, r.GameType, r.RoundNumber, r.Commitment, r.StartedAt,
	)
	return err
}

func (s *Store) RevealRound(ctx context.Context, r RoundReveal) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE casino_rounds
		SET server_seed = $2, result = $3, multiplier = $4::numeric, status = 'resolved', resolved_at = now()
		WHERE id = $1`,
		r.ID, r.ServerSeed, r.Result, nullDecimalParam(r.Multiplier),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const roundColumns = `id, game_type, round_number, commitment, server_seed, result, multiplier::text, status, started_at, resolved_at`

func scanRound(row interface{ Scan(...any) error }) (Round, error) {
	var (
		r          Round
		multiplier pgtype.Text
		resolvedAt pgtype.Timestamptz
	)
	if err := row.Scan(&r.ID, &r.GameType, &r.RoundNumber, &r.Commitment, &r.ServerSeed, &r.Result, &multiplier, &r.Status, &r.StartedAt, &resolvedAt); err != nil {
		return Round{}, err
	}
	var err error
	if r.Multiplier, err = nullDecimalVal(multiplier); err != nil {
		return Round{}, err
	}
	r.ResolvedAt = timePtrVal(resolvedAt)
	return r, nil
}

func (s *Store) GetRound(ctx context.Context, id string) (*Round, error) {
	r, err := scanRound(s.Pool.QueryRow(ctx, `SELECT `+roundColumns+` FROM casino_rounds WHERE id = $1`, id))
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &r, nil
}

func (s *Store) ListRounds(ctx context.Context, f RoundFilter, limit, offset int) ([]Round, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT `+roundColumns+`
		FROM casino_rounds
		WHERE ($1::text IS NULL OR game_type = $1)
			AND (NOT $2 OR status = 'resolved')
		ORDER BY started_at DESC, id DESC
		LIMIT $3 OFFSET $4`,
		textParam(f.GameType), f.ResolvedOnly, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Round{}
	for rows.Next() {
		r, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) LatestRoundNumber(ctx context.Context, gameType string) (int64, error) {
	var n int64
	err := s.Pool.QueryRow(ctx, `SELECT COALESCE(MAX(round_number), 0) FROM casino_rounds WHERE game_type = $1`, gameType).Scan(&n)
	return n, err
}
