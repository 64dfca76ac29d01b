package public

import (
	"context"
	"errors"

	"betking-casino/internal/game"
	"betking-casino/internal/store"
)

type RoundReader interface {
	GetRound(ctx context.Context, id string) (*store.Round, error)
	ListRounds(ctx context.Context, f store.RoundFilter, limit, offset int) ([]store.Round, error)
}

// Service serves the unauthenticated fairness surface: the round audit
// trail and outcome verification.
type Service struct {
	rounds RoundReader
}

func NewService(rounds RoundReader) *Service {
	return &Service{rounds: rounds}
}

func isAllowedGame(g string) bool {
	switch game.Kind(g) {
	case "", game.KindCrash, game.KindColor:
		return true
	}
	return false
}

// Rounds lists resolved rounds, newest first. Open rounds are left out
// since their seed is still secret.
func (s *Service) Rounds(ctx context.Context, gameType string, limit, offset int) (*RoundsResponse, error) {
	if !isAllowedGame(gameType) {
		return nil, ErrInvalidRequest
	}
	items, err := s.rounds.ListRounds(ctx, store.RoundFilter{GameType: gameType, ResolvedOnly: true}, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]RoundItem, 0, len(items))
	for _, it := range items {
		out = append(out, toRoundItem(it))
	}
	return &RoundsResponse{Items: out, Limit: limit, Offset: offset}, nil
}

func toRoundItem(r store.Round) RoundItem {
	item := RoundItem{
		RoundID:     r.ID,
		Game:        r.GameType,
		RoundNumber: r.RoundNumber,
		Commitment:  r.Commitment,
		ServerSeed:  r.ServerSeed,
		Result:      r.Result,
		Status:      r.Status,
		StartedAt:   r.StartedAt,
		ResolvedAt:  r.ResolvedAt,
	}
	if r.Multiplier.Valid {
		m := r.Multiplier.Decimal
		item.Multiplier = &m
	}
	return item
}

// Verify recomputes a round outcome. Given a round id it loads the recorded
// seed, commitment and result and reports whether they agree.
func (s *Service) Verify(ctx context.Context, in VerifyInput) (*VerifyResponse, error) {
	if in.RoundID == "" {
		if in.ServerSeed == "" || in.RoundNumber <= 0 {
			return nil, ErrInvalidRequest
		}
		v, err := game.Verify(in.Game, in.ServerSeed, in.RoundNumber, in.Commitment)
		if err != nil {
			return nil, ErrInvalidRequest
		}
		return &VerifyResponse{Verification: v}, nil
	}

	r, err := s.rounds.GetRound(ctx, in.RoundID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	if r.ServerSeed == "" {
		return nil, ErrRoundNotReady
	}
	v, err := game.Verify(game.Kind(r.GameType), r.ServerSeed, r.RoundNumber, r.Commitment)
	if err != nil {
		return nil, err
	}
	match := recordMatches(v, *r)
	return &VerifyResponse{Verification: v, RecordMatch: &match}, nil
}

func recordMatches(v game.Verification, r store.Round) bool {
	if v.CommitmentMatch == nil || !*v.CommitmentMatch {
		return false
	}
	switch {
	case v.CrashPoint != nil:
		return r.Multiplier.Valid && r.Multiplier.Decimal.Equal(*v.CrashPoint)
	case v.Color != "":
		return r.Result == string(v.Color)
	}
	return false
}
