package rounds

import (
	"context"
	"testing"
	"time"

	"betking-casino/internal/game"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorRoundViolet(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mClock := quartz.NewMock(t)
	bus := &recordingBus{}
	rec := &memRecorder{last: 41}
	wallet, _ := newWallet(t, "u1", "u2", "u3")
	g := NewColorGame(ColorConfig{
		RoundSeconds:  60,
		CutoffSeconds: 10,
		ResultPause:   5 * time.Second,
		History:       20,
		Seed:          fixedSeed("seed-6"),
	}, mClock, wallet, bus, rec)
	require.NoError(t, g.Start(ctx))

	// round numbers continue from the store
	st := g.State("u1")
	require.Equal(t, int64(42), st.RoundNumber)
	want := game.ColorFor("seed-6", 42)

	losing := game.Red
	if want == game.Red {
		losing = game.Green
	}
	_, err := g.PlaceBet(ctx, "u1", "alice", want, dec("100"))
	require.NoError(t, err)
	_, err = g.PlaceBet(ctx, "u2", "bob", losing, dec("100"))
	require.NoError(t, err)
	_, err = g.PlaceBet(ctx, "u1", "alice", losing, dec("100"))
	assert.ErrorIs(t, err, ErrAlreadyBet)
	_, err = g.PlaceBet(ctx, "u3", "carol", game.Color("blue"), dec("100"))
	assert.ErrorIs(t, err, ErrInvalidColor)

	st = g.State("u1")
	assert.Equal(t, ColorBetting, st.Status)
	assert.Empty(t, st.Result)
	assert.Equal(t, 1, st.BetsCount[string(want)])
	assert.Equal(t, 1, st.BetsCount[string(losing)])
	require.NotNil(t, st.MyBet)
	assert.Equal(t, want, st.MyBet.Color)
	require.NotEmpty(t, bus.named("color:bets_count"))

	for i := 0; i < 50; i++ {
		mClock.Advance(time.Second).MustWait(ctx)
	}
	st = g.State("u3")
	assert.Equal(t, ColorLocked, st.Status)
	assert.Equal(t, 10, st.SecondsLeft)
	require.Len(t, bus.named("color:locked"), 1)
	_, err = g.PlaceBet(ctx, "u3", "carol", game.Green, dec("100"))
	assert.ErrorIs(t, err, ErrBettingClosed)

	for i := 0; i < 10; i++ {
		mClock.Advance(time.Second).MustWait(ctx)
	}
	st = g.State("u1")
	assert.Equal(t, ColorResult, st.Status)
	assert.Equal(t, want, st.Result)

	gross := dec("100").Mul(want.Multiplier())
	assert.True(t, balance(t, wallet, "u1").Equal(dec("9900").Add(gross)))
	assert.True(t, balance(t, wallet, "u2").Equal(dec("9900")))
	assert.True(t, balance(t, wallet, "u3").Equal(dec("10000")))

	results := bus.named("color:result")
	require.Len(t, results, 1)
	assert.Equal(t, 1, field[int](t, results[0], "winners"))
	assert.Equal(t, "seed-6", field[string](t, results[0], "server_seed"))
	assert.Equal(t, want, g.History()[0].Color)

	mClock.Advance(5 * time.Second).MustWait(ctx)
	st = g.State("u1")
	assert.Equal(t, ColorBetting, st.Status)
	assert.Equal(t, int64(43), st.RoundNumber)
	assert.Equal(t, 60, st.SecondsLeft)
	assert.Nil(t, st.MyBet)
}

func TestColorVioletPaysFourAndAHalf(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mClock := quartz.NewMock(t)
	wallet, _ := newWallet(t, "u1")
	// seed-6 draws violet for round 1
	g := NewColorGame(ColorConfig{RoundSeconds: 60, CutoffSeconds: 10, ResultPause: 5 * time.Second, Seed: fixedSeed("seed-6")},
		mClock, wallet, nil, &memRecorder{})
	require.NoError(t, g.Start(ctx))
	require.Equal(t, game.Violet, game.ColorFor("seed-6", 1))

	_, err := g.PlaceBet(ctx, "u1", "alice", game.Violet, dec("100"))
	require.NoError(t, err)
	assert.True(t, balance(t, wallet, "u1").Equal(dec("9900")))

	for i := 0; i < 60; i++ {
		mClock.Advance(time.Second).MustWait(ctx)
	}
	assert.True(t, balance(t, wallet, "u1").Equal(dec("10350")))
}
