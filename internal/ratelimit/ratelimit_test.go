package ratelimit

import (
	"context"
	"testing"
	"time"

	"betking-casino/internal/config"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalWindow(t *testing.T) {
	ctx := context.Background()
	mClock := quartz.NewMock(t)
	l := NewLocal(3, time.Second, mClock)

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "u1", "bet")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "u1", "bet")
	assert.False(t, ok)
	ok, _ = l.Allow(ctx, "u2", "bet")
	assert.True(t, ok, "other users have their own window")
	ok, _ = l.Allow(ctx, "u1", "cashout")
	assert.True(t, ok, "other actions have their own window")

	mClock.Advance(time.Second).MustWait(ctx)
	ok, _ = l.Allow(ctx, "u1", "bet")
	assert.True(t, ok)
}

func TestNewFallsBackToLocal(t *testing.T) {
	lim, err := New(context.Background(), config.RateLimitConfig{Bets: 1, Window: time.Second}, nil)
	require.NoError(t, err)
	_, ok := lim.(*Local)
	assert.True(t, ok)
}

func TestRedisWindow(t *testing.T) {
	tc, err := config.LoadTest()
	require.NoError(t, err)
	addr := tc.RedisAddr
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	r, err := NewRedis(ctx, config.RateLimitConfig{RedisAddr: addr, Bets: 2, Window: time.Second})
	require.NoError(t, err)
	defer r.Close()

	user := uuid.NewString()
	for _, want := range []bool{true, true, false} {
		ok, err := r.Allow(ctx, user, "bet")
		require.NoError(t, err)
		assert.Equal(t, want, ok)
	}
}
