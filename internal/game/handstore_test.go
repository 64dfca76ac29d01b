package game

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHand struct{ actions int }

func TestHandStoreOwnerAndDone(t *testing.T) {
	s := NewHandStore[*fakeHand]("bj_", quartz.NewMock(t), time.Minute)
	id := s.NewID()
	require.True(t, strings.HasPrefix(id, "bj_"))
	s.Put(id, "alice", &fakeHand{})

	err := s.With(id, "mallory", func(*fakeHand) (bool, error) { return false, nil })
	assert.ErrorIs(t, err, ErrHandNotFound)

	err = s.With(id, "alice", func(h *fakeHand) (bool, error) {
		h.actions++
		return false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	err = s.With(id, "alice", func(h *fakeHand) (bool, error) { return true, nil })
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	err = s.With(id, "alice", func(*fakeHand) (bool, error) { return false, nil })
	assert.ErrorIs(t, err, ErrHandNotFound)
}

func TestHandStoreReap(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mClock := quartz.NewMock(t)
	s := NewHandStore[*fakeHand]("vp_", mClock, 10*time.Minute)
	stale, fresh := s.NewID(), s.NewID()
	s.Put(stale, "u1", &fakeHand{})

	mClock.Advance(6 * time.Minute).MustWait(ctx)
	s.Put(fresh, "u1", &fakeHand{})
	assert.Empty(t, s.Reap())

	mClock.Advance(5 * time.Minute).MustWait(ctx)
	assert.Len(t, s.Reap(), 1)
	assert.ErrorIs(t, s.With(stale, "u1", func(*fakeHand) (bool, error) { return false, nil }), ErrHandNotFound)
	assert.NoError(t, s.With(fresh, "u1", func(*fakeHand) (bool, error) { return false, nil }))
}

func TestHandStoreReaperTicks(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mClock := quartz.NewMock(t)
	s := NewHandStore[*fakeHand]("bj_", mClock, time.Minute)
	s.Put(s.NewID(), "u1", &fakeHand{})

	reaped := make(chan int, 1)
	s.StartReaper(ctx, 30*time.Second, func(hands []*fakeHand) { reaped <- len(hands) })

	for i := 0; i < 3; i++ {
		mClock.Advance(30 * time.Second).MustWait(ctx)
	}
	select {
	case n := <-reaped:
		assert.Equal(t, 1, n)
	case <-ctx.Done():
		t.Fatal("reaper did not run")
	}
	assert.Equal(t, 0, s.Len())
}
