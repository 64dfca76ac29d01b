package game

import (
	"context"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
)

const DefaultHandIdle = 10 * time.Minute

type handEntry[H any] struct {
	mu      sync.Mutex
	owner   string
	hand    H
	touched time.Time
	gone    bool
}

// HandStore holds in-progress multi-step hands keyed by an opaque id. Actions
// on one hand are serialized; different hands proceed in parallel.
type HandStore[H any] struct {
	mu     sync.Mutex
	hands  map[string]*handEntry[H]
	prefix string
	clock  quartz.Clock
	idle   time.Duration
}

func NewHandStore[H any](prefix string, clock quartz.Clock, idle time.Duration) *HandStore[H] {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if idle <= 0 {
		idle = DefaultHandIdle
	}
	return &HandStore[H]{
		hands:  make(map[string]*handEntry[H]),
		prefix: prefix,
		clock:  clock,
		idle:   idle,
	}
}

func (s *HandStore[H]) NewID() string {
	return s.prefix + uuid.NewString()
}

func (s *HandStore[H]) Put(id, owner string, hand H) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hands[id] = &handEntry[H]{owner: owner, hand: hand, touched: s.clock.Now()}
}

// With runs fn holding the hand's lock. A hand owned by someone else reads as
// not found. When fn reports done the hand is removed.
func (s *HandStore[H]) With(id, owner string, fn func(H) (done bool, err error)) error {
	s.mu.Lock()
	e, ok := s.hands[id]
	s.mu.Unlock()
	if !ok || e.owner != owner {
		return ErrHandNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return ErrHandNotFound
	}
	e.touched = s.clock.Now()
	done, err := fn(e.hand)
	if done {
		e.gone = true
		s.mu.Lock()
		delete(s.hands, id)
		s.mu.Unlock()
	}
	return err
}

func (s *HandStore[H]) Remove(id string) {
	s.mu.Lock()
	e, ok := s.hands[id]
	delete(s.hands, id)
	s.mu.Unlock()
	if ok {
		e.mu.Lock()
		e.gone = true
		e.mu.Unlock()
	}
}

func (s *HandStore[H]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hands)
}

// Reap drops hands idle for longer than the store's idle timeout and returns
// them. Hands with an action in flight are skipped.
func (s *HandStore[H]) Reap() []H {
	cutoff := s.clock.Now().Add(-s.idle)
	s.mu.Lock()
	defer s.mu.Unlock()
	var reaped []H
	for id, e := range s.hands {
		if !e.mu.TryLock() {
			continue
		}
		if e.touched.Before(cutoff) {
			e.gone = true
			delete(s.hands, id)
			reaped = append(reaped, e.hand)
		}
		e.mu.Unlock()
	}
	return reaped
}

// StartReaper calls Reap every interval until ctx is done. onReap, if set,
// receives every non-empty batch.
func (s *HandStore[H]) StartReaper(ctx context.Context, interval time.Duration, onReap func([]H)) quartz.Waiter {
	return s.clock.TickerFunc(ctx, interval, func() error {
		if hands := s.Reap(); len(hands) > 0 && onReap != nil {
			onReap(hands)
		}
		return nil
	}, "handstore", "reap")
}
