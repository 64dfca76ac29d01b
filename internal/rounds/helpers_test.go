package rounds

import (
	"context"
	"errors"
	"sync"
	"testing"

	"betking-casino/internal/game"
	"betking-casino/internal/ledger"
	"betking-casino/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type event struct {
	room    string
	user    string
	name    string
	payload any
}

type recordingBus struct {
	mu     sync.Mutex
	events []event
}

func (b *recordingBus) Broadcast(room, name string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event{room: room, name: name, payload: payload})
}

func (b *recordingBus) SendToUser(userID, name string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event{user: userID, name: name, payload: payload})
}

func (b *recordingBus) named(name string) []event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []event
	for _, e := range b.events {
		if e.name == name {
			out = append(out, e)
		}
	}
	return out
}

func field[T any](t *testing.T, e event, key string) T {
	t.Helper()
	m, ok := e.payload.(map[string]any)
	require.True(t, ok, "payload of %s is %T", e.name, e.payload)
	v, ok := m[key].(T)
	require.True(t, ok, "%s.%s is %T", e.name, key, m[key])
	return v
}

type memRecorder struct {
	mu       sync.Mutex
	last     int64
	opened   []store.Round
	resolved []store.RoundReveal
}

func (r *memRecorder) LatestRoundNumber(context.Context, string) (int64, error) {
	return r.last, nil
}

func (r *memRecorder) Opened(rd store.Round) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened = append(r.opened, rd)
}

func (r *memRecorder) Resolved(rv store.RoundReveal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolved = append(r.resolved, rv)
}

func (r *memRecorder) reveals() []store.RoundReveal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]store.RoundReveal(nil), r.resolved...)
}

func fixedSeed(s string) func() (string, error) {
	return func() (string, error) { return s, nil }
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newWallet(t *testing.T, users ...string) (*ledger.Ledger, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	l := ledger.New(mem, ledger.Limits{Min: dec("10"), Max: dec("50000")}, dec("10000"))
	for _, u := range users {
		require.NoError(t, l.EnsureAccount(context.Background(), u, u))
	}
	return l, mem
}

func balance(t *testing.T, l *ledger.Ledger, user string) decimal.Decimal {
	t.Helper()
	b, err := l.Balance(context.Background(), user)
	require.NoError(t, err)
	return b
}

var errWalletDown = errors.New("wallet down")

// failingWallet fails the next n SettleBet calls.
type failingWallet struct {
	Wallet
	mu   sync.Mutex
	left int
}

func (w *failingWallet) failSettles(n int) {
	w.mu.Lock()
	w.left = n
	w.mu.Unlock()
}

func (w *failingWallet) SettleBet(ctx context.Context, userID, betID string, res game.Result) (ledger.Settlement, error) {
	w.mu.Lock()
	fail := w.left > 0
	if fail {
		w.left--
	}
	w.mu.Unlock()
	if fail {
		return ledger.Settlement{}, errWalletDown
	}
	return w.Wallet.SettleBet(ctx, userID, betID, res)
}
