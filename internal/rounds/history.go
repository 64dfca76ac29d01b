package rounds

import "sync"

// history keeps the most recent n values, newest first.
type history[T any] struct {
	mu    sync.Mutex
	items []T
	n     int
}

func newHistory[T any](n int) *history[T] {
	if n <= 0 {
		n = 20
	}
	return &history[T]{n: n}
}

func (h *history[T]) push(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append([]T{v}, h.items...)
	if len(h.items) > h.n {
		h.items = h.items[:h.n]
	}
}

func (h *history[T]) list() []T {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]T, len(h.items))
	copy(out, h.items)
	return out
}
