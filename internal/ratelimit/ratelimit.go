package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"betking-casino/internal/config"

	"github.com/coder/quartz"
	"github.com/redis/go-redis/v9"
)

var ErrRateLimited = errors.New("rate_limited")

// Limiter counts actions per user in fixed windows.
type Limiter interface {
	Allow(ctx context.Context, userID, action string) (bool, error)
}

// New returns a Redis-backed limiter when an address is configured and an
// in-process one otherwise.
func New(ctx context.Context, cfg config.RateLimitConfig, clock quartz.Clock) (Limiter, error) {
	if cfg.RedisAddr == "" {
		return NewLocal(cfg.Bets, cfg.Window, clock), nil
	}
	return NewRedis(ctx, cfg)
}

type Redis struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedis(ctx context.Context, cfg config.RateLimitConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &Redis{client: client, limit: cfg.Bets, window: cfg.Window}, nil
}

func (r *Redis) Allow(ctx context.Context, userID, action string) (bool, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", userID, action)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit: %w", err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, r.window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return count <= int64(r.limit), nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

type window struct {
	start time.Time
	count int
}

// Local is a single-process limiter for deployments without Redis.
type Local struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clock   quartz.Clock
	windows map[string]*window
}

func NewLocal(limit int, d time.Duration, clock quartz.Clock) *Local {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Local{limit: limit, window: d, clock: clock, windows: map[string]*window{}}
}

func (l *Local) Allow(_ context.Context, userID, action string) (bool, error) {
	key := userID + ":" + action
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		l.prune(now)
		w = &window{start: now}
		l.windows[key] = w
	}
	w.count++
	return w.count <= l.limit, nil
}

func (l *Local) prune(now time.Time) {
	for k, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, k)
		}
	}
}
