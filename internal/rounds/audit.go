package rounds

import (
	"context"
	"time"

	"betking-casino/internal/logging"
	"betking-casino/internal/store"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
)

// RoundStore is the part of the store the audit writer needs.
type RoundStore interface {
	InsertRound(ctx context.Context, r store.Round) error
	RevealRound(ctx context.Context, rv store.RoundReveal) error
	LatestRoundNumber(ctx context.Context, gameType string) (int64, error)
}

type AuditConfig struct {
	QueueSize int
	RetryMax  int
	RetryBase time.Duration
}

func DefaultAuditConfig() AuditConfig {
	return AuditConfig{QueueSize: 256, RetryMax: 5, RetryBase: 200 * time.Millisecond}
}

type auditJob struct {
	open    *store.Round
	reveal  *store.RoundReveal
	attempt int
}

func (j auditJob) roundID() string {
	if j.open != nil {
		return j.open.ID
	}
	return j.reveal.ID
}

// AuditWriter writes round rows off the scheduler's path. Jobs are handled
// in order by one worker; failed writes are retried with exponential backoff.
type AuditWriter struct {
	store RoundStore
	cfg   AuditConfig
	clock quartz.Clock
	queue chan auditJob
	done  chan struct{}
	log   zerolog.Logger
}

func NewAuditWriter(s RoundStore, clock quartz.Clock, cfg AuditConfig) *AuditWriter {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultAuditConfig().QueueSize
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &AuditWriter{
		store: s,
		cfg:   cfg,
		clock: clock,
		queue: make(chan auditJob, cfg.QueueSize),
		done:  make(chan struct{}),
		log:   logging.Component("audit"),
	}
}

func (w *AuditWriter) LatestRoundNumber(ctx context.Context, gameType string) (int64, error) {
	return w.store.LatestRoundNumber(ctx, gameType)
}

func (w *AuditWriter) Opened(r store.Round) {
	w.enqueue(auditJob{open: &r})
}

func (w *AuditWriter) Resolved(rv store.RoundReveal) {
	w.enqueue(auditJob{reveal: &rv})
}

func (w *AuditWriter) enqueue(job auditJob) {
	select {
	case w.queue <- job:
		metricAuditQueuedTotal.Add(1)
		metricAuditQueueLen.Set(int64(len(w.queue)))
	default:
		metricAuditDroppedTotal.Add(1)
		w.log.Error().Str("round_id", job.roundID()).Msg("audit queue full, dropping round record")
	}
}

// Run processes jobs until ctx is done, then drains what is already queued.
func (w *AuditWriter) Run(ctx context.Context) error {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return nil
		case job := <-w.queue:
			metricAuditQueueLen.Set(int64(len(w.queue)))
			w.process(ctx, job)
		}
	}
}

func (w *AuditWriter) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case job := <-w.queue:
			job.attempt = w.cfg.RetryMax
			w.process(ctx, job)
		default:
			return
		}
	}
}

func (w *AuditWriter) process(ctx context.Context, job auditJob) {
	var err error
	if job.open != nil {
		err = w.store.InsertRound(ctx, *job.open)
	} else {
		err = w.store.RevealRound(ctx, *job.reveal)
	}
	if err == nil {
		metricAuditWrittenTotal.Add(1)
		return
	}
	metricAuditFailedTotal.Add(1)
	if job.attempt >= w.cfg.RetryMax {
		w.log.Error().Err(err).Str("round_id", job.roundID()).Int("attempts", job.attempt+1).Msg("giving up on round record")
		return
	}
	job.attempt++
	metricAuditRetryTotal.Add(1)
	delay := w.cfg.RetryBase * time.Duration(1<<(job.attempt-1))
	w.log.Warn().Err(err).Str("round_id", job.roundID()).Dur("retry_in", delay).Msg("round record write failed")
	w.clock.AfterFunc(delay, func() {
		select {
		case <-w.done:
		case w.queue <- job:
			metricAuditQueueLen.Set(int64(len(w.queue)))
		}
	}, "audit", "retry")
}
