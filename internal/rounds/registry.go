package rounds

import (
	"context"

	"betking-casino/internal/config"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"
)

// Registry owns the two multiplayer loops and the audit writer behind them.
type Registry struct {
	Crash *Crash
	Color *ColorGame
	Audit *AuditWriter
}

func NewRegistry(cfg config.RoundsConfig, clock quartz.Clock, s RoundStore, wallet Wallet, bus Broadcaster) *Registry {
	audit := NewAuditWriter(s, clock, DefaultAuditConfig())
	return &Registry{
		Crash: NewCrash(CrashConfig{
			Wait:    cfg.CrashWait,
			Pause:   cfg.CrashPause,
			Tick:    cfg.CrashTick,
			History: cfg.History,
		}, clock, wallet, bus, audit),
		Color: NewColorGame(ColorConfig{
			RoundSeconds:  cfg.ColorRoundSeconds,
			CutoffSeconds: cfg.ColorCutoffSeconds,
			ResultPause:   cfg.ColorResultPause,
			History:       cfg.History,
		}, clock, wallet, bus, audit),
		Audit: audit,
	}
}

// Run starts both loops and blocks until ctx is done.
func (r *Registry) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.Audit.Run(ctx) })
	g.Go(func() error {
		if err := r.Crash.Start(ctx); err != nil {
			return err
		}
		if err := r.Color.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return nil
	})
	return g.Wait()
}
