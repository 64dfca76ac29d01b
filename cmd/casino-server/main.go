package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"betking-casino/internal/app/casino"
	"betking-casino/internal/app/public"
	"betking-casino/internal/auth"
	"betking-casino/internal/config"
	"betking-casino/internal/game"
	"betking-casino/internal/ledger"
	"betking-casino/internal/logging"
	"betking-casino/internal/ratelimit"
	"betking-casino/internal/rounds"
	"betking-casino/internal/store"
	httptransport "betking-casino/internal/transport/http"
	"betking-casino/internal/ws"

	"github.com/coder/quartz"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("load .env failed")
	}
	cfg, err := config.LoadApp()
	if err != nil {
		log.Fatal().Err(err).Msg("load config failed")
	}
	logging.Init(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

type app struct {
	casino   *casino.Service
	registry *rounds.Registry
	router   *chi.Mux
	limiter  ratelimit.Limiter
}

func openStore(dsn string) (store.Backend, error) {
	if dsn == "" {
		log.Warn().Msg("POSTGRES_DSN not set; using in-memory store")
		return store.NewMemory(), nil
	}
	st, err := store.New(dsn)
	if err != nil {
		return nil, err
	}
	if err := st.Ping(context.Background()); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func parseMoney(name, v string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, errors.New(name + ": " + err.Error())
	}
	return d, nil
}

func newApp(ctx context.Context, cfg config.AppConfig, db store.Backend, clock quartz.Clock) (*app, error) {
	minBet, err := parseMoney("MIN_BET", cfg.Server.MinBet)
	if err != nil {
		return nil, err
	}
	maxBet, err := parseMoney("MAX_BET", cfg.Server.MaxBet)
	if err != nil {
		return nil, err
	}
	starting, err := parseMoney("STARTING_BALANCE", cfg.Server.StartingBalance)
	if err != nil {
		return nil, err
	}
	limiter, err := ratelimit.New(ctx, cfg.RateLimit, clock)
	if err != nil {
		return nil, err
	}

	led := ledger.New(db, ledger.Limits{Min: minBet, Max: maxBet}, starting)
	verifier := auth.NewVerifier(cfg.Server.JWTSecret)
	hub := ws.NewHub()
	registry := rounds.NewRegistry(cfg.Rounds, clock, db, led, hub)
	casinoSvc := casino.NewService(led, game.Crypto, clock, cfg.Server.HandIdleTimeout)
	wsServer := ws.NewServer(hub, ws.Deps{
		Crash:    registry.Crash,
		Color:    registry.Color,
		Accounts: led,
		Limiter:  limiter,
		Verifier: verifier,
	})

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Config:   cfg.Server,
		DB:       db,
		Ledger:   led,
		Casino:   casinoSvc,
		Public:   public.NewService(db),
		Crash:    registry.Crash,
		Color:    registry.Color,
		Verifier: verifier,
		Limiter:  limiter,
		WS:       http.HandlerFunc(wsServer.HandleWS),
		Feed:     hub,
	})
	return &app{
		casino:   casinoSvc,
		registry: registry,
		router:   router,
		limiter:  limiter,
	}, nil
}

func run(ctx context.Context, cfg config.AppConfig) error {
	db, err := openStore(cfg.Server.PostgresDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	a, err := newApp(ctx, cfg, db, quartz.NewReal())
	if err != nil {
		return err
	}
	if closer, ok := a.limiter.(interface{ Close() error }); ok {
		defer closer.Close()
	}
	httptransport.LogRoutes(a.router)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.registry.Run(ctx) })
	g.Go(func() error {
		a.casino.StartReapers(ctx, cfg.Server.HandReapInterval)
		<-ctx.Done()
		return nil
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
