package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"betking-casino/internal/config"
	"betking-casino/internal/store"

	"github.com/coder/quartz"
	"github.com/go-chi/chi/v5"
)

func testConfig(t *testing.T) config.AppConfig {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("REDIS_ADDR", "")
	cfg, err := config.LoadApp()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func TestOpenStoreFallsBackToMemory(t *testing.T) {
	db, err := openStore("")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, ok := db.(*store.Memory); !ok {
		t.Fatalf("expected in-memory store, got %T", db)
	}
}

func TestNewAppRoutes(t *testing.T) {
	cfg := testConfig(t)
	a, err := newApp(t.Context(), cfg, store.NewMemory(), quartz.NewMock(t))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected /healthz 200, got %d", w.Code)
	}

	want := []string{
		"GET /ws",
		"GET /api/wallet/balance",
		"POST /api/casino/slots/spin",
		"POST /api/casino/blackjack/action",
		"POST /api/casino/poker/draw",
		"GET /api/casino/crash/state",
		"GET /api/fairness/rounds",
		"POST /api/fairness/verify",
		"GET /api/public/rounds/{room}/events",
		"GET /api/public/rounds/{room}/state",
		"PUT /api/admin/limits",
	}
	mounted := map[string]bool{}
	err = chi.Walk(a.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		mounted[method+" "+route] = true
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	for _, route := range want {
		if !mounted[route] {
			t.Fatalf("route %s not mounted", route)
		}
	}
}

func TestNewAppRejectsBadMoney(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.MinBet = "ten"
	if _, err := newApp(t.Context(), cfg, store.NewMemory(), quartz.NewMock(t)); err == nil {
		t.Fatal("expected MIN_BET parse error")
	}
}
