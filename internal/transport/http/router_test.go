package httptransport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"betking-casino/internal/app/casino"
	"betking-casino/internal/app/public"
	"betking-casino/internal/auth"
	"betking-casino/internal/config"
	"betking-casino/internal/ledger"
	"betking-casino/internal/ratelimit"
	"betking-casino/internal/rounds"
	"betking-casino/internal/store"
	"betking-casino/internal/ws"

	"github.com/coder/quartz"
	"github.com/shopspring/decimal"
)

// lastSource leaves every reel on its last stop and every shuffle in deck
// order.
type lastSource struct{}

func (lastSource) IntN(n int) (int, error) { return n - 1, nil }

type stubCrash struct{}

func (stubCrash) State(string) rounds.CrashState {
	return rounds.CrashState{RoundID: "crash-1", Status: rounds.CrashRunning}
}

type stubColor struct{}

func (stubColor) State(string) rounds.ColorState {
	return rounds.ColorState{RoundID: "color-1", Status: rounds.ColorBetting, SecondsLeft: 42}
}

type testEnv struct {
	handler  http.Handler
	verifier *auth.Verifier
	token    string
}

func newTestEnv(t *testing.T, limiter ratelimit.Limiter) *testEnv {
	t.Helper()
	mem := store.NewMemory()
	l := ledger.New(mem, ledger.Limits{Min: decimal.NewFromInt(10), Max: decimal.NewFromInt(50000)}, decimal.NewFromInt(10000))
	v := auth.NewVerifier("test-secret")
	tok, err := v.Issue(auth.Identity{UserID: "u1", Username: "alice"}, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	h := NewRouter(RouterDeps{
		Config:   config.ServerConfig{AdminAPIKey: "admin-key", CORSOrigins: []string{"https://play.example"}},
		DB:       mem,
		Ledger:   l,
		Casino:   casino.NewService(l, lastSource{}, quartz.NewMock(t), time.Minute),
		Public:   public.NewService(mem),
		Crash:    stubCrash{},
		Color:    stubColor{},
		Verifier: v,
		Limiter:  limiter,
		Feed:     ws.NewHub(),
	})
	return &testEnv{handler: h, verifier: v, token: tok}
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers map[string]string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	var out map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec.Code, out
}

func (e *testEnv) authed(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	return e.do(t, method, path, body, map[string]string{"Authorization": "Bearer " + e.token})
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, nil)
	code, body := env.do(t, http.MethodGet, "/healthz", "", nil)
	if code != http.StatusOK || body["ok"] != true {
		t.Fatalf("healthz = %d %v", code, body)
	}
}

func TestWalletRequiresToken(t *testing.T) {
	env := newTestEnv(t, nil)
	code, body := env.do(t, http.MethodGet, "/api/wallet/balance", "", nil)
	if code != http.StatusUnauthorized || body["error"] != "unauthorized" {
		t.Fatalf("got %d %v", code, body)
	}
	code, _ = env.do(t, http.MethodGet, "/api/wallet/balance", "", map[string]string{"Authorization": "Bearer nope"})
	if code != http.StatusUnauthorized {
		t.Fatalf("bad token got %d", code)
	}
}

func TestWalletFlow(t *testing.T) {
	env := newTestEnv(t, nil)

	code, body := env.authed(t, http.MethodGet, "/api/wallet/balance", "")
	if code != http.StatusOK || body["balance"] != "10000" {
		t.Fatalf("balance = %d %v", code, body)
	}
	code, body = env.authed(t, http.MethodPost, "/api/wallet/deposit", `{"amount":500}`)
	if code != http.StatusOK || body["balance"] != "10500" {
		t.Fatalf("deposit = %d %v", code, body)
	}
	code, body = env.authed(t, http.MethodPost, "/api/wallet/deposit", `{"amount":50}`)
	if code != http.StatusBadRequest || body["error"] != "invalid_amount" {
		t.Fatalf("small deposit = %d %v", code, body)
	}
	code, body = env.authed(t, http.MethodPost, "/api/wallet/withdraw", `{"amount":20000}`)
	if code != http.StatusConflict || body["error"] != "insufficient_balance" {
		t.Fatalf("overdraw = %d %v", code, body)
	}
	code, body = env.authed(t, http.MethodPost, "/api/wallet/withdraw", `{"amount":"1000"}`)
	if code != http.StatusOK || body["balance"] != "9500" {
		t.Fatalf("withdraw = %d %v", code, body)
	}

	code, body = env.authed(t, http.MethodGet, "/api/wallet/transactions?type=deposit", "")
	if code != http.StatusOK {
		t.Fatalf("transactions = %d %v", code, body)
	}
	if items := body["items"].([]any); len(items) != 1 {
		t.Fatalf("expected one deposit, got %v", items)
	}
	code, body = env.authed(t, http.MethodGet, "/api/wallet/transactions?type=bogus", "")
	if code != http.StatusBadRequest || body["error"] != "invalid_request" {
		t.Fatalf("bad filter = %d %v", code, body)
	}
	code, _ = env.authed(t, http.MethodPost, "/api/wallet/deposit", `{`)
	if code != http.StatusBadRequest {
		t.Fatalf("bad json = %d", code)
	}
}

func TestSlotsSpinAndHistory(t *testing.T) {
	env := newTestEnv(t, nil)

	code, body := env.authed(t, http.MethodPost, "/api/casino/slots/spin", `{"stake":10}`)
	if code != http.StatusOK {
		t.Fatalf("spin = %d %v", code, body)
	}
	if body["payout"] != "560" || body["balance"] != "10550" {
		t.Fatalf("unexpected spin %v", body)
	}

	code, body = env.authed(t, http.MethodPost, "/api/casino/slots/spin", `{"stake":5}`)
	if code != http.StatusBadRequest || body["error"] != "bet_below_minimum" {
		t.Fatalf("small stake = %d %v", code, body)
	}

	code, body = env.authed(t, http.MethodGet, "/api/casino/history?game=slots", "")
	if code != http.StatusOK {
		t.Fatalf("history = %d %v", code, body)
	}
	if items := body["items"].([]any); len(items) != 1 {
		t.Fatalf("expected one bet, got %d", len(items))
	}
	code, _ = env.authed(t, http.MethodGet, "/api/casino/history?game=keno", "")
	if code != http.StatusBadRequest {
		t.Fatalf("unknown game history = %d", code)
	}
}

func TestHandErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	code, body := env.authed(t, http.MethodPost, "/api/casino/blackjack/action", `{"handId":"bj_missing","action":"hit"}`)
	if code != http.StatusNotFound || body["error"] != "hand_not_found" {
		t.Fatalf("missing hand = %d %v", code, body)
	}
	code, body = env.authed(t, http.MethodPost, "/api/casino/poker/draw", `{"holdIndices":[0]}`)
	if code != http.StatusBadRequest || body["error"] != "invalid_request" {
		t.Fatalf("missing hand id = %d %v", code, body)
	}

	code, body = env.authed(t, http.MethodPost, "/api/casino/poker/deal", `{"stake":10}`)
	if code != http.StatusOK {
		t.Fatalf("deal = %d %v", code, body)
	}
	handID, _ := body["handId"].(string)
	code, body = env.authed(t, http.MethodPost, "/api/casino/poker/draw", `{"handId":"`+handID+`","holdIndices":[7]}`)
	if code != http.StatusBadRequest || body["error"] != "invalid_hold" {
		t.Fatalf("bad hold = %d %v", code, body)
	}
	code, _ = env.authed(t, http.MethodPost, "/api/casino/poker/draw", `{"handId":"`+handID+`","holdIndices":[0,1,2,3,4]}`)
	if code != http.StatusOK {
		t.Fatalf("draw = %d", code)
	}
	code, body = env.authed(t, http.MethodPost, "/api/casino/poker/draw", `{"handId":"`+handID+`","holdIndices":[]}`)
	if code != http.StatusNotFound || body["error"] != "hand_not_found" {
		t.Fatalf("second draw = %d %v", code, body)
	}
}

func TestRoundStateEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)
	code, body := env.authed(t, http.MethodGet, "/api/casino/crash/state", "")
	if code != http.StatusOK || body["round_id"] != "crash-1" || body["status"] != "running" {
		t.Fatalf("crash state = %d %v", code, body)
	}
	code, body = env.authed(t, http.MethodGet, "/api/casino/color/state", "")
	if code != http.StatusOK || body["seconds_left"] != float64(42) {
		t.Fatalf("color state = %d %v", code, body)
	}
}

func TestPublicRoundSnapshot(t *testing.T) {
	env := newTestEnv(t, nil)
	code, body := env.do(t, http.MethodGet, "/api/public/rounds/color/state", "", nil)
	if code != http.StatusOK || body["round_id"] != "color-1" {
		t.Fatalf("color snapshot = %d %v", code, body)
	}
	if _, ok := body["my_bet"]; ok {
		t.Fatalf("anonymous snapshot has my_bet: %v", body)
	}
	code, body = env.do(t, http.MethodGet, "/api/public/rounds/dice/state", "", nil)
	if code != http.StatusNotFound || body["error"] != "room_not_found" {
		t.Fatalf("unknown room = %d %v", code, body)
	}
}

func TestPlayRateLimit(t *testing.T) {
	env := newTestEnv(t, ratelimit.NewLocal(1, time.Minute, nil))
	if code, _ := env.authed(t, http.MethodPost, "/api/casino/slots/spin", `{"stake":10}`); code != http.StatusOK {
		t.Fatalf("first spin = %d", code)
	}
	code, body := env.authed(t, http.MethodPost, "/api/casino/slots/spin", `{"stake":10}`)
	if code != http.StatusTooManyRequests || body["error"] != "rate_limited" {
		t.Fatalf("second spin = %d %v", code, body)
	}
	if code, _ := env.authed(t, http.MethodGet, "/api/wallet/balance", ""); code != http.StatusOK {
		t.Fatalf("reads must not be limited, got %d", code)
	}
}

func TestFairnessVerify(t *testing.T) {
	env := newTestEnv(t, nil)
	code, body := env.do(t, http.MethodPost, "/api/fairness/verify",
		`{"game":"crash","server_seed":"test-seed","round_number":42,"commitment":"84d1d46a69adf7db92d28e04613eecc813755221a41e937670afec334bfe44e3"}`, nil)
	if code != http.StatusOK {
		t.Fatalf("verify = %d %v", code, body)
	}
	if body["crash_point"] != "5.33" || body["commitment_match"] != true {
		t.Fatalf("unexpected verification %v", body)
	}
	code, body = env.do(t, http.MethodPost, "/api/fairness/verify", `{"round_id":"nope"}`, nil)
	if code != http.StatusNotFound || body["error"] != "round_not_found" {
		t.Fatalf("missing round = %d %v", code, body)
	}
	code, body = env.do(t, http.MethodGet, "/api/fairness/rounds?game=crash", "", nil)
	if code != http.StatusOK || len(body["items"].([]any)) != 0 {
		t.Fatalf("rounds = %d %v", code, body)
	}
}

func TestAdminLimits(t *testing.T) {
	env := newTestEnv(t, nil)
	if code, _ := env.do(t, http.MethodGet, "/api/admin/limits", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("no key = %d", code)
	}
	admin := map[string]string{"X-Admin-Key": "admin-key"}
	code, body := env.do(t, http.MethodPut, "/api/admin/limits", `{"min_bet":20,"max_bet":100}`, admin)
	if code != http.StatusOK {
		t.Fatalf("set limits = %d %v", code, body)
	}
	code, body = env.do(t, http.MethodGet, "/api/admin/limits", "", admin)
	if code != http.StatusOK || body["min_bet"] != "20" || body["max_bet"] != "100" {
		t.Fatalf("limits = %d %v", code, body)
	}
	code, body = env.do(t, http.MethodPut, "/api/admin/limits", `{"min_bet":200,"max_bet":100}`, admin)
	if code != http.StatusBadRequest {
		t.Fatalf("inverted limits = %d %v", code, body)
	}
	code, body = env.authed(t, http.MethodPost, "/api/casino/slots/spin", `{"stake":10}`)
	if code != http.StatusBadRequest || body["error"] != "bet_below_minimum" {
		t.Fatalf("stake under new minimum = %d %v", code, body)
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/wallet/balance", nil)
	req.Header.Set("Origin", "https://play.example")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://play.example" {
		t.Fatalf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/wallet/balance", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("foreign origin allowed: %q", got)
	}
}

func TestParsePagination(t *testing.T) {
	cases := []struct {
		query         string
		limit, offset int
	}{
		{"", 50, 0},
		{"?limit=10&offset=5", 10, 5},
		{"?limit=0&offset=-3", 1, 0},
		{"?limit=9999", 500, 0},
		{"?limit=abc", 50, 0},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/x"+tc.query, nil)
		limit, offset := ParsePagination(r)
		if limit != tc.limit || offset != tc.offset {
			t.Fatalf("%q: got %d,%d want %d,%d", tc.query, limit, offset, tc.limit, tc.offset)
		}
	}
}

