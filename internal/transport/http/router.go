package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"betking-casino/internal/app/casino"
	"betking-casino/internal/app/public"
	"betking-casino/internal/auth"
	"betking-casino/internal/config"
	"betking-casino/internal/ledger"
	"betking-casino/internal/ratelimit"
	"betking-casino/internal/rounds"
	"betking-casino/internal/spectatorgateway"
	"betking-casino/internal/ws"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type RouterDeps struct {
	Config   config.ServerConfig
	DB       Pinger
	Ledger   *ledger.Ledger
	Casino   *casino.Service
	Public   *public.Service
	Crash    CrashStater
	Color    ColorStater
	Verifier *auth.Verifier
	Limiter  ratelimit.Limiter
	WS       http.Handler
	Feed     spectatorgateway.Feed
}

func NewRouter(d RouterDeps) *chi.Mux {
	walletHandlers := NewWalletHandlers(d.Ledger)
	casinoHandlers := NewCasinoHandlers(d.Casino, d.Crash, d.Color)
	publicHandlers := NewPublicHandlers(d.Public)
	adminHandlers := NewAdminHandlers(d.DB, d.Ledger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(CORSMiddleware(d.Config.CORSOrigins))

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())
	if d.WS != nil {
		r.Get("/ws", d.WS.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/fairness/rounds", publicHandlers.Rounds())
		r.Post("/fairness/verify", publicHandlers.Verify())
		if d.Feed != nil {
			spectators := spectatorgateway.New(d.Feed,
				spectatorgateway.Room{Name: rounds.RoomCrash, StateEvent: ws.EventCrashState, State: func() any { return d.Crash.State("") }},
				spectatorgateway.Room{Name: rounds.RoomColor, StateEvent: ws.EventColorState, State: func() any { return d.Color.State("") }},
			)
			r.Get("/public/rounds/{room}/events", spectators.EventsHandler())
			r.Get("/public/rounds/{room}/state", spectators.StateHandler())
		}

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(d.Verifier, d.Ledger))
			r.Get("/wallet/balance", walletHandlers.Balance())
			r.Post("/wallet/deposit", walletHandlers.Deposit())
			r.Post("/wallet/withdraw", walletHandlers.Withdraw())
			r.Get("/wallet/transactions", walletHandlers.Transactions())

			r.Route("/casino", func(r chi.Router) {
				r.Get("/history", casinoHandlers.History())
				r.Get("/crash/state", casinoHandlers.CrashState())
				r.Get("/color/state", casinoHandlers.ColorState())

				r.Group(func(r chi.Router) {
					r.Use(RateLimitMiddleware(d.Limiter, "casino_play"))
					r.Post("/slots/spin", casinoHandlers.SlotsSpin())
					r.Post("/roulette/spin", casinoHandlers.RouletteSpin())
					r.Post("/blackjack/start", casinoHandlers.BlackjackStart())
					r.Post("/blackjack/action", casinoHandlers.BlackjackAction())
					r.Post("/poker/deal", casinoHandlers.PokerDeal())
					r.Post("/poker/draw", casinoHandlers.PokerDraw())
				})
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminAuthMiddleware(d.Config.AdminAPIKey))
			r.Use(BodyCaptureMiddleware(4096))
			r.Get("/limits", adminHandlers.Limits())
			r.Put("/limits", adminHandlers.Limits())
			r.Get("/debug/vars", expvar.Handler().ServeHTTP)
		})
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
