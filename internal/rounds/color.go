package rounds

import (
	"context"
	"sync"
	"time"

	"betking-casino/internal/game"
	"betking-casino/internal/ledger"
	"betking-casino/internal/logging"
	"betking-casino/internal/store"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type ColorPhase string

const (
	ColorBetting ColorPhase = "betting"
	ColorLocked  ColorPhase = "locked"
	ColorResult  ColorPhase = "result"
)

type ColorConfig struct {
	RoundSeconds  int
	CutoffSeconds int
	ResultPause   time.Duration
	History       int
	Seed          func() (string, error)
}

type colorBet struct {
	userID   string
	username string
	betID    string
	color    game.Color
	stake    decimal.Decimal
	pending  bool
}

type colorRound struct {
	id          string
	number      int64
	seed        string
	commitment  string
	result      game.Color
	phase       ColorPhase
	secondsLeft int
	resolved    bool
	bets        map[string]*colorBet
	counts      map[game.Color]int
}

type ColorHistoryEntry struct {
	RoundNumber int64      `json:"round_number"`
	Color       game.Color `json:"color"`
}

// ColorGame runs the color prediction loop: betting, locked, result, repeat.
// The winning color is fixed when the round opens.
type ColorGame struct {
	cfg    ColorConfig
	clock  quartz.Clock
	wallet Wallet
	bus    Broadcaster
	audit  Recorder
	log    zerolog.Logger

	history *history[ColorHistoryEntry]

	mu      sync.Mutex
	ctx     context.Context
	round   *colorRound
	next    int64
	timer   *quartz.Timer
	stopped bool
}

func NewColorGame(cfg ColorConfig, clock quartz.Clock, wallet Wallet, bus Broadcaster, audit Recorder) *ColorGame {
	if cfg.Seed == nil {
		cfg.Seed = game.NewSeed
	}
	if cfg.RoundSeconds <= 0 {
		cfg.RoundSeconds = 60
	}
	if cfg.CutoffSeconds < 0 || cfg.CutoffSeconds >= cfg.RoundSeconds {
		cfg.CutoffSeconds = 0
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	if bus == nil {
		bus = nopBroadcaster{}
	}
	return &ColorGame{
		cfg:     cfg,
		clock:   clock,
		wallet:  wallet,
		bus:     bus,
		audit:   audit,
		log:     logging.Component("color"),
		history: newHistory[ColorHistoryEntry](cfg.History),
	}
}

func (g *ColorGame) Start(ctx context.Context) error {
	last, err := g.audit.LatestRoundNumber(ctx, string(game.KindColor))
	if err != nil {
		return err
	}
	g.mu.Lock()
	g.ctx = ctx
	g.next = last + 1
	err = g.openLocked()
	g.mu.Unlock()
	if err != nil {
		return err
	}
	context.AfterFunc(ctx, g.stop)
	g.log.Info().Int64("round", last+1).Int("round_seconds", g.cfg.RoundSeconds).Msg("color loop started")
	return nil
}

func (g *ColorGame) openLocked() error {
	seed, err := g.cfg.Seed()
	if err != nil {
		return err
	}
	n := g.next
	g.next++
	r := &colorRound{
		id:          store.NewID(),
		number:      n,
		seed:        seed,
		commitment:  game.Commitment(seed, n),
		result:      game.ColorFor(seed, n),
		phase:       ColorBetting,
		secondsLeft: g.cfg.RoundSeconds,
		bets:        map[string]*colorBet{},
		counts:      map[game.Color]int{},
	}
	g.round = r
	metricRoundsStarted.Add(string(game.KindColor), 1)
	g.audit.Opened(store.Round{
		ID:          r.id,
		GameType:    string(game.KindColor),
		RoundNumber: n,
		Commitment:  r.commitment,
		Status:      store.RoundOpen,
		StartedAt:   g.clock.Now(),
	})
	g.bus.Broadcast(RoomColor, "color:new_round", map[string]any{
		"round_id":     r.id,
		"round_number": n,
		"countdown":    r.secondsLeft,
		"hash":         r.commitment,
	})
	g.timer = g.clock.AfterFunc(time.Second, g.onTick, "color", "tick")
	return nil
}

func (g *ColorGame) onTick() {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		return
	}
	r := g.round
	r.secondsLeft--
	if r.secondsLeft == g.cfg.CutoffSeconds && r.secondsLeft > 0 {
		r.phase = ColorLocked
		g.bus.Broadcast(RoomColor, "color:locked", map[string]any{"round_id": r.id})
	}
	g.bus.Broadcast(RoomColor, "color:tick", map[string]any{"seconds_left": r.secondsLeft, "status": r.phase})
	if r.secondsLeft > 0 {
		g.timer = g.clock.AfterFunc(time.Second, g.onTick, "color", "tick")
		g.mu.Unlock()
		return
	}
	bets := g.resolveLocked()
	g.mu.Unlock()

	winners := 0
	for _, b := range bets {
		if g.settle(g.ctx, r, b) {
			winners++
		}
	}
	g.bus.Broadcast(RoomColor, "color:result", map[string]any{
		"round_id":     r.id,
		"round_number": r.number,
		"color":        r.result,
		"winners":      winners,
		"server_seed":  r.seed,
	})
}

// resolveLocked moves the round to its result phase and returns the
// confirmed bets to settle.
func (g *ColorGame) resolveLocked() []*colorBet {
	r := g.round
	r.phase = ColorResult
	r.resolved = true
	g.history.push(ColorHistoryEntry{RoundNumber: r.number, Color: r.result})
	g.audit.Resolved(store.RoundReveal{
		ID:         r.id,
		ServerSeed: r.seed,
		Result:     string(r.result),
		Multiplier: decimal.NewNullDecimal(r.result.Multiplier()),
	})
	g.log.Info().Int64("round", r.number).Str("color", string(r.result)).Int("bets", len(r.bets)).Msg("color round resolved")

	bets := make([]*colorBet, 0, len(r.bets))
	for _, b := range r.bets {
		if !b.pending {
			bets = append(bets, b)
		}
	}
	g.timer = g.clock.AfterFunc(g.cfg.ResultPause, g.onNext, "color", "next")
	return bets
}

func (g *ColorGame) onNext() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopped {
		return
	}
	if err := g.openLocked(); err != nil {
		g.log.Error().Err(err).Msg("open color round")
		g.timer = g.clock.AfterFunc(g.cfg.ResultPause, g.onNext, "color", "next")
	}
}

// settle pays one bet against the round result and reports whether it won.
func (g *ColorGame) settle(ctx context.Context, r *colorRound, b *colorBet) bool {
	res := game.SettleColorBet(r.number, b.color, r.result, b.stake)
	s, err := g.wallet.SettleBet(ctx, b.userID, b.betID, res)
	if err != nil {
		metricSettleFailed.Add(1)
		g.log.Error().Err(err).Str("bet_id", b.betID).Msg("settle color bet")
		return false
	}
	if res.Won() {
		g.bus.SendToUser(b.userID, "wallet:balance_update", map[string]any{"balance": s.Balance})
	}
	return res.Won()
}

// PlaceBet accepts one bet per user while the round is in betting.
func (g *ColorGame) PlaceBet(ctx context.Context, userID, username string, color game.Color, amount decimal.Decimal) (ledger.Placement, error) {
	if !color.Valid() {
		return ledger.Placement{}, ErrInvalidColor
	}
	g.mu.Lock()
	if g.stopped || g.round == nil {
		g.mu.Unlock()
		return ledger.Placement{}, ErrStopped
	}
	r := g.round
	if r.phase != ColorBetting {
		g.mu.Unlock()
		metricBetsRejected.Add(string(game.KindColor), 1)
		return ledger.Placement{}, ErrBettingClosed
	}
	if _, ok := r.bets[userID]; ok {
		g.mu.Unlock()
		metricBetsRejected.Add(string(game.KindColor), 1)
		return ledger.Placement{}, ErrAlreadyBet
	}
	b := &colorBet{userID: userID, username: username, color: color, stake: amount, pending: true}
	r.bets[userID] = b
	r.counts[color]++
	g.mu.Unlock()

	p, err := g.wallet.PlaceBet(ctx, ledger.Wager{UserID: userID, Game: game.KindColor, Stake: amount, RoundID: r.id},
		string(color), map[string]any{"round": r.number})

	g.mu.Lock()
	if err != nil {
		delete(r.bets, userID)
		r.counts[color]--
		g.mu.Unlock()
		metricBetsRejected.Add(string(game.KindColor), 1)
		return ledger.Placement{}, err
	}
	b.betID = p.BetID
	b.pending = false
	resolved := r.resolved
	stopped := g.stopped
	counts := countsView(r.counts)
	g.mu.Unlock()

	if stopped && !resolved {
		if _, err := g.wallet.VoidBet(context.WithoutCancel(ctx), userID, p.BetID, amount, "color round cancelled"); err != nil {
			g.log.Error().Err(err).Str("bet_id", p.BetID).Msg("refund color bet")
		}
		return ledger.Placement{}, ErrStopped
	}
	metricBetsAccepted.Add(string(game.KindColor), 1)
	g.bus.Broadcast(RoomColor, "color:bets_count", counts)
	g.bus.SendToUser(userID, "wallet:balance_update", map[string]any{"balance": p.Balance})
	if resolved {
		g.settle(context.WithoutCancel(ctx), r, b)
	}
	return p, nil
}

func countsView(m map[game.Color]int) map[string]int {
	out := make(map[string]int, len(game.Colors))
	for _, c := range game.Colors {
		out[string(c)] = m[c]
	}
	return out
}

type ColorBetView struct {
	Color  game.Color      `json:"color"`
	Amount decimal.Decimal `json:"amount"`
}

type ColorState struct {
	RoundID     string              `json:"round_id"`
	RoundNumber int64               `json:"round_number"`
	Status      ColorPhase          `json:"status"`
	SecondsLeft int                 `json:"seconds_left"`
	Hash        string              `json:"hash"`
	Result      game.Color          `json:"result,omitempty"`
	BetsCount   map[string]int      `json:"bets_count"`
	MyBet       *ColorBetView       `json:"my_bet,omitempty"`
	History     []ColorHistoryEntry `json:"history"`
}

// State is a snapshot for a joining client. The result is shown only once
// the round is resolved.
func (g *ColorGame) State(userID string) ColorState {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := ColorState{History: g.history.list(), BetsCount: countsView(nil)}
	r := g.round
	if r == nil {
		return st
	}
	st.RoundID = r.id
	st.RoundNumber = r.number
	st.Status = r.phase
	st.SecondsLeft = r.secondsLeft
	st.Hash = r.commitment
	st.BetsCount = countsView(r.counts)
	if r.resolved {
		st.Result = r.result
	}
	if b, ok := r.bets[userID]; ok && !b.pending {
		st.MyBet = &ColorBetView{Color: b.color, Amount: b.stake}
	}
	return st
}

func (g *ColorGame) History() []ColorHistoryEntry {
	return g.history.list()
}

func (g *ColorGame) stop() {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		return
	}
	g.stopped = true
	if g.timer != nil {
		g.timer.Stop()
	}
	var refunds []*colorBet
	if r := g.round; r != nil && !r.resolved {
		for _, b := range r.bets {
			if !b.pending {
				refunds = append(refunds, b)
			}
		}
	}
	g.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, b := range refunds {
		if _, err := g.wallet.VoidBet(ctx, b.userID, b.betID, b.stake, "color round cancelled"); err != nil {
			g.log.Error().Err(err).Str("bet_id", b.betID).Msg("refund color bet")
		}
	}
	g.log.Info().Int("refunded", len(refunds)).Msg("color loop stopped")
}
