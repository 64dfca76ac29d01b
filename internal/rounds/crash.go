package rounds

import (
	"context"
	"sort"
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

type CrashPhase string

const (
	CrashWaiting CrashPhase = "waiting"
	CrashRunning CrashPhase = "running"
	CrashCrashed CrashPhase = "crashed"
)

type CrashConfig struct {
	Wait    time.Duration
	Pause   time.Duration
	Tick    time.Duration
	History int
	// Seed draws the server seed of each round.
	Seed func() (string, error)
}

type crashBet struct {
	userID    string
	username  string
	betID     string
	stake     decimal.Decimal
	pending   bool
	cashedOut bool
	cashout   int64
	payout    decimal.Decimal
}

type crashRound struct {
	id         string
	number     int64
	seed       string
	commitment string
	point      int64
	phase      CrashPhase
	startedAt  time.Time
	multiplier int64
	bets       map[string]*crashBet
}

// Crash runs the crash game loop: waiting, running, crashed, repeat. All
// round state is guarded by mu; ledger calls happen outside it.
type Crash struct {
	cfg    CrashConfig
	clock  quartz.Clock
	wallet Wallet
	bus    Broadcaster
	audit  Recorder
	log    zerolog.Logger

	history *history[decimal.Decimal]

	mu      sync.Mutex
	ctx     context.Context
	round   *crashRound
	next    int64
	timer   *quartz.Timer
	stopped bool
}

func NewCrash(cfg CrashConfig, clock quartz.Clock, wallet Wallet, bus Broadcaster, audit Recorder) *Crash {
	if cfg.Seed == nil {
		cfg.Seed = game.NewSeed
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	if bus == nil {
		bus = nopBroadcaster{}
	}
	return &Crash{
		cfg:     cfg,
		clock:   clock,
		wallet:  wallet,
		bus:     bus,
		audit:   audit,
		log:     logging.Component("crash"),
		history: newHistory[decimal.Decimal](cfg.History),
	}
}

// Start opens the first round. The loop stops when ctx is done.
func (c *Crash) Start(ctx context.Context) error {
	last, err := c.audit.LatestRoundNumber(ctx, string(game.KindCrash))
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.ctx = ctx
	c.next = last + 1
	err = c.openLocked()
	c.mu.Unlock()
	if err != nil {
		return err
	}
	context.AfterFunc(ctx, c.stop)
	c.log.Info().Int64("round", last+1).Dur("wait", c.cfg.Wait).Msg("crash loop started")
	return nil
}

func (c *Crash) openLocked() error {
	seed, err := c.cfg.Seed()
	if err != nil {
		return err
	}
	n := c.next
	c.next++
	r := &crashRound{
		id:         store.NewID(),
		number:     n,
		seed:       seed,
		commitment: game.Commitment(seed, n),
		point:      game.CrashPointCents(game.RoundHash(seed, n)),
		phase:      CrashWaiting,
		multiplier: 100,
		bets:       map[string]*crashBet{},
	}
	c.round = r
	metricRoundsStarted.Add(string(game.KindCrash), 1)
	c.audit.Opened(store.Round{
		ID:          r.id,
		GameType:    string(game.KindCrash),
		RoundNumber: n,
		Commitment:  r.commitment,
		Status:      store.RoundOpen,
		StartedAt:   c.clock.Now(),
	})
	c.bus.Broadcast(RoomCrash, "crash:waiting", map[string]any{
		"round_id":     r.id,
		"round_number": n,
		"countdown":    int(c.cfg.Wait / time.Second),
		"hash":         r.commitment,
	})
	c.timer = c.clock.AfterFunc(c.cfg.Wait, c.onStart, "crash", "start")
	return nil
}

func (c *Crash) onStart() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	r := c.round
	r.phase = CrashRunning
	r.startedAt = c.clock.Now()
	c.bus.Broadcast(RoomCrash, "crash:start", map[string]any{"round_id": r.id})
	if r.multiplier >= r.point {
		losers := c.crashLocked()
		c.mu.Unlock()
		c.settleLosers(r, losers)
		return
	}
	c.timer = c.clock.AfterFunc(c.cfg.Tick, c.onTick, "crash", "tick")
	c.mu.Unlock()
}

func (c *Crash) onTick() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	r := c.round
	m := game.CrashMultiplierCents(c.clock.Now().Sub(r.startedAt))
	if m < r.multiplier {
		m = r.multiplier
	}
	if m >= r.point {
		losers := c.crashLocked()
		c.mu.Unlock()
		c.settleLosers(r, losers)
		return
	}
	r.multiplier = m
	c.bus.Broadcast(RoomCrash, "crash:tick", map[string]any{"multiplier": cents(m)})
	c.timer = c.clock.AfterFunc(c.cfg.Tick, c.onTick, "crash", "tick")
	c.mu.Unlock()
}

// crashLocked ends the running round at its committed point and returns the
// confirmed bets that did not cash out.
func (c *Crash) crashLocked() []*crashBet {
	r := c.round
	r.multiplier = r.point
	r.phase = CrashCrashed
	point := cents(r.point)
	c.bus.Broadcast(RoomCrash, "crash:tick", map[string]any{"multiplier": point})
	c.bus.Broadcast(RoomCrash, "crash:end", map[string]any{
		"round_id":     r.id,
		"round_number": r.number,
		"crash_point":  point,
		"server_seed":  r.seed,
	})
	c.history.push(point)
	c.audit.Resolved(store.RoundReveal{
		ID:         r.id,
		ServerSeed: r.seed,
		Result:     point.StringFixed(2),
		Multiplier: decimal.NewNullDecimal(point),
	})
	c.log.Info().Int64("round", r.number).Str("crash_point", point.StringFixed(2)).Int("bets", len(r.bets)).Msg("round crashed")

	losers := []*crashBet{}
	for _, b := range r.bets {
		if !b.pending && !b.cashedOut {
			losers = append(losers, b)
		}
	}
	c.timer = c.clock.AfterFunc(c.cfg.Pause, c.onNext, "crash", "next")
	return losers
}

func (c *Crash) onNext() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	if err := c.openLocked(); err != nil {
		c.log.Error().Err(err).Msg("open crash round")
		c.timer = c.clock.AfterFunc(c.cfg.Pause, c.onNext, "crash", "next")
	}
}

func (c *Crash) settleLosers(r *crashRound, losers []*crashBet) {
	for _, b := range losers {
		c.settleLost(r, b)
	}
}

func (c *Crash) settleLost(r *crashRound, b *crashBet) {
	point := cents(r.point)
	res := game.CrashBetResult{Round: r.number, Stake: b.stake, Multiplier: point, CrashPoint: &point, Payout: decimal.Zero}
	if _, err := c.wallet.SettleBet(c.ctx, b.userID, b.betID, res); err != nil {
		metricSettleFailed.Add(1)
		c.log.Error().Err(err).Str("bet_id", b.betID).Msg("settle lost crash bet")
	}
}

// PlaceBet accepts one bet per user while the round is waiting. The stake is
// debited before the bet counts; a bet accepted here is honored even if the
// round starts while the debit is in flight.
func (c *Crash) PlaceBet(ctx context.Context, userID, username string, amount decimal.Decimal) (ledger.Placement, error) {
	c.mu.Lock()
	if c.stopped || c.round == nil {
		c.mu.Unlock()
		return ledger.Placement{}, ErrStopped
	}
	r := c.round
	if r.phase != CrashWaiting {
		c.mu.Unlock()
		metricBetsRejected.Add(string(game.KindCrash), 1)
		return ledger.Placement{}, ErrBettingClosed
	}
	if _, ok := r.bets[userID]; ok {
		c.mu.Unlock()
		metricBetsRejected.Add(string(game.KindCrash), 1)
		return ledger.Placement{}, ErrAlreadyBet
	}
	b := &crashBet{userID: userID, username: username, stake: amount, pending: true}
	r.bets[userID] = b
	c.mu.Unlock()

	p, err := c.wallet.PlaceBet(ctx, ledger.Wager{UserID: userID, Game: game.KindCrash, Stake: amount, RoundID: r.id},
		game.CrashSelection(r.number), map[string]any{"round": r.number})

	c.mu.Lock()
	if err != nil {
		delete(r.bets, userID)
		c.mu.Unlock()
		metricBetsRejected.Add(string(game.KindCrash), 1)
		return ledger.Placement{}, err
	}
	b.betID = p.BetID
	b.pending = false
	crashed := r.phase == CrashCrashed
	stopped := c.stopped
	c.mu.Unlock()

	if stopped && !crashed {
		if _, err := c.wallet.VoidBet(context.WithoutCancel(ctx), userID, p.BetID, amount, "crash round cancelled"); err != nil {
			c.log.Error().Err(err).Str("bet_id", p.BetID).Msg("refund crash bet")
		}
		return ledger.Placement{}, ErrStopped
	}
	metricBetsAccepted.Add(string(game.KindCrash), 1)
	c.bus.Broadcast(RoomCrash, "crash:bet_placed", map[string]any{"username": username, "amount": amount})
	c.bus.SendToUser(userID, "wallet:balance_update", map[string]any{"balance": p.Balance})
	if crashed {
		c.settleLost(r, b)
	}
	return p, nil
}

// Cashout locks in the current multiplier for the user's bet and credits
// the payout at once.
func (c *Crash) Cashout(ctx context.Context, userID string) (ledger.Settlement, error) {
	c.mu.Lock()
	if c.round == nil {
		c.mu.Unlock()
		return ledger.Settlement{}, ErrStopped
	}
	r := c.round
	b, ok := r.bets[userID]
	switch {
	case r.phase != CrashRunning:
		c.mu.Unlock()
		return ledger.Settlement{}, ErrNotRunning
	case !ok:
		c.mu.Unlock()
		return ledger.Settlement{}, ErrNoBet
	case b.pending:
		c.mu.Unlock()
		return ledger.Settlement{}, ErrBetPending
	case b.cashedOut:
		c.mu.Unlock()
		return ledger.Settlement{}, ErrAlreadyCashedOut
	}
	b.cashedOut = true
	b.cashout = r.multiplier
	mult := cents(b.cashout)
	b.payout = game.CrashPayout(b.stake, mult)
	c.mu.Unlock()

	res := game.CrashBetResult{Round: r.number, Stake: b.stake, CashedOut: true, Multiplier: mult, Payout: b.payout}
	s, err := c.wallet.SettleBet(ctx, userID, b.betID, res)
	if err != nil {
		metricSettleFailed.Add(1)
		c.log.Error().Err(err).Str("user_id", userID).Str("bet_id", b.betID).Msg("credit crash cashout")
		c.revertCashout(r, b)
		return ledger.Settlement{}, err
	}
	metricCashouts.Add(1)
	c.bus.Broadcast(RoomCrash, "crash:cashed_out", map[string]any{
		"username":   b.username,
		"multiplier": mult,
		"payout":     b.payout,
	})
	c.bus.SendToUser(userID, "wallet:balance_update", map[string]any{"balance": s.Balance})
	return s, nil
}

// revertCashout undoes a cashout whose credit failed. While the round runs
// the player may cash out again; once it has crashed the bet settles as
// lost, and a stopped loop refunds it.
func (c *Crash) revertCashout(r *crashRound, b *crashBet) {
	c.mu.Lock()
	b.cashedOut = false
	b.cashout = 0
	b.payout = decimal.Zero
	phase, stopped := r.phase, c.stopped
	c.mu.Unlock()

	switch {
	case phase == CrashCrashed:
		c.settleLost(r, b)
	case stopped:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := c.wallet.VoidBet(ctx, b.userID, b.betID, b.stake, "crash round cancelled"); err != nil {
			c.log.Error().Err(err).Str("bet_id", b.betID).Msg("refund crash bet")
		}
	}
}

type CrashBetView struct {
	Username   string           `json:"username"`
	Amount     decimal.Decimal  `json:"amount"`
	CashedOut  bool             `json:"cashed_out"`
	Multiplier *decimal.Decimal `json:"multiplier,omitempty"`
	Payout     *decimal.Decimal `json:"payout,omitempty"`
}

type CrashState struct {
	RoundID     string            `json:"round_id"`
	RoundNumber int64             `json:"round_number"`
	Status      CrashPhase        `json:"status"`
	Hash        string            `json:"hash"`
	Multiplier  decimal.Decimal   `json:"multiplier"`
	CrashPoint  *decimal.Decimal  `json:"crash_point,omitempty"`
	Bets        []CrashBetView    `json:"bets"`
	MyBet       *CrashBetView     `json:"my_bet,omitempty"`
	History     []decimal.Decimal `json:"history"`
}

// State is a snapshot for a joining client. The crash point appears only
// after the round has crashed.
func (c *Crash) State(userID string) CrashState {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := CrashState{History: c.history.list(), Bets: []CrashBetView{}}
	r := c.round
	if r == nil {
		return st
	}
	st.RoundID = r.id
	st.RoundNumber = r.number
	st.Status = r.phase
	st.Hash = r.commitment
	st.Multiplier = cents(r.multiplier)
	if r.phase == CrashCrashed {
		p := cents(r.point)
		st.CrashPoint = &p
	}
	for _, b := range r.bets {
		if b.pending {
			continue
		}
		v := CrashBetView{Username: b.username, Amount: b.stake, CashedOut: b.cashedOut}
		if b.cashedOut {
			m, p := cents(b.cashout), b.payout
			v.Multiplier, v.Payout = &m, &p
		}
		st.Bets = append(st.Bets, v)
		if b.userID == userID {
			mine := v
			st.MyBet = &mine
		}
	}
	sort.Slice(st.Bets, func(i, j int) bool { return st.Bets[i].Amount.GreaterThan(st.Bets[j].Amount) })
	return st
}

func (c *Crash) History() []decimal.Decimal {
	return c.history.list()
}

// stop halts the loop and refunds confirmed bets of a round that never
// resolved.
func (c *Crash) stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
	}
	var refunds []*crashBet
	if r := c.round; r != nil && r.phase != CrashCrashed {
		for _, b := range r.bets {
			if !b.pending && !b.cashedOut {
				refunds = append(refunds, b)
			}
		}
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, b := range refunds {
		if _, err := c.wallet.VoidBet(ctx, b.userID, b.betID, b.stake, "crash round cancelled"); err != nil {
			c.log.Error().Err(err).Str("bet_id", b.betID).Msg("refund crash bet")
		}
	}
	c.log.Info().Int("refunded", len(refunds)).Msg("crash loop stopped")
}

func cents(v int64) decimal.Decimal {
	return decimal.New(v, -2)
}
