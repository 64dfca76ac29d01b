package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"betking-casino/internal/auth"
	"betking-casino/internal/game"
	"betking-casino/internal/ledger"
	"betking-casino/internal/logging"
	"betking-casino/internal/ratelimit"
	"betking-casino/internal/rounds"
	"betking-casino/internal/store"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	sendBuffer     = 64
	maxMessageSize = 4096
	writeWait      = 10 * time.Second
	requestTimeout = 5 * time.Second
)

type CrashGame interface {
	PlaceBet(ctx context.Context, userID, username string, amount decimal.Decimal) (ledger.Placement, error)
	Cashout(ctx context.Context, userID string) (ledger.Settlement, error)
	State(userID string) rounds.CrashState
}

type ColorGame interface {
	PlaceBet(ctx context.Context, userID, username string, color game.Color, amount decimal.Decimal) (ledger.Placement, error)
	State(userID string) rounds.ColorState
}

type Accounts interface {
	EnsureAccount(ctx context.Context, userID, username string) error
}

type Deps struct {
	Crash    CrashGame
	Color    ColorGame
	Accounts Accounts
	Limiter  ratelimit.Limiter
	Verifier *auth.Verifier
}

type Client struct {
	conn  *websocket.Conn
	send  chan []byte
	id    auth.Identity
	rooms map[string]bool
	once  sync.Once
}

func newClient(conn *websocket.Conn, id auth.Identity) *Client {
	return &Client{conn: conn, send: make(chan []byte, sendBuffer), id: id, rooms: map[string]bool{}}
}

func (c *Client) authenticated() bool {
	return c.id.UserID != ""
}

// trySend never blocks: a client that cannot keep up loses the message.
func (c *Client) trySend(msg []byte) {
	defer func() {
		_ = recover()
	}()
	select {
	case c.send <- msg:
	default:
		metricMessagesDropped.Add(1)
	}
}

func (c *Client) close() {
	c.once.Do(func() { close(c.send) })
}

type Server struct {
	hub      *Hub
	deps     Deps
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewServer(hub *Hub, deps Deps) *Server {
	return &Server{
		hub:      hub,
		deps:     deps,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		log:      logging.Component("ws"),
	}
}

// HandleWS upgrades the connection. A token is optional: anonymous clients
// may join rooms to watch but cannot bet.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	var id auth.Identity
	if tok := auth.TokenFromRequest(r); tok != "" {
		var err error
		id, err = s.deps.Verifier.Verify(tok)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "unauthorized"})
			return
		}
		if err := s.deps.Accounts.EnsureAccount(r.Context(), id.UserID, id.Username); err != nil {
			s.log.Error().Err(err).Str("user_id", id.UserID).Msg("ensure account")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := newClient(conn, id)
	s.hub.register(client)
	metricConnectionsTotal.Add(1)
	s.log.Debug().Str("user_id", id.UserID).Msg("ws_connected")

	go s.writeLoop(client)
	s.readLoop(r.Context(), client)
}

func (s *Server) readLoop(ctx context.Context, c *Client) {
	defer func() {
		s.hub.unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		s.handleMessage(ctx, c, msg)
	}
}

func (s *Server) writeLoop(c *Client) {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			_ = c.conn.Close()
			for range c.send {
			}
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (s *Server) handleMessage(ctx context.Context, c *Client, raw []byte) {
	metricMessagesTotal.Add(1)
	var m ClientMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		s.replyError(c, "", "invalid_json")
		return
	}
	if len(m.RequestID) > maxRequestIDLen {
		s.replyError(c, m.RequestID, "invalid_request_id")
		return
	}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	switch m.Type {
	case TypeCrashJoin:
		s.hub.join(c, rounds.RoomCrash)
		s.sendEvent(c, EventCrashState, s.deps.Crash.State(c.id.UserID))
	case TypeCrashLeave:
		s.hub.leave(c, rounds.RoomCrash)
	case TypeColorJoin:
		s.hub.join(c, rounds.RoomColor)
		s.sendEvent(c, EventColorState, s.deps.Color.State(c.id.UserID))
	case TypeColorLeave:
		s.hub.leave(c, rounds.RoomColor)
	case TypeCrashPlaceBet:
		if err := s.guard(ctx, c, "crash_bet"); err != nil {
			s.replyError(c, m.RequestID, mapError(err))
			return
		}
		p, err := s.deps.Crash.PlaceBet(ctx, c.id.UserID, c.id.Username, m.Amount)
		if err != nil {
			s.replyFailure(c, m, err)
			return
		}
		s.reply(c, Ack{Type: TypeAck, RequestID: m.RequestID, BetID: p.BetID, Balance: p.Balance})
	case TypeCrashCashout:
		if err := s.guard(ctx, c, "crash_cashout"); err != nil {
			s.replyError(c, m.RequestID, mapError(err))
			return
		}
		st, err := s.deps.Crash.Cashout(ctx, c.id.UserID)
		if err != nil {
			s.replyFailure(c, m, err)
			return
		}
		ack := Ack{Type: TypeAck, RequestID: m.RequestID, BetID: st.BetID, Balance: st.Balance, Payout: &st.Payout}
		if res, ok := st.Result.(game.CrashBetResult); ok {
			ack.Multiplier = &res.Multiplier
		}
		s.reply(c, ack)
	case TypeColorPlaceBet:
		if err := s.guard(ctx, c, "color_bet"); err != nil {
			s.replyError(c, m.RequestID, mapError(err))
			return
		}
		p, err := s.deps.Color.PlaceBet(ctx, c.id.UserID, c.id.Username, game.Color(m.Color), m.Amount)
		if err != nil {
			s.replyFailure(c, m, err)
			return
		}
		s.reply(c, Ack{Type: TypeAck, RequestID: m.RequestID, BetID: p.BetID, Balance: p.Balance})
	default:
		s.replyError(c, m.RequestID, "unknown_type")
	}
}

// guard rejects anonymous clients and enforces the per-user action rate.
// A limiter outage lets the action through.
func (s *Server) guard(ctx context.Context, c *Client, action string) error {
	if !c.authenticated() {
		return auth.ErrUnauthorized
	}
	if s.deps.Limiter == nil {
		return nil
	}
	ok, err := s.deps.Limiter.Allow(ctx, c.id.UserID, action)
	if err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("rate limiter unavailable")
		return nil
	}
	if !ok {
		return ratelimit.ErrRateLimited
	}
	return nil
}

func (s *Server) replyFailure(c *Client, m ClientMessage, err error) {
	code := mapError(err)
	if code == "internal_error" {
		s.log.Error().Err(err).Str("type", m.Type).Str("user_id", c.id.UserID).Msg("ws action failed")
	}
	s.replyError(c, m.RequestID, code)
}

func (s *Server) reply(c *Client, v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		s.log.Error().Err(err).Msg("encode reply")
		return
	}
	c.trySend(msg)
}

func (s *Server) replyError(c *Client, requestID, code string) {
	s.reply(c, ErrorReply{Type: TypeError, RequestID: requestID, Error: code})
}

func (s *Server) sendEvent(c *Client, event string, payload any) {
	if msg, ok := encodeEvent(event, payload); ok {
		c.trySend(msg)
	}
}

var clientErrors = []error{
	auth.ErrUnauthorized,
	ratelimit.ErrRateLimited,
	rounds.ErrBettingClosed,
	rounds.ErrAlreadyBet,
	rounds.ErrNotRunning,
	rounds.ErrNoBet,
	rounds.ErrBetPending,
	rounds.ErrAlreadyCashedOut,
	rounds.ErrInvalidColor,
	rounds.ErrStopped,
	store.ErrInsufficientBalance,
	ledger.ErrBetTooSmall,
	ledger.ErrBetTooLarge,
	ledger.ErrInvalidAmount,
	game.ErrInvalidStake,
}

func mapError(err error) string {
	if err == nil {
		return ""
	}
	for _, known := range clientErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "internal_error"
}
