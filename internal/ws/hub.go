package ws

import (
	"encoding/json"
	"sync"

	"betking-casino/internal/logging"
)

// Hub tracks connected clients by room and by user and fans events out to
// them. It satisfies rounds.Broadcaster.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
	users   map[string]map[*Client]struct{}
	feeds   map[string]map[chan Frame]struct{}
}

// Frame is one encoded room event delivered to a non-websocket subscriber.
// Data holds the same JSON a websocket client receives.
type Frame struct {
	Event string
	Data  []byte
}

const feedBuffer = 32

func NewHub() *Hub {
	return &Hub{
		clients: map[*Client]struct{}{},
		rooms:   map[string]map[*Client]struct{}{},
		users:   map[string]map[*Client]struct{}{},
		feeds:   map[string]map[chan Frame]struct{}{},
	}
}

func encodeEvent(event string, payload any) ([]byte, bool) {
	msg, err := json.Marshal(Event{Type: event, Data: payload})
	if err != nil {
		log := logging.Component("ws")
		log.Error().Err(err).Str("event", event).Msg("encode event")
		return nil, false
	}
	return msg, true
}

func (h *Hub) Broadcast(room, event string, payload any) {
	msg, ok := encodeEvent(event, payload)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		c.trySend(msg)
	}
	for ch := range h.feeds[room] {
		select {
		case ch <- Frame{Event: event, Data: msg}:
		default:
			metricMessagesDropped.Add(1)
		}
	}
	metricEventsBroadcast.Add(1)
}

// Subscribe streams every event broadcast to room until cancel is called.
// Slow subscribers lose events rather than stall the round loops.
func (h *Hub) Subscribe(room string) (<-chan Frame, func()) {
	ch := make(chan Frame, feedBuffer)
	h.mu.Lock()
	set := h.feeds[room]
	if set == nil {
		set = map[chan Frame]struct{}{}
		h.feeds[room] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.feeds[room], ch)
			if len(h.feeds[room]) == 0 {
				delete(h.feeds, room)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) SendToUser(userID, event string, payload any) {
	msg, ok := encodeEvent(event, payload)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.users[userID] {
		c.trySend(msg)
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	if c.id.UserID != "" {
		add(h.users, c.id.UserID, c)
	}
	metricConnectionsActive.Set(int64(len(h.clients)))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for room := range c.rooms {
		remove(h.rooms, room, c)
	}
	if c.id.UserID != "" {
		remove(h.users, c.id.UserID, c)
	}
	c.close()
	metricConnectionsActive.Set(int64(len(h.clients)))
}

func (h *Hub) join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	add(h.rooms, room, c)
	c.rooms[room] = true
}

func (h *Hub) leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	remove(h.rooms, room, c)
	delete(c.rooms, room)
}

// RoomSize reports how many clients are in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func add(m map[string]map[*Client]struct{}, key string, c *Client) {
	set := m[key]
	if set == nil {
		set = map[*Client]struct{}{}
		m[key] = set
	}
	set[c] = struct{}{}
}

func remove(m map[string]map[*Client]struct{}, key string, c *Client) {
	set := m[key]
	delete(set, c)
	if len(set) == 0 {
		delete(m, key)
	}
}
