// Package spectatorgateway streams crash and color round events to
// anonymous viewers over server-sent events.
package spectatorgateway

import (
	"encoding/json"
	"net/http"

	"betking-casino/internal/ws"

	"github.com/go-chi/chi/v5"
)

// Feed is the subscription side of the websocket hub.
type Feed interface {
	Subscribe(room string) (<-chan ws.Frame, func())
}

// Room describes one round room: the event name its snapshot is sent under
// and a function producing the anonymous snapshot.
type Room struct {
	Name       string
	StateEvent string
	State      func() any
}

type Gateway struct {
	feed  Feed
	rooms map[string]Room
}

func New(feed Feed, rooms ...Room) *Gateway {
	g := &Gateway{feed: feed, rooms: make(map[string]Room, len(rooms))}
	for _, r := range rooms {
		g.rooms[r.Name] = r
	}
	return g
}

func (g *Gateway) room(r *http.Request) (Room, bool) {
	room, ok := g.rooms[chi.URLParam(r, "room")]
	return room, ok
}

func writeNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"error":"room_not_found"}`))
}

// StateHandler returns the current anonymous snapshot of a room.
func (g *Gateway) StateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, ok := g.room(r)
		if !ok {
			writeNotFound(w)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(room.State())
	}
}
