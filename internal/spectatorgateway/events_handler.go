package spectatorgateway

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"betking-casino/internal/ws"
)

var pingInterval = 15 * time.Second

func writeSSE(w io.Writer, event string, data []byte) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

// EventsHandler sends the room snapshot first, then every event the hub
// broadcasts to the room. A ping goes out every pingInterval.
func (g *Gateway) EventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, ok := g.room(r)
		if !ok {
			writeNotFound(w)
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		ch, cancel := g.feed.Subscribe(room.Name)
		defer cancel()
		metricSSEConnectionsTotal.Add(1)
		metricSSEConnectionsActive.Add(1)
		defer metricSSEConnectionsActive.Add(-1)

		snapshot, err := json.Marshal(ws.Event{Type: room.StateEvent, Data: room.State()})
		if err != nil {
			return
		}
		if err := writeSSE(w, room.StateEvent, snapshot); err != nil {
			return
		}
		flusher.Flush()

		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-r.Context().Done():
				return
			case f, ok := <-ch:
				if !ok {
					return
				}
				if err := writeSSE(w, f.Event, f.Data); err != nil {
					return
				}
				flusher.Flush()
				metricSSEEventsSent.Add(room.Name, 1)
			case <-ticker.C:
				ping := fmt.Sprintf(`{"type":"ping","data":{"ts":%d}}`, time.Now().UnixMilli())
				if err := writeSSE(w, "ping", []byte(ping)); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
