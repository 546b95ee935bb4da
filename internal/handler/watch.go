package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// changeMessage is one frame of the watch stream. It names the topic whose
// query result may have changed; it never carries data. Clients re-fetch a
// full snapshot, so frames may be coalesced or arrive spuriously.
type changeMessage struct {
	Topic string `json:"topic"`
}

const (
	watchWriteTimeout = 10 * time.Second
	watchPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS middleware for the REST
	// surface; the watch stream carries no data, only change signals.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Watch handles GET /api/watch?topic=...&topic=... — the push binding's
// change stream. The server writes one JSON frame per change notification
// on any subscribed topic. The stream ends when the client disconnects;
// all hub listeners are released on the way out.
func (s *Server) Watch(w http.ResponseWriter, r *http.Request) {
	topics := r.URL.Query()["topic"]
	if len(topics) == 0 {
		writeRequestError(w, "at least one topic query parameter is required")
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}
	defer ws.Close()

	s.watch.WatchOpened()
	defer s.watch.WatchClosed()

	ctx := r.Context()

	// Merge every topic's signal channel into one labeled stream so a
	// single writer goroutine owns the connection.
	changes := make(chan string, len(topics))
	var cancels []func()
	for _, topic := range topics {
		ch, cancel, err := s.hub.Notify(ctx, topic)
		if err != nil {
			break
		}
		cancels = append(cancels, cancel)
		go func(topic string, ch <-chan struct{}) {
			for range ch {
				select {
				case changes <- topic:
				case <-ctx.Done():
					return
				}
			}
		}(topic, ch)
	}
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	// Reader: the client sends nothing meaningful, but reading is what
	// detects disconnects and answers pings.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pings := time.NewTicker(watchPingInterval)
	defer pings.Stop()

	for {
		select {
		case topic := <-changes:
			ws.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
			if err := ws.WriteJSON(changeMessage{Topic: topic}); err != nil {
				slog.Debug("watch write failed", "error", err)
				return
			}
		case <-pings.C:
			ws.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}
