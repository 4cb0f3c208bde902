package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/hotelmap/internal/core/domain"
	"github.com/samirrijal/hotelmap/internal/pkg/metrics"
)

// wsMessage is sent from client to select a point or manage the live feed.
type wsMessage struct {
	Action  string   `json:"action"`  // "select" | "subscribe" | "unsubscribe"
	Lat     *float64 `json:"lat"`     // select only
	Lon     *float64 `json:"lon"`     // select only
	Session string   `json:"session"` // overrides the session given on connect
}

// wsReply is every frame the server sends.
type wsReply struct {
	Type    string          `json:"type"` // "view" | "selection" | "status" | "error"
	View    *domain.MapView `json:"view,omitempty"`
	Status  string          `json:"status,omitempty"`
	Session string          `json:"session,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// wsClient is the per-connection state behind the read loop.
type wsClient struct {
	deps    *Dependencies
	session string
	write   func(v interface{}) error

	unsubscribe func()
}

// handle processes one client frame.
func (w *wsClient) handle(ctx context.Context, raw []byte) {
	var m wsMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		_ = w.write(wsReply{Type: "error", Error: "invalid JSON"})
		return
	}

	session := w.session
	if m.Session != "" {
		session = m.Session
	}

	switch m.Action {
	case "select":
		if m.Lat == nil || m.Lon == nil {
			_ = w.write(wsReply{Type: "error", Error: "lat and lon are required"})
			return
		}
		view, err := w.deps.Selections.Select(ctx, session, domain.GeoPoint{Lat: *m.Lat, Lon: *m.Lon}, "websocket")
		if err != nil {
			_ = w.write(wsReply{Type: "error", Error: err.Error()})
			return
		}
		_ = w.write(wsReply{Type: "view", View: view})

	case "subscribe":
		if w.deps.Feed == nil {
			_ = w.write(wsReply{Type: "error", Error: "live updates unavailable"})
			return
		}
		if w.unsubscribe != nil {
			w.unsubscribe()
			w.unsubscribe = nil
		}
		unsub, err := w.deps.Feed.SubscribeSelections(session, func(view *domain.MapView) {
			_ = w.write(wsReply{Type: "selection", View: view})
		})
		if err != nil {
			_ = w.write(wsReply{Type: "error", Error: "subscribe failed: " + err.Error()})
			return
		}
		w.unsubscribe = unsub
		_ = w.write(wsReply{Type: "status", Status: "subscribed", Session: session})

	case "unsubscribe":
		if w.unsubscribe == nil {
			_ = w.write(wsReply{Type: "error", Error: "not subscribed"})
			return
		}
		w.unsubscribe()
		w.unsubscribe = nil
		_ = w.write(wsReply{Type: "status", Status: "unsubscribed", Session: session})

	default:
		_ = w.write(wsReply{Type: "error", Error: "unknown action: " + m.Action})
	}
}

func (w *wsClient) close() {
	if w.unsubscribe != nil {
		w.unsubscribe()
		w.unsubscribe = nil
	}
}

// WebSocketHandler returns a handler that accepts map clicks over a socket
// and relays selection events from NATS to the client.
// Clients send JSON: {"action":"select","lat":55.75,"lon":37.61} or {"action":"subscribe"}.
// The session is taken from ?session= on connect unless a message names one.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		client := &wsClient{
			deps:    deps,
			session: c.Query("session"),
			// Helper: thread-safe write
			write: func(v interface{}) error {
				data, err := json.Marshal(v)
				if err != nil {
					return err
				}
				mu.Lock()
				defer mu.Unlock()
				return c.WriteMessage(websocket.TextMessage, data)
			},
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		ctx := context.Background()
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}
			client.handle(ctx, msg)
		}

		// Cleanup
		close(done)
		client.close()
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
