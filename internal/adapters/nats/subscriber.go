package natsadapter

import (
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/hotelmap/internal/core/domain"
)

// Subscriber relays selection events to in-process handlers.
type Subscriber struct {
	conn *nats.Conn
}

// NewSubscriber wraps an existing connection; it does not own it.
func NewSubscriber(conn *nats.Conn) *Subscriber {
	return &Subscriber{conn: conn}
}

// SubscribeSelections calls handler for every selection published for session.
// An empty session subscribes to all sessions. The returned func unsubscribes.
func (s *Subscriber) SubscribeSelections(session string, handler func(view *domain.MapView)) (func(), error) {
	subject := SelectionSubjects
	if session != "" {
		subject = SelectionSubject(session)
	}

	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		var view domain.MapView
		if err := json.Unmarshal(msg.Data, &view); err != nil {
			slog.Warn("discarding malformed selection event", "subject", msg.Subject, "error", err)
			return
		}
		if session != "" && view.Selection.Session != session {
			return
		}
		handler(&view)
	})
	if err != nil {
		return nil, err
	}
	return func() { _ = sub.Unsubscribe() }, nil
}
