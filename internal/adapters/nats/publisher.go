package natsadapter

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/hotelmap/internal/core/domain"
)

const (
	selectionStream = "HOTELMAP_SELECTIONS"
	subjectPrefix   = "hotelmap.selection."
)

// SelectionSubjects matches every session's selection events.
const SelectionSubjects = subjectPrefix + ">"

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      selectionStream,
		Subjects:  []string{SelectionSubjects},
		Retention: nats.LimitsPolicy,
		MaxAge:    1 * time.Hour,
		Storage:   nats.MemoryStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishSelection publishes the view on the session's selection subject.
func (p *Publisher) PublishSelection(ctx context.Context, view *domain.MapView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SelectionSubject(view.Selection.Session), data, nats.Context(ctx))
	return err
}

// Conn exposes the underlying connection for subscribers sharing it.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// SelectionSubject returns the subject for a session. The session is hex encoded
// so every session gets its own token and none can contain subject wildcards.
func SelectionSubject(session string) string {
	if session == "" {
		session = "default"
	}
	return subjectPrefix + hex.EncodeToString([]byte(session))
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("hotelmap"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
