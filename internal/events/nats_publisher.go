package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

// NATSPublisher forwards events to a JetStream stream so other services
// can follow the audit trail.
type NATSPublisher struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	stream string
	logger *zap.Logger
}

// NewNATSPublisher connects to url and makes sure the stream exists.
// Subjects are "<stream lower-cased>.<event type>.<entity type>".
func NewNATSPublisher(ctx context.Context, url, stream string, logger *zap.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("callcenter-service"))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}
	prefix := strings.ToLower(stream)
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     stream,
		Subjects: []string{prefix + ".>"},
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ensure stream %s: %w", stream, err)
	}
	logger.Info("connected to nats", zap.String("url", url), zap.String("stream", stream))
	return &NATSPublisher{conn: conn, js: js, stream: stream, logger: logger}, nil
}

// Subject returns the subject an event is published on.
func (p *NATSPublisher) Subject(event Event) string {
	return strings.ToLower(p.stream) + "." + string(event.Type) + "." + string(event.EntityType)
}

// Handle is an EventHandler publishing the event as JSON.
func (p *NATSPublisher) Handle(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if _, err := p.js.Publish(ctx, p.Subject(event), payload, jetstream.WithMsgID(event.ID)); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Register subscribes the publisher to every event type.
func (p *NATSPublisher) Register(dispatcher Dispatcher) {
	for _, t := range []EventType{EventHistoryRecorded, EventContactConverted, EventBulkAssignment} {
		dispatcher.Subscribe(t, p.Handle)
	}
}

// Close drains the connection.
func (p *NATSPublisher) Close() {
	if p != nil && p.conn != nil {
		_ = p.conn.Drain()
	}
}
