package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var calls []string
	d.Subscribe(EventHistoryRecorded, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("fail")
	})
	d.Subscribe(EventHistoryRecorded, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventContactConverted, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventHistoryRecorded}))
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestNATSSubject(t *testing.T) {
	p := &NATSPublisher{stream: "CALLCENTER"}
	subject := p.Subject(Event{Type: EventHistoryRecorded, EntityType: "contacts"})
	assert.Equal(t, "callcenter.history.recorded.contacts", subject)
}
