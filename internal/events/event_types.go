package events

import (
	"time"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventHistoryRecorded  EventType = "history.recorded"
	EventContactConverted EventType = "contact.converted"
	EventBulkAssignment   EventType = "contacts.bulk_assignment"
)

// Actor identifies who caused an event. UserID is nil for system changes.
type Actor struct {
	UserID *string `json:"user_id,omitempty"`
	Name   string  `json:"name,omitempty"`
}

// Event represents a domain event emitted after a committed mutation.
type Event struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	EntityType domain.EntityType `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	Actor      Actor             `json:"actor"`
	Timestamp  time.Time         `json:"timestamp"`
	Payload    any               `json:"payload"`
}

// ContactConvertedPayload payload.
type ContactConvertedPayload struct {
	ReservationID string    `json:"reservation_id"`
	AgentID       string    `json:"agent_id"`
	Date          time.Time `json:"date"`
}

// BulkAssignmentPayload payload.
type BulkAssignmentPayload struct {
	Action         domain.AssignmentAction `json:"action"`
	TelephonisteID *string                 `json:"telephoniste_id,omitempty"`
	Succeeded      int                     `json:"succeeded"`
	Failed         int                     `json:"failed"`
}
