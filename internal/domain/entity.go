package domain

import "time"

// EntityType names a kind of trackable record. Values double as the
// external model names used by the history API.
type EntityType string

const (
	EntityContact       EntityType = "contacts"
	EntityContactStatus EntityType = "contact_statuses"
	EntityReservation   EntityType = "reservations"
	EntityUser          EntityType = "users"
	EntityRole          EntityType = "roles"
	EntityAgentProfile  EntityType = "agent_profiles"
)

// EntityTypes lists every trackable entity type.
var EntityTypes = []EntityType{
	EntityContact,
	EntityContactStatus,
	EntityReservation,
	EntityUser,
	EntityRole,
	EntityAgentProfile,
}

// ParseEntityType resolves an external model name.
func ParseEntityType(name string) (EntityType, bool) {
	for _, t := range EntityTypes {
		if string(t) == name {
			return t, true
		}
	}
	return "", false
}

// Tracking holds the identity and audit stamps shared by every trackable record.
type Tracking struct {
	ID        string    `json:"id"`
	CreatedBy *string   `json:"createdBy"`
	UpdatedBy *string   `json:"updatedBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int64     `json:"version"`
}

// Tracked exposes the embedded tracking block.
func (t *Tracking) Tracked() *Tracking {
	return t
}

// Record is implemented by every entity whose mutations are audited.
type Record interface {
	Kind() EntityType
	Tracked() *Tracking
}

// Redactor is implemented by records carrying fields that must never be
// copied into history in clear text.
type Redactor interface {
	RedactedFields() []string
}
