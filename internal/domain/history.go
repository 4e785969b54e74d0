package domain

import "time"

// HistoryAction tags a history entry.
type HistoryAction string

const (
	ActionCreate HistoryAction = "create"
	ActionUpdate HistoryAction = "update"
	ActionDelete HistoryAction = "delete"
)

// Valid reports whether a is one of the three known actions.
func (a HistoryAction) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// FieldChange is one modified top-level field of an update.
type FieldChange struct {
	Field    string `json:"field"`
	OldValue any    `json:"oldValue"`
	NewValue any    `json:"newValue"`
}

// UserSnapshot is a point-in-time copy of the acting user.
type UserSnapshot struct {
	ID                     string   `json:"id"`
	Name                   string   `json:"name"`
	Email                  string   `json:"email"`
	IsTelephoniste         bool     `json:"isTelephoniste"`
	IsAdmin                bool     `json:"isAdmin"`
	IsAgent                bool     `json:"isAgent"`
	AdminRoles             []string `json:"adminRoles,omitempty"`
	AgentRoles             []string `json:"agentRoles,omitempty"`
	AdminDirectPermissions []string `json:"adminDirectPermissions,omitempty"`
	AgentDirectPermissions []string `json:"agentDirectPermissions,omitempty"`
}

// HistoryMetadata carries optional request context.
type HistoryMetadata struct {
	IPAddress string `json:"ipAddress,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// HistoryEntry is an immutable audit trail entry.
type HistoryEntry struct {
	EntityType      EntityType       `json:"entityType"`
	EntityID        string           `json:"entityId"`
	Seq             int64            `json:"seq"`
	Action          HistoryAction    `json:"action"`
	Timestamp       time.Time        `json:"timestamp"`
	UserID          *string          `json:"userId,omitempty"`
	UserSnapshot    *UserSnapshot    `json:"userSnapshot,omitempty"`
	Changes         []FieldChange    `json:"changes,omitempty"`
	InitialDocument map[string]any   `json:"initialDocument,omitempty"`
	DeletedDocument map[string]any   `json:"deletedDocument,omitempty"`
	Metadata        *HistoryMetadata `json:"metadata,omitempty"`
}
