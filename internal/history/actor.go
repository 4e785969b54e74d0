package history

import "github.com/spec-kit/callcenter-service/internal/domain"

// ActorContext attributes a mutation. It is passed explicitly to every
// engine call and never stored on the record.
type ActorContext struct {
	ActorID  *string
	Snapshot *domain.UserSnapshot
	Metadata *domain.HistoryMetadata
}

// NewActor builds the context for an authenticated user.
func NewActor(user *domain.User, meta *domain.HistoryMetadata) ActorContext {
	if user == nil {
		return ActorContext{Metadata: meta}
	}
	id := user.ID
	return ActorContext{ActorID: &id, Snapshot: user.Snapshot(), Metadata: meta}
}

// SystemActor is used for seeds and other unattributed changes.
func SystemActor() ActorContext {
	return ActorContext{}
}

// IsSystem reports whether no user is attached.
func (a ActorContext) IsSystem() bool {
	return a.ActorID == nil
}

// ID returns the actor id or an empty string for the system.
func (a ActorContext) ID() string {
	if a.ActorID == nil {
		return ""
	}
	return *a.ActorID
}
