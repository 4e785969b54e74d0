package domain

import "time"

// AssignmentAction tags an assignment log entry.
type AssignmentAction string

const (
	AssignmentAssigned   AssignmentAction = "assigned"
	AssignmentUnassigned AssignmentAction = "unassigned"
	AssignmentMoved      AssignmentAction = "moved"
)

// CallDirection differentiates inbound vs outbound calls.
type CallDirection string

const (
	CallInbound  CallDirection = "inbound"
	CallOutbound CallDirection = "outbound"
)

// StatusChange is one entry of a contact's status log.
type StatusChange struct {
	StatusID  string    `json:"statusId"`
	UpdatedBy *string   `json:"updatedBy"`
	UpdatedAt time.Time `json:"updatedAt"`
	Note      string    `json:"note,omitempty"`
}

// AssignmentChange is one entry of a contact's assignment log.
type AssignmentChange struct {
	Action     AssignmentAction `json:"action"`
	FromUserID *string          `json:"fromUserId"`
	ToUserID   *string          `json:"toUserId"`
	AssignedBy *string          `json:"assignedBy"`
	AssignedAt time.Time        `json:"assignedAt"`
}

// CallLogEntry records a single call placed or received.
type CallLogEntry struct {
	CallSid   string        `json:"callSid"`
	Direction CallDirection `json:"direction"`
	Duration  int           `json:"duration"`
	Status    string        `json:"status"`
	CalledBy  *string       `json:"calledBy"`
	CalledAt  time.Time     `json:"calledAt"`
}

// Note is a free-text note attached to a contact or reservation.
type Note struct {
	Content   string    `json:"content"`
	CreatedBy *string   `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Contact is a lead worked by telephonistes.
type Contact struct {
	Tracking

	Phone                    string             `json:"phone" validate:"required,len=10,numeric"`
	Name                     string             `json:"name,omitempty" validate:"max=200"`
	Email                    string             `json:"email,omitempty" validate:"omitempty,email"`
	Address                  string             `json:"address,omitempty"`
	PostalCode               string             `json:"postalCode,omitempty" validate:"omitempty,postalcode_ca"`
	City                     string             `json:"city,omitempty"`
	StatusID                 *string            `json:"statusId"`
	StatusHistory            []StatusChange     `json:"statusHistory"`
	AssignedToTelephonisteID *string            `json:"assignedToTelephonisteId"`
	AssignmentHistory        []AssignmentChange `json:"assignmentHistory"`
	CallHistory              []CallLogEntry     `json:"callHistory"`
	Notes                    []Note             `json:"notes"`
	IsConverted              bool               `json:"isConverted"`
	ConvertedBy              *string            `json:"convertedBy"`
	ConvertedAt              *time.Time         `json:"convertedAt"`
	ReservationID            *string            `json:"reservationId"`
}

// NewContact returns a contact with empty logs.
func NewContact(phone string) *Contact {
	return &Contact{
		Phone:             phone,
		StatusHistory:     []StatusChange{},
		AssignmentHistory: []AssignmentChange{},
		CallHistory:       []CallLogEntry{},
		Notes:             []Note{},
	}
}

func (c *Contact) Kind() EntityType { return EntityContact }

// IsAssignedTo reports whether the contact currently belongs to userID.
func (c *Contact) IsAssignedTo(userID string) bool {
	return c.AssignedToTelephonisteID != nil && *c.AssignedToTelephonisteID == userID
}

// WorkedBy reports whether userID logged a call or changed the status at or after since.
func (c *Contact) WorkedBy(userID string, since time.Time) bool {
	for _, call := range c.CallHistory {
		if call.CalledBy != nil && *call.CalledBy == userID && !call.CalledAt.Before(since) {
			return true
		}
	}
	for _, change := range c.StatusHistory {
		if change.UpdatedBy != nil && *change.UpdatedBy == userID && !change.UpdatedAt.Before(since) {
			return true
		}
	}
	return false
}

// Activity tallies what one user did on a contact since a point in time.
type Activity struct {
	Calls         int
	StatusChanges int
	Notes         int
	Converted     bool
}

// Any reports whether the user touched the contact at all.
func (a Activity) Any() bool {
	return a.Calls > 0 || a.StatusChanges > 0 || a.Notes > 0 || a.Converted
}

// ActivityBy counts the calls, status changes and notes userID added at or
// after since, and whether userID converted the contact in that window.
func (c *Contact) ActivityBy(userID string, since time.Time) Activity {
	var a Activity
	for _, call := range c.CallHistory {
		if call.CalledBy != nil && *call.CalledBy == userID && !call.CalledAt.Before(since) {
			a.Calls++
		}
	}
	for _, change := range c.StatusHistory {
		if change.UpdatedBy != nil && *change.UpdatedBy == userID && !change.UpdatedAt.Before(since) {
			a.StatusChanges++
		}
	}
	for _, note := range c.Notes {
		if note.CreatedBy != nil && *note.CreatedBy == userID && !note.CreatedAt.Before(since) {
			a.Notes++
		}
	}
	a.Converted = c.IsConverted && c.ConvertedBy != nil && *c.ConvertedBy == userID &&
		c.ConvertedAt != nil && !c.ConvertedAt.Before(since)
	return a
}
