package domain

import "time"

// RecurringPattern describes a repeating availability slot.
type RecurringPattern struct {
	Frequency  string     `json:"frequency" validate:"omitempty,oneof=daily weekly"`
	DaysOfWeek []int      `json:"daysOfWeek,omitempty" validate:"dive,gte=0,lte=6"`
	EndDate    *time.Time `json:"endDate,omitempty"`
}

// AvailabilitySlot is a window during which a field agent accepts reservations.
type AvailabilitySlot struct {
	StartDateTime    time.Time         `json:"startDateTime" validate:"required"`
	EndDateTime      time.Time         `json:"endDateTime" validate:"required,gtfield=StartDateTime"`
	IsRecurring      bool              `json:"isRecurring"`
	RecurringPattern *RecurringPattern `json:"recurringPattern,omitempty"`
}

// AgentProfile holds field-agent scheduling data.
type AgentProfile struct {
	Tracking

	UserID       string             `json:"userId" validate:"required"`
	Availability []AvailabilitySlot `json:"availability" validate:"dive"`
}

func (p *AgentProfile) Kind() EntityType { return EntityAgentProfile }
