package domain

import "time"

// ReservationStatus enumerates appointment lifecycle states.
type ReservationStatus string

const (
	ReservationScheduled ReservationStatus = "scheduled"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationNoShow    ReservationStatus = "no_show"
)

// Valid reports whether s is a known reservation status.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationScheduled, ReservationConfirmed, ReservationCompleted, ReservationCancelled, ReservationNoShow:
		return true
	}
	return false
}

// CustomerInfo is the contact data frozen at conversion time.
type CustomerInfo struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email,omitempty"`
	Address    string `json:"address,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	City       string `json:"city,omitempty"`
}

// Reservation is an appointment booked for a field agent.
type Reservation struct {
	Tracking

	ContactID         string            `json:"contactId" validate:"required"`
	Date              time.Time         `json:"date" validate:"required"`
	AssignedToAgentID string            `json:"assignedToAgentId" validate:"required"`
	Status            ReservationStatus `json:"status" validate:"required"`
	CustomerInfo      CustomerInfo      `json:"customerInfo"`
	Notes             []Note            `json:"notes"`
}

func (r *Reservation) Kind() EntityType { return EntityReservation }

// FreezeCustomerInfo copies the contact's current details.
func FreezeCustomerInfo(c *Contact) CustomerInfo {
	name := c.Name
	if name == "" {
		name = "Unknown"
	}
	return CustomerInfo{
		Name:       name,
		Phone:      c.Phone,
		Email:      c.Email,
		Address:    c.Address,
		PostalCode: c.PostalCode,
		City:       c.City,
	}
}
