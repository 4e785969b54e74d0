package dto

import (
	"time"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// ContactResponse is a contact with its phone formatted for display.
type ContactResponse struct {
	*domain.Contact
	PhoneDisplay string `json:"phoneDisplay"`
}

// NewContactResponse returns nil for a nil contact.
func NewContactResponse(c *domain.Contact) *ContactResponse {
	if c == nil {
		return nil
	}
	return &ContactResponse{Contact: c, PhoneDisplay: domain.FormatPhoneDisplay(c.Phone)}
}

// NewContactResponses maps a contact list.
func NewContactResponses(contacts []*domain.Contact) []*ContactResponse {
	out := make([]*ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, NewContactResponse(c))
	}
	return out
}

// CreateContactRequest payload for contact creation.
type CreateContactRequest struct {
	Phone                    string  `json:"phone" validate:"required"`
	Name                     string  `json:"name" validate:"max=200"`
	Email                    string  `json:"email" validate:"omitempty,email"`
	Address                  string  `json:"address"`
	PostalCode               string  `json:"postalCode"`
	City                     string  `json:"city"`
	StatusID                 *string `json:"statusId"`
	AssignedToTelephonisteID *string `json:"assignedToTelephonisteId"`
}

// UpdateContactRequest payload for contact edits.
type UpdateContactRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=200"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Address    *string `json:"address"`
	PostalCode *string `json:"postalCode"`
	City       *string `json:"city"`
}

// UpdateStatusRequest payload for a status change.
type UpdateStatusRequest struct {
	StatusID string `json:"statusId" validate:"required"`
	Note     string `json:"note"`
}

// CallLogRequest payload for a logged call.
type CallLogRequest struct {
	CallSid   string `json:"callSid" validate:"required"`
	Direction string `json:"direction" validate:"omitempty,oneof=inbound outbound"`
	Duration  int    `json:"duration" validate:"gte=0"`
	Status    string `json:"status" validate:"required"`
}

// NoteRequest payload for a note.
type NoteRequest struct {
	Content string `json:"content" validate:"required"`
}

// ConvertRequest payload for converting a contact into a reservation.
type ConvertRequest struct {
	Date              time.Time `json:"date" validate:"required"`
	AssignedToAgentID string    `json:"assignedToAgentId" validate:"required"`
	Notes             string    `json:"notes"`
}

// BulkAssignRequest payload for bulk assignment.
type BulkAssignRequest struct {
	ContactIDs     []string `json:"contactIds" validate:"required,min=1,dive,required"`
	TelephonisteID string   `json:"telephonisteId" validate:"required"`
}

// BulkUnassignRequest payload for bulk unassignment.
type BulkUnassignRequest struct {
	ContactIDs []string `json:"contactIds" validate:"required,min=1,dive,required"`
}

// Pagination describes a paged list.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination computes the page count.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// StatusRequest payload for status creation.
type StatusRequest struct {
	Name                string `json:"name" validate:"required,max=100"`
	Code                string `json:"code" validate:"required,max=50"`
	Color               string `json:"color" validate:"required,hexcolor"`
	Order               int    `json:"order" validate:"gte=0"`
	ExcludeFromCallList bool   `json:"excludeFromCallList"`
}

// UpdateStatusDefinitionRequest payload for status edits.
type UpdateStatusDefinitionRequest struct {
	Name                *string `json:"name" validate:"omitempty,max=100"`
	Color               *string `json:"color" validate:"omitempty,hexcolor"`
	Order               *int    `json:"order" validate:"omitempty,gte=0"`
	ExcludeFromCallList *bool   `json:"excludeFromCallList"`
}

// ReservationStatusRequest payload for a reservation status change.
type ReservationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled confirmed completed cancelled no_show"`
}
