package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/callcenter-service/internal/api/dto"
	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/service"
)

// ContactsHandler manages contact endpoints.
type ContactsHandler struct {
	contacts    *service.ContactService
	assignments *service.AssignmentService
}

// NewContactsHandler constructs handler.
func NewContactsHandler(contacts *service.ContactService, assignments *service.AssignmentService) *ContactsHandler {
	return &ContactsHandler{contacts: contacts, assignments: assignments}
}

// List GET /contacts.
func (h *ContactsHandler) List(c *fiber.Ctx) error {
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := queryInt(c, "limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}
	filter := service.ContactListFilter{
		IsConverted: queryBool(c, "isConverted"),
		Search:      c.Query("search"),
		Limit:       limit,
		Offset:      (page - 1) * limit,
	}
	if v := c.Query("statusId"); v != "" {
		filter.StatusID = &v
	}
	switch v := c.Query("assignedToTelephonisteId"); v {
	case "":
	case "unassigned":
		filter.Unassigned = true
	default:
		filter.AssignedTo = &v
	}

	contacts, total, err := h.contacts.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":       dto.NewContactResponses(contacts),
		"pagination": dto.NewPagination(page, limit, total),
	})
}

// Create POST /contacts.
func (h *ContactsHandler) Create(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateContactRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	contact, err := h.contacts.Create(c.UserContext(), p, service.ContactCreateInput{
		Phone:                    req.Phone,
		Name:                     req.Name,
		Email:                    req.Email,
		Address:                  req.Address,
		PostalCode:               req.PostalCode,
		City:                     req.City,
		StatusID:                 req.StatusID,
		AssignedToTelephonisteID: req.AssignedToTelephonisteID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewContactResponse(contact)})
}

// Get GET /contacts/:id.
func (h *ContactsHandler) Get(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	contact, err := h.contacts.Get(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewContactResponse(contact)})
}

// Update PATCH /contacts/:id.
func (h *ContactsHandler) Update(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateContactRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	contact, err := h.contacts.Update(c.UserContext(), p, c.Params("id"), service.ContactUpdateInput{
		Name:       req.Name,
		Email:      req.Email,
		Address:    req.Address,
		PostalCode: req.PostalCode,
		City:       req.City,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewContactResponse(contact)})
}

// Delete DELETE /contacts/:id.
func (h *ContactsHandler) Delete(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.contacts.Delete(c.UserContext(), p, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateStatus POST /contacts/:id/status.
func (h *ContactsHandler) UpdateStatus(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	contact, err := h.contacts.UpdateStatus(c.UserContext(), p, c.Params("id"), req.StatusID, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewContactResponse(contact)})
}

// LogCall POST /contacts/:id/call-log.
func (h *ContactsHandler) LogCall(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CallLogRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	contact, err := h.contacts.LogCall(c.UserContext(), p, c.Params("id"), service.LogCallInput{
		CallSid:   req.CallSid,
		Direction: domain.CallDirection(req.Direction),
		Duration:  req.Duration,
		Status:    req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewContactResponse(contact)})
}

// AddNote POST /contacts/:id/notes.
func (h *ContactsHandler) AddNote(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.NoteRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	contact, err := h.contacts.AddNote(c.UserContext(), p, c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewContactResponse(contact)})
}

// Convert POST /contacts/:id/convert.
func (h *ContactsHandler) Convert(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ConvertRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	contact, reservation, err := h.contacts.Convert(c.UserContext(), p, c.Params("id"), service.ConvertInput{
		Date:              req.Date,
		AssignedToAgentID: req.AssignedToAgentID,
		Note:              req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"contact": dto.NewContactResponse(contact), "reservation": reservation},
	})
}

// Assign POST /contacts/assign.
func (h *ContactsHandler) Assign(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.BulkAssignRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.assignments.BulkAssign(c.UserContext(), p, req.ContactIDs, req.TelephonisteID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

// Unassign POST /contacts/unassign.
func (h *ContactsHandler) Unassign(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.BulkUnassignRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.assignments.BulkUnassign(c.UserContext(), p, req.ContactIDs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}
