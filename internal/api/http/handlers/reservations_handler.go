package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/callcenter-service/internal/api/dto"
	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/service"
)

// ReservationsHandler serves reservation endpoints.
type ReservationsHandler struct {
	reservations *service.ReservationService
}

// NewReservationsHandler constructs handler.
func NewReservationsHandler(reservations *service.ReservationService) *ReservationsHandler {
	return &ReservationsHandler{reservations: reservations}
}

// Mine GET /agent/reservations.
func (h *ReservationsHandler) Mine(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	list, err := h.reservations.ListMine(c.UserContext(), p, queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": list})
}

// ListByAgent GET /reservations?agentId=.
func (h *ReservationsHandler) ListByAgent(c *fiber.Ctx) error {
	list, err := h.reservations.ListByAgent(c.UserContext(), c.Query("agentId"), queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": list})
}

// Get GET /reservations/:id.
func (h *ReservationsHandler) Get(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	res, err := h.reservations.Get(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": res})
}

// UpdateStatus POST /reservations/:id/status.
func (h *ReservationsHandler) UpdateStatus(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ReservationStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.reservations.UpdateStatus(c.UserContext(), p, c.Params("id"), domain.ReservationStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": res})
}

// AddNote POST /reservations/:id/notes.
func (h *ReservationsHandler) AddNote(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.NoteRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.reservations.AddNote(c.UserContext(), p, c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": res})
}
