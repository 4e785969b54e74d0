package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/callcenter-service/internal/api/dto"
	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/service"
)

// StatusesHandler manages the contact status table.
type StatusesHandler struct {
	statuses *service.StatusService
}

// NewStatusesHandler constructs handler.
func NewStatusesHandler(statuses *service.StatusService) *StatusesHandler {
	return &StatusesHandler{statuses: statuses}
}

// List GET /contact-statuses.
func (h *StatusesHandler) List(c *fiber.Ctx) error {
	list, err := h.statuses.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": list})
}

// Create POST /contact-statuses.
func (h *StatusesHandler) Create(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.StatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	status, err := h.statuses.Create(c.UserContext(), p, service.StatusInput{
		Name:                req.Name,
		Code:                req.Code,
		Color:               req.Color,
		Order:               req.Order,
		ExcludeFromCallList: req.ExcludeFromCallList,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": status})
}

// Update PATCH /contact-statuses/:id.
func (h *StatusesHandler) Update(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusDefinitionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	status, err := h.statuses.Update(c.UserContext(), p, c.Params("id"), service.StatusUpdateInput{
		Name:                req.Name,
		Color:               req.Color,
		Order:               req.Order,
		ExcludeFromCallList: req.ExcludeFromCallList,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": status})
}

// Delete DELETE /contact-statuses/:id.
func (h *StatusesHandler) Delete(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.statuses.Delete(c.UserContext(), p, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
