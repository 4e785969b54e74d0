package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/callcenter-service/internal/api/dto"
	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/service"
)

// QueueHandler serves the telephoniste call queue.
type QueueHandler struct {
	queue *service.QueueService
}

// NewQueueHandler constructs handler.
func NewQueueHandler(queue *service.QueueService) *QueueHandler {
	return &QueueHandler{queue: queue}
}

// Next GET /telephoniste/contacts/random. An empty queue answers 200 with a
// null contact.
func (h *QueueHandler) Next(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	result, err := h.queue.NextContact(c.UserContext(), p)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"contact":        dto.NewContactResponse(result.Contact),
			"totalAvailable": result.TotalAvailable,
		},
	})
}

// ActivityHistory GET /telephoniste/contacts/activity-history.
func (h *QueueHandler) ActivityHistory(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	report, err := h.queue.ActivityToday(c.UserContext(), p)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"stats":    report.Stats,
			"contacts": dto.NewContactResponses(report.Contacts),
		},
	})
}
