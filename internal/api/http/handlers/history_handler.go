package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/history"
	"github.com/spec-kit/callcenter-service/internal/service"
)

// HistoryHandler serves the audit trail.
type HistoryHandler struct {
	history *service.HistoryService
}

// NewHistoryHandler constructs handler.
func NewHistoryHandler(historyService *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: historyService}
}

// ForDocument GET /history/:model/:id.
func (h *HistoryHandler) ForDocument(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	q, err := historyQuery(c)
	if err != nil {
		return err
	}
	entries, err := h.history.ForDocument(c.UserContext(), p, c.Params("model"), c.Params("id"), q)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"documentId": c.Params("id"),
		"model":      c.Params("model"),
		"history":    entries,
		"total":      len(entries),
	})
}

// ForUser GET /history/user/:userId.
func (h *HistoryHandler) ForUser(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	q, err := historyQuery(c)
	if err != nil {
		return err
	}
	entries, err := h.history.ForActor(c.UserContext(), p, c.Params("userId"), q)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"userId":  c.Params("userId"),
		"history": entries,
		"total":   len(entries),
	})
}

// Recent GET /history/recent.
func (h *HistoryHandler) Recent(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	from, err := queryTime(c, "dateFrom")
	if err != nil {
		return err
	}
	entries, err := h.history.Recent(c.UserContext(), p, history.RecentQuery{
		Limit:  queryInt(c, "limit", 0),
		Action: domain.HistoryAction(c.Query("action")),
		From:   from,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"history": entries, "total": len(entries)})
}
