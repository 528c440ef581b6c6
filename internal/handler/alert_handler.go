package handler

import (
	"go-stockcredit/internal/middleware"
	"go-stockcredit/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AlertHandler struct {
	alerts service.AlertService
}

func NewAlertHandler(alerts service.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// GetAlerts lists stock alerts, most severe first
// GET /api/v1/stock-alerts?include_resolved=true
func (h *AlertHandler) GetAlerts(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user.CompanyID == nil {
		return c.Status(403).JSON(fiber.Map{"error": "No company context"})
	}

	includeResolved := c.QueryBool("include_resolved", false)
	alerts, err := h.alerts.ListCompany(*user.CompanyID, includeResolved)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(alerts)
}

// Sweep re-evaluates alert state for every product of the company. Meant to
// be hit by an external periodic trigger.
// POST /api/v1/stock-alerts/sweep
func (h *AlertHandler) Sweep(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user.CompanyID == nil {
		return c.Status(403).JSON(fiber.Map{"error": "No company context"})
	}

	active, err := h.alerts.Sweep(*user.CompanyID, user.ID.String())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Sweep complete", "active_alerts": active})
}
