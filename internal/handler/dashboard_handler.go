package handler

import (
	"time"

	"go-stockcredit/internal/middleware"
	"go-stockcredit/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	reports service.ReportService
}

func NewDashboardHandler(reports service.ReportService) *DashboardHandler {
	return &DashboardHandler{reports: reports}
}

// GetStats returns the company overview
// GET /api/v1/dashboard/stats
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user.CompanyID == nil {
		return c.Status(403).JSON(fiber.Map{"error": "No company context"})
	}

	stats, err := h.reports.GetDashboardStats(*user.CompanyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// GetMonthly returns income vs expenses for one calendar month. The month
// defaults to the current one and can be pinned with ?month=2026-08.
// GET /api/v1/dashboard/monthly
func (h *DashboardHandler) GetMonthly(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user.CompanyID == nil {
		return c.Status(403).JSON(fiber.Map{"error": "No company context"})
	}

	ref := time.Now()
	if raw := c.Query("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid month, expected YYYY-MM"})
		}
		ref = parsed
	}

	summary, err := h.reports.GetMonthlySummary(*user.CompanyID, ref)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
