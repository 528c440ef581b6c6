package handler

import (
	"go-stockcredit/internal/middleware"
	"go-stockcredit/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CompanyHandler struct {
	users service.UserService
}

func NewCompanyHandler(users service.UserService) *CompanyHandler {
	return &CompanyHandler{users: users}
}

// GetCompanies lists all tenants
// GET /api/v1/admin/companies
func (h *CompanyHandler) GetCompanies(c *fiber.Ctx) error {
	companies, err := h.users.GetCompanies(middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(companies)
}

// CreateCompany creates a tenant together with its first director
// POST /api/v1/admin/companies
func (h *CompanyHandler) CreateCompany(c *fiber.Ctx) error {
	var input service.CreateCompanyInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	company, director, err := h.users.CreateCompanyWithDirector(middleware.CurrentUser(c), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{
		"message":  "Company created",
		"company":  company,
		"director": director.ToResponse(),
	})
}
