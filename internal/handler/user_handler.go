package handler

import (
	"go-stockcredit/internal/middleware"
	"go-stockcredit/internal/model"
	"go-stockcredit/internal/repository"
	"go-stockcredit/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type UserHandler struct {
	users         service.UserService
	inventoryRepo repository.UserInventoryRepository
}

func NewUserHandler(users service.UserService, inventoryRepo repository.UserInventoryRepository) *UserHandler {
	return &UserHandler{users: users, inventoryRepo: inventoryRepo}
}

// CreateUserRequest is the body of POST /users
type CreateUserRequest struct {
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// GetUsers lists the caller's company members
// GET /api/v1/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.users.GetCompanyUsers(middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, err)
	}

	responses := make([]model.UserResponse, len(users))
	for i, u := range users {
		responses[i] = u.ToResponse()
	}
	return c.JSON(responses)
}

// CreateUser adds an employee to the caller's company
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	user := &model.User{
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
	}
	if err := h.users.CreateUser(middleware.CurrentUser(c), user, req.Password); err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "User created", "data": user.ToResponse()})
}

// UpdateUser edits an employee of the caller's company
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var update model.User
	if err := c.BodyParser(&update); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	user, err := h.users.UpdateUser(middleware.CurrentUser(c), id, &update)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User updated", "data": user.ToResponse()})
}

// DeactivateUser disables an employee's account
// DELETE /api/v1/users/:id
func (h *UserHandler) DeactivateUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	if err := h.users.DeactivateUser(middleware.CurrentUser(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deactivated"})
}

// GetInventory lists what the caller has received through shipped orders
// GET /api/v1/inventory
func (h *UserHandler) GetInventory(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	rows, err := h.inventoryRepo.FindByUser(user.ID)
	if err != nil {
		return respondError(c, err)
	}

	type inventoryRow struct {
		model.UserInventory
		QuantityAvailable int `json:"quantity_available"`
	}
	out := make([]inventoryRow, len(rows))
	for i, r := range rows {
		out[i] = inventoryRow{UserInventory: r, QuantityAvailable: r.QuantityAvailable()}
	}
	return c.JSON(out)
}
