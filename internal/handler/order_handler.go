package handler

import (
	"go-stockcredit/internal/middleware"
	"go-stockcredit/internal/model"
	"go-stockcredit/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type OrderHandler struct {
	orders service.OrderService
}

func NewOrderHandler(orders service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// CreateOrderRequest is the body of POST /orders
type CreateOrderRequest struct {
	Items []service.OrderItemInput `json:"items"`
	Notes string                   `json:"notes"`
}

// UpdateStatusRequest is the body of PATCH /director/orders
type UpdateStatusRequest struct {
	OrderID uuid.UUID         `json:"order_id"`
	Status  model.OrderStatus `json:"status"`
	Notes   string            `json:"notes"`
}

// ShipRequest is the body of POST /director/orders/:id/ship
type ShipRequest struct {
	Notes string `json:"notes"`
}

// CreateOrder places an internal order request
// POST /api/v1/orders
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.orders.CreateOrder(middleware.CurrentUser(c), req.Items, req.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Order created", "data": order})
}

// GetOrders lists the caller's own orders
// GET /api/v1/orders
func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	orders, err := h.orders.GetUserOrders(user.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// GetOrder fetches one order visible to the caller
// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	order, err := h.orders.GetOrder(middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// GetCompanyOrders lists the company's orders, optionally by status
// GET /api/v1/director/orders?status=PENDING
func (h *OrderHandler) GetCompanyOrders(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user.CompanyID == nil {
		return c.Status(403).JSON(fiber.Map{"error": "No company context"})
	}

	orders, err := h.orders.GetCompanyOrders(*user.CompanyID, model.OrderStatus(c.Query("status")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// UpdateStatus drives the order lifecycle
// PATCH /api/v1/director/orders
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.OrderID == uuid.Nil {
		return c.Status(400).JSON(fiber.Map{"error": "order_id is required"})
	}

	order, err := h.orders.Transition(middleware.CurrentUser(c), req.OrderID, req.Status, req.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order updated", "data": order})
}

// Ship performs the all-or-nothing stock commit for one order
// POST /api/v1/director/orders/:id/ship
func (h *OrderHandler) Ship(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	var req ShipRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, movements, err := h.orders.Ship(middleware.CurrentUser(c), id, req.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":   "Order shipped",
		"data":      order,
		"movements": movements,
	})
}
