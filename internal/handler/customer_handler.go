package handler

import (
	"time"

	"go-stockcredit/internal/middleware"
	"go-stockcredit/internal/model"
	"go-stockcredit/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CustomerHandler struct {
	credit service.CreditService
}

func NewCustomerHandler(credit service.CreditService) *CustomerHandler {
	return &CustomerHandler{credit: credit}
}

// CustomerOrderRequest is the body of POST /customers/:id/orders
type CustomerOrderRequest struct {
	ProductID uuid.UUID  `json:"product_id"`
	Quantity  int        `json:"quantity"`
	OrderDate *time.Time `json:"order_date"`
}

// CustomerPaymentRequest is the body of POST /customers/:id/payments
type CustomerPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate *time.Time      `json:"payment_date"`
	Description string          `json:"description"`
}

// GetCustomers lists the caller's customer book
// GET /api/v1/customers
func (h *CustomerHandler) GetCustomers(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	customers, err := h.credit.GetCustomers(user.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(customers)
}

// CreateCustomer adds a credit-sale counterparty
// POST /api/v1/customers
func (h *CustomerHandler) CreateCustomer(c *fiber.Ctx) error {
	var customer model.Customer
	if err := c.BodyParser(&customer); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.credit.CreateCustomer(middleware.CurrentUser(c), &customer); err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Customer created", "data": customer})
}

// GetCustomer fetches one customer with balances
// GET /api/v1/customers/:id
func (h *CustomerHandler) GetCustomer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid customer ID"})
	}

	user := middleware.CurrentUser(c)
	customer, err := h.credit.GetCustomer(user.ID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(customer)
}

// GetCustomerOrders lists a customer's credit sales
// GET /api/v1/customers/:id/orders
func (h *CustomerHandler) GetCustomerOrders(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid customer ID"})
	}

	user := middleware.CurrentUser(c)
	orders, err := h.credit.GetCustomerOrders(user.ID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// CreateCustomerOrder records a credit sale
// POST /api/v1/customers/:id/orders
func (h *CustomerHandler) CreateCustomerOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid customer ID"})
	}

	var req CustomerOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	orderDate := time.Time{}
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	order, err := h.credit.CreateCustomerOrder(middleware.CurrentUser(c), id, req.ProductID, req.Quantity, orderDate)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Customer order created", "data": order})
}

// GetCustomerPayments lists a customer's payments
// GET /api/v1/customers/:id/payments
func (h *CustomerHandler) GetCustomerPayments(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid customer ID"})
	}

	user := middleware.CurrentUser(c)
	payments, err := h.credit.GetCustomerPayments(user.ID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(payments)
}

// CreateCustomerPayment records a payment and allocates it FIFO
// POST /api/v1/customers/:id/payments
func (h *CustomerHandler) CreateCustomerPayment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid customer ID"})
	}

	var req CustomerPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	paymentDate := time.Time{}
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	payment, customer, allocations, err := h.credit.RecordCustomerPayment(
		middleware.CurrentUser(c), id, req.Amount, paymentDate, req.Description)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":     "Payment recorded",
		"payment":     payment,
		"customer":    customer,
		"allocations": allocations,
	})
}
