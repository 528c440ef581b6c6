package handler

import (
	"time"

	"go-stockcredit/internal/middleware"
	"go-stockcredit/internal/model"
	"go-stockcredit/internal/repository"
	"go-stockcredit/internal/service"
	"go-stockcredit/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type FinanceHandler struct {
	credit      service.CreditService
	financeRepo repository.FinanceRepository
}

func NewFinanceHandler(credit service.CreditService, financeRepo repository.FinanceRepository) *FinanceHandler {
	return &FinanceHandler{credit: credit, financeRepo: financeRepo}
}

// CreditPaymentRequest is the body of POST /payments
type CreditPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate *time.Time      `json:"payment_date"`
	Description string          `json:"description"`
}

// CreditLimitRequest is the body of PUT /users/:id/credit-limit
type CreditLimitRequest struct {
	CreditLimit decimal.Decimal `json:"credit_limit"`
	Description string          `json:"description"`
}

// ExpenseRequest is the body of POST /expenses
type ExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"money_gt0"`
	Description string          `json:"description"`
	ExpenseDate *time.Time      `json:"expense_date"`
	ReceiptURL  string          `json:"receipt_url"`
}

// CreatePayment records an incoming payment, paying down the caller's
// purchase credit first
// POST /api/v1/payments
func (h *FinanceHandler) CreatePayment(c *fiber.Ctx) error {
	var req CreditPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	paymentDate := time.Time{}
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	payment, payoff, err := h.credit.ApplyCreditPayment(middleware.CurrentUser(c), req.Amount, paymentDate, req.Description)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{
		"message":       "Payment recorded",
		"data":          payment,
		"credit_payoff": payoff,
	})
}

// GetPayments lists the company's payment records
// GET /api/v1/payments
func (h *FinanceHandler) GetPayments(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user.CompanyID == nil {
		return c.Status(403).JSON(fiber.Map{"error": "No company context"})
	}
	payments, err := h.financeRepo.FindPayments(*user.CompanyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(payments)
}

// CreateExpense records an outgoing expense
// POST /api/v1/expenses
func (h *FinanceHandler) CreateExpense(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user.CompanyID == nil {
		return c.Status(403).JSON(fiber.Map{"error": "No company context"})
	}

	var req ExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(&req); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Amount must be positive", "kind": "InvalidAmount"})
	}

	expenseDate := time.Now()
	if req.ExpenseDate != nil {
		expenseDate = *req.ExpenseDate
	}

	expense := &model.Expense{
		CompanyID:   *user.CompanyID,
		UserID:      user.ID,
		Amount:      req.Amount,
		Description: req.Description,
		ExpenseDate: expenseDate,
		ReceiptURL:  req.ReceiptURL,
	}
	expense.CreatedBy = user.ID.String()
	expense.UpdatedBy = user.ID.String()

	if err := h.financeRepo.CreateExpense(expense); err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Expense recorded", "data": expense})
}

// GetExpenses lists the company's expense records
// GET /api/v1/expenses
func (h *FinanceHandler) GetExpenses(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user.CompanyID == nil {
		return c.Status(403).JSON(fiber.Map{"error": "No company context"})
	}
	expenses, err := h.financeRepo.FindExpenses(*user.CompanyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(expenses)
}

// SetCreditLimit updates a user's purchase credit ceiling
// PUT /api/v1/users/:id/credit-limit
func (h *FinanceHandler) SetCreditLimit(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var req CreditLimitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	user, err := h.credit.SetCreditLimit(middleware.CurrentUser(c), id, req.CreditLimit, req.Description)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Credit limit updated", "data": user.ToResponse()})
}

// GetCreditTransactions lists the caller's credit audit trail
// GET /api/v1/credit-transactions
func (h *FinanceHandler) GetCreditTransactions(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	txs, err := h.credit.GetCreditTransactions(user.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(txs)
}
