package service

import (
	"errors"
	"testing"
	"time"

	"go-stockcredit/internal/apperr"
	"go-stockcredit/internal/model"
	"go-stockcredit/internal/testutil"

	"github.com/shopspring/decimal"
)

func TestCustomerOrderConsumesSellerInventory(t *testing.T) {
	env := newTestEnv(t)
	product := testutil.SeedProduct(t, env.db, env.company, "SKU-1", 25, 100, 0, 0)
	customer := testutil.SeedCustomer(t, env.db, env.employee, "Warung Sari")
	testutil.SeedInventory(t, env.db, env.employee, product, 10)

	order, err := env.credit.CreateCustomerOrder(env.employee, customer.ID, product.ID, 4, time.Time{})
	if err != nil {
		t.Fatalf("CreateCustomerOrder failed: %v", err)
	}

	if !order.TotalAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected total 100, got %s", order.TotalAmount)
	}
	if !order.RemainingAmount.Equal(order.TotalAmount) {
		t.Errorf("Expected remaining == total on a fresh sale, got %s", order.RemainingAmount)
	}

	// The sale draws from the seller's received inventory, not the warehouse.
	if got := env.reloadProduct(t, product.ID).AvailableStock(); got != 100 {
		t.Errorf("Expected warehouse stock untouched at 100, got %d", got)
	}
	var inv model.UserInventory
	env.db.First(&inv, "user_id = ? AND product_id = ?", env.employee.ID, product.ID)
	if inv.QuantityUsed != 4 {
		t.Errorf("Expected 4 used from inventory, got %d", inv.QuantityUsed)
	}

	// Customer balances grew by the sale.
	var c model.Customer
	env.db.First(&c, "id = ?", customer.ID)
	if !c.OutstandingBalance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected outstanding 100, got %s", c.OutstandingBalance)
	}
}

func TestCustomerOrderRejectsInventoryShortage(t *testing.T) {
	env := newTestEnv(t)
	product := testutil.SeedProduct(t, env.db, env.company, "SKU-1", 25, 100, 0, 0)
	customer := testutil.SeedCustomer(t, env.db, env.employee, "Warung Sari")
	testutil.SeedInventory(t, env.db, env.employee, product, 3)

	_, err := env.credit.CreateCustomerOrder(env.employee, customer.ID, product.ID, 5, time.Time{})
	var short *apperr.InsufficientStockError
	if !errors.As(err, &short) {
		t.Fatalf("Expected InsufficientStockError, got %v", err)
	}
	if len(short.Items) != 1 || short.Items[0].Available != 3 || short.Items[0].SKU != "SKU-1" {
		t.Errorf("Bad shortage detail: %+v", short.Items)
	}

	// No partial effects.
	var c model.Customer
	env.db.First(&c, "id = ?", customer.ID)
	if !c.OutstandingBalance.IsZero() {
		t.Errorf("Expected outstanding 0 after failed sale, got %s", c.OutstandingBalance)
	}
}

func TestPaymentAllocatesFIFO(t *testing.T) {
	env := newTestEnv(t)
	product := testutil.SeedProduct(t, env.db, env.company, "SKU-1", 1, 1000, 0, 0)
	customer := testutil.SeedCustomer(t, env.db, env.employee, "Warung Sari")
	testutil.SeedInventory(t, env.db, env.employee, product, 1000)

	day1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	o1, err := env.credit.CreateCustomerOrder(env.employee, customer.ID, product.ID, 100, day1)
	if err != nil {
		t.Fatalf("First sale failed: %v", err)
	}
	o2, err := env.credit.CreateCustomerOrder(env.employee, customer.ID, product.ID, 50, day2)
	if err != nil {
		t.Fatalf("Second sale failed: %v", err)
	}

	// 120 against 100 + 50: the older order settles in full, 20 spills over.
	_, c, allocations, err := env.credit.RecordCustomerPayment(
		env.employee, customer.ID, decimal.NewFromInt(120), time.Time{}, "partial")
	if err != nil {
		t.Fatalf("RecordCustomerPayment failed: %v", err)
	}

	if len(allocations) != 2 {
		t.Fatalf("Expected 2 allocations, got %d", len(allocations))
	}
	if allocations[0].OrderID != o1.ID || !allocations[0].Applied.Equal(decimal.NewFromInt(100)) || !allocations[0].Settled {
		t.Errorf("Bad first allocation: %+v", allocations[0])
	}
	if allocations[1].OrderID != o2.ID || !allocations[1].Applied.Equal(decimal.NewFromInt(20)) || allocations[1].Settled {
		t.Errorf("Bad second allocation: %+v", allocations[1])
	}

	var first, second model.CustomerOrder
	env.db.First(&first, "id = ?", o1.ID)
	env.db.First(&second, "id = ?", o2.ID)
	if !first.IsPaid || !first.RemainingAmount.IsZero() {
		t.Errorf("Expected first order settled, got paid=%v remaining=%s", first.IsPaid, first.RemainingAmount)
	}
	if second.IsPaid || !second.RemainingAmount.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Expected second order remaining 30, got paid=%v remaining=%s", second.IsPaid, second.RemainingAmount)
	}

	if !c.OutstandingBalance.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Expected outstanding 30, got %s", c.OutstandingBalance)
	}
	if !c.TotalPaid.Equal(decimal.NewFromInt(120)) {
		t.Errorf("Expected total paid 120, got %s", c.TotalPaid)
	}
}

func TestSettledOrdersAreNeverRevisited(t *testing.T) {
	env := newTestEnv(t)
	product := testutil.SeedProduct(t, env.db, env.company, "SKU-1", 1, 1000, 0, 0)
	customer := testutil.SeedCustomer(t, env.db, env.employee, "Warung Sari")
	testutil.SeedInventory(t, env.db, env.employee, product, 1000)

	day1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	o1, _ := env.credit.CreateCustomerOrder(env.employee, customer.ID, product.ID, 100, day1)
	o2, _ := env.credit.CreateCustomerOrder(env.employee, customer.ID, product.ID, 50, day2)

	if _, _, _, err := env.credit.RecordCustomerPayment(
		env.employee, customer.ID, decimal.NewFromInt(100), time.Time{}, "settle first"); err != nil {
		t.Fatalf("First payment failed: %v", err)
	}

	// The second payment must land entirely on the second order.
	_, _, allocations, err := env.credit.RecordCustomerPayment(
		env.employee, customer.ID, decimal.NewFromInt(50), time.Time{}, "settle second")
	if err != nil {
		t.Fatalf("Second payment failed: %v", err)
	}
	if len(allocations) != 1 || allocations[0].OrderID != o2.ID {
		t.Fatalf("Expected single allocation on second order, got %+v", allocations)
	}

	var first model.CustomerOrder
	env.db.First(&first, "id = ?", o1.ID)
	if !first.PaidAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected first order paid amount to stay 100, got %s", first.PaidAmount)
	}
}

func TestPaymentMustNotExceedOutstanding(t *testing.T) {
	env := newTestEnv(t)
	product := testutil.SeedProduct(t, env.db, env.company, "SKU-1", 1, 1000, 0, 0)
	customer := testutil.SeedCustomer(t, env.db, env.employee, "Warung Sari")
	testutil.SeedInventory(t, env.db, env.employee, product, 1000)

	if _, err := env.credit.CreateCustomerOrder(env.employee, customer.ID, product.ID, 100, time.Time{}); err != nil {
		t.Fatalf("Sale failed: %v", err)
	}

	_, _, _, err := env.credit.RecordCustomerPayment(
		env.employee, customer.ID, decimal.NewFromInt(101), time.Time{}, "too much")
	if !errors.Is(err, apperr.ErrInvalidAmount) {
		t.Fatalf("Expected ErrInvalidAmount, got %v", err)
	}

	_, _, _, err = env.credit.RecordCustomerPayment(
		env.employee, customer.ID, decimal.Zero, time.Time{}, "nothing")
	if !errors.Is(err, apperr.ErrInvalidAmount) {
		t.Fatalf("Expected ErrInvalidAmount for zero payment, got %v", err)
	}
}

func TestCustomersAreOwnerScoped(t *testing.T) {
	env := newTestEnv(t)
	customer := testutil.SeedCustomer(t, env.db, env.employee, "Warung Sari")

	colleague := testutil.SeedUser(t, env.db, env.company, "colleague@acme.test", model.RoleUser, 0)
	if _, err := env.credit.GetCustomer(colleague.ID, customer.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for someone else's customer, got %v", err)
	}
	if _, err := env.credit.GetCustomer(env.employee.ID, customer.ID); err != nil {
		t.Errorf("Expected owner lookup to succeed, got %v", err)
	}
}

func TestSetCreditLimit(t *testing.T) {
	env := newTestEnv(t)

	updated, err := env.credit.SetCreditLimit(env.director, env.employee.ID, decimal.NewFromInt(5000), "raise")
	if err != nil {
		t.Fatalf("SetCreditLimit failed: %v", err)
	}
	if !updated.CreditLimit.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("Expected limit 5000, got %s", updated.CreditLimit)
	}

	var count int64
	env.db.Model(&model.CreditTransaction{}).
		Where("user_id = ? AND type = ?", env.employee.ID, model.CreditGranted).
		Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 GRANTED credit transaction, got %d", count)
	}

	// Employees cannot grant, directors cannot reach other tenants.
	if _, err := env.credit.SetCreditLimit(env.employee, env.employee.ID, decimal.NewFromInt(1), ""); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for employee, got %v", err)
	}
	other := testutil.SeedCompany(t, env.db, "rival")
	otherDirector := testutil.SeedUser(t, env.db, other, "director@rival.test", model.RoleDirector, 0)
	if _, err := env.credit.SetCreditLimit(otherDirector, env.employee.ID, decimal.NewFromInt(1), ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound across tenants, got %v", err)
	}
	if _, err := env.credit.SetCreditLimit(env.director, env.employee.ID, decimal.NewFromInt(-1), ""); !errors.Is(err, apperr.ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount for negative limit, got %v", err)
	}
}

func TestApplyCreditPaymentSplitsPayoff(t *testing.T) {
	env := newTestEnv(t)
	product := testutil.SeedProduct(t, env.db, env.company, "SKU-1", 50, 100, 0, 0)

	// Reserve 200 of credit through an order.
	if _, err := env.orders.CreateOrder(env.employee, []OrderItemInput{
		{ProductID: product.ID, Quantity: 4},
	}, ""); err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	// Pay 250: 200 retires the debt, 50 is a plain payment.
	payment, payoff, err := env.credit.ApplyCreditPayment(env.employee, decimal.NewFromInt(250), time.Time{}, "monthly settle")
	if err != nil {
		t.Fatalf("ApplyCreditPayment failed: %v", err)
	}
	if !payoff.Equal(decimal.NewFromInt(200)) {
		t.Errorf("Expected payoff 200, got %s", payoff)
	}
	if !payment.Amount.Equal(decimal.NewFromInt(250)) {
		t.Errorf("Expected payment row over the full 250, got %s", payment.Amount)
	}

	user := env.reloadUser(t, env.employee.ID)
	if !user.CreditUsed.IsZero() {
		t.Errorf("Expected credit used 0 after payoff, got %s", user.CreditUsed)
	}

	var count int64
	env.db.Model(&model.CreditTransaction{}).
		Where("user_id = ? AND type = ?", env.employee.ID, model.CreditPayment).
		Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 CREDIT_PAYMENT transaction, got %d", count)
	}
}
