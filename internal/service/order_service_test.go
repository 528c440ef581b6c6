package service

import (
	"errors"
	"testing"

	"go-stockcredit/internal/apperr"
	"go-stockcredit/internal/model"
	"go-stockcredit/internal/testutil"

	"github.com/shopspring/decimal"
)

func TestCreateOrderReservesCredit(t *testing.T) {
	env := newTestEnv(t)
	product := testutil.SeedProduct(t, env.db, env.company, "SKU-1", 50, 20, 5, 0)

	order, err := env.orders.CreateOrder(env.employee, []OrderItemInput{
		{ProductID: product.ID, Quantity: 4},
	}, "first order")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if order.Status != model.OrderPending {
		t.Errorf("Expected PENDING, got %s", order.Status)
	}
	if !order.TotalAmount.Equal(decimal.NewFromInt(200)) {
		t.Errorf("Expected total 200, got %s", order.TotalAmount)
	}

	// Stock must not move at creation time.
	if got := env.reloadProduct(t, product.ID).AvailableStock(); got != 20 {
		t.Errorf("Expected stock 20 after creation, got %d", got)
	}

	// Credit is reserved immediately.
	user := env.reloadUser(t, env.employee.ID)
	if !user.CreditUsed.Equal(decimal.NewFromInt(200)) {
		t.Errorf("Expected credit used 200, got %s", user.CreditUsed)
	}

	// And the reservation leaves a USED audit row.
	var count int64
	env.db.Model(&model.CreditTransaction{}).
		Where("user_id = ? AND type = ?", env.employee.ID, model.CreditUsed).
		Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 USED credit transaction, got %d", count)
	}
}

func TestCreateOrderRejectsOverCreditLimit(t *testing.T) {
	env := newTestEnv(t)
	product := testutil.SeedProduct(t, env.db, env.company, "SKU-1", 600, 20, 5, 0)

	// 2 * 600 = 1200 > limit 1000
	_, err := env.orders.CreateOrder(env.employee, []OrderItemInput{
		{ProductID: product.ID, Quantity: 2},
	}, "")
	if !errors.Is(err, apperr.ErrInvalidAmount) {
		t.Fatalf("Expected ErrInvalidAmount, got %v", err)
	}

	// Nothing persisted.
	user := env.reloadUser(t, env.employee.ID)
	if !user.CreditUsed.IsZero() {
		t.Errorf("Expected credit used 0 after rejection, got %s", user.CreditUsed)
	}
	var count int64
	env.db.Model(&model.OrderRequest{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no orders, got %d", count)
	}
}

func TestCreateOrderReportsAllShortages(t *testing.T) {
	env := newTestEnv(t)
	p1 := testutil.SeedProduct(t, env.db, env.company, "SKU-1", 10, 3, 0, 0)
	p2 := testutil.SeedProduct(t, env.db, env.company, "SKU-2", 10, 100, 0, 0)
	p3 := testutil.SeedProduct(t, env.db, env.company, "SKU-3", 10, 1, 0, 0)

	_, err := env.orders.CreateOrder(env.employee, []OrderItemInput{
		{ProductID: p1.ID, Quantity: 5},
		{ProductID: p2.ID, Quantity: 5},
		{ProductID: p3.ID, Quantity: 5},
	}, "")

	var short *apperr.InsufficientStockError
	if !errors.As(err, &short) {
		t.Fatalf("Expected InsufficientStockError, got %v", err)
	}
	if len(short.Items) != 2 {
		t.Fatalf("Expected 2 shortage lines, got %d", len(short.Items))
	}
	bySKU := map[string]apperr.StockShortage{}
	for _, item := range short.Items {
		bySKU[item.SKU] = item
	}
	if s, ok := bySKU["SKU-1"]; !ok || s.Available != 3 || s.Requested != 5 {
		t.Errorf("Bad shortage for SKU-1: %+v", bySKU["SKU-1"])
	}
	if s, ok := bySKU["SKU-3"]; !ok || s.Available != 1 || s.Requested != 5 {
		t.Errorf("Bad shortage for SKU-3: %+v", bySKU["SKU-3"])
	}
}

func TestRejectOrderReleasesCredit(t *testing.T) {
	env := newTestEnv(t)
	product := testutil.SeedProduct(t, env.db, env.company, "SKU-1", 50, 20, 0, 0)

	order, err := env.orders.CreateOrder(env.employee, []OrderItemInput{
		{ProductID: product.ID, Quantity: 4},
	}, "")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	rejected, err := env.orders.Transition(env.director, order.ID, model.OrderRejected, "no budget")
	if err != nil {
		t.Fatalf("Transition to REJECTED failed: %v", err)
	}
	if rejected.Status != model.OrderRejected {
		t.Errorf("Expected REJECTED, got %s", rejected.Status)
	}
	if rejected.RejectedAt == nil {
		t.Error("Expected RejectedAt to be stamped")
	}

	// Reservation freed, stock untouched.
	user := env.reloadUser(t, env.employee.ID)
	if !user.CreditUsed.IsZero() {
		t.Errorf("Expected credit used 0 after rejection, got %s", user.CreditUsed)
	}
	if got := env.reloadProduct(t, product.ID).AvailableStock(); got != 20 {
		t.Errorf("Expected stock 20, got %d", got)
	}

	var count int64
	env.db.Model(&model.CreditTransaction{}).
		Where("user_id = ? AND type = ?", env.employee.ID, model.CreditReleased).
		Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 RELEASED credit transaction, got %d", count)
	}
}

func TestShipDeductsStockAndFillsInventory(t *testing.T) {
	env := newTestEnv(t)
	product := testutil.SeedProduct(t, env.db, env.company, "SKU-1", 50, 20, 5, 0)

	order, err := env.orders.CreateOrder(env.employee, []OrderItemInput{
		{ProductID: product.ID, Quantity: 4},
	}, "")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if _, err := env.orders.Transition(env.director, order.ID, model.OrderApproved, ""); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	shipped, movements, err := env.orders.Ship(env.director, order.ID, "")
	if err != nil {
		t.Fatalf("Ship failed: %v", err)
	}
	if shipped.Status != model.OrderShipped {
		t.Errorf("Expected SHIPPED, got %s", shipped.Status)
	}
	if shipped.ShippedAt == nil {
		t.Error("Expected ShippedAt to be stamped")
	}
	if len(movements) != 1 || movements[0].NewStock != 16 {
		t.Errorf("Expected one movement with new stock 16, got %+v", movements)
	}

	// Both stock counters moved together.
	reloaded := env.reloadProduct(t, product.ID)
	if reloaded.Quantity != 16 {
		t.Errorf("Expected quantity 16, got %d", reloaded.Quantity)
	}
	if reloaded.StockQuantity == nil || *reloaded.StockQuantity != 16 {
		t.Errorf("Expected stock_quantity 16, got %v", reloaded.StockQuantity)
	}

	// The goods landed in the employee's personal inventory.
	var inv model.UserInventory
	if err := env.db.First(&inv, "user_id = ? AND product_id = ?", env.employee.ID, product.ID).Error; err != nil {
		t.Fatalf("Expected a user inventory row: %v", err)
	}
	if inv.QuantityReceived != 4 {
		t.Errorf("Expected 4 received, got %d", inv.QuantityReceived)
	}
}

func TestShipIsAllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	p1 := testutil.SeedProduct(t, env.db, env.company, "SKU-1", 10, 50, 0, 0)
	p2 := testutil.SeedProduct(t, env.db, env.company, "SKU-2", 10, 50, 0, 0)

	order, err := env.orders.CreateOrder(env.employee, []OrderItemInput{
		{ProductID: p1.ID, Quantity: 10},
		{ProductID: p2.ID, Quantity: 10},
	}, "")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	// Drain p2 behind the order's back so the ship-time check fails.
	env.db.Model(&model.Product{}).Where("id = ?", p2.ID).
		Updates(map[string]interface{}{"quantity": 3, "stock_quantity": 3})

	_, _, err = env.orders.Ship(env.director, order.ID, "")
	var short *apperr.InsufficientStockError
	if !errors.As(err, &short) {
		t.Fatalf("Expected InsufficientStockError, got %v", err)
	}
	if len(short.Items) != 1 || short.Items[0].SKU != "SKU-2" {
		t.Errorf("Expected one shortage for SKU-2, got %+v", short.Items)
	}

	// Nothing was deducted, including the line that had enough stock.
	if got := env.reloadProduct(t, p1.ID).AvailableStock(); got != 50 {
		t.Errorf("Expected SKU-1 stock 50 after failed ship, got %d", got)
	}
	var order2 model.OrderRequest
	env.db.First(&order2, "id = ?", order.ID)
	if order2.Status != model.OrderPending {
		t.Errorf("Expected order still PENDING, got %s", order2.Status)
	}
}

func TestTransitionRules(t *testing.T) {
	env := newTestEnv(t)
	product := testutil.SeedProduct(t, env.db, env.company, "SKU-1", 10, 50, 0, 0)

	order, err := env.orders.CreateOrder(env.employee, []OrderItemInput{
		{ProductID: product.ID, Quantity: 1},
	}, "")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	// Plain users may not transition at all.
	if _, err := env.orders.Transition(env.employee, order.ID, model.OrderApproved, ""); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for employee, got %v", err)
	}

	// DELIVERED straight from PENDING is invalid.
	if _, err := env.orders.Transition(env.director, order.ID, model.OrderDelivered, ""); !errors.Is(err, apperr.ErrInvalidStatus) {
		t.Errorf("Expected ErrInvalidStatus for PENDING->DELIVERED, got %v", err)
	}

	// Unknown status string is invalid.
	if _, err := env.orders.Transition(env.director, order.ID, model.OrderStatus("LOST"), ""); !errors.Is(err, apperr.ErrInvalidStatus) {
		t.Errorf("Expected ErrInvalidStatus for unknown status, got %v", err)
	}

	// PENDING -> APPROVED -> SHIPPED -> DELIVERED -> FULFILLED walks clean.
	if _, err := env.orders.Transition(env.director, order.ID, model.OrderApproved, ""); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if _, err := env.orders.Transition(env.director, order.ID, model.OrderShipped, ""); err != nil {
		t.Fatalf("Ship via transition failed: %v", err)
	}
	if _, err := env.orders.Transition(env.director, order.ID, model.OrderDelivered, ""); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	fulfilled, err := env.orders.Transition(env.director, order.ID, model.OrderFulfilled, "")
	if err != nil {
		t.Fatalf("Fulfil failed: %v", err)
	}
	if fulfilled.FulfilledAt == nil {
		t.Error("Expected FulfilledAt to be stamped")
	}

	// No way back.
	if _, err := env.orders.Transition(env.director, order.ID, model.OrderPending, ""); !errors.Is(err, apperr.ErrInvalidStatus) {
		t.Errorf("Expected ErrInvalidStatus returning to PENDING, got %v", err)
	}
}

func TestOrdersAreTenantScoped(t *testing.T) {
	env := newTestEnv(t)
	product := testutil.SeedProduct(t, env.db, env.company, "SKU-1", 10, 50, 0, 0)

	order, err := env.orders.CreateOrder(env.employee, []OrderItemInput{
		{ProductID: product.ID, Quantity: 1},
	}, "")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	other := testutil.SeedCompany(t, env.db, "rival")
	otherDirector := testutil.SeedUser(t, env.db, other, "director@rival.test", model.RoleDirector, 0)

	// A director of another company sees NotFound, not Forbidden.
	if _, err := env.orders.GetOrder(otherDirector, order.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound across tenants, got %v", err)
	}
	if _, err := env.orders.Transition(otherDirector, order.ID, model.OrderApproved, ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on cross-tenant transition, got %v", err)
	}

	// Platform admin spans tenants.
	admin := testutil.SeedUser(t, env.db, nil, "admin@platform.test", model.RoleAdmin, 0)
	if _, err := env.orders.Transition(admin, order.ID, model.OrderApproved, ""); err != nil {
		t.Errorf("Expected admin transition to succeed, got %v", err)
	}
}
