package service

import (
	"errors"
	"testing"

	"go-stockcredit/internal/apperr"
	"go-stockcredit/internal/model"
	"go-stockcredit/internal/testutil"

	"github.com/shopspring/decimal"
)

func TestCreateProductRejectsDuplicateSKU(t *testing.T) {
	env := newTestEnv(t)
	testutil.SeedProduct(t, env.db, env.company, "SKU-1", 10, 5, 0, 0)

	dup := &model.Product{
		CompanyID: env.company.ID,
		SKU:       "SKU-1",
		Name:      "Duplicate",
		Price:     decimal.NewFromInt(10),
	}
	if err := env.catalog.CreateProduct(dup, env.director); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput for duplicate SKU, got %v", err)
	}

	// The same SKU under another tenant is fine.
	other := testutil.SeedCompany(t, env.db, "rival")
	otherDirector := testutil.SeedUser(t, env.db, other, "director@rival.test", model.RoleDirector, 0)
	fresh := &model.Product{
		CompanyID: other.ID,
		SKU:       "SKU-1",
		Name:      "Same code, other tenant",
		Price:     decimal.NewFromInt(10),
	}
	if err := env.catalog.CreateProduct(fresh, otherDirector); err != nil {
		t.Fatalf("Expected cross-tenant SKU reuse to succeed, got %v", err)
	}
}

func TestRestockMovesBothCountersAndAudits(t *testing.T) {
	env := newTestEnv(t)
	product := testutil.SeedProduct(t, env.db, env.company, "SKU-1", 10, 5, 0, 0)

	updated, record, err := env.catalog.Restock(env.company.ID, product.ID, 20, "supplier run", env.director)
	if err != nil {
		t.Fatalf("Restock failed: %v", err)
	}
	if updated.AvailableStock() != 25 {
		t.Errorf("Expected stock 25, got %d", updated.AvailableStock())
	}
	if record.NewStock != 25 || record.Quantity != 20 {
		t.Errorf("Bad restock record: %+v", record)
	}

	reloaded := env.reloadProduct(t, product.ID)
	if reloaded.Quantity != 25 {
		t.Errorf("Expected quantity 25, got %d", reloaded.Quantity)
	}
	if reloaded.StockQuantity == nil || *reloaded.StockQuantity != 25 {
		t.Errorf("Expected stock_quantity 25, got %v", reloaded.StockQuantity)
	}

	// A second restock appends a second audit row instead of merging.
	if _, _, err := env.catalog.Restock(env.company.ID, product.ID, 5, "top up", env.director); err != nil {
		t.Fatalf("Second restock failed: %v", err)
	}
	records, err := env.catalog.GetRestockRecords(env.company.ID, product.ID)
	if err != nil {
		t.Fatalf("GetRestockRecords failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Expected 2 restock records, got %d", len(records))
	}

	if _, _, err := env.catalog.Restock(env.company.ID, product.ID, 0, "", env.director); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for zero restock, got %v", err)
	}
}

func productEdit(p *model.Product) ProductUpdateInput {
	return ProductUpdateInput{
		CompanyID: p.CompanyID,
		Name:      p.Name,
		SKU:       p.SKU,
		Unit:      p.Unit,
		Price:     p.Price,
		MinStock:  p.MinStock,
		MaxStock:  p.MaxStock,
		IsActive:  p.IsActive,
	}
}

func TestUpdateProductQuantityGoesThroughLedger(t *testing.T) {
	env := newTestEnv(t)
	product := testutil.SeedProduct(t, env.db, env.company, "SKU-1", 10, 5, 0, 0)

	edit := productEdit(product)
	target := 12
	edit.Quantity = &target
	updated, err := env.catalog.UpdateProduct(product.ID, &edit, env.director)
	if err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}
	if updated.AvailableStock() != 12 {
		t.Errorf("Expected stock 12, got %d", updated.AvailableStock())
	}
	reloaded := env.reloadProduct(t, product.ID)
	if reloaded.StockQuantity == nil || *reloaded.StockQuantity != 12 {
		t.Errorf("Expected mirror counter 12, got %v", reloaded.StockQuantity)
	}
}

// An edit that says nothing about quantity must not move stock. Bodies that
// only rename or reprice a product used to read as quantity zero and drain
// the counters.
func TestUpdateProductWithoutQuantityLeavesStockAlone(t *testing.T) {
	env := newTestEnv(t)
	product := testutil.SeedProduct(t, env.db, env.company, "SKU-1", 10, 5, 0, 0)

	edit := productEdit(product)
	edit.Name = "Renamed"
	edit.Price = decimal.NewFromInt(15)
	updated, err := env.catalog.UpdateProduct(product.ID, &edit, env.director)
	if err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Errorf("Expected renamed product, got %s", updated.Name)
	}
	if updated.AvailableStock() != 5 {
		t.Errorf("Expected stock to stay at 5, got %d", updated.AvailableStock())
	}
	reloaded := env.reloadProduct(t, product.ID)
	if reloaded.Quantity != 5 {
		t.Errorf("Expected quantity 5, got %d", reloaded.Quantity)
	}
	if reloaded.StockQuantity == nil || *reloaded.StockQuantity != 5 {
		t.Errorf("Expected mirror counter 5, got %v", reloaded.StockQuantity)
	}

	negative := -1
	edit.Quantity = &negative
	if _, err := env.catalog.UpdateProduct(product.ID, &edit, env.director); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for negative quantity, got %v", err)
	}
}

func TestDeleteProductDeactivatesWhenReferenced(t *testing.T) {
	env := newTestEnv(t)
	referenced := testutil.SeedProduct(t, env.db, env.company, "SKU-1", 10, 50, 0, 0)
	orphan := testutil.SeedProduct(t, env.db, env.company, "SKU-2", 10, 50, 0, 0)

	if _, err := env.orders.CreateOrder(env.employee, []OrderItemInput{
		{ProductID: referenced.ID, Quantity: 1},
	}, ""); err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	deactivated, err := env.catalog.DeleteProduct(referenced.ID, env.director)
	if err != nil {
		t.Fatalf("DeleteProduct failed: %v", err)
	}
	if !deactivated {
		t.Error("Expected a referenced product to be deactivated, not deleted")
	}
	reloaded := env.reloadProduct(t, referenced.ID)
	if reloaded.IsActive {
		t.Error("Expected product to be inactive")
	}

	deactivated, err = env.catalog.DeleteProduct(orphan.ID, env.director)
	if err != nil {
		t.Fatalf("DeleteProduct failed: %v", err)
	}
	if deactivated {
		t.Error("Expected an unreferenced product to be hard-deleted")
	}
	var count int64
	env.db.Model(&model.Product{}).Where("id = ?", orphan.ID).Count(&count)
	if count != 0 {
		t.Error("Expected orphan product row to be gone")
	}
}

func TestAlertLifecycleThroughStockChanges(t *testing.T) {
	env := newTestEnv(t)
	product := testutil.SeedProduct(t, env.db, env.company, "SKU-1", 10, 50, 10, 0)

	// 50 -> 8 via a shipped order pushes the product into the low band.
	order, err := env.orders.CreateOrder(env.employee, []OrderItemInput{
		{ProductID: product.ID, Quantity: 42},
	}, "")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if _, _, err := env.orders.Ship(env.director, order.ID, ""); err != nil {
		t.Fatalf("Ship failed: %v", err)
	}

	alerts, err := env.alerts.ListCompany(env.company.ID, false)
	if err != nil {
		t.Fatalf("ListCompany failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("Expected 1 open alert, got %d", len(alerts))
	}
	if alerts[0].AlertType != model.AlertLowStock {
		t.Errorf("Expected LOW_STOCK, got %s", alerts[0].AlertType)
	}
	firstID := alerts[0].ID

	// Dropping further updates the same alert row, never stacks a second.
	order2, err := env.orders.CreateOrder(env.employee, []OrderItemInput{
		{ProductID: product.ID, Quantity: 5},
	}, "")
	if err != nil {
		t.Fatalf("Second order failed: %v", err)
	}
	if _, _, err := env.orders.Ship(env.director, order2.ID, ""); err != nil {
		t.Fatalf("Second ship failed: %v", err)
	}

	alerts, _ = env.alerts.ListCompany(env.company.ID, false)
	if len(alerts) != 1 {
		t.Fatalf("Expected still 1 open alert, got %d", len(alerts))
	}
	if alerts[0].ID != firstID {
		t.Error("Expected the open alert to be refreshed in place")
	}
	if alerts[0].Severity != model.SeverityCritical {
		t.Errorf("Expected CRITICAL at 3/10, got %s", alerts[0].Severity)
	}
	if alerts[0].CurrentStock != 3 {
		t.Errorf("Expected current stock 3 on the alert, got %d", alerts[0].CurrentStock)
	}

	// Restocking past the threshold resolves it.
	if _, _, err := env.catalog.Restock(env.company.ID, product.ID, 100, "recovery", env.director); err != nil {
		t.Fatalf("Restock failed: %v", err)
	}
	alerts, _ = env.alerts.ListCompany(env.company.ID, false)
	if len(alerts) != 0 {
		t.Fatalf("Expected no open alerts after recovery, got %d", len(alerts))
	}
	resolved, _ := env.alerts.ListCompany(env.company.ID, true)
	if len(resolved) != 1 || !resolved[0].IsResolved {
		t.Errorf("Expected the resolved alert in history, got %+v", resolved)
	}
}

func TestSweepCountsActiveAlerts(t *testing.T) {
	env := newTestEnv(t)
	testutil.SeedProduct(t, env.db, env.company, "SKU-1", 10, 0, 10, 0)   // out of stock
	testutil.SeedProduct(t, env.db, env.company, "SKU-2", 10, 5, 10, 0)   // low
	testutil.SeedProduct(t, env.db, env.company, "SKU-3", 10, 500, 0, 0)  // healthy, no max
	testutil.SeedProduct(t, env.db, env.company, "SKU-4", 10, 90, 10, 80) // overstock

	active, err := env.alerts.Sweep(env.company.ID, env.director.ID.String())
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if active != 3 {
		t.Errorf("Expected 3 active alerts, got %d", active)
	}

	alerts, err := env.alerts.ListCompany(env.company.ID, false)
	if err != nil {
		t.Fatalf("ListCompany failed: %v", err)
	}
	if len(alerts) != 3 {
		t.Fatalf("Expected 3 open alerts, got %d", len(alerts))
	}
	// Severity ordering puts CRITICAL first.
	if alerts[0].AlertType != model.AlertOutOfStock {
		t.Errorf("Expected OUT_OF_STOCK first, got %s", alerts[0].AlertType)
	}

	// A second sweep must not duplicate anything.
	if _, err := env.alerts.Sweep(env.company.ID, env.director.ID.String()); err != nil {
		t.Fatalf("Second sweep failed: %v", err)
	}
	alerts, _ = env.alerts.ListCompany(env.company.ID, false)
	if len(alerts) != 3 {
		t.Errorf("Expected still 3 open alerts after re-sweep, got %d", len(alerts))
	}
}
