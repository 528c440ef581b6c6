package service

import (
	"testing"

	"go-stockcredit/internal/model"
	"go-stockcredit/internal/repository"
	"go-stockcredit/internal/testutil"

	"gorm.io/gorm"
)

// testEnv wires the full service stack against an isolated test schema with
// one company, one director and one employee.
type testEnv struct {
	db       *gorm.DB
	company  *model.Company
	director *model.User
	employee *model.User

	orders  OrderService
	catalog CatalogService
	credit  CreditService
	alerts  AlertService
	reports ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	hub := testutil.NewTestHub()

	userRepo := repository.NewUserRepo(db)
	productRepo := repository.NewProductRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	financeRepo := repository.NewFinanceRepo(db)
	alertRepo := repository.NewAlertRepo(db)
	inventoryRepo := repository.NewUserInventoryRepo(db)

	alertSvc := NewAlertService(alertRepo, productRepo, db, hub)

	company := testutil.SeedCompany(t, db, "acme")
	director := testutil.SeedUser(t, db, company, "director@acme.test", model.RoleDirector, 0)
	employee := testutil.SeedUser(t, db, company, "employee@acme.test", model.RoleUser, 1000)

	return &testEnv{
		db:       db,
		company:  company,
		director: director,
		employee: employee,
		orders:   NewOrderService(orderRepo, productRepo, userRepo, financeRepo, inventoryRepo, alertSvc, db, hub),
		catalog:  NewCatalogService(productRepo, financeRepo, alertSvc, db, hub),
		credit:   NewCreditService(customerRepo, userRepo, productRepo, financeRepo, inventoryRepo, db, hub),
		alerts:   alertSvc,
		reports:  NewReportService(financeRepo, customerRepo, orderRepo, alertRepo, db),
	}
}

// reload fetches a fresh copy of a user row.
func (e *testEnv) reloadUser(t *testing.T, id interface{}) *model.User {
	t.Helper()
	var user model.User
	if err := e.db.First(&user, "id = ?", id).Error; err != nil {
		t.Fatalf("Failed to reload user: %v", err)
	}
	return &user
}

func (e *testEnv) reloadProduct(t *testing.T, id interface{}) *model.Product {
	t.Helper()
	var product model.Product
	if err := e.db.First(&product, "id = ?", id).Error; err != nil {
		t.Fatalf("Failed to reload product: %v", err)
	}
	return &product
}
