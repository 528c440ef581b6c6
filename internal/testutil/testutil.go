package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"go-stockcredit/internal/model"
	"go-stockcredit/internal/ws"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const TestSchema = "test_stockcredit"

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func loadEnv() {
	root := projectRoot()
	if root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// SetupTestDB creates a test database connection using a dedicated test
// schema. Each test gets an isolated schema so tests can run in parallel.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "stockcredit")
	password := getEnv("DB_PASSWORD", "stockcredit123")
	dbname := getEnv("DB_NAME", "stockcredit_test")

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	schemaName := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000)

	setupDB, err := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName))
	sqlSetup, _ := setupDB.DB()
	sqlSetup.Close()

	// Re-open with search_path in the DSN so every pooled connection lands
	// in the test schema.
	testDSN := fmt.Sprintf("%s search_path=%s", baseDSN, schemaName)
	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(
		&model.Company{},
		&model.User{},
		&model.Product{},
		&model.OrderRequest{},
		&model.OrderRequestItem{},
		&model.Customer{},
		&model.CustomerOrder{},
		&model.CustomerPayment{},
		&model.Payment{},
		&model.Expense{},
		&model.CreditTransaction{},
		&model.RestockRecord{},
		&model.StockAlert{},
		&model.UserInventory{},
	); err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		db.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return db
}

// NewTestHub returns a running websocket hub with no clients, so service
// notifications go nowhere without blocking.
func NewTestHub() *ws.Hub {
	hub := ws.NewHub()
	go hub.Run()
	return hub
}

// SeedCompany creates a tenant.
func SeedCompany(t *testing.T, db *gorm.DB, name string) *model.Company {
	t.Helper()
	company := &model.Company{
		Name:  name,
		Email: fmt.Sprintf("%s@test.local", name),
	}
	if err := db.Create(company).Error; err != nil {
		t.Fatalf("Failed to seed company: %v", err)
	}
	return company
}

// SeedUser creates an active user in the given company with the given role
// and purchase credit limit.
func SeedUser(t *testing.T, db *gorm.DB, company *model.Company, email, role string, creditLimit int64) *model.User {
	t.Helper()
	user := &model.User{
		Email:       email,
		FullName:    email,
		Role:        role,
		IsActive:    true,
		CreditLimit: decimal.NewFromInt(creditLimit),
		CreditUsed:  decimal.Zero,
	}
	if company != nil {
		user.CompanyID = &company.ID
	}
	if err := user.SetPassword("test1234"); err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return user
}

// SeedProduct creates an active product with the given stock and thresholds.
func SeedProduct(t *testing.T, db *gorm.DB, company *model.Company, sku string, price int64, quantity, minStock, maxStock int) *model.Product {
	t.Helper()
	stock := quantity
	product := &model.Product{
		CompanyID:     company.ID,
		SKU:           sku,
		Name:          "Product " + sku,
		Unit:          "pcs",
		Price:         decimal.NewFromInt(price),
		Quantity:      quantity,
		StockQuantity: &stock,
		MinStock:      minStock,
		MaxStock:      maxStock,
		IsActive:      true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("Failed to seed product: %v", err)
	}
	return product
}

// SeedCustomer creates a credit-book customer owned by the given user.
func SeedCustomer(t *testing.T, db *gorm.DB, user *model.User, name string) *model.Customer {
	t.Helper()
	customer := &model.Customer{
		UserID:             user.ID,
		CompanyID:          *user.CompanyID,
		Name:               name,
		TotalCredit:        decimal.Zero,
		TotalPaid:          decimal.Zero,
		OutstandingBalance: decimal.Zero,
	}
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("Failed to seed customer: %v", err)
	}
	return customer
}

// SeedInventory gives a user received stock of a product, as if an order had
// been shipped to them.
func SeedInventory(t *testing.T, db *gorm.DB, user *model.User, product *model.Product, received int) *model.UserInventory {
	t.Helper()
	inv := &model.UserInventory{
		UserID:           user.ID,
		ProductID:        product.ID,
		CompanyID:        product.CompanyID,
		QuantityReceived: received,
		QuantityUsed:     0,
	}
	if err := db.Create(inv).Error; err != nil {
		t.Fatalf("Failed to seed inventory: %v", err)
	}
	return inv
}
