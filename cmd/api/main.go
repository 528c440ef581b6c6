package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-stockcredit/internal/handler"
	"go-stockcredit/internal/middleware"
	"go-stockcredit/internal/model"
	"go-stockcredit/internal/repository"
	"go-stockcredit/internal/service"
	"go-stockcredit/internal/ws"
	"go-stockcredit/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup database
	db := database.ConnectDB()
	db.AutoMigrate(
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
	)

	// 3. Seed the platform admin
	seedAdmin(db)

	// 4. Setup websocket hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency injection (wiring layers)
	userRepo := repository.NewUserRepo(db)
	companyRepo := repository.NewCompanyRepo(db)
	productRepo := repository.NewProductRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	financeRepo := repository.NewFinanceRepo(db)
	alertRepo := repository.NewAlertRepo(db)
	inventoryRepo := repository.NewUserInventoryRepo(db)

	alertSvc := service.NewAlertService(alertRepo, productRepo, db, wsHub)
	catalogSvc := service.NewCatalogService(productRepo, financeRepo, alertSvc, db, wsHub)
	orderSvc := service.NewOrderService(orderRepo, productRepo, userRepo, financeRepo, inventoryRepo, alertSvc, db, wsHub)
	creditSvc := service.NewCreditService(customerRepo, userRepo, productRepo, financeRepo, inventoryRepo, db, wsHub)
	authSvc := service.NewAuthService(userRepo, wsHub)
	userSvc := service.NewUserService(userRepo, companyRepo, db)
	reportSvc := service.NewReportService(financeRepo, customerRepo, orderRepo, alertRepo, db)

	authHandler := handler.NewAuthHandler(authSvc)
	productHandler := handler.NewProductHandler(catalogSvc)
	orderHandler := handler.NewOrderHandler(orderSvc)
	customerHandler := handler.NewCustomerHandler(creditSvc)
	financeHandler := handler.NewFinanceHandler(creditSvc, financeRepo)
	alertHandler := handler.NewAlertHandler(alertSvc)
	dashHandler := handler.NewDashboardHandler(reportSvc)
	userHandler := handler.NewUserHandler(userSvc, inventoryRepo)
	companyHandler := handler.NewCompanyHandler(userSvc)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "StockCredit API v1.0",
	})

	app.Use(logger.New())  // Request logging
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	directorOnly := middleware.RequireRole(model.RoleDirector, model.RoleAdmin)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	// Orders (employees)
	protected.Post("/orders", orderHandler.CreateOrder)
	protected.Get("/orders", orderHandler.GetOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)

	// Order lifecycle (directors)
	protected.Get("/director/orders", directorOnly, orderHandler.GetCompanyOrders)
	protected.Patch("/director/orders", directorOnly, orderHandler.UpdateStatus)
	protected.Post("/director/orders/:id/ship", directorOnly, orderHandler.Ship)

	// Catalog & stock (directors manage, everyone reads)
	protected.Get("/products", productHandler.GetProducts)
	protected.Post("/products", directorOnly, productHandler.CreateProduct)
	protected.Put("/products/:id", directorOnly, productHandler.UpdateProduct)
	protected.Delete("/products/:id", directorOnly, productHandler.DeleteProduct)
	protected.Patch("/products/:id/restock", directorOnly, productHandler.Restock)
	protected.Get("/products/restocks", directorOnly, productHandler.GetRestockRecords)

	// Stock alerts (directors)
	protected.Get("/stock-alerts", directorOnly, alertHandler.GetAlerts)
	protected.Post("/stock-alerts/sweep", directorOnly, alertHandler.Sweep)

	// Customer credit book (employees)
	protected.Get("/customers", customerHandler.GetCustomers)
	protected.Post("/customers", customerHandler.CreateCustomer)
	protected.Get("/customers/:id", customerHandler.GetCustomer)
	protected.Get("/customers/:id/orders", customerHandler.GetCustomerOrders)
	protected.Post("/customers/:id/orders", customerHandler.CreateCustomerOrder)
	protected.Get("/customers/:id/payments", customerHandler.GetCustomerPayments)
	protected.Post("/customers/:id/payments", customerHandler.CreateCustomerPayment)

	// Personal inventory
	protected.Get("/inventory", userHandler.GetInventory)

	// Finance
	protected.Post("/payments", financeHandler.CreatePayment)
	protected.Get("/payments", financeHandler.GetPayments)
	protected.Post("/expenses", financeHandler.CreateExpense)
	protected.Get("/expenses", financeHandler.GetExpenses)
	protected.Get("/credit-transactions", financeHandler.GetCreditTransactions)

	// User management (directors)
	protected.Get("/users", directorOnly, userHandler.GetUsers)
	protected.Post("/users", directorOnly, userHandler.CreateUser)
	protected.Put("/users/:id", directorOnly, userHandler.UpdateUser)
	protected.Delete("/users/:id", directorOnly, userHandler.DeactivateUser)
	protected.Put("/users/:id/credit-limit", directorOnly, financeHandler.SetCreditLimit)

	// Dashboard
	protected.Get("/dashboard/stats", directorOnly, dashHandler.GetStats)
	protected.Get("/dashboard/monthly", directorOnly, dashHandler.GetMonthly)

	// Tenant administration
	protected.Get("/admin/companies", adminOnly, companyHandler.GetCompanies)
	protected.Post("/admin/companies", adminOnly, companyHandler.CreateCompany)

	// WebSocket route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedAdmin creates the platform admin account if it doesn't exist
func seedAdmin(db *gorm.DB) {
	userRepo := repository.NewUserRepo(db)

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@example.com"
	}

	if _, err := userRepo.FindByEmail(email); err == nil {
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	admin := &model.User{
		Email:    email,
		FullName: "Platform Administrator",
		Role:     model.RoleAdmin,
		IsActive: true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	if err := admin.SetPassword(password); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}

	if err := userRepo.Create(admin); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
	} else {
		log.Printf("Admin user created: %s (ADMIN)", email)
	}
}
