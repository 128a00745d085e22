package router

import (
	"fmt"

	"go-stock-ledger/internal/config"
	"go-stock-ledger/internal/handler"
	"go-stock-ledger/internal/middleware"
	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/internal/service"
	"go-stock-ledger/internal/ws"
	"go-stock-ledger/pkg/cache"
	"go-stock-ledger/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured fiber app.
// rdb may be nil when Redis is not configured.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisClient, hub *ws.Hub) (*fiber.App, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("report db handle: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "go-stock-ledger",
		ErrorHandler: middleware.ErrorHandler,
	})

	// order matters: the logger reads the request id header
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger())
	app.Use(recover.New())
	app.Use(cors.New())

	// ── Repositories ─────────────────────────────────────────────────────────
	reportDB := sqlx.NewDb(sqlDB, db.Dialector.Name())

	productRepo := repository.NewProductRepo(db)
	stockRepo := repository.NewStockRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	userRepo := repository.NewUserRepo(db)
	reportRepo := repository.NewReportRepo(reportDB)

	// ── Services ─────────────────────────────────────────────────────────────
	var locker service.Locker
	if rdb != nil {
		locker = rdb
	}
	guard := service.NewStockGuard(cfg.StockGuard, locker, cfg.StockLockTTL)
	tokens := jwt.NewManager(cfg.JWTSecret, cfg.JWTExpirationHours)

	stockSvc := service.NewStockService(stockRepo)
	authSvc := service.NewAuthService(userRepo, tokens)
	productSvc := service.NewProductService(productRepo, txRepo, stockSvc, hub)
	movementSvc := service.NewMovementService(db, productRepo, stockRepo, txRepo, guard, hub)
	transactionSvc := service.NewTransactionService(txRepo, stockSvc, hub)
	reportSvc := service.NewReportService(reportRepo)
	dashboardSvc := service.NewDashboardService(reportSvc, txRepo)
	userSvc := service.NewUserService(userRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productH := handler.NewProductHandler(productSvc)
	movementH := handler.NewMovementHandler(movementSvc)
	transactionH := handler.NewTransactionHandler(transactionSvc)
	reportH := handler.NewReportHandler(reportSvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)
	userH := handler.NewUserHandler(userSvc)

	var pinger handler.Pinger
	if rdb != nil {
		pinger = rdb
	}
	health := handler.Health(db, pinger)
	app.Get("/health", health)

	api := app.Group("/api/v1")
	api.Get("/health", health)

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authH.Login)
	auth.Post("/reset-password", authH.ResetPassword)
	auth.Post("/validate-token", authH.ValidateToken)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo, tokens))
	need := middleware.RequirePrivilege

	protected.Get("/products", need(model.PrivProductView), productH.GetProducts)
	protected.Post("/products", need(model.PrivProductCreate), productH.CreateProduct)
	protected.Get("/products/:id", need(model.PrivProductView), productH.GetProduct)
	protected.Put("/products/:id", need(model.PrivProductUpdate), productH.UpdateProduct)
	protected.Delete("/products/:id", need(model.PrivProductUpdate), productH.DeactivateProduct)
	protected.Patch("/products/:id/activate", need(model.PrivProductUpdate), productH.ActivateProduct)
	protected.Get("/products/:id/movements", middleware.RequireAnyPrivilege(model.PrivProductView, model.PrivTransactionView), productH.GetMovements)
	protected.Get("/products/:id/stock", need(model.PrivProductView), productH.GetStock)

	protected.Get("/transactions", need(model.PrivTransactionView), transactionH.GetTransactions)
	protected.Get("/transactions/:id", need(model.PrivTransactionView), transactionH.GetTransaction)
	protected.Delete("/transactions/:id", need(model.PrivTransactionDelete), transactionH.DeleteTransaction)
	protected.Post("/stock-movements", need(model.PrivTransactionCreate), movementH.CreateMovement)

	protected.Get("/reports/inventory", need(model.PrivReportView), reportH.GetInventory)
	protected.Get("/reports/inventory.pdf", need(model.PrivReportView), reportH.GetInventoryPDF)
	protected.Get("/reports/historical", need(model.PrivReportView), reportH.GetHistorical)
	protected.Get("/dashboard", need(model.PrivReportView), dashboardH.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", need(model.PrivReportView), dashboardH.GetStockMovement)

	protected.Get("/roles", need(model.PrivUserManage), handler.GetRoles)
	protected.Get("/privileges", need(model.PrivUserManage), handler.GetPrivileges)

	users := protected.Group("/users", need(model.PrivUserManage))
	users.Get("/", userH.GetUsers)
	users.Post("/", userH.CreateUser)
	users.Get("/:id", userH.GetUser)
	users.Put("/:id", userH.UpdateUser)
	users.Delete("/:id", userH.DeleteUser)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !hub.Join(c) {
			return
		}
		defer hub.Leave(c)

		for {
			// keep alive until the client goes away
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	return app, nil
}
