package router

import (
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/config"
	"github.com/Jottaaa12/pdv-web-admin/internal/handler"
	"github.com/Jottaaa12/pdv-web-admin/internal/infra"
	"github.com/Jottaaa12/pdv-web-admin/internal/middleware"
	"github.com/Jottaaa12/pdv-web-admin/internal/model"
	"github.com/Jottaaa12/pdv-web-admin/internal/money"
	"github.com/Jottaaa12/pdv-web-admin/internal/repository"
	"github.com/Jottaaa12/pdv-web-admin/internal/service"
	"github.com/Jottaaa12/pdv-web-admin/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the connections built by the composition root. Events and MailCB
// may be nil.
type Deps struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Reporting *sqlx.DB
	Events    service.EventPublisher
	MailCB    *infra.CircuitBreaker
}

// TxPolicy derives the transaction lock timeout and retry budget from config.
func TxPolicy(cfg *config.Config) service.TxPolicy {
	return service.TxPolicy{
		LockTimeout: time.Duration(cfg.LockTimeoutMS) * time.Millisecond,
		MaxRetries:  cfg.TxMaxRetries,
	}
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.Origins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.APIRateLimit, time.Minute))

	db, rdb := deps.DB, deps.Redis
	policy := TxPolicy(cfg)
	loc := cfg.Location()
	rounding, _ := money.ParseRoundingMode(cfg.RoundingMode)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	cashRepo := repository.NewCashRepository(db)
	productRepo := repository.NewProductRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	reportingRepo := repository.NewReportingRepository(deps.Reporting)

	// Worker dispatcher, injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	auditSvc := service.NewAuditService(auditRepo)
	authSvc := service.NewAuthService(userRepo, auditSvc, cfg, policy)
	cashSvc := service.NewCashService(cashRepo, userRepo, auditSvc, dispatcher, deps.Events, policy)
	inventorySvc := service.NewInventoryService(inventoryRepo, userRepo, auditSvc, dispatcher, deps.Events, policy, cfg.AlertEmail)
	saleSvc := service.NewSaleService(saleRepo, productRepo, cashRepo, customerRepo, creditRepo, catalogRepo, auditSvc, deps.Events, policy,
		service.SalePolicy{Rounding: rounding, AllowNegativeWeightStock: cfg.AllowNegativeWeightStock})
	creditSvc := service.NewCreditService(creditRepo, customerRepo, catalogRepo, reportingRepo, auditSvc, deps.Events, db, policy, cfg.CreditAllocationOrder)
	customerSvc := service.NewCustomerService(customerRepo, auditSvc, policy)
	catalogSvc := service.NewCatalogService(productRepo, catalogRepo, auditSvc, policy)
	dashboardSvc := service.NewDashboardService(reportingRepo, rdb, time.Duration(cfg.KPICacheTTLSecond)*time.Second, loc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	cashH := handler.NewCashHandler(cashSvc, loc)
	salesH := handler.NewSalesHandler(saleSvc, loc)
	inventoryH := handler.NewInventoryHandler(inventorySvc, loc)
	customersH := handler.NewCustomersHandler(customerSvc, creditSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc, rdb)
	dashboardH := handler.NewDashboardHandler(dashboardSvc, auditSvc, loc)
	rpcH := handler.NewRPCHandler(authH, usersH, dashboardH, inventoryH, customersH)

	anyRole := middleware.RequireRole(model.RoleOperator, model.RoleManager)
	managerOnly := middleware.RequireRole(model.RoleManager)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, deps.MailCB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth (public). Both login routes share one attempt budget.
	loginLimit := middleware.LoginRateLimiter(cfg.LoginRateLimit)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", loginLimit, authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	jwtMW := middleware.JWTAuth(cfg.JWTSecret)

	// Procedures
	r.POST("/v1/rpc/login", loginLimit, rpcH.Login)
	rpc := r.Group("/v1/rpc", jwtMW)
	{
		rpc.POST("/get_dashboard_kpis", anyRole, rpcH.GetDashboardKPIs)
		rpc.POST("/adjust_inventory_item", anyRole, rpcH.AdjustInventoryItem)
		rpc.POST("/apply_credit_payment", anyRole, rpcH.ApplyCreditPayment)
		rpc.POST("/upsert_user", managerOnly, rpcH.UpsertUser)
	}

	// Protected routes
	v1 := r.Group("/v1", jwtMW)
	{
		users := v1.Group("/users", managerOnly)
		{
			users.POST("", usersH.Upsert)
			users.GET("", usersH.List)
		}

		cash := v1.Group("/cash-sessions")
		{
			cash.POST("", anyRole, cashH.Open)
			cash.GET("/active", anyRole, cashH.Active)
			cash.GET("", managerOnly, cashH.History)
			cash.GET("/:id", anyRole, cashH.Report)
			cash.POST("/:id/movements", anyRole, cashH.RecordMovement)
			cash.POST("/:id/close", anyRole, cashH.Close)
		}

		sales := v1.Group("/sales", anyRole)
		{
			sales.POST("", salesH.Create)
			sales.GET("", salesH.List)
			sales.GET("/:id", salesH.Get)
		}

		// Catalog reads are open to operators; writes are manager-only.
		v1.GET("/products", anyRole, catalogH.ListProducts)
		v1.GET("/products/:id", anyRole, catalogH.GetProduct)
		v1.GET("/products/barcode/:barcode", anyRole, catalogH.ProductByBarcode)
		v1.GET("/product-groups", anyRole, catalogH.ListGroups)
		v1.GET("/payment-methods", anyRole, catalogH.ListPaymentMethods)
		catalog := v1.Group("", managerOnly)
		{
			catalog.POST("/products", catalogH.CreateProduct)
			catalog.PUT("/products/:id", catalogH.UpdateProduct)
			catalog.POST("/product-groups", catalogH.CreateGroup)
			catalog.PUT("/product-groups/:id", catalogH.UpdateGroup)
			catalog.POST("/payment-methods", catalogH.CreatePaymentMethod)
			catalog.PATCH("/payment-methods/:id", catalogH.SetPaymentMethodActive)
		}

		customers := v1.Group("/customers")
		{
			customers.GET("", anyRole, customersH.List)
			customers.POST("", anyRole, customersH.Create)
			customers.GET("/:id", anyRole, customersH.Get)
			customers.PUT("/:id", managerOnly, customersH.Update)
			customers.PATCH("/:id/block", managerOnly, customersH.SetBlocked)
			customers.GET("/:id/balance", anyRole, customersH.Balance)
			customers.GET("/:id/payments", anyRole, customersH.Payments)
		}
		v1.POST("/credit/payments", anyRole, customersH.ApplyPayment)
		v1.GET("/credit/debtors", managerOnly, customersH.Debtors)

		inv := v1.Group("/inventory")
		{
			inv.POST("/adjustments", anyRole, inventoryH.Adjust)
			inv.GET("/movements", anyRole, inventoryH.Movements)
			inv.GET("/alerts", anyRole, inventoryH.Alerts)
			inv.GET("/items", anyRole, inventoryH.ListItems)
			inv.GET("/items/:id", anyRole, inventoryH.GetItem)
			inv.POST("/items", managerOnly, inventoryH.CreateItem)
			inv.GET("/groups", anyRole, inventoryH.ListGroups)
			inv.POST("/groups", managerOnly, inventoryH.CreateGroup)
		}

		v1.GET("/dashboard/kpis", anyRole, dashboardH.KPIs)
		v1.GET("/audit", managerOnly, dashboardH.AuditLog)
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
