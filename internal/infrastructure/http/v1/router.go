// Package v1 provides HTTP API version 1.
package v1

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"tillage/internal/core/entity"
	"tillage/internal/core/id"
	"tillage/internal/domain"
	"tillage/internal/domain/auth"
	"tillage/internal/domain/catalogs/category"
	"tillage/internal/domain/catalogs/product"
	"tillage/internal/domain/inventory"
	"tillage/internal/domain/loss"
	"tillage/internal/domain/loyalty"
	"tillage/internal/domain/receipt"
	"tillage/internal/domain/reports"
	"tillage/internal/domain/sales"
	"tillage/internal/domain/shift"
	"tillage/internal/infrastructure/http/v1/handlers"
	"tillage/internal/infrastructure/http/v1/middleware"
	"tillage/internal/infrastructure/storage/postgres"
	"tillage/internal/infrastructure/storage/postgres/catalog_repo"
	"tillage/internal/infrastructure/storage/postgres/document_repo"
	"tillage/internal/infrastructure/storage/postgres/report_repo"
	"tillage/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (health checks, idempotency)
	Pool *postgres.Pool

	// TxManager runs repository calls and transactions
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// Audit records catalog mutations; nil disables audit logging
	Audit *postgres.AuditService

	// SaleConfig tunes discount application at checkout
	SaleConfig sales.Config

	// ReceiptRenderer renders receipts after commit; nil disables receipts
	ReceiptRenderer receipt.Renderer

	// IdempotencyEnabled enables idempotency middleware
	IdempotencyEnabled bool

	// IdempotencyTTL bounds how long completed responses replay
	IdempotencyTTL time.Duration
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// Wire repositories and services against the single store database.
	baseHandler := handlers.NewBaseHandler()

	categoryRepo := catalog_repo.NewCategoryRepo(cfg.TxManager)
	categoryService := domain.NewCatalogService(domain.CatalogServiceConfig[*category.Category]{
		Repo:       categoryRepo,
		TxManager:  cfg.TxManager,
		EntityName: "category",
	})

	productRepo := catalog_repo.NewProductRepo(cfg.TxManager)
	productService := product.NewService(productRepo, cfg.TxManager)

	registerAuditHooks(cfg.Audit, "category", categoryService,
		func(c *category.Category) id.ID { return c.ID })
	registerAuditHooks(cfg.Audit, "product", productService.CatalogService,
		func(p *product.Product) id.ID { return p.ID })

	batchRepo := document_repo.NewBatchRepo(cfg.TxManager)
	inventoryService := inventory.NewService(batchRepo, productService, cfg.TxManager)

	lossRepo := document_repo.NewLossRepo(cfg.TxManager)
	lossService := loss.NewService(lossRepo, inventoryService, lossProductResolver{productService}, cfg.TxManager)

	loyaltyRepo := document_repo.NewLoyaltyRepo(cfg.TxManager)
	loyaltyService := loyalty.NewService(loyaltyRepo, cfg.TxManager)

	salesRepo := document_repo.NewSalesRepo(cfg.TxManager)
	shiftRepo := document_repo.NewShiftRepo(cfg.TxManager)
	shiftService := shift.NewService(shiftRepo, salesRepo, cfg.TxManager)

	salesService := sales.NewService(
		productService,
		inventoryService,
		shiftService,
		loyaltyService,
		salesRepo,
		cfg.TxManager,
		cfg.ReceiptRenderer,
		cfg.SaleConfig,
	)

	reportRepo := report_repo.NewReportRepo(cfg.TxManager)
	reportService := reports.NewService(reportRepo)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Public login endpoint
		authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)
		v1.POST("/auth/login", authHandler.Login)

		// Everything else requires a valid staff session
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		if cfg.IdempotencyEnabled {
			ttl := cfg.IdempotencyTTL
			if ttl <= 0 {
				ttl = 10 * time.Minute
			}
			store := postgres.NewIdempotencyStore(cfg.Pool, cfg.TxManager, ttl)
			protected.Use(middleware.Idempotency(store))
		}

		manager := middleware.RequireManager()

		// Staff management
		authGroup := protected.Group("/auth")
		{
			authGroup.GET("/me", authHandler.Me)
			authGroup.POST("/register", manager, authHandler.Register)
			authGroup.GET("/users", manager, authHandler.ListUsers)
			authGroup.POST("/users/:id/active", manager, authHandler.SetActive)
		}

		// Catalogs
		categoryHandler := handlers.NewCategoryHandler(baseHandler, categoryService)
		RegisterCatalogRoutes(protected.Group("/categories"), categoryHandler)

		productHandler := handlers.NewProductHandler(baseHandler, productService)
		products := protected.Group("/products")
		{
			RegisterCatalogRoutes(products, productHandler)
			products.GET("/barcode/:barcode", productHandler.GetByBarcode)
			products.GET("/low-stock", productHandler.LowStock)
			products.GET("/expiring", productHandler.ExpiringSoon)
			products.GET("/stock-value", manager, productHandler.StockValue)
		}

		// Inventory ledger
		inventoryHandler := handlers.NewInventoryHandler(baseHandler, inventoryService)
		inventoryGroup := protected.Group("/inventory")
		{
			inventoryGroup.POST("/batches", manager, inventoryHandler.CreateBatch)
			inventoryGroup.POST("/batches/:id/expired-handled", inventoryHandler.MarkExpiredHandled)
			inventoryGroup.GET("/products/:id/batches", inventoryHandler.ListBatches)
			inventoryGroup.GET("/products/:id/on-hand", inventoryHandler.TotalOnHand)
			inventoryGroup.GET("/products/:id/restocks", inventoryHandler.RestockHistory)
		}

		// Losses
		lossHandler := handlers.NewLossHandler(baseHandler, lossService)
		losses := protected.Group("/losses")
		{
			losses.POST("", lossHandler.Record)
			losses.GET("", lossHandler.List)
			losses.GET("/total", manager, lossHandler.TotalCost)
		}

		// Loyalty
		loyaltyHandler := handlers.NewLoyaltyHandler(baseHandler, loyaltyService)
		loyaltyGroup := protected.Group("/loyalty")
		{
			loyaltyGroup.GET("/codes/:code/validate", loyaltyHandler.ValidateCode)
			loyaltyGroup.POST("/codes", manager, loyaltyHandler.MintStaffCode)
		}

		// Checkout
		salesHandler := handlers.NewSalesHandler(baseHandler, salesService)
		salesGroup := protected.Group("/sales")
		{
			salesGroup.POST("", salesHandler.Checkout)
			salesGroup.GET("", salesHandler.List)
			salesGroup.GET("/:id", salesHandler.Get)
			salesGroup.GET("/:id/receipt", salesHandler.Receipt)
		}

		// Shifts
		shiftHandler := handlers.NewShiftHandler(baseHandler, shiftService)
		shifts := protected.Group("/shifts")
		{
			shifts.POST("/open", shiftHandler.Open)
			shifts.POST("/close", shiftHandler.Close)
			shifts.GET("/current", shiftHandler.Current)
			shifts.GET("", shiftHandler.History)
		}

		// Change trail (manager only)
		if cfg.Audit != nil {
			auditHandler := handlers.NewAuditHandler(baseHandler, cfg.Audit)
			protected.GET("/audit/:entityType/:id", manager, auditHandler.History)
		}

		// Reports (manager only)
		reportsHandler := handlers.NewReportsHandler(baseHandler, reportService)
		reportsGroup := protected.Group("/reports", manager)
		{
			reportsGroup.GET("/sales-summary", reportsHandler.SalesSummary)
			reportsGroup.GET("/weekly", reportsHandler.WeeklyBreakdown)
			reportsGroup.GET("/top-products", reportsHandler.TopProducts)
			reportsGroup.GET("/dashboard", reportsHandler.Dashboard)
		}
	}

	return router
}

// lossProductResolver narrows the product service to the loss recorder view.
type lossProductResolver struct {
	products *product.Service
}

func (r lossProductResolver) GetByID(ctx context.Context, productID id.ID) (*loss.ProductInfo, error) {
	p, err := r.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &loss.ProductInfo{
		ID:        p.ID,
		Name:      p.Name,
		CostPrice: p.CostPrice,
		IsActive:  p.IsActive,
	}, nil
}

// registerAuditHooks records catalog mutations into the audit trail.
// Hooks run inside the mutation transaction, so a failed write rolls
// the audit row back with it.
func registerAuditHooks[T entity.Validatable](
	audit *postgres.AuditService,
	entityType string,
	service *domain.CatalogService[T],
	idOf func(T) id.ID,
) {
	if audit == nil {
		return
	}

	service.Hooks().OnAfterCreate(func(ctx context.Context, e T) error {
		return audit.LogChange(ctx, entityType, idOf(e), postgres.AuditActionCreate, postgres.StructToMap(e))
	})
	service.Hooks().OnAfterUpdate(func(ctx context.Context, e T) error {
		return audit.LogChange(ctx, entityType, idOf(e), postgres.AuditActionUpdate, postgres.StructToMap(e))
	})
	service.Hooks().On(domain.AfterDelete, func(ctx context.Context, e T) error {
		return audit.LogChange(ctx, entityType, idOf(e), postgres.AuditActionDelete, postgres.StructToMap(e))
	})
}
