package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"retailpos/internal/config"
	"retailpos/internal/handler"
	"retailpos/internal/infra"
	"retailpos/internal/middleware"
	"retailpos/internal/repository"
	"retailpos/internal/service"
	"retailpos/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	sessionSvc := service.NewSessionService(rdb, time.Duration(cfg.HeldCartTTLHours)*time.Hour, decimal.NewFromFloat(cfg.DefaultTaxRate))
	catalogSvc := service.NewCatalogService(productRepo)
	customerSvc := service.NewCustomerService(customerRepo)
	batchSvc := service.NewBatchService(batchRepo, productRepo)
	cartSvc := service.NewCartService(sessionSvc, productRepo, customerRepo, batchRepo)
	checkoutSvc := service.NewCheckoutService(sessionSvc, invoiceRepo, productRepo, batchRepo, dispatcher)
	reportSvc := service.NewReportService(invoiceRepo)
	scanSvc := service.NewScanService(rdb)

	// ── Handlers ─────────────────────────────────────────────────────────────
	productsH := handler.NewProductsHandler(catalogSvc)
	customersH := handler.NewCustomersHandler(customerSvc)
	batchesH := handler.NewBatchesHandler(batchSvc)
	cartH := handler.NewCartHandler(sessionSvc, cartSvc)
	checkoutH := handler.NewCheckoutHandler(checkoutSvc)
	reportsH := handler.NewReportsHandler(reportSvc)
	scanH := handler.NewScanHandler(scanSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb, smtpCB))

	v1 := r.Group("/v1")
	{
		// Catalog
		v1.POST("/products", productsH.Create)
		v1.GET("/products", productsH.List)
		v1.GET("/products/:id", productsH.Get)
		v1.GET("/products/barcode/:code", productsH.GetByBarcode)
		v1.PUT("/products/:id", productsH.Update)
		v1.DELETE("/products/:id", productsH.Deactivate)
		v1.POST("/products/:id/reactivate", productsH.Reactivate)
		v1.POST("/products/:id/variants", productsH.AddVariant)
		v1.GET("/products/:id/batches", batchesH.ListByProduct)

		// Stock batches
		v1.POST("/batches", batchesH.Receive)

		// Customers
		v1.POST("/customers", customersH.Create)
		v1.GET("/customers", customersH.List)
		v1.GET("/customers/:id", customersH.Get)
		v1.PUT("/customers/:id", customersH.Update)
		v1.DELETE("/customers/:id", customersH.Deactivate)

		// Cart sessions
		v1.POST("/sessions", cartH.OpenSession)
		v1.DELETE("/sessions/:sid", cartH.CloseSession)
		v1.GET("/sessions/:sid/cart", cartH.Get)
		v1.DELETE("/sessions/:sid/cart", cartH.Clear)
		v1.POST("/sessions/:sid/cart/items", cartH.AddItem)
		v1.DELETE("/sessions/:sid/cart/items/:index", cartH.RemoveItem)
		v1.PUT("/sessions/:sid/cart/items/:index/quantity", cartH.UpdateQuantity)
		v1.PUT("/sessions/:sid/cart/items/:index/price", cartH.UpdatePrice)
		v1.PUT("/sessions/:sid/cart/items/:index/batch", cartH.UpdateBatch)
		v1.PUT("/sessions/:sid/cart/discount", cartH.SetDiscount)
		v1.PUT("/sessions/:sid/cart/tax", cartH.SetTaxRate)
		v1.PUT("/sessions/:sid/cart/customer", cartH.SetCustomer)

		// Hold / resume
		v1.POST("/sessions/:sid/cart/hold", cartH.Hold)
		v1.POST("/sessions/:sid/cart/resume/:hold", cartH.Resume)
		v1.GET("/held-carts", cartH.ListHeld)

		// Barcode scan relay
		v1.POST("/sessions/:sid/scan", scanH.Push)
		v1.GET("/sessions/:sid/scan", scanH.Await)

		// Checkout and invoices
		v1.POST("/sessions/:sid/checkout", checkoutH.Checkout)
		v1.GET("/invoices", checkoutH.List)
		v1.GET("/invoices/:id", checkoutH.Get)

		// Reports
		v1.GET("/reports/daily", reportsH.DailySummary)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
