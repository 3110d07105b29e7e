package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/kubangab/supplier-information-import/internal/application/catalog"
	"github.com/kubangab/supplier-information-import/internal/application/importer"
	partnerapp "github.com/kubangab/supplier-information-import/internal/application/partner"
	"github.com/kubangab/supplier-information-import/internal/application/receiving"
	reportapp "github.com/kubangab/supplier-information-import/internal/application/report"
	"github.com/kubangab/supplier-information-import/internal/infrastructure/config"
	"github.com/kubangab/supplier-information-import/internal/infrastructure/logger"
	"github.com/kubangab/supplier-information-import/internal/infrastructure/persistence"
	"github.com/kubangab/supplier-information-import/internal/interfaces/http/handler"
	"github.com/kubangab/supplier-information-import/internal/interfaces/http/middleware"
	"github.com/kubangab/supplier-information-import/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting supplier information import",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Database connection
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	supplierProductRepo := persistence.NewGormSupplierProductRepository(db.DB)
	configRepo := persistence.NewGormImportConfigRepository(db.DB)
	ruleRepo := persistence.NewGormCombinationRuleRepository(db.DB)
	unmatchedRepo := persistence.NewGormUnmatchedModelRepository(db.DB)
	infoRepo := persistence.NewGormProductInfoRepository(db.DB)
	transferRepo := persistence.NewGormTransferRepository(db.DB)

	// Application services
	supplierService := partnerapp.NewSupplierService(supplierRepo, log)
	productService := catalogapp.NewProductService(productRepo, supplierProductRepo, log)
	configService := importer.NewConfigService(configRepo, supplierRepo, productRepo, log)
	analysisService := importer.NewAnalysisService(configRepo, log)
	resolver := importer.NewResolver(supplierRepo, productRepo, supplierProductRepo, ruleRepo, unmatchedRepo, log)
	importService := importer.NewImportService(configRepo, infoRepo, resolver, log,
		importer.WithChunkSize(cfg.Import.ChunkSize),
		importer.WithMaxErrors(cfg.Import.MaxErrors),
		importer.WithMaxRows(cfg.Import.MaxRows),
	)
	unmatchedService := importer.NewUnmatchedService(unmatchedRepo, productRepo, supplierProductRepo, infoRepo, log)
	receivingService := receiving.NewService(transferRepo, infoRepo, productRepo, log)
	reportService := reportapp.NewService(transferRepo, infoRepo, productRepo, reportapp.NewLogMailer(log), log,
		reportapp.WithTemplate(cfg.Report.TemplatePath),
		reportapp.WithSheetName(cfg.Report.SheetName),
	)

	// HTTP handlers
	supplierHandler := handler.NewSupplierHandler(supplierService)
	productHandler := handler.NewProductHandler(productService)
	configHandler := handler.NewConfigHandler(configService)
	importHandler := handler.NewImportHandler(importService, analysisService)
	unmatchedHandler := handler.NewUnmatchedHandler(unmatchedService)
	receivingHandler := handler.NewReceivingHandler(receivingService)
	reportHandler := handler.NewReportHandler(reportService)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID first so recovery and request logs
	// carry it, body limit last before handlers
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Partner domain (suppliers and their contacts)
	partnerRoutes := router.NewDomainGroup("partner", "/partner")
	partnerRoutes.POST("/suppliers", supplierHandler.Create)
	partnerRoutes.GET("/suppliers", supplierHandler.List)
	partnerRoutes.GET("/suppliers/:id", supplierHandler.GetByID)
	partnerRoutes.GET("/suppliers/:id/group", supplierHandler.Group)
	partnerRoutes.POST("/suppliers/:id/contacts", supplierHandler.CreateContact)
	partnerRoutes.PUT("/suppliers/:id", supplierHandler.Update)
	partnerRoutes.DELETE("/suppliers/:id", supplierHandler.Delete)

	// Catalog domain (products and supplier code associations)
	catalogRoutes := router.NewDomainGroup("catalog", "/catalog")
	catalogRoutes.POST("/products", productHandler.Create)
	catalogRoutes.GET("/products", productHandler.List)
	catalogRoutes.GET("/products/:id", productHandler.GetByID)
	catalogRoutes.PUT("/products/:id/template-code", productHandler.SetTemplateCode)
	catalogRoutes.PUT("/products/:id/purchase-price", productHandler.SetPurchasePrice)
	catalogRoutes.DELETE("/products/:id", productHandler.Delete)
	catalogRoutes.POST("/products/:id/suppliers", productHandler.AssociateSupplier)
	catalogRoutes.GET("/products/:id/suppliers", productHandler.ListSupplierCodes)

	// Import domain (configurations, file imports, analysis, unmatched)
	importRoutes := router.NewDomainGroup("import", "/import")
	importRoutes.POST("/configs", configHandler.Create)
	importRoutes.GET("/configs", configHandler.List)
	importRoutes.GET("/configs/:id", configHandler.GetByID)
	importRoutes.DELETE("/configs/:id", configHandler.Delete)
	importRoutes.POST("/configs/:id/sample", configHandler.UploadSample)
	importRoutes.PUT("/configs/:id/mappings/:mapping_id", configHandler.SetMappingDestination)
	importRoutes.POST("/configs/:id/rules", configHandler.AddRule)
	importRoutes.PUT("/configs/:id/rules/:rule_id/product", configHandler.AssignRuleProduct)
	importRoutes.POST("/configs/:id/file", importHandler.Import)
	importRoutes.POST("/configs/:id/analysis", importHandler.Analyze)
	importRoutes.POST("/configs/:id/analysis/rules", importHandler.CreateRules)
	importRoutes.GET("/suppliers/:id/records", importHandler.Records)
	importRoutes.GET("/unmatched", unmatchedHandler.List)
	importRoutes.GET("/unmatched/:id", unmatchedHandler.GetByID)
	importRoutes.PUT("/unmatched/:id/product", unmatchedHandler.AssignProduct)
	importRoutes.POST("/unmatched/:id/link", unmatchedHandler.Link)

	// Receiving domain (incoming transfers and reports)
	receivingRoutes := router.NewDomainGroup("receiving", "/receiving")
	receivingRoutes.POST("/transfers", receivingHandler.Create)
	receivingRoutes.GET("/transfers", receivingHandler.List)
	receivingRoutes.GET("/transfers/:id", receivingHandler.GetByID)
	receivingRoutes.POST("/transfers/:id/ready", receivingHandler.MarkReady)
	receivingRoutes.POST("/transfers/:id/process", receivingHandler.Process)
	receivingRoutes.POST("/transfers/:id/fill-from-pending", receivingHandler.FillFromPending)
	receivingRoutes.GET("/transfers/:id/report", reportHandler.Download)
	receivingRoutes.POST("/transfers/:id/report/email", reportHandler.Email)

	r.Register(partnerRoutes).
		Register(catalogRoutes).
		Register(importRoutes).
		Register(receivingRoutes)

	r.Setup()

	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
