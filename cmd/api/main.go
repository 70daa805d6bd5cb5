package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/mwenda/sokopos-api/internal/application/service"
	"github.com/mwenda/sokopos-api/internal/cache"
	"github.com/mwenda/sokopos-api/internal/config"
	"github.com/mwenda/sokopos-api/internal/infrastructure/database"
	"github.com/mwenda/sokopos-api/internal/infrastructure/repository"
	"github.com/mwenda/sokopos-api/internal/presentation/http/handler"
	"github.com/mwenda/sokopos-api/internal/presentation/http/routes"
	"github.com/mwenda/sokopos-api/pkg/notify"
	"github.com/mwenda/sokopos-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed default data
	if err := database.SeedDefaultData(db, cfg.Order.CodePrefix); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	// Initialize the stock quantity cache
	var stockCache cache.StockQuantityCache = cache.NoopStockQuantityCache{}
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisStockQuantityCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := redisCache.Ping(context.Background()); err != nil {
			log.Printf("Warning: Redis unavailable, stock cache disabled: %v", err)
		} else {
			stockCache = redisCache
			defer redisCache.Close()
		}
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Initialize the register notifier
	var notifier notify.Notifier = notify.NoopNotifier{}
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notify.WebhookURL)
	}

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(db)
	lineItemRepo := repository.NewOrderLineItemRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	productRepo := repository.NewProductRepository(db)
	batchRepo := repository.NewStockBatchRepository(db)
	deductionRepo := repository.NewBatchDeductionRepository(db)
	registerRepo := repository.NewRegisterRepository(db)
	historyRepo := repository.NewRegisterHistoryRepository(db)
	refundRepo := repository.NewRefundRepository(db)
	refundLineRepo := repository.NewRefundLineItemRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize services
	allocator := service.NewStockAllocator(batchRepo, productRepo, stockCache)
	ledger := service.NewPaymentLedger(paymentRepo, orderRepo)
	orderService := service.NewOrderService(
		orderRepo, lineItemRepo, paymentRepo, deductionRepo,
		productRepo, registerRepo, customerRepo, settingsRepo,
		allocator, ledger, cfg.Order.AllowOversell,
	)
	registerService := service.NewRegisterService(registerRepo, historyRepo, notifier)
	refundService := service.NewRefundService(refundRepo, refundLineRepo, orderRepo, productRepo, stockCache)
	stockService := service.NewStockService(productRepo, batchRepo, stockCache)

	// Initialize handlers
	handlers := &routes.Handlers{
		Order:    handler.NewOrderHandler(orderService),
		Register: handler.NewRegisterHandler(registerService),
		Refund:   handler.NewRefundHandler(refundService),
		Stock:    handler.NewStockHandler(stockService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
	})

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
	log.Printf("Environment: %s", cfg.App.Env)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
