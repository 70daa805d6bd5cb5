package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mwenda/sokopos-api/internal/config"
	domainRepo "github.com/mwenda/sokopos-api/internal/domain/repository"
	"github.com/mwenda/sokopos-api/internal/presentation/http/handler"
	"github.com/mwenda/sokopos-api/internal/presentation/http/middleware"
	"github.com/mwenda/sokopos-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Order    *handler.OrderHandler
	Register *handler.RegisterHandler
	Refund   *handler.RefundHandler
	Stock    *handler.StockHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		// Per-user rate limiter
		rateLimiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		// Replay protection for mutating endpoints
		idempotency := middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		})

		registerOrderRoutes(protected, h, idempotency)
		registerRegisterRoutes(protected, h, idempotency)
		registerRefundRoutes(protected, h, idempotency)
		registerStockRoutes(protected, h, idempotency)
	}

	return router
}

func registerOrderRoutes(protected *gin.RouterGroup, h *Handlers, idempotency gin.HandlerFunc) {
	orders := protected.Group("/orders")
	{
		orders.GET("", h.Order.List)
		orders.POST("", idempotency, h.Order.Create)
		orders.GET("/stats", h.Order.Stats)
		orders.GET("/code/:code", h.Order.GetByCode)
		orders.GET("/:id", h.Order.Get)
		orders.POST("/:id/payments", idempotency, h.Order.AddPayment)
		orders.PATCH("/:id/status", h.Order.UpdateStatus)
		orders.POST("/:id/void", middleware.RequireRole("admin", "manager"), h.Order.Void)
		orders.POST("/:id/refunds", idempotency, h.Refund.Create)
	}
}

func registerRegisterRoutes(protected *gin.RouterGroup, h *Handlers, idempotency gin.HandlerFunc) {
	registers := protected.Group("/registers")
	{
		registers.GET("", h.Register.List)
		registers.GET("/:id", h.Register.Get)
		registers.GET("/:id/history", h.Register.History)
		registers.POST("/:id/open", h.Register.Open)
		registers.POST("/:id/close", h.Register.Close)
		registers.POST("/:id/cash-in", idempotency, h.Register.CashIn)
		registers.POST("/:id/cash-out", idempotency, h.Register.CashOut)
	}
}

func registerRefundRoutes(protected *gin.RouterGroup, h *Handlers, idempotency gin.HandlerFunc) {
	refunds := protected.Group("/refunds")
	{
		refunds.GET("", h.Refund.List)
		refunds.GET("/:id", h.Refund.Get)
		refunds.POST("/:id/process", middleware.RequireRole("admin", "manager"), idempotency, h.Refund.Process)
	}
}

func registerStockRoutes(protected *gin.RouterGroup, h *Handlers, idempotency gin.HandlerFunc) {
	protected.POST("/stock-batches", idempotency, h.Stock.ReceiveBatch)

	products := protected.Group("/products")
	{
		products.GET("/low-stock", h.Stock.GetLowStock)
		products.GET("/:id/batches", h.Stock.ListBatches)
		products.GET("/:id/quantity", h.Stock.GetQuantity)
	}
}
