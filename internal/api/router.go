package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/api/handlers"
	"github.com/anchorfit/storefront/internal/api/middleware"
	"github.com/anchorfit/storefront/internal/cache"
	"github.com/anchorfit/storefront/internal/config"
	"github.com/anchorfit/storefront/internal/notify"
	"github.com/anchorfit/storefront/internal/repository"
	"github.com/anchorfit/storefront/internal/service"
)

// Deps are the outbound collaborators the routes depend on
type Deps struct {
	Gateway  service.PaymentGateway
	Notifier notify.Notifier
	// Cache backs request idempotency; nil disables it
	Cache cache.Cache
}

// NewRouter creates and configures the Gin router. The returned drain func
// blocks until background webhook work has finished.
func NewRouter(cfg *config.Config, repos *repository.Repositories, deps Deps, logger *zap.Logger) (*gin.Engine, func()) {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	auth := service.NewAuthService(repos, []byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL, logger)
	discounts := service.NewDiscountService(repos, logger)
	checkout := service.NewCheckoutService(repos, deps.Gateway, cfg.Paystack.Timeout, logger)
	webhooks := service.NewWebhookService(repos, deps.Notifier, cfg.Notify.Timeout, logger)
	orders := service.NewOrderService(repos, logger)

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	requireAuth := middleware.AuthMiddleware(auth, repos.User, logger)

	api := router.Group("/api")
	{
		api.GET("/health", handlers.HandleHealth(repos.Ping, logger))

		api.POST("/auth/signin", handlers.HandleSignIn(auth, logger))
		api.GET("/auth/me", requireAuth, handlers.HandleMe(auth, logger))
		api.POST("/admin/login", handlers.HandleAdminLogin(auth, logger))

		api.POST("/discount/validate", handlers.HandleValidateDiscount(discounts, logger))

		// Gateway callback, authenticated by signature only
		api.POST("/paystack-webhook", handlers.HandlePaystackWebhook(webhooks, cfg.Paystack.SecretKey, logger))

		customer := api.Group("")
		customer.Use(requireAuth)
		{
			customer.POST("/process-payment",
				middleware.IdempotencyMiddleware(deps.Cache, cfg.Redis.IdempotencyTTL, logger),
				handlers.HandleProcessPayment(checkout, logger),
			)
			customer.GET("/orders", handlers.HandleListMyOrders(orders, logger))
		}

		admin := api.Group("/admin")
		admin.Use(requireAuth, middleware.RequireAdmin(logger))
		{
			admin.GET("/orders", handlers.HandleListOrders(orders, logger))
			admin.POST("/orders/:id/shipping", handlers.HandleUpdateShipping(orders, logger))
			admin.GET("/orders/:id/events", handlers.HandleOrderHistory(orders, logger))
			admin.POST("/generate-promo", handlers.HandleGeneratePromo(discounts, logger))
			admin.GET("/promo-codes", handlers.HandleListPromoCodes(discounts, logger))
			admin.POST("/promo-codes/:code/deactivate", handlers.HandleDeactivatePromo(discounts, logger))
		}
	}

	return router, webhooks.Wait
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
