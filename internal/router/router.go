package router

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the router's security settings.
type Config struct {
	APIKey         string
	JWTSecret      string
	AllowedOrigins []string
}

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Products *handler.ProductHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Orders   *handler.OrderHandler
	Payments *handler.PaymentHandler
}

// New creates a gin engine with all routes and middleware configured.
func New(cfg Config, h Handlers, db Pinger, logger zerolog.Logger) *gin.Engine {
	r := gin.New()

	// Order: Recovery -> RequestID -> Logging -> CORS
	r.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logging(logger),
		cors.New(corsConfig(cfg.AllowedOrigins)),
	)

	// Health endpoints (no authentication required)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	r.GET("/ready", readyHandler(db))

	api := r.Group("/api",
		middleware.APIKeyAuth(cfg.APIKey, logger),
		middleware.OptionalUser(cfg.JWTSecret, logger),
	)

	api.GET("/products", h.Products.GetAll)
	api.GET("/products/:ref", h.Products.GetByRef)

	api.GET("/cart", h.Cart.Get)
	api.DELETE("/cart", h.Cart.Clear)
	api.POST("/cart/items", h.Cart.AddItem)
	api.PATCH("/cart/items/:id", h.Cart.UpdateItem)
	api.DELETE("/cart/items/:id", h.Cart.RemoveItem)

	api.GET("/checkout/options", h.Checkout.Options)
	api.POST("/checkout/validate", h.Checkout.Validate)

	api.POST("/orders", h.Orders.Create)
	api.GET("/orders/:orderNumber", h.Orders.GetByNumber)

	api.POST("/payment/verify", h.Payments.Verify)
	api.POST("/payment/:method", h.Payments.Initialize)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			"Content-Type",
			"Authorization",
			middleware.APIKeyHeader,
			middleware.RequestIDHeader,
			handler.CartSessionHeader,
		},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func readyHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "db not configured"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "db not reachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
