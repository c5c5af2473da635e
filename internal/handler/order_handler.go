package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests. The lines come from the session cart.
func (h *OrderHandler) Create(c *gin.Context) {
	session, err := cartSession(c)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	var req model.PlaceOrderRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err, h.logger)
		return
	}
	req.SessionID = session
	req.UserID = middleware.UserID(c)
	req.RemoteIP = c.ClientIP()

	resp, err := h.service.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetByNumber handles GET /api/orders/:orderNumber requests.
func (h *OrderHandler) GetByNumber(c *gin.Context) {
	order, err := h.service.GetByNumber(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, order)
}
