package handler

import (
	"net/http"

	"storefront/internal/cart"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// cartResponse is the cart as the storefront renders it.
type cartResponse struct {
	Items    []cart.Item     `json:"items"`
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func newCartResponse(items []cart.Item) cartResponse {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	if items == nil {
		items = []cart.Item{}
	}
	return cartResponse{Items: items, Count: count, Subtotal: model.RoundMoney(cart.Subtotal(items))}
}

// CartHandler handles cart HTTP requests keyed by the X-Cart-Session header.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(c *gin.Context) {
	session, err := cartSession(c)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(h.service.Items(session)))
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(c *gin.Context) {
	session, err := cartSession(c)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	var req model.AddCartItemRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err, h.logger)
		return
	}

	items, err := h.service.Add(c.Request.Context(), session, req)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(items))
}

// UpdateItem handles PATCH /api/cart/items/:id.
func (h *CartHandler) UpdateItem(c *gin.Context) {
	session, err := cartSession(c)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	var req model.UpdateCartItemRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err, h.logger)
		return
	}

	items, err := h.service.Update(session, c.Param("id"), req)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(items))
}

// RemoveItem handles DELETE /api/cart/items/:id?variant=.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	session, err := cartSession(c)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	items, err := h.service.Remove(session, c.Param("id"), optionalString(c.Query("variant")))
	if err != nil {
		writeError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(items))
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(c *gin.Context) {
	session, err := cartSession(c)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}
	h.service.Clear(session)
	c.Status(http.StatusNoContent)
}
