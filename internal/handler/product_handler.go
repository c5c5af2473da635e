package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// GetAll handles GET /api/products requests with pagination.
func (h *ProductHandler) GetAll(c *gin.Context) {
	limit := 10
	if s := c.Query("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			writeError(c, model.NewDomainError(model.ErrCodeValidationFailed, "invalid limit parameter"), h.logger)
			return
		}
		limit = v
	}

	offset := 0
	if s := c.Query("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			writeError(c, model.NewDomainError(model.ErrCodeValidationFailed, "invalid offset parameter"), h.logger)
			return
		}
		offset = v
	}

	products, err := h.service.GetAll(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, products)
}

// GetByRef handles GET /api/products/:ref requests. ref is a UUID or a slug.
func (h *ProductHandler) GetByRef(c *gin.Context) {
	product, err := h.service.GetByRef(c.Request.Context(), c.Param("ref"))
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, product)
}
