package handler

import (
	"net/http"
	"slices"

	"storefront/internal/checkout"
	"storefront/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type advanceRequest struct {
	Step checkout.Step `json:"step"`
	checkout.Form
}

type advanceResponse struct {
	Valid bool          `json:"valid"`
	Next  checkout.Step `json:"next"`
}

type optionsResponse struct {
	Regions         []string               `json:"regions"`
	DeliveryMethods []model.DeliveryMethod `json:"deliveryMethods"`
	PaymentMethods  []model.PaymentMethod  `json:"paymentMethods"`
}

// CheckoutHandler serves the checkout wizard.
type CheckoutHandler struct {
	validator *checkout.Validator
	options   optionsResponse
	logger    zerolog.Logger
}

// NewCheckoutHandler creates a checkout handler offering the given gateway methods plus cash.
func NewCheckoutHandler(validator *checkout.Validator, gatewayMethods []model.PaymentMethod, logger zerolog.Logger) *CheckoutHandler {
	methods := slices.Clone(gatewayMethods)
	slices.Sort(methods)
	methods = append(methods, model.PaymentCash)

	return &CheckoutHandler{
		validator: validator,
		options: optionsResponse{
			Regions:         checkout.Regions,
			DeliveryMethods: []model.DeliveryMethod{model.DeliveryPickup, model.DeliveryDoorstep},
			PaymentMethods:  methods,
		},
		logger: logger.With().Str("handler", "checkout").Logger(),
	}
}

// Options handles GET /api/checkout/options.
func (h *CheckoutHandler) Options(c *gin.Context) {
	c.JSON(http.StatusOK, h.options)
}

// Validate handles POST /api/checkout/validate, validating the current step only.
func (h *CheckoutHandler) Validate(c *gin.Context) {
	var req advanceRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err, h.logger)
		return
	}
	req.Shipping = checkout.NormalizeShipping(req.Shipping)

	next, err := h.validator.Advance(req.Step, req.Form)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, advanceResponse{Valid: true, Next: next})
}
