package handler

import (
	"errors"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PaymentHandler handles gateway initialisation and verification.
type PaymentHandler struct {
	service service.PaymentService
	logger  zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(service service.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger.With().Str("handler", "payment").Logger(),
	}
}

// Initialize handles POST /api/payment/:method. Failures keep the {success, message} shape.
func (h *PaymentHandler) Initialize(c *gin.Context) {
	var req model.PaymentInitRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	resp, err := h.service.Initialize(c.Request.Context(), model.PaymentMethod(c.Param("method")), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) fail(c *gin.Context, err error) {
	status, body := errorStatus(err)

	message := body.Message
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		message = ve.Error()
	}

	h.logger.Warn().Err(err).Int("status", status).Str("method", c.Param("method")).Msg("payment initialisation rejected")
	c.AbortWithStatusJSON(status, model.PaymentInitResponse{Success: false, Message: message})
}

// Verify handles POST /api/payment/verify.
func (h *PaymentHandler) Verify(c *gin.Context) {
	var req model.VerifyPaymentRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err, h.logger)
		return
	}

	resp, err := h.service.Verify(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, resp)
}
