package handler

import (
	"errors"
	"net/http"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CartSessionHeader identifies the buyer's cart.
const CartSessionHeader = "X-Cart-Session"

var (
	errInvalidJSON    = model.NewDomainError(model.ErrCodeInvalidJSON, "invalid request body")
	errMissingSession = model.NewDomainError(model.ErrCodeMissingField, CartSessionHeader+" header is required")
)

// statusByCode maps domain error codes to HTTP status codes. Unlisted codes are 400.
var statusByCode = map[string]int{
	model.ErrCodeProductNotFound:      http.StatusNotFound,
	model.ErrCodeVariantNotFound:      http.StatusNotFound,
	model.ErrCodeCartItemNotFound:     http.StatusNotFound,
	model.ErrCodeOrderNotFound:        http.StatusNotFound,
	model.ErrCodeDuplicateOrderNumber: http.StatusConflict,
	model.ErrCodeOrderNotPending:      http.StatusConflict,
	model.ErrCodeCaptchaFailed:        http.StatusForbidden,
	model.ErrCodeForbidden:            http.StatusForbidden,
	model.ErrCodeUnauthorised:         http.StatusUnauthorized,
	model.ErrCodePaymentInitFailed:    http.StatusBadGateway,
	model.ErrCodePaymentVerifyFailed:  http.StatusBadGateway,
	model.ErrCodeGatewayNotConfigured: http.StatusInternalServerError,
	model.ErrCodeInternalError:        http.StatusInternalServerError,
}

// errorStatus returns the HTTP status and response body for err.
func errorStatus(err error) (int, model.ErrorResponse) {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrCodeValidationFailed,
			Message: "Please correct the highlighted fields",
			Fields:  ve.Fields,
		}
	}

	var de *model.DomainError
	if errors.As(err, &de) {
		status, ok := statusByCode[de.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		return status, model.ErrorResponse{Error: de.Code, Message: de.Message}
	}

	return http.StatusInternalServerError, model.ErrorResponse{
		Error:   model.ErrCodeInternalError,
		Message: "internal server error",
	}
}

// writeError maps err to a status code and writes a standardised error response.
func writeError(c *gin.Context, err error, logger zerolog.Logger) {
	status, body := errorStatus(err)
	body.CorrelationID = c.GetString(middleware.RequestIDKey)

	evt := logger.Warn()
	if status >= http.StatusInternalServerError {
		evt = logger.Error()
	}
	evt.Err(err).
		Int("status", status).
		Str("path", c.Request.URL.Path).
		Str("request_id", body.CorrelationID).
		Msg("handler error")

	c.AbortWithStatusJSON(status, body)
}

// bindJSON decodes the request body, reporting malformed input as INVALID_JSON.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return model.NewDomainError(errInvalidJSON.Code, errInvalidJSON.Message+": "+err.Error())
	}
	return nil
}

// cartSession reads the cart session header.
func cartSession(c *gin.Context) (string, error) {
	id := strings.TrimSpace(c.GetHeader(CartSessionHeader))
	if id == "" {
		return "", errMissingSession
	}
	return id, nil
}

// optionalString returns nil for an empty value.
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
