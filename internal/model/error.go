package model

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string            `json:"error"`
	Message       string            `json:"message"`
	Fields        map[string]string `json:"fields,omitempty"`
	CorrelationID string            `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeMissingField         = "MISSING_FIELD"
	ErrCodeValidationFailed     = "VALIDATION_FAILED"
	ErrCodeEmptyCart            = "EMPTY_CART"
	ErrCodeCartItemNotFound     = "CART_ITEM_NOT_FOUND"
	ErrCodeCartFull             = "CART_FULL"
	ErrCodeInvalidPromoCode     = "INVALID_PROMO_CODE"
	ErrCodeInvalidPromoLength   = "INVALID_PROMO_LENGTH"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeVariantNotFound      = "VARIANT_NOT_FOUND"
	ErrCodeInvalidQuantity      = "INVALID_QUANTITY"
	ErrCodeBelowMOQ             = "QUANTITY_BELOW_MOQ"
	ErrCodeExceedsStock         = "QUANTITY_EXCEEDS_STOCK"
	ErrCodeOrderNotFound        = "ORDER_NOT_FOUND"
	ErrCodeDuplicateOrderNumber = "DUPLICATE_ORDER_NUMBER"
	ErrCodeOrderNotPending      = "ORDER_NOT_PENDING"
	ErrCodeUnsupportedPayment   = "UNSUPPORTED_PAYMENT_METHOD"
	ErrCodeGatewayNotConfigured = "GATEWAY_NOT_CONFIGURED"
	ErrCodePaymentInitFailed    = "PAYMENT_INIT_FAILED"
	ErrCodePaymentVerifyFailed  = "PAYMENT_VERIFY_FAILED"
	ErrCodeCaptchaFailed        = "CAPTCHA_FAILED"
	ErrCodeUnauthorised         = "UNAUTHORIZED"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyCart            = NewDomainError(ErrCodeEmptyCart, "Your cart is empty")
	ErrCartItemNotFound     = NewDomainError(ErrCodeCartItemNotFound, "Item is not in the cart")
	ErrInvalidPromoCode     = NewDomainError(ErrCodeInvalidPromoCode, "Promo code is not valid")
	ErrInvalidPromoLength   = NewDomainError(ErrCodeInvalidPromoLength, "Promo code must be between 4 and 32 characters")
	ErrProductNotFound      = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrVariantNotFound      = NewDomainError(ErrCodeVariantNotFound, "Variant not found")
	ErrInvalidQuantity      = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrOrderNotFound        = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrDuplicateOrderNumber = NewDomainError(ErrCodeDuplicateOrderNumber, "Order number already exists")
	ErrUnsupportedPayment   = NewDomainError(ErrCodeUnsupportedPayment, "Payment method is not supported")
	ErrPaymentMethodChanged = NewDomainError(ErrCodeUnsupportedPayment, "Payment method does not match the order")
	ErrOrderNotPending      = NewDomainError(ErrCodeOrderNotPending, "Order is no longer awaiting payment")
	ErrGatewayNotConfigured = NewDomainError(ErrCodeGatewayNotConfigured, "Payment gateway not configured")
	ErrCaptchaFailed        = NewDomainError(ErrCodeCaptchaFailed, "Security verification failed. Please try again.")
	ErrMissingOrderNumber   = NewDomainError(ErrCodeMissingField, "Order number is required")
)

// NewResolutionError names the cart item whose product reference could not be resolved.
func NewResolutionError(itemName string) *DomainError {
	return NewDomainError(
		ErrCodeProductNotFound,
		fmt.Sprintf("Product not found: %s. Please remove it from your cart and try again.", itemName),
	)
}

// NewBelowMOQError reports a quantity under the minimum order quantity.
func NewBelowMOQError(name string, moq int) *DomainError {
	return NewDomainError(ErrCodeBelowMOQ, fmt.Sprintf("Minimum order quantity for %s is %d", name, moq))
}

// NewExceedsStockError reports a quantity above the available stock.
func NewExceedsStockError(name string, stock int) *DomainError {
	return NewDomainError(ErrCodeExceedsStock, fmt.Sprintf("Only %d of %s available", stock, name))
}

// NewCartFullError reports a cart that already holds the maximum number of lines.
func NewCartFullError(maxLines int) *DomainError {
	return NewDomainError(ErrCodeCartFull, fmt.Sprintf("A cart can hold at most %d different items", maxLines))
}

// NewPaymentInitError wraps a gateway rejection with the buyer-facing message.
func NewPaymentInitError(message string) *DomainError {
	return NewDomainError(ErrCodePaymentInitFailed, message)
}

// ValidationError carries per-field messages for a rejected form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
