package model

import "github.com/shopspring/decimal"

// PaymentInitRequest is the body accepted by the per-gateway initialisation endpoint.
// Amount and CustomerEmail are informational; the stored order total and email are charged.
type PaymentInitRequest struct {
	OrderID       string          `json:"orderId"`
	Amount        decimal.Decimal `json:"amount"`
	CustomerEmail string          `json:"customerEmail"`
}

// PaymentInitResponse mirrors what the storefront expects from a gateway adapter.
type PaymentInitResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Message string `json:"message,omitempty"`
}

// VerifyPaymentRequest asks for a gateway transaction to be confirmed.
// Reference defaults to the order number when empty.
type VerifyPaymentRequest struct {
	OrderNumber string `json:"orderNumber"`
	Reference   string `json:"reference,omitempty"`
}

// VerifyPaymentResponse is returned to the order-success page, which may poll again.
type VerifyPaymentResponse struct {
	Success       bool          `json:"success"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Message       string        `json:"message"`
}
