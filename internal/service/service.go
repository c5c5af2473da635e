package service

import (
	"context"

	"storefront/internal/cart"
	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// ProductService defines operations for the catalogue.
type ProductService interface {
	// GetAll retrieves products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByRef retrieves a single product by UUID or slug.
	GetByRef(ctx context.Context, ref string) (*model.Product, error)
}

// CartService manages session carts, snapshotting catalogue data into each line.
type CartService interface {
	// Items returns the session's cart lines.
	Items(sessionID string) []cart.Item

	// Add resolves the product and variant and appends or merges a line.
	Add(ctx context.Context, sessionID string, req model.AddCartItemRequest) ([]cart.Item, error)

	// Update sets the quantity of a line. Zero removes it.
	Update(sessionID, id string, req model.UpdateCartItemRequest) ([]cart.Item, error)

	// Remove deletes a line.
	Remove(sessionID, id string, variant *string) ([]cart.Item, error)

	// Clear empties the cart.
	Clear(sessionID string)
}

// OrderService defines operations for order placement.
type OrderService interface {
	// PlaceOrder persists the session cart as a pending order and starts payment.
	PlaceOrder(ctx context.Context, req model.PlaceOrderRequest) (*model.PlaceOrderResponse, error)

	// GetByNumber retrieves an order and its items.
	GetByNumber(ctx context.Context, orderNumber string) (*model.OrderResponse, error)
}

// PaymentService initialises and verifies gateway payments.
type PaymentService interface {
	// Initialize starts a hosted checkout with the named gateway.
	Initialize(ctx context.Context, method model.PaymentMethod, req model.PaymentInitRequest) (*model.PaymentInitResponse, error)

	// Verify confirms an order's payment with its gateway and applies the paid transition once.
	Verify(ctx context.Context, req model.VerifyPaymentRequest) (*model.VerifyPaymentResponse, error)
}

// CustomerService maintains the customer record derived from orders.
type CustomerService interface {
	// UpsertFromOrder records the buyer's contact details. Failures are logged, never returned.
	UpsertFromOrder(ctx context.Context, order *model.Order)

	// RecordPaidOrder adds a paid order to the customer's statistics. Failures are logged, never returned.
	RecordPaidOrder(ctx context.Context, email string, total decimal.Decimal)
}
