package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusFulfilled  OrderStatus = "fulfilled"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus only moves pending -> paid or pending -> failed.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// DeliveryMethod is how the buyer receives the goods.
type DeliveryMethod string

const (
	DeliveryPickup   DeliveryMethod = "pickup"
	DeliveryDoorstep DeliveryMethod = "doorstep"
)

// Valid reports whether d is a known delivery method.
func (d DeliveryMethod) Valid() bool {
	return d == DeliveryPickup || d == DeliveryDoorstep
}

// PaymentMethod selects the payment gateway stored on the order.
type PaymentMethod string

const (
	PaymentPaystack PaymentMethod = "paystack"
	PaymentMoolre   PaymentMethod = "moolre"
	PaymentStripe   PaymentMethod = "stripe"
	PaymentPayPal   PaymentMethod = "paypal"
	PaymentCash     PaymentMethod = "cash"
)

// Valid reports whether p is a known payment method.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentPaystack, PaymentMoolre, PaymentStripe, PaymentPayPal, PaymentCash:
		return true
	}
	return false
}

// Manual reports whether p bypasses the gateway path.
func (p PaymentMethod) Manual() bool {
	return p == PaymentCash
}

// ShippingDetails is the buyer identity and destination collected at checkout.
type ShippingDetails struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,looseemail"`
	Phone     string `json:"phone" validate:"required"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city" validate:"required"`
	Region    string `json:"region" validate:"required,region"`
}

// FullName joins first and last name.
func (s ShippingDetails) FullName() string {
	switch {
	case s.FirstName == "":
		return s.LastName
	case s.LastName == "":
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// OrderMetadata is stored as JSON on the order row.
type OrderMetadata struct {
	GuestCheckout  bool          `json:"guest_checkout"`
	FirstName      string        `json:"first_name"`
	LastName       string        `json:"last_name"`
	TrackingNumber string        `json:"tracking_number"`
	PaymentMethod  PaymentMethod `json:"payment_method"`
	PromoCode      string        `json:"promo_code,omitempty"`
	PaymentFailure string        `json:"payment_failure,omitempty"`
}

// Order represents a customer order.
type Order struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	OrderNumber      string          `json:"orderNumber" db:"order_number"`
	UserID           *uuid.UUID      `json:"userId,omitempty" db:"user_id"`
	Email            string          `json:"email" db:"email"`
	Phone            string          `json:"phone" db:"phone"`
	Status           OrderStatus     `json:"status" db:"status"`
	PaymentStatus    PaymentStatus   `json:"paymentStatus" db:"payment_status"`
	Currency         string          `json:"currency" db:"currency"`
	Subtotal         decimal.Decimal `json:"subtotal" db:"subtotal"`
	TaxTotal         decimal.Decimal `json:"taxTotal" db:"tax_total"`
	ShippingTotal    decimal.Decimal `json:"shippingTotal" db:"shipping_total"`
	DiscountTotal    decimal.Decimal `json:"discountTotal" db:"discount_total"`
	Total            decimal.Decimal `json:"total" db:"total"`
	ShippingMethod   DeliveryMethod  `json:"shippingMethod" db:"shipping_method"`
	PaymentMethod    PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	ShippingAddress  ShippingDetails `json:"shippingAddress" db:"shipping_address"`
	BillingAddress   ShippingDetails `json:"billingAddress" db:"billing_address"`
	Metadata         OrderMetadata   `json:"metadata" db:"metadata"`
	PaymentReference *string         `json:"paymentReference,omitempty" db:"payment_reference"`
	PaidAt           *time.Time      `json:"paidAt,omitempty" db:"paid_at"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItemMetadata holds the product snapshot taken at order time.
type OrderItemMetadata struct {
	Image            string `json:"image,omitempty"`
	Slug             string `json:"slug,omitempty"`
	PreorderShipping any    `json:"preorder_shipping"`
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID          uuid.UUID         `json:"id" db:"id"`
	OrderID     uuid.UUID         `json:"orderId" db:"order_id"`
	ProductID   uuid.UUID         `json:"productId" db:"product_id"`
	ProductName string            `json:"productName" db:"product_name"`
	VariantName *string           `json:"variantName,omitempty" db:"variant_name"`
	Quantity    int               `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal   `json:"unitPrice" db:"unit_price"`
	TotalPrice  decimal.Decimal   `json:"totalPrice" db:"total_price"`
	Metadata    OrderItemMetadata `json:"metadata" db:"metadata"`
}

// PlaceOrderRequest is the checkout submission; the lines come from the session cart.
type PlaceOrderRequest struct {
	SessionID      string          `json:"-"`
	UserID         *uuid.UUID      `json:"-"`
	RemoteIP       string          `json:"-"`
	Shipping       ShippingDetails `json:"shipping"`
	DeliveryMethod DeliveryMethod  `json:"deliveryMethod"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod"`
	PromoCode      string          `json:"promoCode,omitempty"`
	CaptchaToken   string          `json:"captchaToken,omitempty"`
}

// Next actions returned to the storefront after placing an order.
const (
	NextRedirect     = "redirect"
	NextConfirmation = "confirmation"
)

// PlaceOrderResponse tells the storefront where to send the buyer next.
type PlaceOrderResponse struct {
	OrderNumber    string          `json:"orderNumber"`
	TrackingNumber string          `json:"trackingNumber"`
	Total          decimal.Decimal `json:"total"`
	Currency       string          `json:"currency"`
	Next           string          `json:"next"`
	RedirectURL    string          `json:"redirectUrl"`
}

// OrderResponse represents the response payload for an order.
type OrderResponse struct {
	Order *Order      `json:"order"`
	Items []OrderItem `json:"items"`
}
