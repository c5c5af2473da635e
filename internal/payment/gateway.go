// Package payment adapts the storefront's hosted-checkout providers behind one Gateway interface.
package payment

import (
	"context"
	"fmt"
	"net/url"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Status is the normalised outcome of a gateway verification.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
)

// InitRequest describes a payment to start.
type InitRequest struct {
	OrderReference string
	Amount         decimal.Decimal
	CustomerEmail  string
	Currency       string
	// CallbackURL is the storefront page the buyer returns to. Adapters add the order number.
	CallbackURL string
}

// InitResult is where to send the buyer to pay.
type InitResult struct {
	URL string
	// Reference identifies the transaction at the gateway. Empty means the order number.
	Reference string
}

// Verification is a gateway's view of a transaction.
type Verification struct {
	Status        Status
	GatewayStatus string
	Reference     string
	// OrderReference is the order number the provider recorded for the transaction.
	OrderReference string
	Amount         decimal.Decimal
	// Currency is upper case. Empty when the provider does not report it.
	Currency string
}

// Gateway is implemented once per provider.
type Gateway interface {
	// Method is the payment method stored on orders paid through this gateway.
	Method() model.PaymentMethod

	// Initialize creates a hosted checkout and returns its URL.
	Initialize(ctx context.Context, req InitRequest) (*InitResult, error)

	// Verify looks a transaction up by reference.
	Verify(ctx context.Context, reference string) (*Verification, error)
}

// GatewayError is a rejection reported by the provider. Message is the provider's own text.
type GatewayError struct {
	Gateway    model.PaymentMethod
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	return e.Message
}

// Dispatcher selects a Gateway by payment method.
type Dispatcher struct {
	gateways map[model.PaymentMethod]Gateway
	logger   zerolog.Logger
}

// NewDispatcher registers gateways by their Method.
func NewDispatcher(logger zerolog.Logger, gateways ...Gateway) *Dispatcher {
	d := &Dispatcher{
		gateways: make(map[model.PaymentMethod]Gateway, len(gateways)),
		logger:   logger.With().Str("component", "payment-dispatcher").Logger(),
	}
	for _, g := range gateways {
		d.gateways[g.Method()] = g
		d.logger.Info().Str("gateway", string(g.Method())).Msg("payment gateway registered")
	}
	return d
}

// Gateway returns the adapter for method. Manual methods and unknown methods report false.
func (d *Dispatcher) Gateway(method model.PaymentMethod) (Gateway, bool) {
	g, ok := d.gateways[method]
	return g, ok
}

// Methods lists the registered payment methods.
func (d *Dispatcher) Methods() []model.PaymentMethod {
	methods := make([]model.PaymentMethod, 0, len(d.gateways))
	for m := range d.gateways {
		methods = append(methods, m)
	}
	return methods
}

// returnURL appends the order number and any extra parameters to the storefront callback.
func returnURL(base, orderNumber string, extra map[string]string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid callback url %q: %w", base, err)
	}
	q := u.Query()
	q.Set("order", orderNumber)
	for k, v := range extra {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
