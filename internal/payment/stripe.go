package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// StripeConfig configures the Stripe Checkout adapter.
type StripeConfig struct {
	SecretKey string
	BaseURL   string
}

// stripeSessionPlaceholder is substituted by Stripe with the session id on redirect.
const stripeSessionPlaceholder = "{CHECKOUT_SESSION_ID}"

type stripeSession struct {
	ID                string `json:"id"`
	URL               string `json:"url"`
	Status            string `json:"status"`
	PaymentStatus     string `json:"payment_status"`
	AmountTotal       int64  `json:"amount_total"`
	Currency          string `json:"currency"`
	ClientReferenceID string `json:"client_reference_id"`
}

// stripe implements Gateway with Checkout Sessions. The session id is the transaction reference.
type stripe struct {
	api       apiClient
	secretKey string
}

// NewStripe creates the Stripe adapter.
func NewStripe(cfg StripeConfig, client *http.Client, logger zerolog.Logger) Gateway {
	return &stripe{
		api:       newAPIClient(model.PaymentStripe, cfg.BaseURL, client, logger, stripeErrorMessage),
		secretKey: cfg.SecretKey,
	}
}

func stripeErrorMessage(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error.Message
}

func (s *stripe) Method() model.PaymentMethod { return model.PaymentStripe }

func (s *stripe) newFormRequest(ctx context.Context, path string, form url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.api.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build stripe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	return req, nil
}

func (s *stripe) Initialize(ctx context.Context, in InitRequest) (*InitResult, error) {
	success, err := returnURL(in.CallbackURL, in.OrderReference, map[string]string{"payment_success": "true"})
	if err != nil {
		return nil, err
	}
	cancel, err := returnURL(in.CallbackURL, in.OrderReference, map[string]string{"payment_cancelled": "true"})
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("customer_email", in.CustomerEmail)
	form.Set("client_reference_id", in.OrderReference)
	form.Set("success_url", success+"&reference="+stripeSessionPlaceholder)
	form.Set("cancel_url", cancel)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(in.Currency))
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(model.MinorUnits(in.Amount), 10))
	form.Set("line_items[0][price_data][product_data][name]", "Order "+in.OrderReference)
	form.Set("metadata[order_number]", in.OrderReference)

	req, err := s.newFormRequest(ctx, "/v1/checkout/sessions", form)
	if err != nil {
		return nil, err
	}

	var session stripeSession
	if err := s.api.do(req, &session); err != nil {
		return nil, err
	}
	if session.URL == "" {
		return nil, &GatewayError{Gateway: model.PaymentStripe, StatusCode: http.StatusOK, Message: "Stripe did not return a checkout URL"}
	}

	s.api.logger.Info().
		Str("order_number", in.OrderReference).
		Str("session_id", session.ID).
		Msg("stripe checkout session created")

	return &InitResult{URL: session.URL, Reference: session.ID}, nil
}

func (s *stripe) Verify(ctx context.Context, reference string) (*Verification, error) {
	req, err := s.api.newJSONRequest(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)

	var session stripeSession
	if err := s.api.do(req, &session); err != nil {
		return nil, err
	}

	v := &Verification{
		GatewayStatus:  session.PaymentStatus,
		Reference:      session.ID,
		OrderReference: session.ClientReferenceID,
		Amount:         decimal.New(session.AmountTotal, -2),
		Currency:       strings.ToUpper(session.Currency),
	}
	switch {
	case session.PaymentStatus == "paid" || session.PaymentStatus == "no_payment_required":
		v.Status = StatusConfirmed
	case session.Status == "expired":
		v.Status = StatusFailed
		v.GatewayStatus = session.Status
	default:
		v.Status = StatusPending
	}
	return v, nil
}
