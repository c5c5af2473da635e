package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PayPalConfig configures the PayPal Orders v2 adapter.
type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
}

// tokenRefreshMargin renews the access token before PayPal expires it.
const tokenRefreshMargin = time.Minute

type paypalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalPurchaseUnit struct {
	ReferenceID string       `json:"reference_id"`
	InvoiceID   string       `json:"invoice_id,omitempty"`
	Amount      paypalAmount `json:"amount"`
}

type paypalCreateOrder struct {
	Intent             string               `json:"intent"`
	PurchaseUnits      []paypalPurchaseUnit `json:"purchase_units"`
	ApplicationContext struct {
		ReturnURL  string `json:"return_url"`
		CancelURL  string `json:"cancel_url"`
		UserAction string `json:"user_action"`
	} `json:"application_context"`
}

type paypalLink struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type paypalOrder struct {
	ID            string               `json:"id"`
	Status        string               `json:"status"`
	Links         []paypalLink         `json:"links"`
	PurchaseUnits []paypalPurchaseUnit `json:"purchase_units"`
}

type paypalToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// paypal implements Gateway with PayPal Orders v2. The PayPal order id is the transaction reference.
type paypal struct {
	api apiClient
	cfg PayPalConfig
	now func() time.Time

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// NewPayPal creates the PayPal adapter.
func NewPayPal(cfg PayPalConfig, client *http.Client, logger zerolog.Logger) Gateway {
	return &paypal{
		api: newAPIClient(model.PaymentPayPal, cfg.BaseURL, client, logger, paypalErrorMessage),
		cfg: cfg,
		now: time.Now,
	}
}

func paypalErrorMessage(body []byte) string {
	var payload struct {
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Details          []struct {
			Description string `json:"description"`
		} `json:"details"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	switch {
	case len(payload.Details) > 0 && payload.Details[0].Description != "":
		return payload.Details[0].Description
	case payload.Message != "":
		return payload.Message
	}
	return payload.ErrorDescription
}

func (p *paypal) Method() model.PaymentMethod { return model.PaymentPayPal }

// token returns a cached OAuth access token, fetching a new one when close to expiry.
func (p *paypal) token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && p.now().Before(p.expiresAt) {
		return p.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.api.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build paypal token request: %w", err)
	}
	req.SetBasicAuth(p.cfg.ClientID, p.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var tok paypalToken
	if err := p.api.do(req, &tok); err != nil {
		return "", err
	}

	p.accessToken = tok.AccessToken
	p.expiresAt = p.now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenRefreshMargin)
	return p.accessToken, nil
}

func (p *paypal) call(ctx context.Context, method, path string, payload, out any) error {
	tok, err := p.token(ctx)
	if err != nil {
		return err
	}
	req, err := p.api.newJSONRequest(ctx, method, path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	return p.api.do(req, out)
}

func (p *paypal) Initialize(ctx context.Context, in InitRequest) (*InitResult, error) {
	returnTo, err := returnURL(in.CallbackURL, in.OrderReference, map[string]string{"payment_success": "true"})
	if err != nil {
		return nil, err
	}
	cancel, err := returnURL(in.CallbackURL, in.OrderReference, map[string]string{"payment_cancelled": "true"})
	if err != nil {
		return nil, err
	}

	body := paypalCreateOrder{
		Intent: "CAPTURE",
		PurchaseUnits: []paypalPurchaseUnit{{
			ReferenceID: in.OrderReference,
			InvoiceID:   in.OrderReference,
			Amount: paypalAmount{
				CurrencyCode: strings.ToUpper(in.Currency),
				Value:        in.Amount.StringFixed(2),
			},
		}},
	}
	body.ApplicationContext.ReturnURL = returnTo
	body.ApplicationContext.CancelURL = cancel
	body.ApplicationContext.UserAction = "PAY_NOW"

	var order paypalOrder
	if err := p.call(ctx, http.MethodPost, "/v2/checkout/orders", body, &order); err != nil {
		return nil, err
	}

	for _, link := range order.Links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			p.api.logger.Info().
				Str("order_number", in.OrderReference).
				Str("paypal_order_id", order.ID).
				Msg("paypal order created")
			return &InitResult{URL: link.Href, Reference: order.ID}, nil
		}
	}

	return nil, &GatewayError{Gateway: model.PaymentPayPal, StatusCode: http.StatusOK, Message: "PayPal did not return an approval link"}
}

// Verify captures an approved order and reports COMPLETED as confirmed.
func (p *paypal) Verify(ctx context.Context, reference string) (*Verification, error) {
	var order paypalOrder
	if err := p.call(ctx, http.MethodGet, "/v2/checkout/orders/"+url.PathEscape(reference), nil, &order); err != nil {
		return nil, err
	}

	if order.Status == "APPROVED" {
		var captured paypalOrder
		err := p.call(ctx, http.MethodPost, "/v2/checkout/orders/"+url.PathEscape(reference)+"/capture", struct{}{}, &captured)
		if err != nil {
			return nil, err
		}
		order.Status = captured.Status
	}

	v := &Verification{GatewayStatus: order.Status, Reference: order.ID}
	if len(order.PurchaseUnits) > 0 {
		unit := order.PurchaseUnits[0]
		v.OrderReference = unit.ReferenceID
		if v.OrderReference == "" {
			v.OrderReference = unit.InvoiceID
		}
		v.Currency = strings.ToUpper(unit.Amount.CurrencyCode)
		if amount, err := decimal.NewFromString(unit.Amount.Value); err == nil {
			v.Amount = amount
		}
	}

	switch order.Status {
	case "COMPLETED":
		v.Status = StatusConfirmed
	case "VOIDED":
		v.Status = StatusFailed
	default:
		v.Status = StatusPending
	}
	return v, nil
}
