package payment

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PaystackConfig configures the Paystack adapter.
type PaystackConfig struct {
	SecretKey string
	BaseURL   string
}

type paystackInitRequest struct {
	Email       string   `json:"email"`
	Amount      int64    `json:"amount"`
	Reference   string   `json:"reference"`
	Currency    string   `json:"currency"`
	CallbackURL string   `json:"callback_url"`
	Channels    []string `json:"channels,omitempty"`
}

type paystackInitResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type paystackVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
	} `json:"data"`
}

// paystack implements Gateway for card and mobile money through Paystack.
type paystack struct {
	api       apiClient
	secretKey string
}

// NewPaystack creates the Paystack adapter. The order number is used as the transaction reference.
func NewPaystack(cfg PaystackConfig, client *http.Client, logger zerolog.Logger) Gateway {
	return &paystack{
		api:       newAPIClient(model.PaymentPaystack, cfg.BaseURL, client, logger, messageField),
		secretKey: cfg.SecretKey,
	}
}

func (p *paystack) Method() model.PaymentMethod { return model.PaymentPaystack }

func (p *paystack) Initialize(ctx context.Context, in InitRequest) (*InitResult, error) {
	callback, err := returnURL(in.CallbackURL, in.OrderReference, map[string]string{"payment_success": "true"})
	if err != nil {
		return nil, err
	}

	req, err := p.api.newJSONRequest(ctx, http.MethodPost, "/transaction/initialize", paystackInitRequest{
		Email:       in.CustomerEmail,
		Amount:      model.MinorUnits(in.Amount),
		Reference:   in.OrderReference,
		Currency:    in.Currency,
		CallbackURL: callback,
		Channels:    []string{"card", "mobile_money"},
	})
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)

	var resp paystackInitResponse
	if err := p.api.do(req, &resp); err != nil {
		return nil, err
	}
	if !resp.Status || resp.Data.AuthorizationURL == "" {
		return nil, &GatewayError{Gateway: model.PaymentPaystack, StatusCode: http.StatusOK, Message: resp.Message}
	}

	p.api.logger.Info().
		Str("order_number", in.OrderReference).
		Str("reference", resp.Data.Reference).
		Msg("paystack transaction initialised")

	return &InitResult{URL: resp.Data.AuthorizationURL, Reference: resp.Data.Reference}, nil
}

func (p *paystack) Verify(ctx context.Context, reference string) (*Verification, error) {
	req, err := p.api.newJSONRequest(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)

	var resp paystackVerifyResponse
	if err := p.api.do(req, &resp); err != nil {
		return nil, err
	}

	// The order number is the Paystack transaction reference.
	v := &Verification{
		GatewayStatus:  resp.Data.Status,
		Reference:      reference,
		OrderReference: resp.Data.Reference,
		Amount:         decimal.New(resp.Data.Amount, -2),
		Currency:       strings.ToUpper(resp.Data.Currency),
	}
	if resp.Data.Reference != "" {
		v.Reference = resp.Data.Reference
	}

	switch {
	case resp.Status && resp.Data.Status == "success":
		v.Status = StatusConfirmed
	case resp.Data.Status == "failed" || resp.Data.Status == "reversed":
		v.Status = StatusFailed
	default:
		v.Status = StatusPending
	}
	return v, nil
}
