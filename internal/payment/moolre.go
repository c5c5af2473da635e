package payment

import (
	"context"
	"encoding/json"
	"net/http"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// MoolreConfig configures the Moolre mobile money adapter.
type MoolreConfig struct {
	User          string
	PublicKey     string
	AccountNumber string
	BaseURL       string
}

// Moolre txstatus values. Anything else is still pending.
const (
	moolreTxSuccess = 1
	moolreTxFailed  = 2
)

type moolreLinkRequest struct {
	Type          int    `json:"type"`
	Amount        string `json:"amount"`
	Email         string `json:"email"`
	ExternalRef   string `json:"externalref"`
	Callback      string `json:"callback"`
	Redirect      string `json:"redirect"`
	Reusable      string `json:"reusable"`
	Currency      string `json:"currency"`
	AccountNumber string `json:"accountnumber"`
}

type moolreLinkResponse struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type moolreStatusRequest struct {
	Type          int    `json:"type"`
	IDType        int    `json:"idtype"`
	ID            string `json:"id"`
	AccountNumber string `json:"accountnumber"`
}

type moolreStatusResponse struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		TxStatus    int         `json:"txstatus"`
		ExternalRef string      `json:"externalref"`
		Amount      json.Number `json:"amount"`
	} `json:"data"`
}

// moolre implements Gateway for Moolre hosted mobile money links.
type moolre struct {
	api apiClient
	cfg MoolreConfig
}

// NewMoolre creates the Moolre adapter. The order number is sent as the external reference.
func NewMoolre(cfg MoolreConfig, client *http.Client, logger zerolog.Logger) Gateway {
	return &moolre{
		api: newAPIClient(model.PaymentMoolre, cfg.BaseURL, client, logger, messageField),
		cfg: cfg,
	}
}

func (m *moolre) Method() model.PaymentMethod { return model.PaymentMoolre }

func (m *moolre) authorize(req *http.Request) {
	req.Header.Set("X-API-USER", m.cfg.User)
	req.Header.Set("X-API-PUBKEY", m.cfg.PublicKey)
}

func (m *moolre) Initialize(ctx context.Context, in InitRequest) (*InitResult, error) {
	redirect, err := returnURL(in.CallbackURL, in.OrderReference, map[string]string{"payment_success": "true"})
	if err != nil {
		return nil, err
	}

	req, err := m.api.newJSONRequest(ctx, http.MethodPost, "/embed/link", moolreLinkRequest{
		Type:          1,
		Amount:        in.Amount.StringFixed(2),
		Email:         in.CustomerEmail,
		ExternalRef:   in.OrderReference,
		Callback:      redirect,
		Redirect:      redirect,
		Reusable:      "0",
		Currency:      in.Currency,
		AccountNumber: m.cfg.AccountNumber,
	})
	if err != nil {
		return nil, err
	}
	m.authorize(req)

	var resp moolreLinkResponse
	if err := m.api.do(req, &resp); err != nil {
		return nil, err
	}
	if resp.Status != 1 || resp.Data.AuthorizationURL == "" {
		return nil, &GatewayError{Gateway: model.PaymentMoolre, StatusCode: http.StatusOK, Message: resp.Message}
	}

	m.api.logger.Info().
		Str("order_number", in.OrderReference).
		Msg("moolre payment link created")

	return &InitResult{URL: resp.Data.AuthorizationURL, Reference: in.OrderReference}, nil
}

func (m *moolre) Verify(ctx context.Context, reference string) (*Verification, error) {
	req, err := m.api.newJSONRequest(ctx, http.MethodPost, "/open/transact/status", moolreStatusRequest{
		Type:          1,
		IDType:        1,
		ID:            reference,
		AccountNumber: m.cfg.AccountNumber,
	})
	if err != nil {
		return nil, err
	}
	m.authorize(req)

	var resp moolreStatusResponse
	if err := m.api.do(req, &resp); err != nil {
		return nil, err
	}

	v := &Verification{Reference: reference, OrderReference: resp.Data.ExternalRef}
	if amount, err := decimal.NewFromString(resp.Data.Amount.String()); err == nil {
		v.Amount = amount
	}

	switch {
	case resp.Status == 1 && resp.Data.TxStatus == moolreTxSuccess:
		v.Status, v.GatewayStatus = StatusConfirmed, "success"
	case resp.Status == 1 && resp.Data.TxStatus == moolreTxFailed:
		v.Status, v.GatewayStatus = StatusFailed, "failed"
	default:
		v.Status, v.GatewayStatus = StatusPending, "pending"
	}
	return v, nil
}
