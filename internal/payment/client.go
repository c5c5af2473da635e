package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

const maxResponseBytes = 1 << 20

// apiClient holds what every adapter needs to call its provider.
type apiClient struct {
	method  model.PaymentMethod
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
	// errorMessage extracts the provider's error text from a failed response body.
	errorMessage func(body []byte) string
}

func newAPIClient(method model.PaymentMethod, baseURL string, client *http.Client, logger zerolog.Logger, errorMessage func([]byte) string) apiClient {
	if client == nil {
		client = http.DefaultClient
	}
	return apiClient{
		method:       method,
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         client,
		logger:       logger.With().Str("gateway", string(method)).Logger(),
		errorMessage: errorMessage,
	}
}

// newJSONRequest builds a request with a JSON body when payload is non-nil.
func (c apiClient) newJSONRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", c.method, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", c.method, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do sends req and decodes a 2xx body into out. Non-2xx responses become *GatewayError.
func (c apiClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("path", req.URL.Path).Msg("gateway request failed")
		return fmt.Errorf("%s request failed: %w", c.method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", c.method, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := ""
		if c.errorMessage != nil {
			msg = c.errorMessage(body)
		}
		if msg == "" {
			msg = fmt.Sprintf("%s request failed with status %d", c.method, resp.StatusCode)
		}
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("path", req.URL.Path).
			Str("message", msg).
			Msg("gateway rejected request")
		return &GatewayError{Gateway: c.method, StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", c.method, err)
	}
	return nil
}

// messageField reads a top-level "message" string from a JSON body.
func messageField(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}
