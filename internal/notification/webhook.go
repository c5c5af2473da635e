package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// WebhookConfig configures delivery to the provider's HTTP endpoint.
type WebhookConfig struct {
	URL        string
	Token      string
	MaxRetries int
}

// webhookSender POSTs events as JSON with a bearer credential.
type webhookSender struct {
	cfg             WebhookConfig
	client          *http.Client
	initialInterval time.Duration
	logger          zerolog.Logger
}

// NewWebhookSender creates a Sender that retries transient failures with exponential backoff.
func NewWebhookSender(cfg WebhookConfig, client *http.Client, logger zerolog.Logger) Sender {
	if client == nil {
		client = http.DefaultClient
	}
	return &webhookSender{
		cfg:             cfg,
		client:          client,
		initialInterval: 500 * time.Millisecond,
		logger:          logger.With().Str("component", "webhook-notifier").Logger(),
	}
}

func (s *webhookSender) Send(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("encode notification: %w", err))
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.initialInterval
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(s.cfg.MaxRetries)), ctx)

	attempt := 0
	operation := func() error {
		attempt++
		return s.post(ctx, body)
	}
	notify := func(err error, wait time.Duration) {
		s.logger.Warn().
			Err(err).
			Str("event", string(evt.Type)).
			Int("attempt", attempt).
			Dur("retry_in", wait).
			Msg("notification attempt failed")
	}

	if err := backoff.RetryNotify(operation, retry, notify); err != nil {
		return fmt.Errorf("deliver %s after %d attempt(s): %w", evt.Type, attempt, err)
	}
	return nil
}

// post makes one delivery attempt. Client errors other than 408 and 429 are not retried.
func (s *webhookSender) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build notification request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("notification provider returned %d", resp.StatusCode)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return backoff.Permanent(fmt.Errorf("notification provider rejected event: %d", resp.StatusCode))
	default:
		return fmt.Errorf("notification provider returned %d", resp.StatusCode)
	}
}
