// Package notification delivers order events to the messaging provider without blocking checkout.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType names an order lifecycle event.
type EventType string

const (
	OrderCreated   EventType = "order_created"
	OrderConfirmed EventType = "order_confirmed"
)

// Event is posted to the provider as {"type": ..., "payload": ...}.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// Sender delivers one event synchronously.
type Sender interface {
	Send(ctx context.Context, evt Event) error
}

// Notifier accepts events for background delivery. Dispatch never blocks on delivery and never fails.
type Notifier interface {
	Dispatch(evt Event)
}

// AsyncDispatcher runs each delivery in its own goroutine with a deadline.
type AsyncDispatcher struct {
	sender  Sender
	timeout time.Duration
	logger  zerolog.Logger
	wg      sync.WaitGroup
}

// NewAsyncDispatcher creates a dispatcher. timeout bounds each delivery including retries.
func NewAsyncDispatcher(sender Sender, timeout time.Duration, logger zerolog.Logger) *AsyncDispatcher {
	return &AsyncDispatcher{
		sender:  sender,
		timeout: timeout,
		logger:  logger.With().Str("component", "notifier").Logger(),
	}
}

// Dispatch schedules evt and returns immediately. Failures are logged only.
func (d *AsyncDispatcher) Dispatch(evt Event) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error().
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Str("event", string(evt.Type)).
					Msg("notification delivery panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.sender.Send(ctx, evt); err != nil {
			d.logger.Error().Err(err).Str("event", string(evt.Type)).Msg("notification delivery failed")
			return
		}
		d.logger.Debug().Str("event", string(evt.Type)).Msg("notification delivered")
	}()
}

// Wait blocks until in-flight deliveries finish or ctx ends.
func (d *AsyncDispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for notifications: %w", ctx.Err())
	}
}

// logSender writes events to the log. Used when no provider is configured.
type logSender struct {
	logger zerolog.Logger
}

// NewLogSender returns a Sender that only logs.
func NewLogSender(logger zerolog.Logger) Sender {
	return &logSender{logger: logger.With().Str("component", "log-notifier").Logger()}
}

func (s *logSender) Send(_ context.Context, evt Event) error {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return fmt.Errorf("encode notification payload: %w", err)
	}
	s.logger.Info().
		Str("event", string(evt.Type)).
		RawJSON("payload", payload).
		Msg("notification (no provider configured)")
	return nil
}
