package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spending/internal/amqp"
	"spending/internal/core"
	"spending/internal/log"
)

// EventPublisher is the outbound port for ledger change notifications.
type EventPublisher interface {
	Publish(ctx context.Context, e *amqp.LedgerEvent) error
}

var (
	ErrMissingID = errors.New("missing id")
)

// ValidationError marks input the caller must correct.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error) error {
	return &ValidationError{Err: err}
}

func invalidf(format string, args ...any) error {
	return &ValidationError{Err: fmt.Errorf(format, args...)}
}

// notifier publishes events without failing the write that caused them.
type notifier struct {
	publisher EventPublisher
	component string
}

func (n notifier) notify(ctx context.Context, t amqp.EventType, entityID string, periods ...core.Period) {
	if n.publisher == nil {
		slog.DebugContext(ctx, "No event publisher configured, skipping ledger event",
			log.FieldComponent, n.component, "type", t)
		return
	}
	if err := n.publisher.Publish(ctx, amqp.NewLedgerEvent(t, entityID, periods...)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldComponent, n.component, "type", t, "entity_id", entityID, log.FieldError, err)
	}
}
