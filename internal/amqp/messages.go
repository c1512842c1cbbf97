package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"spending/internal/core"
)

// EventType names a ledger change.
type EventType string

const (
	TransactionCreated EventType = "transaction.created"
	TransactionUpdated EventType = "transaction.updated"
	TransactionDeleted EventType = "transaction.deleted"
	BudgetSaved        EventType = "budget.saved"
	BudgetDeleted      EventType = "budget.deleted"
)

// CurrentVersion is the schema version of LedgerEvent.
const CurrentVersion = 1

var ErrInvalidEvent = errors.New("invalid ledger event")

// LedgerEvent announces that records affecting the listed periods changed.
// Consumers recompute what they need from the store.
type LedgerEvent struct {
	ID        string        `json:"id"`
	Type      EventType     `json:"type"`
	EntityID  string        `json:"entityId"`
	Periods   []core.Period `json:"periods"`
	Timestamp time.Time     `json:"timestamp"`
	Version   int           `json:"version"`
}

// NewLedgerEvent builds an event with a fresh id. Duplicate periods are
// dropped.
func NewLedgerEvent(t EventType, entityID string, periods ...core.Period) *LedgerEvent {
	seen := make(map[core.Period]struct{}, len(periods))
	uniq := make([]core.Period, 0, len(periods))
	for _, p := range periods {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		uniq = append(uniq, p)
	}
	return &LedgerEvent{
		ID:        uuid.NewString(),
		Type:      t,
		EntityID:  entityID,
		Periods:   uniq,
		Timestamp: time.Now().UTC(),
		Version:   CurrentVersion,
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Validate checks the fields a consumer relies on.
func (e *LedgerEvent) Validate() error {
	switch e.Type {
	case TransactionCreated, TransactionUpdated, TransactionDeleted, BudgetSaved, BudgetDeleted:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}
	if len(e.Periods) == 0 {
		return fmt.Errorf("%w: no periods", ErrInvalidEvent)
	}
	for _, p := range e.Periods {
		if p.Month < 1 || p.Month > 12 || p.Year < 1 {
			return fmt.Errorf("%w: period %s", ErrInvalidEvent, p)
		}
	}
	return nil
}

// LedgerEventFromJSON decodes and validates an event.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
