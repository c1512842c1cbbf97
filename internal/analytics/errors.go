// Package analytics turns the transaction ledger and monthly budgets into a
// snapshot for one calendar month: total spend, a six month trend, a
// category breakdown, recent activity and budget attainment.
//
// The engine is read-only and holds no state between calls. Every store it
// uses is passed in explicitly.
package analytics

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPeriod is returned before any query when month or year is
	// out of range.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrDataUnavailable wraps any failure of the record store.
	ErrDataUnavailable = errors.New("analytics data unavailable")
)

// unavailable joins the store error with ErrDataUnavailable so callers can
// match either.
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDataUnavailable, op, err)
}
