// Package core provides the domain types shared by the ledger, the
// analytics engine and the transport layers.
//
// This file contains the Money type: an exact, currency-agnostic decimal
// amount with JSON number encoding.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Money is an exact decimal amount. The zero value is 0.
type Money struct {
	d decimal.Decimal
}

// NewMoney wraps a decimal value.
func NewMoney(d decimal.Decimal) Money {
	return Money{d: d}
}

// MoneyFromInt returns a whole-unit amount.
func MoneyFromInt(v int64) Money {
	return Money{d: decimal.NewFromInt(v)}
}

// ParseMoney parses a decimal string such as "12.34" or "12,34".
//
// Sign is not checked here; use Validate for amounts that must be positive.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Money{d: d}, nil
}

// MustMoney is ParseMoney for constants and tests. It panics on bad input.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }
func (m Money) Sign() int { return m.d.Sign() }
func (m Money) IsZero() bool { return m.d.IsZero() }
func (m Money) IsPositive() bool { return m.d.IsPositive() }
func (m Money) Equal(o Money) bool {
	return m.d.Equal(o.d)
}

// Decimal exposes the underlying value.
func (m Money) Decimal() decimal.Decimal { return m.d }

// Float64 returns an approximate value for display or spreadsheet cells.
// Use Money itself for arithmetic.
func (m Money) Float64() float64 { return m.d.InexactFloat64() }

func (m Money) String() string { return m.d.String() }

func (m Money) Validate() error {
	if !m.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// MarshalJSON encodes the amount as a JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	m.d = d
	return nil
}

// Percentage returns round(100 * part / whole), rounding half away from zero.
// A whole that is zero or negative yields 0.
func Percentage(part, whole Money) int {
	if whole.Sign() <= 0 {
		return 0
	}
	return int(part.d.Mul(hundred).Div(whole.d).Round(0).IntPart())
}

// Sum adds up a list of amounts.
func Sum(amounts ...Money) Money {
	total := Money{}
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
