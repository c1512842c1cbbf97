// Package records defines the record store ports consumed by the analytics
// engine and the ledger services.
package records

import (
	"context"
	"errors"

	"spending/internal/core"
)

// Collection names a set of stored records.
type Collection string

const (
	Transactions Collection = "transactions"
	Budgets      Collection = "budgets"
)

// Field names a record attribute usable for grouping and sorting.
type Field string

const (
	FieldCategory Field = "category"
	FieldDate     Field = "date"
	FieldAmount   Field = "amount"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrUnsupportedField  = errors.New("unsupported field")
)

// Filter selects records. Zero-valued fields match everything.
type Filter struct {
	Category core.Category
	// StartDate and EndDate bound transaction dates inclusively using string
	// comparison on the zero padded layout.
	StartDate string
	EndDate   string
	// Month and Year match budgets.
	Month int
	Year  int
}

// Sort orders results by one field.
type Sort struct {
	Field Field
	Desc  bool
}

// Query is a filtered, optionally sorted and bounded listing request.
type Query struct {
	Filter Filter
	Sort   *Sort
	Limit  int // 0 means unbounded
	Offset int
}

// Ports consumed by the analytics engine.
type (
	Summer interface {
		// Sum adds up the amount of every record matching f. No match yields zero.
		Sum(ctx context.Context, c Collection, f Filter) (core.Money, error)
	}

	GroupSummer interface {
		// GroupSum is Sum grouped by field. Groups without records are absent.
		GroupSum(ctx context.Context, c Collection, f Filter, group Field) (map[string]core.Money, error)
	}

	TransactionFinder interface {
		FindTransactions(ctx context.Context, q Query) ([]core.Transaction, error)
	}

	BudgetFinder interface {
		FindBudgets(ctx context.Context, q Query) ([]core.Budget, error)
	}

	// Reader is everything the analytics engine reads.
	Reader interface {
		Summer
		GroupSummer
		TransactionFinder
		BudgetFinder
	}
)

// Ports used by the write side.
type (
	TransactionStore interface {
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		CountTransactions(ctx context.Context, f Filter) (int, error)
		CreateTransaction(ctx context.Context, t core.Transaction) error
		// UpdateTransaction replaces the stored record with the same ID.
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
	}

	BudgetStore interface {
		GetBudget(ctx context.Context, id string) (core.Budget, error)
		// UpsertBudget writes b under its (category, month, year) key and
		// returns the stored record. An existing record keeps its ID and
		// CreatedAt.
		UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		DeleteBudget(ctx context.Context, id string) error
	}

	Pinger interface {
		Ping(ctx context.Context) error
	}

	// Store is a complete record store backend.
	Store interface {
		Reader
		TransactionStore
		BudgetStore
		Pinger
		Close() error
	}
)

// Matches reports whether a transaction satisfies f.
func (f Filter) Matches(t core.Transaction) bool {
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.StartDate != "" && t.Date < f.StartDate {
		return false
	}
	if f.EndDate != "" && t.Date > f.EndDate {
		return false
	}
	return true
}

// MatchesBudget reports whether a budget satisfies f. Date bounds are ignored.
func (f Filter) MatchesBudget(b core.Budget) bool {
	if f.Category != "" && b.Category != f.Category {
		return false
	}
	if f.Month != 0 && b.Month != f.Month {
		return false
	}
	if f.Year != 0 && b.Year != f.Year {
		return false
	}
	return true
}
