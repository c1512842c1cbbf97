// Package memory is an in-process record store used for development and
// as the test double of the SQL backend.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"spending/internal/core"
	"spending/internal/records"
)

var _ records.Store = (*Store)(nil)

type Store struct {
	mu           sync.RWMutex
	transactions []core.Transaction
	budgets      []core.Budget
}

func New() *Store {
	return &Store{}
}

// Seed is the on-disk format accepted by NewFromFile.
type Seed struct {
	Transactions []core.Transaction `json:"transactions"`
	Budgets      []core.Budget      `json:"budgets"`
}

// NewFromFile loads a JSON seed. A missing file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	for i, t := range seed.Transactions {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("seed transaction %d: %w", i, err)
		}
	}
	for i, b := range seed.Budgets {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("seed budget %d: %w", i, err)
		}
	}
	s.transactions = append(s.transactions, seed.Transactions...)
	s.budgets = append(s.budgets, seed.Budgets...)
	return s, nil
}

func (s *Store) Sum(ctx context.Context, c records.Collection, f records.Filter) (core.Money, error) {
	if err := ctx.Err(); err != nil {
		return core.Money{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := core.Money{}
	switch c {
	case records.Transactions:
		for _, t := range s.transactions {
			if f.Matches(t) {
				total = total.Add(t.Amount)
			}
		}
	case records.Budgets:
		for _, b := range s.budgets {
			if f.MatchesBudget(b) {
				total = total.Add(b.Amount)
			}
		}
	default:
		return core.Money{}, fmt.Errorf("%w: %q", records.ErrUnknownCollection, c)
	}
	return total, nil
}

func (s *Store) GroupSum(ctx context.Context, c records.Collection, f records.Filter, group records.Field) (map[string]core.Money, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if group != records.FieldCategory {
		return nil, fmt.Errorf("%w: group by %q", records.ErrUnsupportedField, group)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]core.Money{}
	switch c {
	case records.Transactions:
		for _, t := range s.transactions {
			if f.Matches(t) {
				out[string(t.Category)] = out[string(t.Category)].Add(t.Amount)
			}
		}
	case records.Budgets:
		for _, b := range s.budgets {
			if f.MatchesBudget(b) {
				out[string(b.Category)] = out[string(b.Category)].Add(b.Amount)
			}
		}
	default:
		return nil, fmt.Errorf("%w: %q", records.ErrUnknownCollection, c)
	}
	return out, nil
}

func (s *Store) FindTransactions(ctx context.Context, q records.Query) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]core.Transaction, 0)
	for _, t := range s.transactions {
		if q.Filter.Matches(t) {
			out = append(out, t)
		}
	}
	s.mu.RUnlock()

	if q.Sort != nil {
		less, err := transactionLess(q.Sort.Field)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(out, func(i, j int) bool {
			if q.Sort.Desc {
				return less(out[j], out[i])
			}
			return less(out[i], out[j])
		})
	}
	return page(out, q.Offset, q.Limit), nil
}

func (s *Store) FindBudgets(ctx context.Context, q records.Query) ([]core.Budget, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]core.Budget, 0)
	for _, b := range s.budgets {
		if q.Filter.MatchesBudget(b) {
			out = append(out, b)
		}
	}
	s.mu.RUnlock()

	field := records.FieldCategory
	desc := false
	if q.Sort != nil {
		field, desc = q.Sort.Field, q.Sort.Desc
	}
	var less func(a, b core.Budget) bool
	switch field {
	case records.FieldCategory:
		less = func(a, b core.Budget) bool { return a.Category < b.Category }
	case records.FieldAmount:
		less = func(a, b core.Budget) bool { return a.Amount.Decimal().LessThan(b.Amount.Decimal()) }
	default:
		return nil, fmt.Errorf("%w: sort budgets by %q", records.ErrUnsupportedField, field)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return page(out, q.Offset, q.Limit), nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.transactions {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, records.ErrNotFound
}

func (s *Store) CountTransactions(_ context.Context, f records.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, t := range s.transactions {
		if f.Matches(t) {
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.transactions {
		if existing.ID == t.ID {
			return fmt.Errorf("transaction %s already exists", t.ID)
		}
	}
	s.transactions = append(s.transactions, t)
	return nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transactions {
		if s.transactions[i].ID == t.ID {
			s.transactions[i] = t
			return nil
		}
	}
	return records.ErrNotFound
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			return nil
		}
	}
	return records.ErrNotFound
}

func (s *Store) GetBudget(_ context.Context, id string) (core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.budgets {
		if b.ID == id {
			return b, nil
		}
	}
	return core.Budget{}, records.ErrNotFound
}

func (s *Store) UpsertBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.budgets {
		if s.budgets[i].Key() == b.Key() {
			b.ID = s.budgets[i].ID
			b.CreatedAt = s.budgets[i].CreatedAt
			s.budgets[i] = b
			return b, nil
		}
	}
	s.budgets = append(s.budgets, b)
	return b, nil
}

func (s *Store) DeleteBudget(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.budgets {
		if s.budgets[i].ID == id {
			s.budgets = append(s.budgets[:i], s.budgets[i+1:]...)
			return nil
		}
	}
	return records.ErrNotFound
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() error { return nil }

func transactionLess(field records.Field) (func(a, b core.Transaction) bool, error) {
	switch field {
	case records.FieldDate:
		return func(a, b core.Transaction) bool { return a.Date < b.Date }, nil
	case records.FieldAmount:
		return func(a, b core.Transaction) bool { return a.Amount.Decimal().LessThan(b.Amount.Decimal()) }, nil
	case records.FieldCategory:
		return func(a, b core.Transaction) bool { return a.Category < b.Category }, nil
	default:
		return nil, fmt.Errorf("%w: sort transactions by %q", records.ErrUnsupportedField, field)
	}
}

func page[T any](in []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(in) {
			return in[:0]
		}
		in = in[offset:]
	}
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
