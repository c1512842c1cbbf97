package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"spending/internal/core"
	"spending/internal/records"
	"spending/internal/records/memory"
)

var errStoreDown = errors.New("store down")

func tx(id, amount string, c core.Category, date string) core.Transaction {
	return core.Transaction{
		ID:          id,
		Amount:      core.MustMoney(amount),
		Description: "test " + id,
		Category:    c,
		Date:        date,
	}
}

func budget(id string, c core.Category, amount string, month, year int) core.Budget {
	return core.Budget{ID: id, Category: c, Amount: core.MustMoney(amount), Month: month, Year: year}
}

func newStore(t *testing.T, txs []core.Transaction, budgets []core.Budget) *memory.Store {
	t.Helper()
	s := memory.New()
	ctx := context.Background()
	for _, x := range txs {
		require.NoError(t, s.CreateTransaction(ctx, x))
	}
	for _, b := range budgets {
		_, err := s.UpsertBudget(ctx, b)
		require.NoError(t, err)
	}
	return s
}

// faultyStore fails the named operation and counts every call.
type faultyStore struct {
	records.Reader
	failOn string
	calls  atomic.Int32
}

func (f *faultyStore) fail(op string) error {
	f.calls.Add(1)
	if f.failOn == op {
		return fmt.Errorf("%s: %w", op, errStoreDown)
	}
	return nil
}

func (f *faultyStore) Sum(ctx context.Context, c records.Collection, fl records.Filter) (core.Money, error) {
	if err := f.fail("sum"); err != nil {
		return core.Money{}, err
	}
	return f.Reader.Sum(ctx, c, fl)
}

func (f *faultyStore) GroupSum(ctx context.Context, c records.Collection, fl records.Filter, g records.Field) (map[string]core.Money, error) {
	if err := f.fail("group"); err != nil {
		return nil, err
	}
	return f.Reader.GroupSum(ctx, c, fl, g)
}

func (f *faultyStore) FindTransactions(ctx context.Context, q records.Query) ([]core.Transaction, error) {
	if err := f.fail("transactions"); err != nil {
		return nil, err
	}
	return f.Reader.FindTransactions(ctx, q)
}

func (f *faultyStore) FindBudgets(ctx context.Context, q records.Query) ([]core.Budget, error) {
	if err := f.fail("budgets"); err != nil {
		return nil, err
	}
	return f.Reader.FindBudgets(ctx, q)
}

func fixedClock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time { return time.Date(year, month, day, 12, 0, 0, 0, time.UTC) }
}

func mustWindow(t *testing.T, month, year int) Window {
	t.Helper()
	w, err := WindowFor(month, year)
	require.NoError(t, err)
	return w
}
