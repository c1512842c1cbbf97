package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spending/internal/core"
	"spending/internal/records"
)

func sampleTx(id, amount string, c core.Category, date string) core.Transaction {
	return core.Transaction{ID: id, Amount: core.MustMoney(amount), Description: "d", Category: c, Date: date}
}

func TestSumAndGroupSum(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.CreateTransaction(ctx, sampleTx("1", "1.5", core.Travel, "2024-01-01")))
	require.NoError(t, s.CreateTransaction(ctx, sampleTx("2", "2", core.Travel, "2024-01-31")))
	require.NoError(t, s.CreateTransaction(ctx, sampleTx("3", "4", core.Other, "2024-02-01")))

	f := records.Filter{StartDate: "2024-01-01", EndDate: "2024-01-31"}
	total, err := s.Sum(ctx, records.Transactions, f)
	require.NoError(t, err)
	assert.Equal(t, "3.5", total.String())

	groups, err := s.GroupSum(ctx, records.Transactions, records.Filter{}, records.FieldCategory)
	require.NoError(t, err)
	assert.Equal(t, "3.5", groups["Travel"].String())
	assert.Equal(t, "4", groups["Other"].String())

	_, err = s.GroupSum(ctx, records.Transactions, f, records.FieldDate)
	assert.ErrorIs(t, err, records.ErrUnsupportedField)
	_, err = s.Sum(ctx, "accounts", f)
	assert.ErrorIs(t, err, records.ErrUnknownCollection)
}

func TestFindTransactionsSortAndPage(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, x := range []core.Transaction{
		sampleTx("a", "1", core.Other, "2024-01-03"),
		sampleTx("b", "1", core.Other, "2024-01-01"),
		sampleTx("c", "1", core.Other, "2024-01-02"),
	} {
		require.NoError(t, s.CreateTransaction(ctx, x))
	}
	got, err := s.FindTransactions(ctx, records.Query{
		Sort:   &records.Sort{Field: records.FieldDate, Desc: true},
		Offset: 1,
		Limit:  1,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)

	got, err = s.FindTransactions(ctx, records.Query{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTransactionCRUD(t *testing.T) {
	s := New()
	ctx := context.Background()
	x := sampleTx("1", "10", core.Shopping, "2024-05-05")
	require.NoError(t, s.CreateTransaction(ctx, x))
	assert.Error(t, s.CreateTransaction(ctx, x))

	x.Amount = core.MustMoney("11")
	require.NoError(t, s.UpdateTransaction(ctx, x))
	got, err := s.GetTransaction(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "11", got.Amount.String())

	n, err := s.CountTransactions(ctx, records.Filter{Category: core.Shopping})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.DeleteTransaction(ctx, "1"))
	assert.ErrorIs(t, s.DeleteTransaction(ctx, "1"), records.ErrNotFound)
	assert.ErrorIs(t, s.UpdateTransaction(ctx, x), records.ErrNotFound)
	_, err = s.GetTransaction(ctx, "1")
	assert.ErrorIs(t, err, records.ErrNotFound)
}

func TestUpsertBudgetKeepsIdentity(t *testing.T) {
	s := New()
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first, err := s.UpsertBudget(ctx, core.Budget{
		ID: "b1", Category: core.Groceries, Amount: core.MoneyFromInt(100), Month: 3, Year: 2024, CreatedAt: created,
	})
	require.NoError(t, err)

	second, err := s.UpsertBudget(ctx, core.Budget{
		ID: "b2", Category: core.Groceries, Amount: core.MoneyFromInt(250), Month: 3, Year: 2024, CreatedAt: created.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, created, second.CreatedAt)

	all, err := s.FindBudgets(ctx, records.Query{Filter: records.Filter{Month: 3, Year: 2024}})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "250", all[0].Amount.String())

	total, err := s.Sum(ctx, records.Budgets, records.Filter{Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, "250", total.String())

	require.NoError(t, s.DeleteBudget(ctx, "b1"))
	assert.ErrorIs(t, s.DeleteBudget(ctx, "b1"), records.ErrNotFound)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Sum(ctx, records.Transactions, records.Filter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFromFile(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	n, _ := s.CountTransactions(context.Background(), records.Filter{})
	assert.Zero(t, n)

	path := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"transactions": [{"id":"t1","amount":12.5,"description":"Taxi","category":"Transportation","date":"2024-02-02"}],
		"budgets": [{"id":"b1","category":"Transportation","amount":"80","month":2,"year":2024}]
	}`), 0o644))
	s, err = NewFromFile(path)
	require.NoError(t, err)
	got, err := s.GetTransaction(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "12.5", got.Amount.String())
	b, err := s.GetBudget(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, 2, b.Month)

	require.NoError(t, os.WriteFile(path, []byte(`{"transactions":[{"id":"x","amount":0}]}`), 0o644))
	_, err = NewFromFile(path)
	assert.Error(t, err)
}
