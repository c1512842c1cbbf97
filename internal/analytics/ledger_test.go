package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spending/internal/core"
)

func TestLedgerTotals(t *testing.T) {
	store := newStore(t, []core.Transaction{
		tx("1", "10.25", core.FoodAndDining, "2024-03-01"),
		tx("2", "20", core.FoodAndDining, "2024-03-31"),
		tx("3", "5.75", core.Travel, "2024-03-15"),
		tx("4", "99", core.Travel, "2024-02-29"),
		tx("5", "99", core.Travel, "2024-04-01"),
	}, nil)
	l := NewLedger(store)
	ctx := context.Background()
	w := mustWindow(t, 3, 2024)

	total, err := l.TotalInWindow(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, "36", total.String())

	byCat, err := l.TotalByCategory(ctx, w)
	require.NoError(t, err)
	require.Len(t, byCat, 2)
	assert.Equal(t, "30.25", byCat[core.FoodAndDining].String())
	assert.Equal(t, "5.75", byCat[core.Travel].String())
	_, present := byCat[core.Shopping]
	assert.False(t, present, "categories without spend must be absent")

	food, err := l.TotalForCategoryInWindow(ctx, core.FoodAndDining, w)
	require.NoError(t, err)
	assert.Equal(t, "30.25", food.String())
}

func TestLedgerEmptyWindowIsZero(t *testing.T) {
	l := NewLedger(newStore(t, nil, nil))
	w := mustWindow(t, 7, 2022)

	total, err := l.TotalInWindow(context.Background(), w)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	byCat, err := l.TotalByCategory(context.Background(), w)
	require.NoError(t, err)
	assert.Empty(t, byCat)

	recent, err := l.MostRecent(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, recent)
	assert.Empty(t, recent)
}

func TestLedgerMostRecent(t *testing.T) {
	store := newStore(t, []core.Transaction{
		tx("a", "1", core.Other, "2023-01-10"),
		tx("b", "1", core.Other, "2024-06-01"),
		tx("c", "1", core.Other, "2022-12-31"),
		tx("d", "1", core.Other, "2024-01-15"),
		tx("e", "1", core.Other, "2023-11-30"),
		tx("f", "1", core.Other, "2024-06-02"),
		tx("g", "1", core.Other, "2021-05-05"),
	}, nil)
	recent, err := NewLedger(store).MostRecent(context.Background(), 5)
	require.NoError(t, err)

	ids := make([]string, len(recent))
	for i, r := range recent {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"f", "b", "d", "e", "a"}, ids)
}

func TestLedgerWrapsStoreErrors(t *testing.T) {
	for _, op := range []string{"sum", "group", "transactions"} {
		f := &faultyStore{Reader: newStore(t, nil, nil), failOn: op}
		l := NewLedger(f)
		w := mustWindow(t, 1, 2024)
		var err error
		switch op {
		case "sum":
			_, err = l.TotalInWindow(context.Background(), w)
		case "group":
			_, err = l.TotalByCategory(context.Background(), w)
		case "transactions":
			_, err = l.MostRecent(context.Background(), 5)
		}
		assert.ErrorIs(t, err, ErrDataUnavailable, op)
		assert.ErrorIs(t, err, errStoreDown, op)
	}
}
