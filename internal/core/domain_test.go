package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTransaction() Transaction {
	return Transaction{
		ID:          "t1",
		Amount:      MustMoney("12.50"),
		Description: "Lunch",
		Category:    FoodAndDining,
		Date:        "2024-03-15",
	}
}

func TestTransactionValidate(t *testing.T) {
	require.NoError(t, validTransaction().Validate())

	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = MustMoney("-1") }, ErrInvalidAmount},
		{"blank description", func(tx *Transaction) { tx.Description = "   " }, ErrEmptyDescription},
		{"long description", func(tx *Transaction) { tx.Description = strings.Repeat("a", 201) }, ErrDescriptionTooLong},
		{"unknown category", func(tx *Transaction) { tx.Category = "Pets" }, ErrInvalidCategory},
		{"unpadded date", func(tx *Transaction) { tx.Date = "2024-3-5" }, ErrInvalidDate},
		{"impossible date", func(tx *Transaction) { tx.Date = "2023-02-29" }, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTransaction()
			tc.mutate(&tx)
			err := tx.Validate()
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestDescriptionCountsRunes(t *testing.T) {
	assert.NoError(t, ValidateDescription(strings.Repeat("è", MaxDescriptionLength)))
}

func TestBudgetValidate(t *testing.T) {
	good := Budget{Category: Groceries, Amount: MoneyFromInt(400), Month: 3, Year: 2024}
	require.NoError(t, good.Validate())

	bad := []struct {
		b    Budget
		want error
	}{
		{Budget{Category: "x", Amount: MoneyFromInt(1), Month: 1, Year: 2024}, ErrInvalidCategory},
		{Budget{Category: Other, Amount: Money{}, Month: 1, Year: 2024}, ErrInvalidAmount},
		{Budget{Category: Other, Amount: MoneyFromInt(1), Month: 13, Year: 2024}, ErrInvalidMonth},
		{Budget{Category: Other, Amount: MoneyFromInt(1), Month: 1, Year: 2019}, ErrInvalidYear},
		{Budget{Category: Other, Amount: MoneyFromInt(1), Month: 1, Year: 2031}, ErrInvalidYear},
	}
	for i, tc := range bad {
		assert.ErrorIs(t, tc.b.Validate(), tc.want, "case %d", i)
	}
}

func TestPeriods(t *testing.T) {
	assert.Equal(t, Period{Month: 3, Year: 2024}, validTransaction().Period())
	assert.Equal(t, Period{Month: 12, Year: 2023}, PeriodOf(time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-03", Period{Month: 3, Year: 2024}.String())
	assert.Equal(t,
		BudgetKey{Category: Travel, Month: 7, Year: 2025},
		Budget{Category: Travel, Month: 7, Year: 2025}.Key())
}
