package analytics

import (
	"sort"

	"spending/internal/core"
)

// Snapshot is the analytics result for one month. It is computed fresh on
// every call and never stored.
type Snapshot struct {
	Period             core.Period        `json:"-"`
	TotalExpenses      core.Money         `json:"totalExpenses"`
	MonthlyExpenses    []MonthlyAmount    `json:"monthlyExpenses"`
	CategoryBreakdown  []CategoryShare    `json:"categoryBreakdown"`
	RecentTransactions []core.Transaction `json:"recentTransactions"`
	BudgetComparison   []BudgetComparison `json:"budgetComparison"`
}

// CategoryShare is one category's part of the month's total.
type CategoryShare struct {
	Category   core.Category `json:"category"`
	Amount     core.Money    `json:"amount"`
	Percentage int           `json:"percentage"`
}

// Breakdown converts per-category totals into shares of total. Each
// percentage is rounded on its own, so they need not add up to 100.
// The result is ordered by amount descending, then category.
func Breakdown(byCategory map[core.Category]core.Money, total core.Money) []CategoryShare {
	out := make([]CategoryShare, 0, len(byCategory))
	for c, amount := range byCategory {
		out = append(out, CategoryShare{
			Category:   c,
			Amount:     amount,
			Percentage: core.Percentage(amount, total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].Amount.Decimal().Cmp(out[j].Amount.Decimal()); cmp != 0 {
			return cmp > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}
