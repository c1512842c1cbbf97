package analytics

import (
	"context"

	"spending/internal/core"
)

// BudgetComparison is a budget set against the actual spend of its month.
type BudgetComparison struct {
	Category   core.Category `json:"category"`
	Budget     core.Money    `json:"budget"`
	Spent      core.Money    `json:"spent"`
	Percentage int           `json:"percentage"`
	Remaining  core.Money    `json:"remaining"`
}

// CategorySpender reports spend for one category in a window.
type CategorySpender interface {
	TotalForCategoryInWindow(ctx context.Context, c core.Category, w Window) (core.Money, error)
}

// NewBudgetComparison derives percentage and remaining from a budget and its
// spend. A non-positive budget gives a percentage of 0. Remaining may be
// negative.
func NewBudgetComparison(b core.Budget, spent core.Money) BudgetComparison {
	return BudgetComparison{
		Category:   b.Category,
		Budget:     b.Amount,
		Spent:      spent,
		Percentage: core.Percentage(spent, b.Amount),
		Remaining:  b.Amount.Sub(spent),
	}
}

// Compare looks up the spend of b's category in w and compares it to b.
// It keeps no state and is safe to call concurrently.
func Compare(ctx context.Context, b core.Budget, w Window, spender CategorySpender) (BudgetComparison, error) {
	spent, err := spender.TotalForCategoryInWindow(ctx, b.Category, w)
	if err != nil {
		return BudgetComparison{}, err
	}
	return NewBudgetComparison(b, spent), nil
}
