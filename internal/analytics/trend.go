package analytics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"spending/internal/core"
)

// TrendMonths is the length of the spending trend.
const TrendMonths = 6

// MonthlyAmount is one point of the spending trend.
type MonthlyAmount struct {
	Month  string     `json:"month"`
	Amount core.Money `json:"amount"`
}

// WindowTotaler sums spend in a window.
type WindowTotaler interface {
	TotalInWindow(ctx context.Context, w Window) (core.Money, error)
}

// BuildTrend returns the total spend of the TrendMonths months ending at
// (month, year), oldest first. Months without transactions are zero.
// Window totals are queried concurrently.
func BuildTrend(ctx context.Context, month, year int, totaler WindowTotaler) ([]MonthlyAmount, error) {
	windows, err := LastNWindows(month, year, TrendMonths)
	if err != nil {
		return nil, err
	}
	out := make([]MonthlyAmount, len(windows))
	g, gctx := errgroup.WithContext(ctx)
	for i, w := range windows {
		g.Go(func() error {
			total, err := totaler.TotalInWindow(gctx, w)
			if err != nil {
				return err
			}
			out[i] = MonthlyAmount{Month: w.Label, Amount: total}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
