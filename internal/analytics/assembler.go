package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"spending/internal/core"
	"spending/internal/records"
)

// Assembler builds snapshots. It is the only entry point transport layers
// need.
type Assembler struct {
	ledger      *Ledger
	budgets     records.BudgetFinder
	now         func() time.Time
	recentLimit int
	logger      *slog.Logger
}

// Option customizes an Assembler.
type Option func(*Assembler)

// WithClock sets the source of "today" used when the period is omitted.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// WithRecentLimit changes how many recent transactions a snapshot carries.
func WithRecentLimit(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.recentLimit = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

func NewAssembler(store records.Reader, opts ...Option) *Assembler {
	a := &Assembler{
		ledger:      NewLedger(store),
		budgets:     store,
		now:         time.Now,
		recentLimit: DefaultRecentLimit,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ledger exposes the aggregator the assembler queries.
func (a *Assembler) Ledger() *Ledger { return a.ledger }

// ResolvePeriod fills an omitted (zero) month or year from the clock and
// validates the result.
func (a *Assembler) ResolvePeriod(month, year int) (core.Period, error) {
	today := a.now()
	if month == 0 {
		month = int(today.Month())
	}
	if year == 0 {
		year = today.Year()
	}
	if err := ValidatePeriod(month, year); err != nil {
		return core.Period{}, err
	}
	// The trend walks back TrendMonths-1 months and must stay in range too.
	first := time.Date(year, time.Month(month-(TrendMonths-1)), 1, 0, 0, 0, 0, time.UTC)
	if first.Year() < minYear {
		return core.Period{}, fmt.Errorf("%w: trend of %02d/%d starts before year %d",
			ErrInvalidPeriod, month, year, minYear)
	}
	return core.Period{Month: month, Year: year}, nil
}

// Snapshot computes the analytics of (month, year). Zero values default to
// the current month or year.
//
// All sub-queries run concurrently. If any fails the others are cancelled
// and the call returns an error matching ErrDataUnavailable; no partial
// snapshot is returned.
func (a *Assembler) Snapshot(ctx context.Context, month, year int) (Snapshot, error) {
	p, err := a.ResolvePeriod(month, year)
	if err != nil {
		return Snapshot{}, err
	}
	w, err := WindowFor(p.Month, p.Year)
	if err != nil {
		return Snapshot{}, err
	}

	var (
		total       core.Money
		byCategory  map[core.Category]core.Money
		recent      []core.Transaction
		trend       []MonthlyAmount
		comparisons []BudgetComparison
	)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = a.ledger.TotalInWindow(gctx, w)
		return err
	})
	g.Go(func() error {
		var err error
		byCategory, err = a.ledger.TotalByCategory(gctx, w)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = a.ledger.MostRecent(gctx, a.recentLimit)
		return err
	})
	g.Go(func() error {
		var err error
		trend, err = BuildTrend(gctx, p.Month, p.Year, a.ledger)
		return err
	})
	g.Go(func() error {
		var err error
		_, comparisons, err = a.compareBudgets(gctx, p, w, records.Filter{})
		return err
	})
	if err := g.Wait(); err != nil {
		a.logger.ErrorContext(ctx, "Snapshot failed",
			"month", p.Month, "year", p.Year, "error", err)
		return Snapshot{}, err
	}

	a.logger.DebugContext(ctx, "Snapshot assembled",
		"month", p.Month, "year", p.Year,
		"categories", len(byCategory), "budgets", len(comparisons),
		"duration", time.Since(start))

	return Snapshot{
		Period:             p,
		TotalExpenses:      total,
		MonthlyExpenses:    trend,
		CategoryBreakdown:  Breakdown(byCategory, total),
		RecentTransactions: recent,
		BudgetComparison:   comparisons,
	}, nil
}

// BudgetStatus is a stored budget together with its month's spend.
type BudgetStatus struct {
	core.Budget
	Spent      core.Money `json:"spent"`
	Remaining  core.Money `json:"remaining"`
	Percentage int        `json:"percentage"`
}

// BudgetStatuses lists the budgets of (month, year), optionally restricted
// to one category, each with spent, remaining and percentage attached.
// Zero month or year default to today.
func (a *Assembler) BudgetStatuses(ctx context.Context, month, year int, category core.Category) ([]BudgetStatus, error) {
	p, err := a.ResolvePeriod(month, year)
	if err != nil {
		return nil, err
	}
	w, err := WindowFor(p.Month, p.Year)
	if err != nil {
		return nil, err
	}
	budgets, comparisons, err := a.compareBudgets(ctx, p, w, records.Filter{Category: category})
	if err != nil {
		return nil, err
	}
	out := make([]BudgetStatus, len(budgets))
	for i, b := range budgets {
		c := comparisons[i]
		out[i] = BudgetStatus{Budget: b, Spent: c.Spent, Remaining: c.Remaining, Percentage: c.Percentage}
	}
	return out, nil
}

// compareBudgets finds the budgets of the period and runs one comparison per
// budget, concurrently. Comparisons are index aligned with budgets.
func (a *Assembler) compareBudgets(ctx context.Context, p core.Period, w Window, f records.Filter) ([]core.Budget, []BudgetComparison, error) {
	f.Month, f.Year = p.Month, p.Year
	budgets, err := a.budgets.FindBudgets(ctx, records.Query{Filter: f})
	if err != nil {
		return nil, nil, unavailable("find budgets", err)
	}
	out := make([]BudgetComparison, len(budgets))
	g, gctx := errgroup.WithContext(ctx)
	for i, b := range budgets {
		g.Go(func() error {
			c, err := Compare(gctx, b, w, a.ledger)
			if err != nil {
				return err
			}
			out[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return budgets, out, nil
}
