package analytics

import (
	"context"

	"spending/internal/core"
	"spending/internal/records"
)

// DefaultRecentLimit bounds the recent activity list of a snapshot.
const DefaultRecentLimit = 5

// LedgerStore is the part of the record store the ledger aggregator reads.
type LedgerStore interface {
	records.Summer
	records.GroupSummer
	records.TransactionFinder
}

// Ledger answers aggregate questions about transactions.
type Ledger struct {
	store LedgerStore
}

func NewLedger(store LedgerStore) *Ledger {
	return &Ledger{store: store}
}

// TotalInWindow sums every transaction dated inside w.
func (l *Ledger) TotalInWindow(ctx context.Context, w Window) (core.Money, error) {
	total, err := l.store.Sum(ctx, records.Transactions, records.Filter{StartDate: w.Start, EndDate: w.End})
	if err != nil {
		return core.Money{}, unavailable("sum window "+w.Start, err)
	}
	return total, nil
}

// TotalByCategory sums transactions inside w per category. Categories with
// no transactions are absent from the result.
func (l *Ledger) TotalByCategory(ctx context.Context, w Window) (map[core.Category]core.Money, error) {
	groups, err := l.store.GroupSum(ctx, records.Transactions,
		records.Filter{StartDate: w.Start, EndDate: w.End}, records.FieldCategory)
	if err != nil {
		return nil, unavailable("group by category "+w.Start, err)
	}
	out := make(map[core.Category]core.Money, len(groups))
	for k, v := range groups {
		out[core.Category(k)] = v
	}
	return out, nil
}

// TotalForCategoryInWindow sums transactions of one category inside w.
func (l *Ledger) TotalForCategoryInWindow(ctx context.Context, c core.Category, w Window) (core.Money, error) {
	total, err := l.store.Sum(ctx, records.Transactions,
		records.Filter{Category: c, StartDate: w.Start, EndDate: w.End})
	if err != nil {
		return core.Money{}, unavailable("sum category "+string(c), err)
	}
	return total, nil
}

// MostRecent returns up to limit transactions of all time, newest date first.
// Order among equal dates is whatever the store yields.
func (l *Ledger) MostRecent(ctx context.Context, limit int) ([]core.Transaction, error) {
	txs, err := l.store.FindTransactions(ctx, records.Query{
		Sort:  &records.Sort{Field: records.FieldDate, Desc: true},
		Limit: limit,
	})
	if err != nil {
		return nil, unavailable("recent transactions", err)
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}
