package google

import (
	"strings"

	"spending/internal/analytics"
)

// snapshotRows lays a snapshot out as sheet rows, one titled section per
// part, separated by a blank row. Amounts are written as plain decimal text
// so USER_ENTERED parses them as numbers without float rounding.
func snapshotRows(s analytics.Snapshot) [][]any {
	rows := [][]any{
		{"Period", s.Period.String()},
		{"Total expenses", s.TotalExpenses.String()},
		{},
		{"Monthly trend"},
		{"Month", "Amount"},
	}
	for _, m := range s.MonthlyExpenses {
		rows = append(rows, []any{m.Month, m.Amount.String()})
	}

	rows = append(rows, []any{}, []any{"Category breakdown"}, []any{"Category", "Amount", "Percentage"})
	for _, c := range s.CategoryBreakdown {
		rows = append(rows, []any{string(c.Category), c.Amount.String(), c.Percentage})
	}

	rows = append(rows, []any{}, []any{"Recent transactions"}, []any{"Date", "Description", "Category", "Amount"})
	for _, t := range s.RecentTransactions {
		rows = append(rows, []any{t.Date, cellText(t.Description), string(t.Category), t.Amount.String()})
	}

	rows = append(rows, []any{}, []any{"Budgets"}, []any{"Category", "Budget", "Spent", "Percentage", "Remaining"})
	for _, b := range s.BudgetComparison {
		rows = append(rows, []any{string(b.Category), b.Budget.String(), b.Spent.String(), b.Percentage, b.Remaining.String()})
	}
	return rows
}

// cellText stops user text from being evaluated as a formula.
func cellText(s string) string {
	s = strings.TrimSpace(s)
	if s != "" && strings.ContainsRune("=+-@", rune(s[0])) {
		return "'" + s
	}
	return s
}
