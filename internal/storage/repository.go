// Package storage is the SQLite record store.
//
// Amounts are stored as decimal text and summed in Go so totals stay exact.
// Dates are stored as zero padded YYYY-MM-DD text; range filters compare
// them as strings.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"spending/internal/core"
	"spending/internal/log"
	"spending/internal/records"

	_ "modernc.org/sqlite"
)

var _ records.Store = (*SQLiteRepository)(nil)

const timestampLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// applies migrations.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	dsn := dataSourceName(dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func dataSourceName(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite: %w", err)
	}
	return nil
}

// whereClause renders f for the given collection.
func whereClause(c records.Collection, f records.Filter) (string, []any, error) {
	var (
		conds []string
		args  []any
	)
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, string(f.Category))
	}
	switch c {
	case records.Transactions:
		if f.StartDate != "" {
			conds = append(conds, "date >= ?")
			args = append(args, f.StartDate)
		}
		if f.EndDate != "" {
			conds = append(conds, "date <= ?")
			args = append(args, f.EndDate)
		}
	case records.Budgets:
		if f.Month != 0 {
			conds = append(conds, "month = ?")
			args = append(args, f.Month)
		}
		if f.Year != 0 {
			conds = append(conds, "year = ?")
			args = append(args, f.Year)
		}
	default:
		return "", nil, fmt.Errorf("%w: %q", records.ErrUnknownCollection, c)
	}
	if len(conds) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// Sum implements records.Summer
func (r *SQLiteRepository) Sum(ctx context.Context, c records.Collection, f records.Filter) (core.Money, error) {
	where, args, err := whereClause(c, f)
	if err != nil {
		return core.Money{}, err
	}
	rows, err := r.db.QueryContext(ctx, "SELECT amount FROM "+string(c)+where, args...)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum %s: %w", c, err)
	}
	defer rows.Close()

	total := core.Money{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return core.Money{}, fmt.Errorf("scan %s amount: %w", c, err)
		}
		amount, err := core.ParseMoney(raw)
		if err != nil {
			return core.Money{}, fmt.Errorf("malformed %s amount: %w", c, err)
		}
		total = total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return core.Money{}, fmt.Errorf("sum %s: %w", c, err)
	}
	return total, nil
}

// GroupSum implements records.GroupSummer
func (r *SQLiteRepository) GroupSum(ctx context.Context, c records.Collection, f records.Filter, group records.Field) (map[string]core.Money, error) {
	if group != records.FieldCategory {
		return nil, fmt.Errorf("%w: group by %q", records.ErrUnsupportedField, group)
	}
	where, args, err := whereClause(c, f)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, "SELECT category, amount FROM "+string(c)+where, args...)
	if err != nil {
		return nil, fmt.Errorf("group sum %s: %w", c, err)
	}
	defer rows.Close()

	out := map[string]core.Money{}
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("scan %s group: %w", c, err)
		}
		amount, err := core.ParseMoney(raw)
		if err != nil {
			return nil, fmt.Errorf("malformed %s amount: %w", c, err)
		}
		out[key] = out[key].Add(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("group sum %s: %w", c, err)
	}
	return out, nil
}

func orderClause(s *records.Sort, fallback string) (string, error) {
	if s == nil {
		return " ORDER BY " + fallback, nil
	}
	var col string
	switch s.Field {
	case records.FieldDate:
		col = "date"
	case records.FieldCategory:
		col = "category"
	case records.FieldAmount:
		col = "CAST(amount AS REAL)"
	default:
		return "", fmt.Errorf("%w: sort by %q", records.ErrUnsupportedField, s.Field)
	}
	if s.Desc {
		col += " DESC"
	}
	return " ORDER BY " + col + ", rowid", nil
}

func limitClause(limit, offset int) (string, []any) {
	if limit <= 0 && offset <= 0 {
		return "", nil
	}
	if limit <= 0 {
		limit = -1
	}
	return " LIMIT ? OFFSET ?", []any{limit, offset}
}

const transactionColumns = "id, amount, description, category, date, budget_id, created_at, updated_at"

// FindTransactions implements records.TransactionFinder
func (r *SQLiteRepository) FindTransactions(ctx context.Context, q records.Query) ([]core.Transaction, error) {
	where, args, err := whereClause(records.Transactions, q.Filter)
	if err != nil {
		return nil, err
	}
	order, err := orderClause(q.Sort, "rowid")
	if err != nil {
		return nil, err
	}
	limit, limitArgs := limitClause(q.Limit, q.Offset)
	query := "SELECT " + transactionColumns + " FROM transactions" + where + order + limit

	rows, err := r.db.QueryContext(ctx, query, append(args, limitArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("find transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find transactions: %w", err)
	}
	return out, nil
}

const budgetColumns = "id, category, amount, month, year, created_at, updated_at"

// FindBudgets implements records.BudgetFinder
func (r *SQLiteRepository) FindBudgets(ctx context.Context, q records.Query) ([]core.Budget, error) {
	where, args, err := whereClause(records.Budgets, q.Filter)
	if err != nil {
		return nil, err
	}
	if q.Sort != nil && q.Sort.Field == records.FieldDate {
		return nil, fmt.Errorf("%w: sort budgets by %q", records.ErrUnsupportedField, q.Sort.Field)
	}
	order, err := orderClause(q.Sort, "category, rowid")
	if err != nil {
		return nil, err
	}
	limit, limitArgs := limitClause(q.Limit, q.Offset)
	query := "SELECT " + budgetColumns + " FROM budgets" + where + order + limit

	rows, err := r.db.QueryContext(ctx, query, append(args, limitArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("find budgets: %w", err)
	}
	defer rows.Close()

	out := make([]core.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find budgets: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, records.ErrNotFound
	}
	return t, err
}

func (r *SQLiteRepository) CountTransactions(ctx context.Context, f records.Filter) (int, error) {
	where, args, err := whereClause(records.Transactions, f)
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions"+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO transactions ("+transactionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.Amount.String(), t.Description, string(t.Category), t.Date,
		nullString(t.BudgetID), formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		log.FieldComponent, log.ComponentStorage,
		log.FieldTransactionID, t.ID,
		log.FieldAmount, t.Amount.String(),
		log.FieldCategory, t.Category,
		"date", t.Date)
	return nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET amount = ?, description = ?, category = ?, date = ?, budget_id = ?, created_at = ?, updated_at = ?
		 WHERE id = ?`,
		t.Amount.String(), t.Description, string(t.Category), t.Date,
		nullString(t.BudgetID), formatTime(t.CreatedAt), formatTime(t.UpdatedAt), t.ID)
	if err != nil {
		return fmt.Errorf("update transaction %s: %w", t.ID, err)
	}
	return affectedOne(res)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if err := affectedOne(res); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Transaction deleted from SQLite",
		log.FieldComponent, log.ComponentStorage,
		log.FieldTransactionID, id)
	return nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, id string) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+budgetColumns+" FROM budgets WHERE id = ?", id)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, records.ErrNotFound
	}
	return b, err
}

// UpsertBudget writes the budget under its (category, month, year) key. The
// stored ID and created_at of an existing row are kept.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO budgets (`+budgetColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (category, month, year) DO UPDATE
		 SET amount = excluded.amount, updated_at = excluded.updated_at
		 RETURNING `+budgetColumns,
		b.ID, string(b.Category), b.Amount.String(), b.Month, b.Year,
		formatTime(b.CreatedAt), formatTime(b.UpdatedAt))
	saved, err := scanBudget(row)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved to SQLite",
		log.FieldComponent, log.ComponentStorage,
		log.FieldBudgetID, saved.ID,
		log.FieldCategory, saved.Category,
		log.FieldMonth, saved.Month,
		log.FieldYear, saved.Year)
	return saved, nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM budgets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete budget %s: %w", id, err)
	}
	if err := affectedOne(res); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Budget deleted from SQLite",
		log.FieldComponent, log.ComponentStorage,
		log.FieldBudgetID, id)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		t                  core.Transaction
		amount, category   string
		budgetID           sql.NullString
		createdAt, updated string
	)
	if err := s.Scan(&t.ID, &amount, &t.Description, &category, &t.Date, &budgetID, &createdAt, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, err
		}
		return t, fmt.Errorf("scan transaction: %w", err)
	}
	var err error
	if t.Amount, err = core.ParseMoney(amount); err != nil {
		return t, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	t.Category = core.Category(category)
	t.BudgetID = budgetID.String
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return t, fmt.Errorf("transaction %s created_at: %w", t.ID, err)
	}
	if t.UpdatedAt, err = parseTime(updated); err != nil {
		return t, fmt.Errorf("transaction %s updated_at: %w", t.ID, err)
	}
	return t, nil
}

func scanBudget(s scanner) (core.Budget, error) {
	var (
		b                  core.Budget
		amount, category   string
		createdAt, updated string
	)
	if err := s.Scan(&b.ID, &category, &amount, &b.Month, &b.Year, &createdAt, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return b, err
		}
		return b, fmt.Errorf("scan budget: %w", err)
	}
	var err error
	if b.Amount, err = core.ParseMoney(amount); err != nil {
		return b, fmt.Errorf("budget %s: %w", b.ID, err)
	}
	b.Category = core.Category(category)
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return b, fmt.Errorf("budget %s created_at: %w", b.ID, err)
	}
	if b.UpdatedAt, err = parseTime(updated); err != nil {
		return b, fmt.Errorf("budget %s updated_at: %w", b.ID, err)
	}
	return b, nil
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return records.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timestampLayout, s)
}
