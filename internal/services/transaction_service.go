package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"spending/internal/amqp"
	"spending/internal/core"
	"spending/internal/log"
	"spending/internal/records"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// TransactionRepository is what the transaction service needs from a store.
type TransactionRepository interface {
	records.TransactionStore
	records.TransactionFinder
}

// TransactionInput is the user supplied part of a transaction.
type TransactionInput struct {
	Amount      core.Money    `json:"amount"`
	Description string        `json:"description"`
	Category    core.Category `json:"category"`
	Date        string        `json:"date"`
	BudgetID    string        `json:"budgetId,omitempty"`
}

// ListParams filters and pages a transaction listing.
type ListParams struct {
	Page      int
	Limit     int
	Category  string // "" or "all" for every category
	StartDate string
	EndDate   string
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type TransactionPage struct {
	Transactions []core.Transaction `json:"transactions"`
	Pagination   Pagination         `json:"pagination"`
}

// TransactionService records and edits transactions, then announces the
// change to the event publisher.
type TransactionService struct {
	store TransactionRepository
	notifier
	now   func() time.Time
	newID func() string
}

func NewTransactionService(store TransactionRepository, publisher EventPublisher) *TransactionService {
	return &TransactionService{
		store:    store,
		notifier: notifier{publisher: publisher, component: log.ComponentLedger},
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

func (in TransactionInput) build(id string, created, updated time.Time) (core.Transaction, error) {
	t := core.Transaction{
		ID:          id,
		Amount:      in.Amount,
		Description: in.Description,
		Category:    core.Category(strings.TrimSpace(string(in.Category))),
		Date:        strings.TrimSpace(in.Date),
		BudgetID:    strings.TrimSpace(in.BudgetID),
		CreatedAt:   created,
		UpdatedAt:   updated,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, invalid(err)
	}
	return t, nil
}

// Create validates and stores a new transaction.
func (s *TransactionService) Create(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	now := s.now()
	t, err := in.build(s.newID(), now, now)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	s.notify(ctx, amqp.TransactionCreated, t.ID, t.Period())
	return t, nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	if strings.TrimSpace(id) == "" {
		return core.Transaction{}, ErrMissingID
	}
	t, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return t, nil
}

// Update replaces every user supplied field of an existing transaction.
// ID and creation time are kept.
func (s *TransactionService) Update(ctx context.Context, id string, in TransactionInput) (core.Transaction, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	t, err := in.build(existing.ID, existing.CreatedAt, s.now())
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}
	// Moving a transaction across months changes both snapshots.
	s.notify(ctx, amqp.TransactionUpdated, t.ID, existing.Period(), t.Period())
	return t, nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	s.notify(ctx, amqp.TransactionDeleted, id, existing.Period())
	return nil
}

// normalize applies paging defaults and validates filters.
func (p ListParams) normalize() (ListParams, records.Filter, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	var f records.Filter
	if c := strings.TrimSpace(p.Category); c != "" && c != "all" {
		cat, err := core.ParseCategory(c)
		if err != nil {
			return p, f, invalid(err)
		}
		f.Category = cat
	}
	for _, d := range []string{p.StartDate, p.EndDate} {
		if d == "" {
			continue
		}
		if err := core.ValidateDate(d); err != nil {
			return p, f, invalid(err)
		}
	}
	if p.StartDate != "" && p.EndDate != "" && p.StartDate > p.EndDate {
		return p, f, invalidf("startDate %s is after endDate %s", p.StartDate, p.EndDate)
	}
	f.StartDate, f.EndDate = p.StartDate, p.EndDate
	return p, f, nil
}

// List returns one page of transactions, newest date first.
func (s *TransactionService) List(ctx context.Context, params ListParams) (TransactionPage, error) {
	p, f, err := params.normalize()
	if err != nil {
		return TransactionPage{}, err
	}
	txs, err := s.store.FindTransactions(ctx, records.Query{
		Filter: f,
		Sort:   &records.Sort{Field: records.FieldDate, Desc: true},
		Limit:  p.Limit,
		Offset: (p.Page - 1) * p.Limit,
	})
	if err != nil {
		return TransactionPage{}, fmt.Errorf("list transactions: %w", err)
	}
	total, err := s.store.CountTransactions(ctx, f)
	if err != nil {
		return TransactionPage{}, fmt.Errorf("count transactions: %w", err)
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return TransactionPage{
		Transactions: txs,
		Pagination: Pagination{
			Page:       p.Page,
			Limit:      p.Limit,
			Total:      total,
			TotalPages: (total + p.Limit - 1) / p.Limit,
		},
	}, nil
}
