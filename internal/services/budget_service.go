package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"spending/internal/amqp"
	"spending/internal/analytics"
	"spending/internal/core"
	"spending/internal/log"
	"spending/internal/records"
)

// BudgetInput is the user supplied part of a budget.
type BudgetInput struct {
	Category core.Category `json:"category"`
	Amount   core.Money    `json:"amount"`
	Month    int           `json:"month"`
	Year     int           `json:"year"`
}

// StatusLister enriches the budgets of a month with their spend.
type StatusLister interface {
	BudgetStatuses(ctx context.Context, month, year int, category core.Category) ([]analytics.BudgetStatus, error)
}

type BudgetService struct {
	store    records.BudgetStore
	statuses StatusLister
	notifier
	now   func() time.Time
	newID func() string
}

func NewBudgetService(store records.BudgetStore, statuses StatusLister, publisher EventPublisher) *BudgetService {
	return &BudgetService{
		store:    store,
		statuses: statuses,
		notifier: notifier{publisher: publisher, component: log.ComponentBudget},
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// Save creates the budget for (category, month, year) or overwrites the
// amount of the one already there.
func (s *BudgetService) Save(ctx context.Context, in BudgetInput) (core.Budget, error) {
	now := s.now()
	b := core.Budget{
		ID:        s.newID(),
		Category:  core.Category(strings.TrimSpace(string(in.Category))),
		Amount:    in.Amount,
		Month:     in.Month,
		Year:      in.Year,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, invalid(err)
	}
	saved, err := s.store.UpsertBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}
	s.notify(ctx, amqp.BudgetSaved, saved.ID, saved.Period())
	return saved, nil
}

// List returns the budgets of (month, year) with spent, remaining and
// percentage. Zero month or year default to today; an empty category or
// "all" means every category.
func (s *BudgetService) List(ctx context.Context, month, year int, category string) ([]analytics.BudgetStatus, error) {
	var cat core.Category
	if c := strings.TrimSpace(category); c != "" && c != "all" {
		parsed, err := core.ParseCategory(c)
		if err != nil {
			return nil, invalid(err)
		}
		cat = parsed
	}
	out, err := s.statuses.BudgetStatuses(ctx, month, year, cat)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []analytics.BudgetStatus{}
	}
	return out, nil
}

func (s *BudgetService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrMissingID
	}
	existing, err := s.store.GetBudget(ctx, id)
	if err != nil {
		return fmt.Errorf("get budget %s: %w", id, err)
	}
	if err := s.store.DeleteBudget(ctx, id); err != nil {
		return fmt.Errorf("delete budget %s: %w", id, err)
	}
	s.notify(ctx, amqp.BudgetDeleted, id, existing.Period())
	return nil
}
