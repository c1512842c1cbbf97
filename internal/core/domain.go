package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DateLayout is the storage and comparison format of transaction dates.
	// Zero padding keeps lexicographic order equal to calendar order.
	DateLayout = "2006-01-02"

	MaxDescriptionLength = 200
	MinBudgetYear        = 2020
	MaxBudgetYear        = 2030
)

type (
	// Transaction is a single spending event. Updates replace the whole record.
	Transaction struct {
		ID          string    `json:"id"`
		Amount      Money     `json:"amount"`
		Description string    `json:"description"`
		Category    Category  `json:"category"`
		Date        string    `json:"date"`
		BudgetID    string    `json:"budgetId,omitempty"` // weak reference, empty means unlinked
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	// Budget caps spending for one category in one calendar month.
	Budget struct {
		ID        string    `json:"id"`
		Category  Category  `json:"category"`
		Amount    Money     `json:"amount"`
		Month     int       `json:"month"`
		Year      int       `json:"year"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// BudgetKey identifies the single budget allowed per category and month.
	BudgetKey struct {
		Category Category
		Month    int
		Year     int
	}

	// Period is a calendar month.
	Period struct {
		Month int `json:"month"`
		Year  int `json:"year"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrInvalidYear        = errors.New("invalid year")
)

// ValidateDate checks for a real calendar date in YYYY-MM-DD form.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return nil
}

// ValidateDescription requires non-blank text of at most MaxDescriptionLength runes.
func ValidateDescription(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(s) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := ValidateDescription(t.Description); err != nil {
		return err
	}
	if !t.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, t.Category)
	}
	return ValidateDate(t.Date)
}

// Period returns the calendar month the transaction falls in.
// The date must already be valid.
func (t Transaction) Period() Period {
	d, err := time.Parse(DateLayout, t.Date)
	if err != nil {
		return Period{}
	}
	return Period{Month: int(d.Month()), Year: d.Year()}
}

func (b Budget) Validate() error {
	if !b.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, b.Category)
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if b.Month < 1 || b.Month > 12 {
		return ErrInvalidMonth
	}
	if b.Year < MinBudgetYear || b.Year > MaxBudgetYear {
		return fmt.Errorf("%w: must be between %d and %d", ErrInvalidYear, MinBudgetYear, MaxBudgetYear)
	}
	return nil
}

func (b Budget) Key() BudgetKey {
	return BudgetKey{Category: b.Category, Month: b.Month, Year: b.Year}
}

func (b Budget) Period() Period {
	return Period{Month: b.Month, Year: b.Year}
}

// PeriodOf returns the calendar month containing t.
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}
