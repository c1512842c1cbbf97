package analytics

import (
	"fmt"
	"time"

	"spending/internal/core"
)

// Window is an inclusive calendar month range in YYYY-MM-DD form.
type Window struct {
	Label string // e.g. "August 2023"
	Start string
	End   string
}

const (
	minYear = 1
	maxYear = 9999
)

// ValidateMonth rejects months outside 1-12.
func ValidateMonth(month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
	return nil
}

// ValidateYear rejects years that do not fit the four digit date layout.
func ValidateYear(year int) error {
	if year < minYear || year > maxYear {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	return nil
}

// ValidatePeriod checks both halves of a calendar month.
func ValidatePeriod(month, year int) error {
	if err := ValidateMonth(month); err != nil {
		return err
	}
	return ValidateYear(year)
}

// WindowFor returns the first and last day of the given month.
func WindowFor(month, year int) (Window, error) {
	if err := ValidatePeriod(month, year); err != nil {
		return Window{}, err
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	// Day 0 of the next month is the last day of this one.
	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
	return Window{
		Label: fmt.Sprintf("%s %d", first.Month(), year),
		Start: formatDate(first),
		End:   formatDate(last),
	}, nil
}

// LastNWindows returns n consecutive monthly windows, oldest first, the last
// one being (month, year).
func LastNWindows(month, year, n int) ([]Window, error) {
	if err := ValidatePeriod(month, year); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative window count %d", ErrInvalidPeriod, n)
	}
	out := make([]Window, n)
	for i := 0; i < n; i++ {
		back := n - 1 - i
		// Month arithmetic on the first of the month normalizes across years.
		t := time.Date(year, time.Month(month-back), 1, 0, 0, 0, 0, time.UTC)
		w, err := WindowFor(int(t.Month()), t.Year())
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

// Contains reports whether date falls inside the window.
func (w Window) Contains(date string) bool {
	return date >= w.Start && date <= w.End
}

// Period returns the calendar month of the window.
func (w Window) Period() core.Period {
	t, err := time.Parse(core.DateLayout, w.Start)
	if err != nil {
		return core.Period{}
	}
	return core.PeriodOf(t)
}

// formatDate zero pads the year as well, so years below 1000 still compare
// correctly as strings.
func formatDate(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}
