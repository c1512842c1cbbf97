package core

import (
	"fmt"
	"strings"
)

// Category is one of the fixed spending categories.
type Category string

const (
	FoodAndDining     Category = "Food & Dining"
	Transportation    Category = "Transportation"
	Entertainment     Category = "Entertainment"
	BillsAndUtilities Category = "Bills & Utilities"
	Shopping          Category = "Shopping"
	Healthcare        Category = "Healthcare"
	Education         Category = "Education"
	Travel            Category = "Travel"
	Groceries         Category = "Groceries"
	Other             Category = "Other"
)

var categoryOrder = []Category{
	FoodAndDining,
	Transportation,
	Entertainment,
	BillsAndUtilities,
	Shopping,
	Healthcare,
	Education,
	Travel,
	Groceries,
	Other,
}

var categoryColors = map[Category]string{
	FoodAndDining:     "#ef4444",
	Transportation:    "#f97316",
	Entertainment:     "#eab308",
	BillsAndUtilities: "#22c55e",
	Shopping:          "#06b6d4",
	Healthcare:        "#3b82f6",
	Education:         "#8b5cf6",
	Travel:            "#ec4899",
	Groceries:         "#10b981",
	Other:             "#6b7280",
}

// Categories returns every valid category in display order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// IsValid reports whether c belongs to the enumeration.
func (c Category) IsValid() bool {
	_, ok := categoryColors[c]
	return ok
}

// Color returns the display colour, or the "Other" colour for unknown values.
func (c Category) Color() string {
	if color, ok := categoryColors[c]; ok {
		return color
	}
	return categoryColors[Other]
}

func (c Category) String() string { return string(c) }

// ParseCategory validates a user supplied label.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}
