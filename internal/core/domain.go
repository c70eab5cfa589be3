// Package core holds the transaction model, the keyword rule table and the
// pure categorize, aggregate and filter functions built on it.
package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category labels, listed in rule precedence order. Others is the fallback
// and is never matched by keyword.
const (
	FoodDining     Category = "Food & Dining"
	Transportation Category = "Transportation"
	Utilities      Category = "Utilities"
	Shopping       Category = "Shopping"
	Entertainment  Category = "Entertainment"
	Healthcare     Category = "Healthcare"
	Income         Category = "Income"
	Education      Category = "Education"
	Banking        Category = "Banking"
	Others         Category = "Others"
)

// Transaction types used by the type filter. The amount sign decides the
// type: negative is an expense, positive is income, zero is neither.
const (
	TypeAll     TxType = "all"
	TypeExpense TxType = "expense"
	TypeIncome  TxType = "income"
)

type (
	Category string

	TxType string

	// Transaction is one dated, described, signed monetary record.
	Transaction struct {
		Date        time.Time
		Description string
		Amount      decimal.Decimal
	}

	// CategorizedTransaction is a Transaction plus its assigned label.
	CategorizedTransaction struct {
		Transaction
		Category Category
	}
)

var (
	ErrEmptyInput      = errors.New("empty input")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownType     = errors.New("unknown transaction type")
)

var allCategories = []Category{
	FoodDining, Transportation, Utilities, Shopping, Entertainment,
	Healthcare, Income, Education, Banking, Others,
}

var categoryMeta = map[Category]struct{ emoji, color string }{
	FoodDining:     {"🍔", "#FF6B6B"},
	Transportation: {"🚗", "#4ECDC4"},
	Utilities:      {"🏠", "#45B7D1"},
	Shopping:       {"🛍️", "#96CEB4"},
	Entertainment:  {"🎬", "#FFEAA7"},
	Healthcare:     {"🏥", "#DDA0DD"},
	Income:         {"💰", "#98D8C8"},
	Education:      {"📚", "#F7DC6F"},
	Banking:        {"🏦", "#BB8FCE"},
	Others:         {"❓", "#AED6F1"},
}

// Categories returns every label in rule precedence order, Others last.
func Categories() []Category {
	return append([]Category(nil), allCategories...)
}

// ParseCategory maps a label back to a Category. Matching is exact after
// trimming surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range allCategories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", ErrUnknownCategory
}

func (c Category) String() string { return string(c) }

// Emoji returns the display glyph for the category.
func (c Category) Emoji() string {
	if m, ok := categoryMeta[c]; ok {
		return m.emoji
	}
	return categoryMeta[Others].emoji
}

// Color returns the hex colour used when charting the category.
func (c Category) Color() string {
	if m, ok := categoryMeta[c]; ok {
		return m.color
	}
	return categoryMeta[Others].color
}

// rank is the position of c in precedence order; unknown labels sort last.
func (c Category) rank() int {
	for i, v := range allCategories {
		if v == c {
			return i
		}
	}
	return len(allCategories)
}

// ParseTxType accepts all, expense or income (case-insensitive). An empty
// string means all.
func ParseTxType(s string) (TxType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(TypeAll):
		return TypeAll, nil
	case string(TypeExpense), "expenses":
		return TypeExpense, nil
	case string(TypeIncome):
		return TypeIncome, nil
	}
	return "", ErrUnknownType
}

// IsExpense reports whether the transaction is an outflow.
func (t Transaction) IsExpense() bool { return t.Amount.IsNegative() }

// IsIncome reports whether the transaction is an inflow.
func (t Transaction) IsIncome() bool { return t.Amount.IsPositive() }

// Equal compares two transactions by value; amounts compare numerically so
// "-4.5" and "-4.50" are the same.
func (t Transaction) Equal(o Transaction) bool {
	return t.Date.Equal(o.Date) && t.Description == o.Description && t.Amount.Equal(o.Amount)
}

// NewDate returns the calendar date at UTC midnight.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOnly truncates t to its calendar date at UTC midnight.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}
