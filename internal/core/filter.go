package core

import (
	"sort"
	"time"
)

// Filter is the set of table filters chosen in the dashboard. Predicates
// compose by intersection.
type Filter struct {
	// Categories restricts rows to these labels. Nil means no restriction;
	// a non-nil empty slice selects nothing.
	Categories []Category
	// From and To bound the calendar date inclusively. Zero means open.
	From time.Time
	To   time.Time
	Type TxType
}

// IsZero reports whether the filter lets everything through.
func (f Filter) IsZero() bool {
	return f.Categories == nil && f.From.IsZero() && f.To.IsZero() && (f.Type == "" || f.Type == TypeAll)
}

// Apply returns the rows matching every predicate, in input order.
func (f Filter) Apply(txs []CategorizedTransaction) []CategorizedTransaction {
	out := txs
	if f.Categories != nil {
		out = FilterByCategory(out, f.Categories)
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		out = FilterByDateRange(out, f.From, f.To)
	}
	if f.Type != "" && f.Type != TypeAll {
		out = FilterByType(out, f.Type)
	}
	if len(out) == len(txs) {
		return append([]CategorizedTransaction(nil), txs...)
	}
	return out
}

// FilterByCategory keeps rows whose label is in cats.
func FilterByCategory(txs []CategorizedTransaction, cats []Category) []CategorizedTransaction {
	set := make(map[Category]struct{}, len(cats))
	for _, c := range cats {
		set[c] = struct{}{}
	}
	out := make([]CategorizedTransaction, 0, len(txs))
	for _, t := range txs {
		if _, ok := set[t.Category]; ok {
			out = append(out, t)
		}
	}
	return out
}

// FilterByDateRange keeps rows dated within [start, end], compared as
// calendar dates. A zero bound is open.
func FilterByDateRange(txs []CategorizedTransaction, start, end time.Time) []CategorizedTransaction {
	if !start.IsZero() {
		start = DateOnly(start)
	}
	if !end.IsZero() {
		end = DateOnly(end)
	}
	out := make([]CategorizedTransaction, 0, len(txs))
	for _, t := range txs {
		d := DateOnly(t.Date)
		if !start.IsZero() && d.Before(start) {
			continue
		}
		if !end.IsZero() && d.After(end) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// FilterByType keeps expenses or income; TypeAll keeps everything.
func FilterByType(txs []CategorizedTransaction, typ TxType) []CategorizedTransaction {
	out := make([]CategorizedTransaction, 0, len(txs))
	for _, t := range txs {
		switch typ {
		case TypeExpense:
			if !t.IsExpense() {
				continue
			}
		case TypeIncome:
			if !t.IsIncome() {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// SortByDateDesc returns a copy ordered newest first; equal dates keep
// input order.
func SortByDateDesc(txs []CategorizedTransaction) []CategorizedTransaction {
	out := append([]CategorizedTransaction(nil), txs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// DateBounds returns the earliest and latest dates; ok is false on empty
// input.
func DateBounds(txs []CategorizedTransaction) (minDate, maxDate time.Time, ok bool) {
	for i, t := range txs {
		d := DateOnly(t.Date)
		if i == 0 || d.Before(minDate) {
			minDate = d
		}
		if i == 0 || d.After(maxDate) {
			maxDate = d
		}
	}
	return minDate, maxDate, len(txs) > 0
}

// PresentCategories lists the labels that occur in txs, in precedence order.
func PresentCategories(txs []CategorizedTransaction) []Category {
	seen := CountByCategory(txs)
	out := make([]Category, 0, len(seen))
	for _, c := range allCategories {
		if seen[c] > 0 {
			out = append(out, c)
		}
	}
	return out
}
