package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// All reducers below are zero-safe: on an empty slice they return zero
// values or empty maps. Only the averages fail, with ErrEmptyInput.

// TotalExpense is the magnitude of all negative amounts.
func TotalExpense(txs []CategorizedTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.IsExpense() {
			total = total.Add(t.Amount.Neg())
		}
	}
	return total
}

// TotalIncome is the sum of all positive amounts.
func TotalIncome(txs []CategorizedTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.IsIncome() {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// Net is income minus expense, which equals the signed sum of all amounts.
func Net(txs []CategorizedTransaction) decimal.Decimal {
	return TotalIncome(txs).Sub(TotalExpense(txs))
}

// Count returns the number of transactions.
func Count(txs []CategorizedTransaction) int { return len(txs) }

// CountByCategory counts transactions per label. Categories without any
// transaction are omitted.
func CountByCategory(txs []CategorizedTransaction) map[Category]int {
	out := make(map[Category]int)
	for _, t := range txs {
		out[t.Category]++
	}
	return out
}

// SumByCategory totals expense magnitudes per label. Income and zero rows
// are ignored; categories without expenses are omitted.
func SumByCategory(txs []CategorizedTransaction) map[Category]decimal.Decimal {
	out := make(map[Category]decimal.Decimal)
	for _, t := range txs {
		if t.IsExpense() {
			out[t.Category] = sumOrZero(out, t.Category).Add(t.Amount.Neg())
		}
	}
	return out
}

// Breakdown lists expense totals per category, largest first. Ties keep
// rule precedence order.
func Breakdown(txs []CategorizedTransaction) []CategoryAmount {
	sums := make(map[Category]decimal.Decimal)
	counts := make(map[Category]int)
	total := decimal.Zero
	for _, t := range txs {
		if !t.IsExpense() {
			continue
		}
		mag := t.Amount.Neg()
		sums[t.Category] = sumOrZero(sums, t.Category).Add(mag)
		counts[t.Category]++
		total = total.Add(mag)
	}

	out := make([]CategoryAmount, 0, len(sums))
	for c, sum := range sums {
		share := 0.0
		if total.IsPositive() {
			share, _ = sum.Div(total).Float64()
		}
		out = append(out, CategoryAmount{Category: c, Total: sum, Count: counts[c], Share: share})
	}
	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].Total.Cmp(out[j].Total); cmp != 0 {
			return cmp > 0
		}
		return out[i].Category.rank() < out[j].Category.rank()
	})
	return out
}

// TopCategories returns at most n entries of Breakdown.
func TopCategories(txs []CategorizedTransaction, n int) []CategoryAmount {
	b := Breakdown(txs)
	if n >= 0 && len(b) > n {
		b = b[:n]
	}
	return b
}

// AverageExpense is the mean expense magnitude.
func AverageExpense(txs []CategorizedTransaction) (decimal.Decimal, error) {
	total, n := decimal.Zero, 0
	for _, t := range txs {
		if t.IsExpense() {
			total = total.Add(t.Amount.Neg())
			n++
		}
	}
	if n == 0 {
		return decimal.Zero, ErrEmptyInput
	}
	return total.Div(decimal.NewFromInt(int64(n))), nil
}

// AverageExpenseByCategory is the mean expense magnitude per label.
func AverageExpenseByCategory(txs []CategorizedTransaction) (map[Category]decimal.Decimal, error) {
	sums := SumByCategory(txs)
	if len(sums) == 0 {
		return nil, ErrEmptyInput
	}
	counts := make(map[Category]int64)
	for _, t := range txs {
		if t.IsExpense() {
			counts[t.Category]++
		}
	}
	out := make(map[Category]decimal.Decimal, len(sums))
	for c, sum := range sums {
		out[c] = sum.Div(decimal.NewFromInt(counts[c]))
	}
	return out, nil
}
