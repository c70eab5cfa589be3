package core

import "github.com/shopspring/decimal"

// CategoryAmount is the expense total of one category.
type CategoryAmount struct {
	Category Category
	Total    decimal.Decimal
	Count    int
	// Share is Total as a fraction of all expenses, in [0, 1].
	Share float64
}

// Summary is a projection of a transaction set; it has no lifecycle of its
// own and is recomputed on demand.
type Summary struct {
	TotalExpense    decimal.Decimal
	TotalIncome     decimal.Decimal
	Net             decimal.Decimal
	Count           int
	CountByCategory map[Category]int
	SumByCategory   map[Category]decimal.Decimal
}

// Summarize computes every headline figure in one pass.
func Summarize(txs []CategorizedTransaction) Summary {
	s := Summary{
		TotalExpense:    decimal.Zero,
		TotalIncome:     decimal.Zero,
		Count:           len(txs),
		CountByCategory: make(map[Category]int),
		SumByCategory:   make(map[Category]decimal.Decimal),
	}
	for _, t := range txs {
		s.CountByCategory[t.Category]++
		switch {
		case t.IsExpense():
			mag := t.Amount.Neg()
			s.TotalExpense = s.TotalExpense.Add(mag)
			s.SumByCategory[t.Category] = sumOrZero(s.SumByCategory, t.Category).Add(mag)
		case t.IsIncome():
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		}
	}
	s.Net = s.TotalIncome.Sub(s.TotalExpense)
	return s
}

func sumOrZero(m map[Category]decimal.Decimal, c Category) decimal.Decimal {
	if v, ok := m[c]; ok {
		return v
	}
	return decimal.Zero
}
