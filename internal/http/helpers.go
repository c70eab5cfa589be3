package http

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"expcat/internal/core"
	"expcat/internal/csvfile"
	"expcat/internal/session"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money":   core.FormatMoney,
		"date":    func(t time.Time) string { return t.Format(dateParamLayout) },
		"percent": func(f float64) string { return fmt.Sprintf("%.1f%%", f*100) },
		"width":   barWidth,
		"signed": func(d decimal.Decimal) string {
			switch {
			case d.IsNegative():
				return "neg"
			case d.IsPositive():
				return "pos"
			}
			return "zero"
		},
	}
}

// barWidth turns a share in [0, 1] into a bar width percentage. Non-zero
// shares stay visible.
func barWidth(share float64) int {
	if share <= 0 {
		return 0
	}
	w := int(share*100 + 0.5)
	if w < 2 {
		w = 2
	}
	if w > 100 {
		w = 100
	}
	return w
}

// sanitizeFileName keeps the base name of an upload and strips control
// characters.
func sanitizeFileName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = sanitizeInput(name)
	if len(name) > 255 {
		name = name[:255]
	}
	return name
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

type kpiView struct {
	TotalExpense decimal.Decimal
	TotalIncome  decimal.Decimal
	Net          decimal.Decimal
	Count        int
	// AverageExpense is empty when there are no expenses.
	AverageExpense string
}

func newKPIView(txs []core.CategorizedTransaction) kpiView {
	sum := core.Summarize(txs)
	v := kpiView{
		TotalExpense: sum.TotalExpense,
		TotalIncome:  sum.TotalIncome,
		Net:          sum.Net,
		Count:        sum.Count,
	}
	if avg, err := core.AverageExpense(txs); err == nil {
		v.AverageExpense = core.FormatMoney(avg)
	}
	return v
}

type categoryRow struct {
	core.CategoryAmount
	Average decimal.Decimal
}

type categoriesView struct {
	Rows  []categoryRow
	Total decimal.Decimal
}

func newCategoriesView(txs []core.CategorizedTransaction) categoriesView {
	breakdown := core.Breakdown(txs)
	avgs, _ := core.AverageExpenseByCategory(txs)
	v := categoriesView{Rows: make([]categoryRow, 0, len(breakdown)), Total: core.TotalExpense(txs)}
	for _, b := range breakdown {
		v.Rows = append(v.Rows, categoryRow{CategoryAmount: b, Average: avgs[b.Category]})
	}
	return v
}

type transactionsView struct {
	Rows         []core.CategorizedTransaction
	Total        int
	TotalExpense decimal.Decimal
	TotalIncome  decimal.Decimal
	// Query reproduces the active filter for links.
	Query string
}

func newTransactionsView(s *session.Session) transactionsView {
	rows := s.Visible()
	return transactionsView{
		Rows:         rows,
		Total:        len(s.Transactions),
		TotalExpense: core.TotalExpense(rows),
		TotalIncome:  core.TotalIncome(rows),
		Query:        EncodeFilter(s.Filter).Encode(),
	}
}

type categoryOption struct {
	Category core.Category
	Count    int
	Checked  bool
}

type filterView struct {
	Options []categoryOption
	From    string
	To      string
	Type    core.TxType
	MinDate string
	MaxDate string
}

func newFilterView(s *session.Session) filterView {
	f := s.Filter
	selected := make(map[core.Category]bool, len(f.Categories))
	for _, c := range f.Categories {
		selected[c] = true
	}
	counts := core.CountByCategory(s.Transactions)

	v := filterView{Type: f.Type}
	if v.Type == "" {
		v.Type = core.TypeAll
	}
	for _, c := range core.PresentCategories(s.Transactions) {
		v.Options = append(v.Options, categoryOption{
			Category: c,
			Count:    counts[c],
			Checked:  f.Categories == nil || selected[c],
		})
	}
	if !f.From.IsZero() {
		v.From = f.From.Format(dateParamLayout)
	}
	if !f.To.IsZero() {
		v.To = f.To.Format(dateParamLayout)
	}
	if lo, hi, ok := core.DateBounds(s.Transactions); ok {
		v.MinDate = lo.Format(dateParamLayout)
		v.MaxDate = hi.Format(dateParamLayout)
	}
	return v
}

type ruleRow struct {
	Category core.Category
	Keywords string
}

func newRuleRows() []ruleRow {
	rules := core.Rules()
	out := make([]ruleRow, 0, len(rules))
	for _, r := range rules {
		out = append(out, ruleRow{Category: r.Category, Keywords: strings.Join(r.Keywords, ", ")})
	}
	return out
}

type indexView struct {
	HasSession    bool
	FileName      string
	Rows          int
	Warnings      []csvfile.RowWarning
	KPIs          kpiView
	Categories    categoriesView
	Filter        filterView
	Transactions  transactionsView
	SheetsEnabled bool
	SheetName     string
	Rules         []ruleRow
	MaxUploadMB   int64
}
