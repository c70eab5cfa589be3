package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"expcat/internal/core"
)

// ExportHeader is the header Export writes for ds: the original columns
// with Category appended, or kept in place when the upload already had one.
func ExportHeader(ds *Dataset) []string {
	header := append([]string(nil), ds.Header...)
	if indexOf(header, ColCategory) < 0 {
		header = append(header, ColCategory)
	}
	return header
}

// ExportRows renders the rows of ds with their categories. cats is aligned
// with ds.Rows.
func ExportRows(ds *Dataset, cats []core.Category) ([][]string, error) {
	if len(cats) != len(ds.Rows) {
		return nil, fmt.Errorf("export: %d categories for %d rows", len(cats), len(ds.Rows))
	}
	catIdx := indexOf(ds.Header, ColCategory)
	width := len(ds.Header)
	if catIdx < 0 {
		catIdx = width
		width++
	}

	out := make([][]string, len(ds.Rows))
	for i, row := range ds.Rows {
		rec := make([]string, width)
		copy(rec, row.Fields)
		rec[ds.dateIdx] = row.Transaction.Date.Format("2006-01-02")
		rec[ds.amountIdx] = formatAmount(row.Transaction.Amount)
		rec[catIdx] = cats[i].String()
		out[i] = rec
	}
	return out, nil
}

// Export writes the categorized dataset as CSV. Re-parsing the output yields
// the same transactions.
func Export(w io.Writer, ds *Dataset, cats []core.Category) error {
	rows, err := ExportRows(ds, cats)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader(ds)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// formatAmount writes at least two decimals and never drops a significant
// digit, so exported amounts parse back to the same value.
func formatAmount(d decimal.Decimal) string {
	places := int32(2)
	if exp := -d.Exponent(); exp > places {
		places = exp
	}
	return d.StringFixed(places)
}

// ExportFileName is the download name for an export taken at now.
func ExportFileName(now time.Time) string {
	return "categorized_transactions_" + now.Format("20060102_150405") + ".csv"
}

const sampleCSV = `Date,Description,Amount
2024-01-15,Starbucks Coffee,-5.50
2024-01-16,Salary Deposit,3000.00
2024-01-17,Uber Ride,-12.30
`

// Sample returns the example upload offered on the landing page.
func Sample() io.Reader {
	return strings.NewReader(sampleCSV)
}
