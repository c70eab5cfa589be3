// Package csvfile reads transaction CSV uploads and writes the categorized
// export.
package csvfile

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"expcat/internal/core"
)

// Required header names. Matching is case-sensitive; surrounding whitespace
// and a UTF-8 byte order mark are ignored.
const (
	ColDate        = "Date"
	ColDescription = "Description"
	ColAmount      = "Amount"
	ColCategory    = "Category"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"Jan 2, 2006",
	"02 Jan 2006",
}

// ErrNoHeader is returned for an empty upload.
var ErrNoHeader = errors.New("csv has no header row")

// MissingColumnsError rejects a file lacking required columns.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

// RowWarning describes a skipped row. Line is 1-based and counts the header.
type RowWarning struct {
	Line   int
	Reason string
}

func (w RowWarning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Reason)
}

// Row is one accepted record: the raw fields as read plus the parsed value.
type Row struct {
	Line        int
	Fields      []string
	Transaction core.Transaction
}

// Dataset is the parsed upload.
type Dataset struct {
	Header   []string
	Rows     []Row
	Warnings []RowWarning

	dateIdx, descIdx, amountIdx int
}

// Transactions returns the parsed values in file order.
func (d *Dataset) Transactions() []core.Transaction {
	out := make([]core.Transaction, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r.Transaction
	}
	return out
}

// Parse reads a CSV with at least Date, Description and Amount columns.
// Malformed rows are skipped with a warning; only a broken header fails the
// whole file.
func Parse(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = strings.TrimSpace(h)
	}

	ds := &Dataset{Header: header}
	var missing []string
	for _, col := range []struct {
		name string
		idx  *int
	}{{ColDate, &ds.dateIdx}, {ColDescription, &ds.descIdx}, {ColAmount, &ds.amountIdx}} {
		*col.idx = indexOf(header, col.name)
		if *col.idx < 0 {
			missing = append(missing, col.name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, fmt.Errorf("read csv: %w", err)
			}
			ds.Warnings = append(ds.Warnings, RowWarning{Line: perr.StartLine, Reason: perr.Err.Error()})
			continue
		}
		line, _ := cr.FieldPos(0)
		if len(rec) != len(header) {
			ds.Warnings = append(ds.Warnings, RowWarning{
				Line:   line,
				Reason: fmt.Sprintf("expected %d columns, got %d", len(header), len(rec)),
			})
			continue
		}

		date, err := ParseDate(rec[ds.dateIdx])
		if err != nil {
			ds.Warnings = append(ds.Warnings, RowWarning{Line: line, Reason: fmt.Sprintf("unparseable date %q", rec[ds.dateIdx])})
			continue
		}
		amount, err := core.ParseAmount(rec[ds.amountIdx])
		if err != nil {
			ds.Warnings = append(ds.Warnings, RowWarning{Line: line, Reason: fmt.Sprintf("unparseable amount %q", rec[ds.amountIdx])})
			continue
		}

		ds.Rows = append(ds.Rows, Row{
			Line:   line,
			Fields: rec,
			Transaction: core.Transaction{
				Date:        date,
				Description: strings.TrimSpace(rec[ds.descIdx]),
				Amount:      amount,
			},
		})
	}
	return ds, nil
}

// ParseDate accepts the layouts in dateLayouts and drops the time of day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.DateOnly(t), nil
		}
	}
	return time.Time{}, core.ErrInvalidDate
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if v == target {
			return i
		}
	}
	return -1
}
