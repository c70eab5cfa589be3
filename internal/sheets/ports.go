// Package sheets defines the spreadsheet export port.
package sheets

import "context"

// Exporter writes a table to a named sheet, replacing whatever it held.
// The returned reference identifies the written range for display.
type Exporter interface {
	Export(ctx context.Context, sheetName string, header []string, rows [][]string) (ref string, err error)
}
