// Package memory is an in-process sheets.Exporter for development and tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	ports "expcat/internal/sheets"
)

var _ ports.Exporter = (*Exporter)(nil)

// Table is one exported sheet.
type Table struct {
	Header []string
	Rows   [][]string
}

type Exporter struct {
	mu     sync.Mutex
	sheets map[string]Table
}

func New() *Exporter {
	return &Exporter{sheets: make(map[string]Table)}
}

// Export stores a copy of the table under sheetName.
func (e *Exporter) Export(ctx context.Context, sheetName string, header []string, rows [][]string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		return "", errors.New("sheet name required")
	}
	t := Table{Header: append([]string(nil), header...), Rows: make([][]string, len(rows))}
	for i, r := range rows {
		t.Rows[i] = append([]string(nil), r...)
	}

	e.mu.Lock()
	e.sheets[sheetName] = t
	e.mu.Unlock()
	return fmt.Sprintf("mem:%s!%d", sheetName, len(rows)+1), nil
}

// Sheet returns the last table exported under name.
func (e *Exporter) Sheet(name string) (Table, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.sheets[name]
	return t, ok
}
