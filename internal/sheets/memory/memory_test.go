package memory

import (
	"context"
	"testing"
)

func TestExportReplacesSheet(t *testing.T) {
	e := New()
	ctx := context.Background()

	header := []string{"Date", "Description", "Amount", "Category"}
	rows := [][]string{{"2024-01-15", "Starbucks Coffee", "-5.50", "Food & Dining"}}
	ref, err := e.Export(ctx, "Jan", header, rows)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if ref != "mem:Jan!2" {
		t.Errorf("ref = %q", ref)
	}

	rows[0][1] = "mutated"
	got, ok := e.Sheet("Jan")
	if !ok || got.Rows[0][1] != "Starbucks Coffee" {
		t.Fatalf("exporter must keep its own copy, got %+v", got)
	}

	if _, err := e.Export(ctx, "Jan", header, nil); err != nil {
		t.Fatalf("Export: %v", err)
	}
	got, _ = e.Sheet("Jan")
	if len(got.Rows) != 0 {
		t.Errorf("second export should replace rows, got %d", len(got.Rows))
	}
}

func TestExportValidation(t *testing.T) {
	e := New()
	if _, err := e.Export(context.Background(), "  ", nil, nil); err == nil {
		t.Error("expected error for blank sheet name")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Export(ctx, "x", nil, nil); err == nil {
		t.Error("expected error for cancelled context")
	}
}
