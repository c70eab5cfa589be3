package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"-4.50", "-4.5", true},
		{"2000.00", "2000", true},
		{" 2.50 ", "2.5", true},
		{"+3", "3", true},
		{"$1,234.56", "1234.56", true},
		{"-$3", "-3", true},
		{"€10", "10", true},
		{"(12.50)", "-12.5", true},
		{"0", "0", true},
		{"", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"--1", "", false},
		{"(-1)", "", false},
		{"$", "", false},
		{"1e3", "", false},
		{"-2.5E2", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error, got %s", tc.in, got)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":        "$0.00",
		"4.5":      "$4.50",
		"-4.5":     "-$4.50",
		"1234.5":   "$1,234.50",
		"-1234567": "-$1,234,567.00",
		"999.999":  "$1,000.00",
	}
	for in, want := range cases {
		if got := FormatMoney(decimal.RequireFromString(in)); got != want {
			t.Fatalf("FormatMoney(%s) = %q, want %q", in, got, want)
		}
	}
}
