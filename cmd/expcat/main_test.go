package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expcat/internal/csvfile"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	err := root.Execute()
	return out.String(), err
}

func writeSample(t *testing.T) string {
	t.Helper()
	b, err := io.ReadAll(csvfile.Sample())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "sample.csv")
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestCategorizeCommand(t *testing.T) {
	in := writeSample(t)
	outPath := filepath.Join(t.TempDir(), "out.csv")

	out, err := execute(t, "categorize", in, "-q", "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "$17.80")
	assert.Contains(t, out, "Wrote 3 rows")

	written, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "Date,Description,Amount,Category\n"+
		"2024-01-15,Starbucks Coffee,-5.50,Food & Dining\n"+
		"2024-01-16,Salary Deposit,3000.00,Income\n"+
		"2024-01-17,Uber Ride,-12.30,Transportation\n", string(written))
}

func TestCategorizeToStdout(t *testing.T) {
	out, err := execute(t, "categorize", writeSample(t), "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-01-17,Uber Ride,-12.30,Transportation\n")
	assert.NotContains(t, out, "$17.80")
}

func TestCategorizeErrors(t *testing.T) {
	_, err := execute(t, "categorize", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("When,What\n"), 0o600))
	_, err = execute(t, "categorize", bad)
	var missing *csvfile.MissingColumnsError
	assert.ErrorAs(t, err, &missing)

	_, err = execute(t, "categorize")
	assert.Error(t, err)
}

func TestCategoriesCommand(t *testing.T) {
	out, err := execute(t, "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "Food & Dining")
	assert.Contains(t, out, "uber")
	assert.Contains(t, out, "Others")
}
