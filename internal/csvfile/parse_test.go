package csvfile

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expcat/internal/core"
)

func TestParseSample(t *testing.T) {
	ds, err := Parse(Sample())
	require.NoError(t, err)
	require.Len(t, ds.Rows, 3)
	assert.Empty(t, ds.Warnings)
	assert.Equal(t, []string{"Date", "Description", "Amount"}, ds.Header)

	txs := core.CategorizeAll(ds.Transactions())
	got := make([]core.Category, len(txs))
	for i, tx := range txs {
		got[i] = tx.Category
	}
	assert.Equal(t, []core.Category{core.FoodDining, core.Income, core.Transportation}, got)

	first := ds.Rows[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, core.NewDate(2024, time.January, 15), first.Transaction.Date)
	assert.Equal(t, "Starbucks Coffee", first.Transaction.Description)
	assert.Equal(t, "-5.5", first.Transaction.Amount.String())
}

func TestParseMissingColumns(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		missing []string
	}{
		{"one missing", "Date,Desc,Amount\n2024-01-01,x,1\n", []string{"Description"}},
		{"case sensitive", "date,Description,amount\n", []string{"Date", "Amount"}},
		{"all missing", "a,b,c\n", []string{"Date", "Description", "Amount"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			var mce *MissingColumnsError
			require.ErrorAs(t, err, &mce)
			assert.Equal(t, tt.missing, mce.Missing)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrNoHeader))

	ds, err := Parse(strings.NewReader("Date,Description,Amount\n"))
	require.NoError(t, err)
	assert.Empty(t, ds.Rows)
	assert.Empty(t, ds.Transactions())
}

func TestParseHeaderTolerance(t *testing.T) {
	in := "\ufeffNotes, Date ,Amount,Description\nhello,2024-02-01,-3,Bus ticket\n"
	ds, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"Notes", "Date", "Amount", "Description"}, ds.Header)
	require.Len(t, ds.Rows, 1)
	assert.Equal(t, "Bus ticket", ds.Rows[0].Transaction.Description)
	assert.Equal(t, "hello", ds.Rows[0].Fields[0])
}

func TestParseSkipsMalformedRows(t *testing.T) {
	in := strings.Join([]string{
		"Date,Description,Amount",
		"2024-01-15,Coffee,-5.50",
		"not-a-date,Thing,-1",
		"2024-01-16,Bad amount,abc",
		"2024-01-17,Too,many,fields",
		`2024-01-19,ba"d,-1`,
		"2024-01-18,Uber,(12.30)",
		"",
	}, "\n")

	ds, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, 2, ds.Rows[0].Line)
	assert.Equal(t, 7, ds.Rows[1].Line)
	assert.Equal(t, "-12.3", ds.Rows[1].Transaction.Amount.String())

	lines := make([]int, len(ds.Warnings))
	for i, w := range ds.Warnings {
		lines[i] = w.Line
	}
	assert.Equal(t, []int{3, 4, 5, 6}, lines)
	assert.Contains(t, ds.Warnings[0].String(), "line 3")
	assert.Contains(t, ds.Warnings[2].Reason, "expected 3 columns")
}

func TestParseDate(t *testing.T) {
	want := core.NewDate(2024, time.March, 5)
	for _, in := range []string{
		"2024-03-05",
		"2024/03/05",
		"03/05/2024",
		"3/5/2024",
		"2024-03-05 18:30:00",
		"2024-03-05T18:30:00Z",
		"Mar 5, 2024",
		"05 Mar 2024",
		"  2024-03-05 ",
	} {
		t.Run(in, func(t *testing.T) {
			got, err := ParseDate(in)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %v", got)
		})
	}

	_, err := ParseDate("yesterday")
	assert.ErrorIs(t, err, core.ErrInvalidDate)
}

func TestParseReaderError(t *testing.T) {
	_, err := Parse(io.MultiReader(strings.NewReader("Date,Description,Amount\n"), errReader{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read csv")
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }
