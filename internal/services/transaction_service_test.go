package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expcat/internal/amqp"
	"expcat/internal/cache"
	"expcat/internal/core"
	"expcat/internal/csvfile"
	"expcat/internal/log"
	"expcat/internal/session"
	"expcat/internal/sheets/memory"
)

type fakeNotifier struct {
	mu     sync.Mutex
	msgs   []*amqp.ImportCompletedMessage
	err    error
	closed bool
}

func (f *fakeNotifier) PublishImportCompleted(_ context.Context, msg *amqp.ImportCompletedMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return f.err
}

func (f *fakeNotifier) Close() error {
	f.closed = true
	return nil
}

func newService(opts ...Option) (*TransactionService, *session.Store) {
	store := session.NewStore(cache.NewLRUCache[*session.Session](10, time.Hour), time.Hour, false)
	return NewTransactionService(store, log.Discard(), opts...), store
}

func TestImportSample(t *testing.T) {
	n := &fakeNotifier{}
	svc, store := newService(WithNotifier(n))

	res, err := svc.Import(context.Background(), "sample.csv", csvfile.Sample())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Rows)
	assert.Empty(t, res.Warnings)

	got, ok := store.Get(res.Session.ID)
	require.True(t, ok)
	assert.Equal(t, "sample.csv", got.FileName)

	require.Len(t, n.msgs, 1)
	msg := n.msgs[0]
	assert.Equal(t, res.Session.ID, msg.SessionID)
	assert.Equal(t, "17.80", msg.TotalExpense)
	assert.Equal(t, "3000.00", msg.TotalIncome)
	assert.Equal(t, 1, msg.Categories["Income"])
	assert.Equal(t, "12.30", msg.Spending["Transportation"])
}

func TestImportNotifierFailureDoesNotFail(t *testing.T) {
	n := &fakeNotifier{err: errors.New("broker down")}
	svc, _ := newService(WithNotifier(n))

	res, err := svc.Import(context.Background(), "sample.csv", csvfile.Sample())
	require.NoError(t, err)
	assert.NotNil(t, res.Session)
	require.NoError(t, svc.Close())
	assert.True(t, n.closed)
}

func TestImportRejectsMissingColumns(t *testing.T) {
	svc, store := newService()
	_, err := svc.Import(context.Background(), "bad.csv", strings.NewReader("Date,Amount\n2024-01-01,1\n"))
	var mce *csvfile.MissingColumnsError
	require.ErrorAs(t, err, &mce)
	assert.Equal(t, []string{"Description"}, mce.Missing)
	assert.Equal(t, 0, store.Len())
}

func TestImportWithCustomRules(t *testing.T) {
	rules := []core.Rule{{Category: core.Education, Keywords: []string{"Coffee"}}}
	svc, _ := newService(WithCategorizer(core.NewCategorizer(rules)))

	res, err := svc.Import(context.Background(), "sample.csv", csvfile.Sample())
	require.NoError(t, err)
	assert.Equal(t, []core.Category{core.Education, core.Others, core.Others}, res.Session.Categories())
}

func TestApplyFilter(t *testing.T) {
	svc, store := newService()
	res, err := svc.Import(context.Background(), "sample.csv", csvfile.Sample())
	require.NoError(t, err)

	next := svc.ApplyFilter(res.Session, core.Filter{Type: core.TypeIncome})
	assert.Len(t, next.Visible(), 1)
	assert.True(t, res.Session.Filter.IsZero())

	stored, _ := store.Get(res.Session.ID)
	assert.Same(t, next, stored)
}

func TestExportCSVIgnoresFilter(t *testing.T) {
	svc, _ := newService()
	res, err := svc.Import(context.Background(), "sample.csv", csvfile.Sample())
	require.NoError(t, err)
	sess := svc.ApplyFilter(res.Session, core.Filter{Type: core.TypeIncome})

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(&buf, sess))
	assert.Equal(t, 4, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "2024-01-17,Uber Ride,-12.30,Transportation")
}

func TestExportSheets(t *testing.T) {
	svc, _ := newService()
	assert.False(t, svc.SheetsEnabled())
	res, err := svc.Import(context.Background(), "sample.csv", csvfile.Sample())
	require.NoError(t, err)

	_, err = svc.ExportSheets(context.Background(), res.Session, "Jan")
	assert.ErrorIs(t, err, ErrSheetsDisabled)

	mem := memory.New()
	svc, _ = newService(WithSheetsExporter(mem))
	res, err = svc.Import(context.Background(), "sample.csv", csvfile.Sample())
	require.NoError(t, err)
	ref, err := svc.ExportSheets(context.Background(), res.Session, "Jan")
	require.NoError(t, err)
	assert.Equal(t, "mem:Jan!4", ref)

	table, ok := mem.Sheet("Jan")
	require.True(t, ok)
	assert.Equal(t, []string{"Date", "Description", "Amount", "Category"}, table.Header)
	assert.Equal(t, []string{"2024-01-16", "Salary Deposit", "3000.00", "Income"}, table.Rows[1])
}
