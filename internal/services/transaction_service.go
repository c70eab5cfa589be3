package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"expcat/internal/amqp"
	"expcat/internal/core"
	"expcat/internal/csvfile"
	"expcat/internal/log"
	"expcat/internal/session"
	"expcat/internal/sheets"
)

// Notifier announces finished imports. *amqp.Publisher implements it.
type Notifier interface {
	PublishImportCompleted(ctx context.Context, msg *amqp.ImportCompletedMessage) error
}

// ImportResult describes an accepted upload.
type ImportResult struct {
	Session  *session.Session
	Rows     int
	Warnings []csvfile.RowWarning
}

// TransactionService orchestrates uploads and exports across the session
// store and the optional outbound adapters.
type TransactionService struct {
	categorizer *core.Categorizer
	sessions    *session.Store
	notifier    Notifier
	exporter    sheets.Exporter
	logger      *log.Logger
	structured  *log.StructuredLogger
	now         func() time.Time
}

// Option configures a TransactionService.
type Option func(*TransactionService)

// WithNotifier publishes an event after every import.
func WithNotifier(n Notifier) Option {
	return func(s *TransactionService) { s.notifier = n }
}

// WithSheetsExporter enables ExportSheets.
func WithSheetsExporter(e sheets.Exporter) Option {
	return func(s *TransactionService) { s.exporter = e }
}

// WithCategorizer replaces the default rule table.
func WithCategorizer(c *core.Categorizer) Option {
	return func(s *TransactionService) { s.categorizer = c }
}

func NewTransactionService(sessions *session.Store, logger *log.Logger, opts ...Option) *TransactionService {
	if logger == nil {
		logger = log.Default()
	}
	s := &TransactionService{
		categorizer: core.NewCategorizer(core.Rules()),
		sessions:    sessions,
		logger:      logger.WithComponent(log.ComponentImport),
		structured:  log.NewStructuredLogger(logger),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Import parses and categorizes an upload and opens a session for it.
// Notification failures are logged and never fail the import.
func (s *TransactionService) Import(ctx context.Context, fileName string, r io.Reader) (ImportResult, error) {
	ds, err := csvfile.Parse(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("parse %s: %w", fileName, err)
	}

	txs := s.categorizer.CategorizeAll(ds.Transactions())
	sess := s.sessions.New(fileName, ds, txs)
	s.structured.LogImportCompleted(ctx, sess.ID, fileName, len(txs), len(ds.Warnings))
	for _, w := range ds.Warnings {
		s.logger.DebugContext(ctx, "Row skipped", log.FieldSessionID, sess.ID, "line", w.Line, "reason", w.Reason)
	}

	s.notify(ctx, sess)
	return ImportResult{Session: sess, Rows: len(txs), Warnings: ds.Warnings}, nil
}

func (s *TransactionService) notify(ctx context.Context, sess *session.Session) {
	if s.notifier == nil {
		return
	}
	sum := core.Summarize(sess.Transactions)
	msg := &amqp.ImportCompletedMessage{
		SessionID:    sess.ID,
		FileName:     sess.FileName,
		Rows:         sum.Count,
		SkippedRows:  len(sess.Dataset.Warnings),
		TotalExpense: sum.TotalExpense.StringFixed(2),
		TotalIncome:  sum.TotalIncome.StringFixed(2),
		Categories:   make(map[string]int, len(sum.CountByCategory)),
		Spending:     make(map[string]string, len(sum.SumByCategory)),
		Timestamp:    s.now(),
	}
	for c, n := range sum.CountByCategory {
		msg.Categories[c.String()] = n
	}
	for c, v := range sum.SumByCategory {
		msg.Spending[c.String()] = v.StringFixed(2)
	}
	if err := s.notifier.PublishImportCompleted(ctx, msg); err != nil {
		s.structured.LogError(ctx, "Failed to publish import event", err, log.ComponentAMQP, log.OpPublish,
			log.NewFields().WithImport(sess.ID, sess.FileName, sum.Count, len(sess.Dataset.Warnings)))
	}
}

// ApplyFilter stores f on the session and returns the new snapshot.
func (s *TransactionService) ApplyFilter(sess *session.Session, f core.Filter) *session.Session {
	next := sess.WithFilter(f)
	s.sessions.Save(next)
	return next
}

// ExportCSV writes every row of the session with its category.
func (s *TransactionService) ExportCSV(w io.Writer, sess *session.Session) error {
	if err := csvfile.Export(w, sess.Dataset, sess.Categories()); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	return nil
}

// SheetsEnabled reports whether ExportSheets can be used.
func (s *TransactionService) SheetsEnabled() bool { return s.exporter != nil }

// ErrSheetsDisabled is returned by ExportSheets without an exporter.
var ErrSheetsDisabled = errors.New("sheets export not configured")

// ExportSheets writes the same table as ExportCSV to sheetName.
func (s *TransactionService) ExportSheets(ctx context.Context, sess *session.Session, sheetName string) (string, error) {
	if s.exporter == nil {
		return "", ErrSheetsDisabled
	}
	rows, err := csvfile.ExportRows(sess.Dataset, sess.Categories())
	if err != nil {
		return "", err
	}
	ref, err := s.exporter.Export(ctx, sheetName, csvfile.ExportHeader(sess.Dataset), rows)
	if err != nil {
		return "", fmt.Errorf("export sheets: %w", err)
	}
	s.logger.InfoContext(ctx, "Session exported to sheets", log.FieldSessionID, sess.ID, log.FieldSheetsRef, ref)
	return ref, nil
}

// Close releases the notifier when it holds a connection.
func (s *TransactionService) Close() error {
	if c, ok := s.notifier.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
