package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"expcat/internal/csvfile"
	"expcat/internal/log"
	"expcat/internal/services"
)

const (
	sheetsTimeout   = 30 * time.Second
	maxSheetNameLen = 100
)

// handleExportCSV downloads every uploaded row with its category.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	sess, ok := s.sessionOrFail(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := s.svc.ExportCSV(&buf, sess); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "CSV export failed",
			log.FieldSessionID, sess.ID, log.FieldError, err, log.FieldOperation, log.OpExport)
		InternalServerError("Export failed").Write(w)
		return
	}
	atomic.AddInt64(&s.metrics.csvExports, 1)

	name := csvfile.ExportFileName(s.now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleExportSheets writes the export table to the configured spreadsheet.
// The form may name another tab with the "sheet" field.
func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if !s.svc.SheetsEnabled() {
		NotFoundError("Google Sheets export is not configured").Write(w)
		return
	}
	sess, ok := s.sessionOrFail(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	sheet := s.sheetName
	if v := sanitizeInput(r.PostForm.Get("sheet")); v != "" {
		sheet = v
	}
	if err := validateSheetName(sheet); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), sheetsTimeout)
	defer cancel()
	ref, err := s.svc.ExportSheets(ctx, sess, sheet)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Sheets export failed",
			log.FieldSessionID, sess.ID, log.FieldError, err, log.FieldOperation, log.OpExport)
		if errors.Is(err, services.ErrSheetsDisabled) {
			NotFoundError("Google Sheets export is not configured").Write(w)
			return
		}
		ErrorResponse(http.StatusBadGateway, "Export to Google Sheets failed").
			Notify(NotificationError, "Export to Google Sheets failed").
			Write(w)
		return
	}
	atomic.AddInt64(&s.metrics.sheetsExports, 1)

	NewHTMXResponse().
		TriggerSheetsExported(ref).
		Notify(NotificationSuccess, "Exported to Google Sheets").
		BodyHTML(`<div class="success">Exported ` + fmt.Sprint(len(sess.Transactions)) +
			` rows to ` + template.HTMLEscapeString(ref) + `</div>`).
		Write(w)
}

func validateSheetName(name string) error {
	switch {
	case name == "":
		return errors.New("sheet name required")
	case len(name) > maxSheetNameLen:
		return fmt.Errorf("sheet name longer than %d characters", maxSheetNameLen)
	case strings.ContainsAny(name, `[]:*?/\`):
		return errors.New(`sheet name cannot contain any of [ ] : * ? / \`)
	}
	return nil
}
