package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"expcat/internal/csvfile"
	"expcat/internal/log"
)

// handleUpload imports a multipart CSV and replaces the visitor's session.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	file, name, resp := ParseUploadOrFail(w, r, s.maxUpload)
	if resp != nil {
		atomic.AddInt64(&s.metrics.failedImports, 1)
		resp.Write(w)
		return
	}
	defer file.Close()

	res, err := s.svc.Import(r.Context(), name, file)
	if err != nil {
		atomic.AddInt64(&s.metrics.failedImports, 1)
		uploadError(r, name, err).Write(w)
		return
	}
	atomic.AddInt64(&s.metrics.imports, 1)
	atomic.AddInt64(&s.metrics.rowsImported, int64(res.Rows))

	if prev, err := s.sessions.FromRequest(r); err == nil && prev.ID != res.Session.ID {
		s.sessions.Delete(prev.ID)
	}
	s.sessions.SetCookie(w, res.Session)

	msg := fmt.Sprintf("Loaded %d transactions from %s", res.Rows, name)
	kind := NotificationSuccess
	if n := len(res.Warnings); n > 0 {
		msg += fmt.Sprintf(" (%d rows skipped)", n)
		kind = NotificationWarning
	}
	if isHTMX(r) {
		NewHTMXResponse().
			Header("HX-Redirect", "/").
			TriggerSessionLoaded(res.Rows, len(res.Warnings)).
			Notify(kind, msg).
			Write(w)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// uploadError maps an import failure to the response shown under the form.
func uploadError(r *http.Request, name string, err error) *HTMXResponseBuilder {
	logger := log.FromContext(r.Context())
	var missing *csvfile.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		logger.WarnContext(r.Context(), "Upload rejected", log.FieldFileName, name, log.FieldError, err)
		return UnprocessableEntityError(fmt.Sprintf(
			"CSV must contain columns: %s, %s, %s (missing: %s)",
			csvfile.ColDate, csvfile.ColDescription, csvfile.ColAmount, strings.Join(missing.Missing, ", ")))
	case errors.Is(err, csvfile.ErrNoHeader):
		logger.WarnContext(r.Context(), "Upload rejected", log.FieldFileName, name, log.FieldError, err)
		return UnprocessableEntityError("The uploaded file is empty")
	default:
		logger.ErrorContext(r.Context(), "Upload failed", log.FieldFileName, name, log.FieldError, err,
			log.FieldOperation, log.OpImport)
		return BadRequestError("Could not read the CSV file")
	}
}

// handleSample serves the example upload.
func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sample_transactions.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, csvfile.Sample()); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to write sample", log.FieldError, err)
	}
}
