package http

import (
	"errors"
	"net/http"

	"expcat/internal/log"
	"expcat/internal/session"
)

// handleIndex renders the upload form, plus the whole dashboard when the
// visitor already has a session.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Page not found").Write(w)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	data := indexView{
		SheetsEnabled: s.svc.SheetsEnabled(),
		SheetName:     s.sheetName,
		Rules:         newRuleRows(),
		MaxUploadMB:   s.maxUpload >> 20,
	}
	if sess, err := s.sessions.FromRequest(r); err == nil {
		data.HasSession = true
		data.FileName = sess.FileName
		data.Rows = len(sess.Transactions)
		data.Warnings = sess.Dataset.Warnings
		data.KPIs = newKPIView(sess.Transactions)
		data.Categories = newCategoriesView(sess.Transactions)
		data.Filter = newFilterView(sess)
		data.Transactions = newTransactionsView(sess)
	}
	s.render(w, r, "index.html", data)
}

// sessionOrFail resolves the visitor's session, answering 404 when there is
// none.
func (s *Server) sessionOrFail(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.FromRequest(r)
	if errors.Is(err, session.ErrNotFound) {
		NotFoundError("No transactions loaded. Upload a CSV file first.").Write(w)
		return nil, false
	}
	if err != nil {
		InternalServerError("Session unavailable").Write(w)
		return nil, false
	}
	return sess, true
}

// handleKPIs renders the headline figures over the whole upload.
func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	sess, ok := s.sessionOrFail(w, r)
	if !ok {
		return
	}
	s.render(w, r, "kpis", newKPIView(sess.Transactions))
}

// handleCategories renders the spending breakdown table and bar chart.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	sess, ok := s.sessionOrFail(w, r)
	if !ok {
		return
	}
	s.render(w, r, "categories", newCategoriesView(sess.Transactions))
}

// handleTransactions applies the query filter, remembers it on the session
// and renders the table. Without query parameters the stored filter is
// reused.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	sess, ok := s.sessionOrFail(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	if len(q) > 0 {
		f, err := ParseFilter(q)
		if err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Invalid filter",
				log.FieldError, err, log.FieldQuery, r.URL.RawQuery, log.FieldOperation, log.OpFilter)
			BadRequestError(err.Error()).Write(w)
			return
		}
		sess = s.svc.ApplyFilter(sess, f)
	}

	view := newTransactionsView(sess)
	log.FromContext(r.Context()).DebugContext(r.Context(), "Filter applied",
		log.FieldSessionID, sess.ID, log.FieldCount, len(view.Rows), log.FieldOperation, log.OpFilter)

	resp := s.renderResponse(r, "transactions", view)
	if resp.statusCode == http.StatusOK {
		resp.TriggerFilterChanged(len(view.Rows))
	}
	resp.Write(w)
}

// handleClear forgets the current upload.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if sess, err := s.sessions.FromRequest(r); err == nil {
		s.sessions.Delete(sess.ID)
	}
	s.sessions.ClearCookie(w)
	if isHTMX(r) {
		NewHTMXResponse().Header("HX-Redirect", "/").Write(w)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
