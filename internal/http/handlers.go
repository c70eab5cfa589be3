package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"expcat/internal/log"
)

// appMetrics counts dashboard activity for /metrics.
type appMetrics struct {
	imports       int64
	rowsImported  int64
	failedImports int64
	csvExports    int64
	sheetsExports int64
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	}
	writeJSON(w, r, http.StatusOK, health)
}

// handleReady reports whether templates loaded and summarizes in-memory
// state.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	checks["sessions"] = map[string]any{
		"active": s.sessions.Len(),
		"status": "ok",
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.limiter.ActiveClients(),
		"status":         "ok",
	}
	if s.svc.SheetsEnabled() {
		checks["sheets"] = "configured"
	} else {
		checks["sheets"] = "not_configured"
	}

	writeJSON(w, r, httpStatus, map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	tm := s.tracer.GetMetrics()

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", tm.TotalRequests)
	metric("http_requests_in_flight", "gauge", "Requests currently being served", tm.InFlight)
	metric("http_response_time_avg_seconds", "gauge", "Mean response time", fmt.Sprintf("%.6f", tm.AverageResponseTime.Seconds()))
	metric("imports_total", "counter", "Accepted CSV uploads", atomic.LoadInt64(&s.metrics.imports))
	metric("imports_failed_total", "counter", "Rejected CSV uploads", atomic.LoadInt64(&s.metrics.failedImports))
	metric("imported_rows_total", "counter", "Transactions categorized from uploads", atomic.LoadInt64(&s.metrics.rowsImported))
	metric("csv_exports_total", "counter", "Categorized CSV downloads", atomic.LoadInt64(&s.metrics.csvExports))
	metric("sheets_exports_total", "counter", "Exports written to Google Sheets", atomic.LoadInt64(&s.metrics.sheetsExports))
	metric("sessions_active", "gauge", "Sessions held in memory", s.sessions.Len())
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", s.limiter.ActiveClients())
	metric("uptime_seconds", "gauge", "Application uptime in seconds", fmt.Sprintf("%.0f", time.Since(s.startedAt).Seconds()))
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode JSON response", log.FieldError, err)
	}
}
