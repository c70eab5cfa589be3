// Package http serves the expense dashboard: upload, KPI and category
// panels, the filterable transaction table and the exports.
package http

import (
	"bytes"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"expcat/internal/log"
	"expcat/internal/middleware/ratelimit"
	"expcat/internal/middleware/security"
	"expcat/internal/middleware/trace"
	"expcat/internal/services"
	"expcat/internal/session"
	appweb "expcat/web"
)

const (
	defaultMaxUpload = 10 << 20
	staticMaxAge     = 3600
)

// Options configures NewServer. Zero values fall back to defaults.
type Options struct {
	Addr           string
	MaxUploadBytes int64
	SheetName      string
	Limiter        *ratelimit.Limiter
	ClientIPs      *security.ClientIPResolver
	Logger         *log.Logger
}

type Server struct {
	http.Server
	templates *template.Template
	svc       *services.TransactionService
	sessions  *session.Store
	tracer    *trace.Middleware
	limiter   *ratelimit.Limiter
	clientIPs *security.ClientIPResolver
	logger    *log.Logger
	maxUpload int64
	sheetName string
	startedAt time.Time
	now       func() time.Time
	metrics   appMetrics
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(opts Options, svc *services.TransactionService, sessions *session.Store) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUpload
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.NewLimiter(0)
	}
	if opts.ClientIPs == nil {
		opts.ClientIPs = security.NewClientIPResolver()
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 16,
		},
		svc:       svc,
		sessions:  sessions,
		limiter:   opts.Limiter,
		clientIPs: opts.ClientIPs,
		logger:    opts.Logger.WithComponent(log.ComponentHTTP),
		maxUpload: opts.MaxUploadBytes,
		sheetName: opts.SheetName,
		startedAt: time.Now(),
		now:       time.Now,
	}
	s.tracer = trace.NewMiddleware(s.clientIPs.ClientIP, opts.Logger.WithComponent(log.ComponentHTTP))

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err)
	} else {
		s.templates = t
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(staticMaxAge)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	limited := s.limiter.Middleware(s.clientIPs.ClientIP, s.onRateLimit)

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/sample.csv", s.handleSample)
	mux.Handle("/upload", limited(http.HandlerFunc(s.handleUpload)))
	mux.HandleFunc("/export.csv", s.handleExportCSV)
	mux.Handle("/export/sheets", limited(http.HandlerFunc(s.handleExportSheets)))
	mux.HandleFunc("/session/clear", s.handleClear)
	// UI partials
	mux.HandleFunc("/ui/kpis", s.handleKPIs)
	mux.HandleFunc("/ui/categories", s.handleCategories)
	mux.HandleFunc("/ui/transactions", s.handleTransactions)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Handler = s.tracer.Middleware(headers.Middleware(mux))
	return s
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.clientIPs.ClientIP(r), log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Too many requests, try again in a minute").
		Notify(NotificationError, "Rate limit exceeded").
		Write(w)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	s.renderResponse(r, name, data).Write(w)
}

// renderResponse executes a template into a buffer so a failure can still
// produce a clean 500.
func (s *Server) renderResponse(r *http.Request, name string, data any) *HTMXResponseBuilder {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		return InternalServerError("templates not loaded")
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err, "template", name, log.FieldOperation, log.OpRender)
		return InternalServerError("Failed to render page")
	}
	return NewHTMXResponse().Header("Content-Type", "text/html; charset=utf-8").Body(buf.Bytes())
}
