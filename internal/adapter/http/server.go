// Package http serves the dashboard pages, its form actions and the
// operational endpoints.
package http

import (
	"context"
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/Sureka400/Ecolens-AI/internal/adapter/ecolens"
	"github.com/Sureka400/Ecolens-AI/internal/dashboard"
	"github.com/Sureka400/Ecolens-AI/internal/view"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// ReportDownloader opens a generated report for streaming.
type ReportDownloader interface {
	DownloadReport(ctx context.Context, id int, fallbackName string) (*ecolens.ReportFile, error)
}

// Options wires the server's collaborators.
type Options struct {
	Sessions *dashboard.Store
	Views    *view.Builder
	Reports  ReportDownloader
	Ready    sharedobs.ReadinessChecker
	Logger   *slog.Logger

	// SecureCookies marks the session cookie Secure.
	SecureCookies bool
}

// Server exposes the dashboard along with health, readiness and metrics
// endpoints.
type Server struct {
	httpServer    *http.Server
	sessions      *dashboard.Store
	views         *view.Builder
	reports       ReportDownloader
	templates     *template.Template
	logger        *slog.Logger
	secureCookies bool
}

// NewServer creates the HTTP server listening on addr.
func NewServer(addr string, opts Options) (*Server, error) {
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}

	s := &Server{
		sessions:      opts.Sessions,
		views:         opts.Views,
		reports:       opts.Reports,
		templates:     tmpl,
		logger:        opts.Logger,
		secureCookies: opts.SecureCookies,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(opts.Ready))
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Logger)

		r.Get("/", s.handlePage)
		r.Get("/panels/{panel}", s.handlePanel)
		r.With(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		})).Get("/state", s.handleState)

		r.Post("/location/search", s.handleSearch)
		r.Post("/location/detect", s.handleDetect)
		r.Post("/location/recent", s.handleRecent)
		r.Post("/map/layer", s.handleLayer)
		r.Post("/actions/goto", s.handleActionGoTo)
		r.Post("/actions/{direction}", s.handleActionStep)
		r.Post("/simulation/toggle", s.handleSimulationToggle)
		r.Post("/report", s.handleReport)
		r.Get("/report/download", s.handleReportDownload)
		r.Post("/join", s.handleJoin)
	})

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
