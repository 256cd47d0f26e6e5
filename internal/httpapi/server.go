// Package httpapi exposes the JSON API, the file endpoint and the index page.
package httpapi

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aatumaykin/tubedrop/internal/cleanup"
	"github.com/aatumaykin/tubedrop/internal/extractor"
	"github.com/aatumaykin/tubedrop/internal/logger"
	"github.com/aatumaykin/tubedrop/internal/storage"
)

//go:embed web/index.html
var indexHTML []byte

// StatsProvider reports the state of the download directory and the cleanup loop.
// *cleanup.Service satisfies it.
type StatsProvider interface {
	FileCount() int
	DirectorySize() int64
	State() cleanup.State
	LastReport() (cleanup.Report, bool)
}

// Options configures the router.
type Options struct {
	DownloadDir        string
	MaxBodyBytes       int64
	CORSAllowedOrigins []string
	MetricsPath        string       // mounted only when MetricsHandler is set
	MetricsHandler     http.Handler // e.g. promhttp.HandlerFor(registry, ...)
	Metrics            *Metrics     // optional request metrics
}

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	opts      Options
	extractor extractor.Extractor
	stats     StatsProvider
	files     *storage.Dir
	logger    *logger.Logger
	router    chi.Router
}

// NewServer builds the router.
func NewServer(opts Options, ext extractor.Extractor, stats StatsProvider, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}

	s := &Server{
		opts:      opts,
		extractor: ext,
		stats:     stats,
		files:     storage.New(opts.DownloadDir),
		logger:    log.With(logger.Field{Key: "component", Value: "http"}),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(s.recoverJSON)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	if opts.MetricsHandler != nil && opts.MetricsPath != "" {
		r.Method(http.MethodGet, opts.MetricsPath, opts.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/info", s.handleInfo)
		r.Post("/download", s.handleDownload)
		r.Get("/file/*", s.handleFile)
		r.Get("/stats", s.handleStats)
	})

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
