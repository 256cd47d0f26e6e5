// Package app wires the configuration into running components: the cleanup
// service, the download worker pool, the extractor and the HTTP server.
package app

import (
	"context"
	"net"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aatumaykin/tubedrop/internal/cleanup"
	"github.com/aatumaykin/tubedrop/internal/config"
	"github.com/aatumaykin/tubedrop/internal/downloads"
	"github.com/aatumaykin/tubedrop/internal/logger"
	"github.com/aatumaykin/tubedrop/internal/workers"
)

// App represents the main application structure.
// It holds references to all major components and manages their lifecycle.
type App struct {
	config *config.Config
	logger *logger.Logger

	// Prometheus registry, nil when metrics are disabled
	registry *prometheus.Registry

	// Retention
	cleanup *cleanup.Service

	// Downloads
	workerPool *workers.WorkerPool
	downloads  *downloads.Queue

	// HTTP
	server    *http.Server
	listener  net.Listener
	serverErr chan error

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	started bool
}

// New creates a new App instance. Components are created in Initialize.
func New(cfg *config.Config, log *logger.Logger) *App {
	return &App{
		config: cfg,
		logger: log,
	}
}

// Run initializes and starts the application, then blocks until ctx is
// cancelled or the HTTP server fails, and shuts everything down.
func (a *App) Run(ctx context.Context) error {
	if err := a.Initialize(ctx); err != nil {
		return err
	}
	if err := a.Start(); err != nil {
		_ = a.Shutdown()
		return err
	}

	a.logger.Info("🚀 tubedrop is running", logger.Field{Key: "addr", Value: a.Addr()})

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-a.serverErr:
		a.logger.Error("HTTP server stopped unexpectedly", serveErr)
	}

	if err := a.Shutdown(); err != nil {
		return err
	}
	return serveErr
}

// Addr returns the address the HTTP server listens on, or the configured
// address before Start.
func (a *App) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return a.config.Server.Addr()
}

// Cleanup returns the cleanup service.
func (a *App) Cleanup() *cleanup.Service {
	return a.cleanup
}
