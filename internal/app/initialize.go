package app

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aatumaykin/tubedrop/internal/app/builders"
	"github.com/aatumaykin/tubedrop/internal/httpapi"
	"github.com/aatumaykin/tubedrop/internal/logger"
)

// Initialize creates all components without starting them.
func (a *App) Initialize(ctx context.Context) error {
	// 1. Application context
	a.ctx, a.cancel = context.WithCancel(ctx)

	for _, w := range a.config.Warnings() {
		a.logger.Warn("⚠️  " + w)
	}

	// 2. Metrics registry
	var reg prometheus.Registerer
	if a.config.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		reg = a.registry
	}

	// 3. Download directory and cleanup service
	cleanupBuilder := builders.NewCleanupBuilder(a.config, a.logger)
	if err := cleanupBuilder.EnsureDownloadDir(); err != nil {
		return err
	}
	svc, err := cleanupBuilder.Build(reg)
	if err != nil {
		return err
	}
	a.cleanup = svc

	// 4. Worker pool and extractor
	extractorBuilder := builders.NewExtractorBuilder(a.config, a.logger)
	a.workerPool = extractorBuilder.BuildWorkerPool(reg)
	queue, err := extractorBuilder.Build(a.workerPool)
	if err != nil {
		return err
	}
	a.downloads = queue

	// 5. HTTP server
	opts := httpapi.Options{
		DownloadDir:        a.config.Storage.DownloadDir,
		MaxBodyBytes:       a.config.Server.MaxBodyBytes,
		CORSAllowedOrigins: a.config.Server.CORSAllowedOrigins,
	}
	if a.registry != nil {
		opts.Metrics = httpapi.NewMetrics(a.config.Metrics.Namespace, a.registry)
		opts.MetricsPath = a.config.Metrics.Path
		opts.MetricsHandler = promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})
	}
	api := httpapi.NewServer(opts, a.downloads, a.cleanup, a.logger)

	a.server = &http.Server{
		Addr:              a.config.Server.Addr(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: a.config.Server.ReadTimeout(),
		ReadTimeout:       a.config.Server.ReadTimeout(),
		ErrorLog:          a.logger.StdErrorLog(),
		BaseContext:       func(net.Listener) context.Context { return a.ctx },
	}
	a.serverErr = make(chan error, 1)

	a.logger.Info("Application initialized", logger.Field{Key: "config", Value: a.config.Summary()})
	return nil
}

// Start launches the cleanup loop, the worker pool and the HTTP listener.
// The listen error, if any, is returned synchronously.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return nil
	}
	if a.server == nil {
		return fmt.Errorf("application is not initialized")
	}

	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.server.Addr, err)
	}
	a.listener = ln

	a.cleanup.Start()
	a.workerPool.Start()

	go func() {
		if err := a.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			a.serverErr <- err
		}
	}()

	a.started = true
	return nil
}
