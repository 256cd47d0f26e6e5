package builders

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aatumaykin/tubedrop/internal/config"
	"github.com/aatumaykin/tubedrop/internal/downloads"
	"github.com/aatumaykin/tubedrop/internal/extractor"
	"github.com/aatumaykin/tubedrop/internal/logger"
	"github.com/aatumaykin/tubedrop/internal/retry"
	"github.com/aatumaykin/tubedrop/internal/workers"
)

type ExtractorBuilder struct {
	config *config.Config
	logger *logger.Logger
}

func NewExtractorBuilder(cfg *config.Config, log *logger.Logger) *ExtractorBuilder {
	return &ExtractorBuilder{
		config: cfg,
		logger: log,
	}
}

// Options maps the [extractor] section onto yt-dlp options.
func (b *ExtractorBuilder) Options() extractor.Options {
	ec := b.config.Extractor
	return extractor.Options{
		Binary:        ec.Binary,
		DownloadDir:   b.config.Storage.DownloadDir,
		CookiesFile:   ec.CookiesFile,
		UserAgent:     ec.UserAgent,
		Referer:       ec.Referer,
		Impersonate:   ec.Impersonate,
		Proxy:         ec.Proxy,
		ExtractorArgs: ec.ExtractorArgs,
		Timeout:       ec.Timeout(),
		Retry:         retry.Config{MaxAttempts: ec.MaxAttempts},
	}
}

// BuildWorkerPool creates the download pool without starting it.
// Pool metrics are registered with reg when it is not nil.
func (b *ExtractorBuilder) BuildWorkerPool(reg prometheus.Registerer) *workers.WorkerPool {
	pool := workers.NewPool(b.config.Extractor.MaxParallelDownloads, b.config.Extractor.QueueSize, b.logger)
	if reg != nil {
		workers.RegisterMetrics(b.config.Metrics.Namespace, reg, pool)
	}
	return pool
}

// Build creates the validated, pool-backed extractor used by the HTTP API.
func (b *ExtractorBuilder) Build(pool *workers.WorkerPool) (*downloads.Queue, error) {
	validator, err := extractor.NewURLValidator(b.config.Extractor.AllowedURLPatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to compile url patterns: %w", err)
	}

	backend := extractor.NewYTDLP(b.Options(), b.logger)
	b.logger.Info("extractor initialized",
		logger.Field{Key: "binary", Value: b.config.Extractor.Binary},
		logger.Field{Key: "default_format", Value: b.config.Extractor.DefaultFormat})

	return downloads.NewQueue(backend, pool, validator, b.config.Extractor.DefaultFormat, b.logger), nil
}
