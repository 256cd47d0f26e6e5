package builders

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aatumaykin/tubedrop/internal/cleanup"
	"github.com/aatumaykin/tubedrop/internal/config"
	"github.com/aatumaykin/tubedrop/internal/logger"
	"github.com/aatumaykin/tubedrop/internal/storage"
)

type CleanupBuilder struct {
	config *config.Config
	logger *logger.Logger
}

func NewCleanupBuilder(cfg *config.Config, log *logger.Logger) *CleanupBuilder {
	return &CleanupBuilder{
		config: cfg,
		logger: log,
	}
}

// EnsureDownloadDir creates the download directory if it is missing.
func (b *CleanupBuilder) EnsureDownloadDir() error {
	dir := storage.New(b.config.Storage.DownloadDir)
	if err := dir.EnsureDir(); err != nil {
		return err
	}
	b.logger.Debug("download directory ready", logger.Field{Key: "path", Value: dir.Path()})
	return nil
}

// Build creates a stopped cleanup service. Metrics are registered with reg when it is not nil.
func (b *CleanupBuilder) Build(reg prometheus.Registerer) (*cleanup.Service, error) {
	var opts []cleanup.Option
	if reg != nil {
		opts = append(opts, cleanup.WithMetrics(cleanup.NewMetrics(b.config.Metrics.Namespace, reg)))
	}

	svc, err := cleanup.New(b.config.Storage.DownloadDir, b.config.Retention.Policy(), b.logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create cleanup service: %w", err)
	}
	return svc, nil
}
