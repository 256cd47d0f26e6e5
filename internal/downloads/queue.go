// Package downloads fronts an extractor with URL validation and a bounded
// worker pool, so at most a fixed number of downloads write into the download
// directory at once.
package downloads

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/aatumaykin/tubedrop/internal/extractor"
	"github.com/aatumaykin/tubedrop/internal/logger"
	"github.com/aatumaykin/tubedrop/internal/workers"
)

const taskTypeDownload = "download"

// Queue implements extractor.Extractor on top of another Extractor.
// Info calls run inline; Download calls are executed by the worker pool.
type Queue struct {
	backend       extractor.Extractor
	pool          *workers.WorkerPool
	validator     *extractor.URLValidator
	defaultFormat string
	logger        *logger.Logger
}

var _ extractor.Extractor = (*Queue)(nil)

// NewQueue creates a queue. The pool must be started by the caller.
func NewQueue(backend extractor.Extractor, pool *workers.WorkerPool, validator *extractor.URLValidator, defaultFormat string, log *logger.Logger) *Queue {
	if log == nil {
		log = logger.Discard()
	}
	return &Queue{
		backend:       backend,
		pool:          pool,
		validator:     validator,
		defaultFormat: defaultFormat,
		logger:        log.With(logger.Field{Key: "component", Value: "downloads"}),
	}
}

// Info validates url and asks the backend for metadata.
func (q *Queue) Info(ctx context.Context, url string) (*extractor.Metadata, error) {
	url, err := q.validator.Validate(url)
	if err != nil {
		return nil, err
	}
	return q.backend.Info(ctx, url)
}

// Download validates url, queues the download and waits for it to finish or
// for ctx to be done. An empty format selects the default format.
func (q *Queue) Download(ctx context.Context, url, format string) (*extractor.DownloadResult, error) {
	url, err := q.validator.Validate(url)
	if err != nil {
		return nil, err
	}

	format = strings.TrimSpace(format)
	if format == "" {
		format = q.defaultFormat
	}

	id := uuid.NewString()
	log := q.logger.With(
		logger.Field{Key: "task_id", Value: id},
		logger.Field{Key: "url", Value: url},
		logger.Field{Key: "format", Value: format})

	reply, err := q.pool.Submit(ctx, workers.Task{
		ID:      id,
		Type:    taskTypeDownload,
		Context: ctx,
		Run: func(ctx context.Context) (any, error) {
			return q.backend.Download(ctx, url, format)
		},
	})
	if err != nil {
		log.Warn("download not queued", logger.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("download not queued: %w", err)
	}
	log.Info("download queued")

	select {
	case res := <-reply:
		if res.Error != nil {
			log.Error("download failed", res.Error,
				logger.Field{Key: "duration_ms", Value: res.Duration.Milliseconds()})
			return nil, res.Error
		}
		out, ok := res.Value.(*extractor.DownloadResult)
		if !ok || out == nil {
			return nil, fmt.Errorf("download task %s returned no result", id)
		}
		return out, nil
	case <-ctx.Done():
		log.Warn("download abandoned by caller", logger.Field{Key: "error", Value: ctx.Err().Error()})
		return nil, ctx.Err()
	}
}
