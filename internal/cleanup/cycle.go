package cleanup

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/aatumaykin/tubedrop/internal/logger"
	"github.com/aatumaykin/tubedrop/internal/retention"
)

// RunCycle scans the directory once and removes expired files. It returns
// the number of files removed. Per-file failures are logged and counted but
// not retried; a panic inside the cycle is recovered and logged.
func (s *Service) RunCycle() (deleted int) {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	started := time.Now()
	report := Report{
		ID:        uuid.NewString(),
		StartedAt: s.now(),
	}
	log := s.logger.With(logger.Field{Key: "cycle_id", Value: report.ID})

	defer func() {
		if r := recover(); r != nil {
			report.Error = fmt.Sprintf("panic: %v", r)
			log.Error("cleanup cycle panicked", fmt.Errorf("panic: %v", r))
		}
		report.Duration = time.Since(started)
		s.finishCycle(log, report)
		deleted = report.Deleted
	}()

	files, err := retention.List(s.dir, log)
	if err != nil {
		report.Error = err.Error()
		log.Error("failed to scan directory", err, logger.Field{Key: "dir", Value: s.dir})
		return
	}
	report.Scanned = len(files)

	sizes := make(map[string]int64, len(files))
	for _, f := range files {
		sizes[f.Name] = f.Size
	}

	expired := retention.Expired(files, s.policy.MaxAge, report.StartedAt)
	report.Candidates = len(expired)

	var lastErr error
	for _, name := range expired {
		path := filepath.Join(s.dir, name)
		if err := s.remove(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				report.Vanished++
				log.Debug("expired file already gone", logger.Field{Key: "file", Value: name})
				continue
			}
			report.Failed++
			lastErr = err
			log.Debug("failed to remove expired file",
				logger.Field{Key: "file", Value: name},
				logger.Field{Key: "error", Value: err.Error()})
			continue
		}

		report.Deleted++
		report.BytesFreed += sizes[name]
		log.Debug("removed expired file",
			logger.Field{Key: "file", Value: name},
			logger.Field{Key: "size_bytes", Value: sizes[name]})
	}

	if report.Failed > 0 {
		log.Warn("some expired files could not be removed",
			logger.Field{Key: "failed", Value: report.Failed},
			logger.Field{Key: "last_error", Value: lastErr.Error()})
	}

	return
}

func (s *Service) finishCycle(log *logger.Logger, report Report) {
	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()

	fields := []logger.Field{
		{Key: "scanned", Value: report.Scanned},
		{Key: "candidates", Value: report.Candidates},
		{Key: "deleted", Value: report.Deleted},
		{Key: "failed", Value: report.Failed},
		{Key: "bytes_freed", Value: report.BytesFreed},
		{Key: "duration_ms", Value: report.Duration.Milliseconds()},
	}
	if report.Deleted > 0 || report.Failed > 0 {
		log.Info(fmt.Sprintf("cleanup cycle finished: deleted %d of %d expired files", report.Deleted, report.Candidates), fields...)
	} else {
		log.Debug("cleanup cycle finished: nothing to remove", fields...)
	}

	if s.metrics != nil {
		s.metrics.ObserveCycle(report)
		s.metrics.SetUsage(retention.Measure(s.dir, nil))
	}
}
