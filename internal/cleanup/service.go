// Package cleanup runs the background retention loop over the download directory.
//
// A Service owns at most one loop goroutine. Each iteration runs one cycle
// (scan with the retention package, then delete expired files) and sleeps until
// the next tick, either a fixed interval or a cron schedule. Failures inside a
// cycle are logged and tallied; they never stop the loop.
package cleanup

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aatumaykin/tubedrop/internal/logger"
	"github.com/aatumaykin/tubedrop/internal/retention"
)

var scheduleParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule parses a cron expression (seconds field optional, descriptors allowed).
func ParseSchedule(expr string) (cron.Schedule, error) {
	sched, err := scheduleParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}
	return sched, nil
}

// Service periodically removes expired files from a directory.
type Service struct {
	dir      string
	policy   Policy
	schedule cron.Schedule
	logger   *logger.Logger
	metrics  *Metrics
	now      func() time.Time
	remove   func(path string) error

	state atomic.Int32

	mu     sync.Mutex // guards cancel, done, last
	cancel context.CancelFunc
	done   chan struct{}
	last   *Report

	cycleMu sync.Mutex // one cycle at a time, loop or manual
}

// New creates a stopped Service for dir.
func New(dir string, policy Policy, log *logger.Logger, opts ...Option) (*Service, error) {
	if dir == "" {
		return nil, fmt.Errorf("cleanup directory is required")
	}
	if policy.MaxAge <= 0 {
		return nil, fmt.Errorf("max age must be positive, got %s", policy.MaxAge)
	}
	if policy.Schedule == "" && policy.Interval <= 0 {
		return nil, fmt.Errorf("scan interval must be positive, got %s", policy.Interval)
	}
	if log == nil {
		log = logger.Discard()
	}

	s := &Service{
		dir:    dir,
		policy: policy,
		logger: log.With(logger.Field{Key: "component", Value: "cleanup"}),
		now:    time.Now,
		remove: os.Remove,
	}

	if policy.Schedule != "" {
		sched, err := ParseSchedule(policy.Schedule)
		if err != nil {
			return nil, err
		}
		s.schedule = sched
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Dir returns the managed directory.
func (s *Service) Dir() string {
	return s.dir
}

// Policy returns the retention policy the service was built with.
func (s *Service) Policy() Policy {
	return s.policy
}

// State reports whether the loop is running.
func (s *Service) State() State {
	return State(s.state.Load())
}

// Start launches the background loop. Calling Start on a running service
// logs a warning and does nothing.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CompareAndSwap(int32(Stopped), int32(Running)) {
		s.logger.Warn("cleanup service already running")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	prev := s.done
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	s.updateRunningGauge()

	fields := []logger.Field{
		{Key: "dir", Value: s.dir},
		{Key: "max_age", Value: s.policy.MaxAge.String()},
	}
	if s.schedule != nil {
		fields = append(fields, logger.Field{Key: "schedule", Value: s.policy.Schedule})
	} else {
		fields = append(fields, logger.Field{Key: "interval", Value: s.policy.Interval.String()})
	}
	s.logger.Info("cleanup service started", fields...)

	go s.loop(ctx, prev, done)
}

// Stop cancels the loop and waits up to timeout for the current cycle to finish.
// The service is Stopped when Stop returns, even if the loop has not exited yet;
// the return value reports whether it exited within timeout. Stopping a
// stopped service logs a warning and returns true.
func (s *Service) Stop(timeout time.Duration) bool {
	s.mu.Lock()
	if !s.state.CompareAndSwap(int32(Running), int32(Stopped)) {
		s.mu.Unlock()
		s.logger.Warn("cleanup service is not running")
		return true
	}
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	s.updateRunningGauge()
	cancel()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		s.logger.Info("cleanup service stopped")
		return true
	case <-timer.C:
		s.logger.Warn("cleanup loop did not stop in time",
			logger.Field{Key: "timeout", Value: timeout.String()})
		return false
	}
}

// loop runs cycles until ctx is cancelled. When a previous loop is still
// finishing after a timed-out Stop, it waits for it first so that cycles never
// overlap across restarts.
func (s *Service) loop(ctx context.Context, prev <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			return
		}
	}

	for {
		if ctx.Err() != nil {
			return
		}

		s.RunCycle()

		delay := s.nextDelay(s.now())
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (s *Service) nextDelay(now time.Time) time.Duration {
	if s.schedule == nil {
		return s.policy.Interval
	}
	next := s.schedule.Next(now)
	if next.IsZero() {
		// schedule can never fire again
		return s.policy.MaxAge
	}
	if d := next.Sub(now); d > 0 {
		return d
	}
	return time.Second
}

// DirectorySize returns the total size in bytes of regular files in the directory.
func (s *Service) DirectorySize() int64 {
	return retention.Measure(s.dir, s.logger).Bytes
}

// FileCount returns the number of regular files in the directory.
func (s *Service) FileCount() int {
	return retention.Measure(s.dir, s.logger).Files
}

// LastReport returns the report of the most recent cycle, if any.
func (s *Service) LastReport() (Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Report{}, false
	}
	return *s.last, true
}

func (s *Service) updateRunningGauge() {
	if s.metrics != nil {
		s.metrics.SetRunning(s.State() == Running)
	}
}
