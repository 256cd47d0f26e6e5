package cleanup

import (
	"time"
)

// Policy controls which files are removed and how often the directory is scanned.
// It is copied into the Service at construction and never changes afterwards.
type Policy struct {
	MaxAge   time.Duration // files strictly older than this are removed
	Interval time.Duration // pause between cycles when Schedule is empty
	Schedule string        // optional cron expression; overrides Interval
}

// State of the background loop.
type State int32

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	default:
		return "stopped"
	}
}

// Report tallies the outcome of a single cleanup cycle.
type Report struct {
	ID         string        `json:"id"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration_ns"`
	Scanned    int           `json:"scanned"`    // regular files seen
	Candidates int           `json:"candidates"` // files past MaxAge
	Deleted    int           `json:"deleted"`
	Vanished   int           `json:"vanished"` // candidates already gone at delete time
	Failed     int           `json:"failed"`
	BytesFreed int64         `json:"bytes_freed"`
	Error      string        `json:"error,omitempty"` // listing failure or recovered panic
}

// Result returns the metrics label for the cycle outcome.
func (r Report) Result() string {
	switch {
	case r.Error != "":
		return "error"
	case r.Failed > 0:
		return "partial"
	default:
		return "ok"
	}
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithRemover replaces os.Remove for deleting expired files.
func WithRemover(remove func(path string) error) Option {
	return func(s *Service) {
		s.remove = remove
	}
}
