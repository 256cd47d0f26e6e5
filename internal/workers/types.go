// Package workers provides a bounded worker pool for background task execution.
// Each submitted task gets its own result channel so callers can wait for
// completion alongside their own context.
package workers

import (
	"context"
	"errors"
	"time"
)

// ErrPoolStopped is returned for tasks submitted to, or still queued in, a stopped pool.
var ErrPoolStopped = errors.New("worker pool stopped")

// Task represents a unit of work to be executed by a worker.
type Task struct {
	ID      string          // Unique task identifier
	Type    string          // Task type, e.g. "download"
	Context context.Context // Task-specific context for cancellation/timeout

	// Run performs the work. Its return values are delivered as Result.Value and Result.Error.
	Run func(ctx context.Context) (any, error)

	reply chan Result
}

// Result represents the outcome of a task execution.
type Result struct {
	TaskID   string        // ID of the executed task
	Type     string        // Type of the executed task
	Value    any           // Value returned by Run
	Error    error         // Error if execution failed
	Duration time.Duration // Execution duration
}

// PoolMetrics tracks execution metrics for the worker pool.
type PoolMetrics struct {
	TasksSubmitted uint64
	TasksCompleted uint64
	TasksFailed    uint64
	TasksRejected  uint64
	TotalDuration  time.Duration
}

// Constants for worker pool configuration
const (
	DefaultPoolSize  = 2
	DefaultQueueSize = 16
)
