// Package retry re-runs extractor calls that fail for transient reasons
// (network resets, timeouts, throttling) using exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aatumaykin/tubedrop/internal/logger"
)

const (
	defaultMaxAttempts  = 3
	defaultInitialDelay = 1 * time.Second
	defaultMaxDelay     = 10 * time.Second
)

// Config represents retry configuration.
type Config struct {
	MaxAttempts    int              // Maximum number of attempts (default: 3)
	InitialBackoff time.Duration    // Initial backoff duration (default: 1s)
	MaxBackoff     time.Duration    // Maximum backoff duration (default: 10s)
	Retryable      func(error) bool // Classifier (default: IsRetryable)
	Logger         *logger.Logger   // Optional
	Operation      string           // Name used in log messages
}

// Do runs fn until it succeeds, returns a non-retryable error, the attempts
// are exhausted, or ctx is done. Context cancellation is checked between attempts.
func Do[T any](ctx context.Context, cfg Config, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialDelay
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaultMaxDelay
	}
	if cfg.Retryable == nil {
		cfg.Retryable = IsRetryable
	}

	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			if attempt > 0 && cfg.Logger != nil {
				cfg.Logger.DebugCtx(ctx, "retry succeeded",
					logger.Field{Key: "operation", Value: cfg.Operation},
					logger.Field{Key: "attempt", Value: attempt + 1})
			}
			return result, nil
		}

		lastErr = err

		if ctx.Err() != nil || !cfg.Retryable(err) {
			return zero, err
		}

		if attempt == cfg.MaxAttempts-1 {
			break
		}

		backoff := calculateBackoff(attempt, cfg.InitialBackoff, cfg.MaxBackoff)
		if cfg.Logger != nil {
			cfg.Logger.WarnCtx(ctx, "transient failure, retrying",
				logger.Field{Key: "operation", Value: cfg.Operation},
				logger.Field{Key: "attempt", Value: attempt + 1},
				logger.Field{Key: "max_attempts", Value: cfg.MaxAttempts},
				logger.Field{Key: "backoff", Value: backoff.String()},
				logger.Field{Key: "error", Value: err.Error()})
		}

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		}
	}

	if cfg.MaxAttempts == 1 {
		return zero, lastErr
	}
	return zero, fmt.Errorf("all %d attempts failed: %w", cfg.MaxAttempts, lastErr)
}

// Non-retryable patterns are checked first: a private or removed video will
// not become available by asking again.
var (
	nonRetryablePatterns = []string{
		"unsupported url",
		"video unavailable",
		"private video",
		"sign in to confirm",
		"is not a valid url",
		"http error 400",
		"http error 401",
		"http error 403",
		"http error 404",
		"requested format is not available",
	}

	retryablePatterns = []string{
		"timed out",
		"timeout",
		"deadline exceeded",
		"connection refused",
		"connection reset",
		"connection aborted",
		"temporary failure",
		"unable to download webpage",
		"unexpected eof",
		"http error 429",
		"too many requests",
		"http error 500",
		"http error 502",
		"http error 503",
		"http error 504",
	}
)

// IsRetryable reports whether err looks transient. Context cancellation is never retryable.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	msg := strings.ToLower(err.Error())

	for _, pattern := range nonRetryablePatterns {
		if strings.Contains(msg, pattern) {
			return false
		}
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}

	return false
}

// calculateBackoff returns 2^attempt * initial, capped at max.
func calculateBackoff(attempt int, initial, max time.Duration) time.Duration {
	if attempt > 30 {
		return max
	}
	backoff := time.Duration(1<<uint(attempt)) * initial
	if backoff > max || backoff <= 0 {
		return max
	}
	return backoff
}
