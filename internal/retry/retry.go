// Package retry provides a bounded, fixed-interval retry policy for
// transient failures.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMaxAttemptsExceeded is returned when max retry attempts are exceeded
	ErrMaxAttemptsExceeded = errors.New("max retry attempts exceeded")
	// ErrContextCancelled is returned when the context is cancelled during retry
	ErrContextCancelled = errors.New("context cancelled during retry")
)

// Config configures retry behavior
type Config struct {
	// MaxAttempts is the maximum number of attempts (including the initial attempt)
	MaxAttempts int
	// Backoff is the fixed delay between attempts
	Backoff time.Duration
	// IsRetryable determines if an error should be retried
	IsRetryable func(error) bool
	// OnRetry is invoked before each re-attempt with the attempt number
	// just failed and its error. Optional.
	OnRetry func(attempt int, err error)
}

// DefaultConfig returns a default retry configuration
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		Backoff:     5 * time.Second,
	}
}

// Do executes fn with bounded retries and a fixed backoff between
// attempts. Non-retryable errors are returned immediately. When the
// budget is exhausted the last error is wrapped in ErrMaxAttemptsExceeded.
func Do(ctx context.Context, config Config, fn func() error) error {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.Backoff <= 0 {
		config.Backoff = 5 * time.Second
	}

	var lastErr error

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if config.IsRetryable != nil && !config.IsRetryable(err) {
			return err
		}

		if attempt < config.MaxAttempts {
			if config.OnRetry != nil {
				config.OnRetry(attempt, err)
			}
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
			case <-time.After(config.Backoff):
			}
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrMaxAttemptsExceeded, config.MaxAttempts, lastErr)
}
