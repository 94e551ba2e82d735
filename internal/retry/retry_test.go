package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/north-cloud/ingestor/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), retry.Config{MaxAttempts: 3, Backoff: time.Millisecond}, func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientFailures(t *testing.T) {
	calls := 0
	retries := 0
	cfg := retry.Config{
		MaxAttempts: 3,
		Backoff:     time.Millisecond,
		OnRetry:     func(attempt int, err error) { retries++ },
	}

	err := retry.Do(context.Background(), cfg, func() error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, retries, "two failures before success means two retries")
}

func TestDoExhaustsBudget(t *testing.T) {
	boom := errors.New("boom")
	calls := 0

	err := retry.Do(context.Background(), retry.Config{MaxAttempts: 3, Backoff: time.Millisecond}, func() error {
		calls++
		return boom
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, retry.ErrMaxAttemptsExceeded)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	fatal := errors.New("mapping rejected")
	calls := 0
	cfg := retry.Config{
		MaxAttempts: 3,
		Backoff:     time.Millisecond,
		IsRetryable: func(err error) bool { return false },
	}

	err := retry.Do(context.Background(), cfg, func() error {
		calls++
		return fatal
	})

	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry.Do(ctx, retry.Config{MaxAttempts: 3, Backoff: time.Millisecond}, func() error {
		return errors.New("never retried")
	})

	assert.ErrorIs(t, err, retry.ErrContextCancelled)
}
