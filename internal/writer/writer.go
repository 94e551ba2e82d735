// Package writer buffers canonical documents and flushes them as
// idempotent bulk writes, classifying outcomes and retrying transient
// failures with a bounded budget.
package writer

import (
	"context"
	"time"

	"github.com/north-cloud/ingestor/internal/domain"
	"github.com/north-cloud/ingestor/internal/logger"
	"github.com/north-cloud/ingestor/internal/metrics"
	"github.com/north-cloud/ingestor/internal/retry"
	"github.com/north-cloud/ingestor/internal/sharding"
	"github.com/north-cloud/ingestor/internal/storage"
)

// Defaults for the writer configuration.
const (
	// DefaultCapacity is the batch size threshold that triggers a flush.
	DefaultCapacity = 500
	// DefaultRetryAttempts bounds write attempts per batch.
	DefaultRetryAttempts = 3
	// DefaultRetryBackoff is the fixed wait between write attempts.
	DefaultRetryBackoff = 5 * time.Second
	// DefaultFlushPause is the write-rate backpressure pause after a flush.
	DefaultFlushPause = 1 * time.Second
)

// BulkClient is the slice of the storage client the writer needs.
type BulkClient interface {
	BulkCreate(ctx context.Context, docs []domain.Document) (storage.BulkResult, error)
}

// Factory resolves a fresh client for a shard. The writer re-resolves
// on every attempt because the previous connection may have gone stale.
type Factory func(shard sharding.Shard) (BulkClient, error)

// Config holds writer tuning knobs.
type Config struct {
	// Capacity is the batch size threshold.
	Capacity int `env:"WRITER_BATCH_SIZE" yaml:"capacity"`
	// RetryAttempts is the write attempt budget per batch.
	RetryAttempts int `env:"WRITER_RETRY_ATTEMPTS" yaml:"retry_attempts"`
	// RetryBackoff is the fixed wait between attempts.
	RetryBackoff time.Duration `env:"WRITER_RETRY_BACKOFF" yaml:"retry_backoff"`
	// FlushPause is the deliberate pause after each flush.
	FlushPause time.Duration `env:"WRITER_FLUSH_PAUSE" yaml:"flush_pause"`
}

// SetDefaults applies default values to the config if not set.
func (c *Config) SetDefaults() {
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = DefaultRetryAttempts
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	// FlushPause of zero is a valid choice (no backpressure), so it is
	// left alone here and defaulted at config load instead.
}

// Writer accumulates documents and flushes them in idempotent batches.
// It is single-writer by design; the pipeline feeds it from one
// goroutine.
type Writer struct {
	cfg     Config
	router  *sharding.Router
	connect Factory
	metrics *metrics.Metrics
	logger  logger.Logger

	batch      []domain.Document
	inserted   int
	duplicates int
}

// New creates a batch writer.
func New(cfg Config, router *sharding.Router, connect Factory, m *metrics.Metrics, log logger.Logger) *Writer {
	cfg.SetDefaults()
	return &Writer{
		cfg:     cfg,
		router:  router,
		connect: connect,
		metrics: m,
		logger:  log,
		batch:   make([]domain.Document, 0, cfg.Capacity),
	}
}

// Add buffers one document, flushing when the batch reaches capacity.
func (w *Writer) Add(ctx context.Context, doc domain.Document) error {
	w.batch = append(w.batch, doc)
	if len(w.batch) < w.cfg.Capacity {
		return nil
	}
	return w.Flush(ctx)
}

// Flush writes the buffered batch, if any. Transient failures are
// retried up to the budget; exhaustion abandons the batch with a
// diagnostic and the run continues. Only context cancellation is
// returned as an error.
func (w *Writer) Flush(ctx context.Context) error {
	if len(w.batch) == 0 {
		return nil
	}

	batch := w.batch
	w.batch = make([]domain.Document, 0, w.cfg.Capacity)

	// Batches are grouped by day upstream, so the first document's
	// timestamp determines the shard for the whole batch.
	shard := w.router.Route(batch[0].Date)

	var result storage.BulkResult
	err := retry.Do(ctx, retry.Config{
		MaxAttempts: w.cfg.RetryAttempts,
		Backoff:     w.cfg.RetryBackoff,
		IsRetryable: storage.IsTransient,
		OnRetry: func(attempt int, attemptErr error) {
			w.metrics.BatchRetries.Inc()
			w.logger.Warn("Retrying batch write",
				logger.String("shard", shard.ID),
				logger.Int("attempt", attempt),
				logger.Error(attemptErr),
			)
		},
	}, func() error {
		client, connectErr := w.connect(shard)
		if connectErr != nil {
			return connectErr
		}
		var writeErr error
		result, writeErr = client.BulkCreate(ctx, batch)
		return writeErr
	})

	switch {
	case err == nil:
		w.inserted += result.Inserted
		w.duplicates += result.Duplicates
		w.metrics.DocumentsInserted.Add(float64(result.Inserted))
		w.metrics.DocumentsDuplicate.Add(float64(result.Duplicates))
		w.logger.Info("Flushed batch",
			logger.String("shard", shard.ID),
			logger.Int("size", len(batch)),
			logger.Int("inserted", result.Inserted),
			logger.Int("duplicates", result.Duplicates),
			logger.Int("failed", result.Failed),
		)
	case ctx.Err() != nil:
		return err
	default:
		// Abandoned: counted as neither inserted nor duplicate.
		w.metrics.BatchesAbandoned.Inc()
		w.logger.Error("Abandoning batch after retry budget",
			logger.String("shard", shard.ID),
			logger.Int("size", len(batch)),
			logger.Error(err),
		)
	}

	return w.pause(ctx)
}

// pause applies the post-flush write-rate backpressure.
func (w *Writer) pause(ctx context.Context) error {
	if w.cfg.FlushPause <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(w.cfg.FlushPause):
		return nil
	}
}

// Totals returns the running inserted and duplicate counts since the
// last Reset.
func (w *Writer) Totals() (inserted, duplicates int) {
	return w.inserted, w.duplicates
}

// Reset clears the running totals at a day boundary.
func (w *Writer) Reset() {
	w.inserted = 0
	w.duplicates = 0
}

// Pending returns the number of buffered, unflushed documents.
func (w *Writer) Pending() int {
	return len(w.batch)
}
