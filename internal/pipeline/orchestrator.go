package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/north-cloud/ingestor/internal/domain"
	"github.com/north-cloud/ingestor/internal/logger"
	"github.com/north-cloud/ingestor/internal/metrics"
	"github.com/north-cloud/ingestor/internal/sharding"
)

// Source lists and reads a day's archives from the object store.
type Source interface {
	// ListDay returns the day's archive keys in deterministic order.
	ListDay(ctx context.Context, day time.Time) ([]string, error)
	// ReadArchive streams one archive into decoded raw records.
	ReadArchive(ctx context.Context, key string) ([]domain.RawRecord, error)
}

// Normalizer filters and canonicalizes raw records.
type Normalizer interface {
	Normalize(rec domain.RawRecord) (domain.Document, bool)
}

// BatchWriter buffers documents and flushes idempotent batches.
type BatchWriter interface {
	Add(ctx context.Context, doc domain.Document) error
	Flush(ctx context.Context) error
	Totals() (inserted, duplicates int)
	Reset()
}

// QuotaChecker samples a shard's storage usage against the ceiling.
type QuotaChecker interface {
	Check(ctx context.Context, shard sharding.Shard) (domain.QuotaReading, bool, error)
}

// RunLog records one DayResult per processed day.
type RunLog interface {
	Append(res domain.DayResult) error
}

// Summary describes a finished run.
type Summary struct {
	// State is the terminal state: completed or halted.
	State State
	// Days is the number of days processed.
	Days int
	// Inserted and Duplicates are the run-wide totals.
	Inserted   int
	Duplicates int
	// LastDay is the last day processed.
	LastDay time.Time
}

// Orchestrator runs the day loop. Days are strictly sequential; there
// is no concurrent mutation anywhere downstream, so no locking either.
type Orchestrator struct {
	source     Source
	normalizer Normalizer
	writer     BatchWriter
	monitor    QuotaChecker
	router     *sharding.Router
	runlog     RunLog
	metrics    *metrics.Metrics
	logger     logger.Logger
}

// New creates an orchestrator over the given collaborators.
func New(
	source Source,
	normalizer Normalizer,
	writer BatchWriter,
	monitor QuotaChecker,
	router *sharding.Router,
	runlog RunLog,
	m *metrics.Metrics,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		source:     source,
		normalizer: normalizer,
		writer:     writer,
		monitor:    monitor,
		router:     router,
		runlog:     runlog,
		metrics:    m,
		logger:     log,
	}
}

// Run processes the closed date range [start, end], one day per
// transition, and returns the run summary. It stops early only on
// quota pressure (a planned halt) or context cancellation; per-record
// and per-batch problems are absorbed downstream and reported through
// the run log and diagnostics.
func (o *Orchestrator) Run(ctx context.Context, start, end time.Time) (Summary, error) {
	runID := uuid.NewString()
	log := o.logger.With(logger.String("run_id", runID))

	log.Info("Starting ingestion run",
		logger.Time("start", start),
		logger.Time("end", end),
	)

	summary := Summary{State: StateProcess}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("run cancelled: %w", err)
		}

		result, err := o.processDay(ctx, log, day)
		if err != nil {
			return summary, err
		}

		if err := o.runlog.Append(result); err != nil {
			// The run log is the sole durable reporting channel; a day
			// that cannot be recorded must not silently pass.
			return summary, fmt.Errorf("record day result: %w", err)
		}

		summary.Days++
		summary.Inserted += result.Inserted
		summary.Duplicates += result.Duplicates
		summary.LastDay = day
		o.metrics.DaysProcessed.Inc()

		halt := o.quotaHalt(ctx, log, day)
		summary.State = Next(day, end, halt)
		if summary.State == StateHalted {
			o.metrics.QuotaHalts.Inc()
			log.Warn("Halting run on storage quota pressure",
				logger.Time("day", day),
			)
			break
		}
	}

	if summary.State == StateProcess {
		// Range was empty (start after end); nothing ran.
		summary.State = StateCompleted
	}

	log.Info("Ingestion run finished",
		logger.String("state", summary.State.String()),
		logger.Int("days", summary.Days),
		logger.Int("inserted", summary.Inserted),
		logger.Int("duplicates", summary.Duplicates),
	)
	return summary, nil
}

// processDay ingests all archives of one calendar day and returns its
// DayResult. Archives that cannot be read are skipped with a
// diagnostic; the day continues with the remaining files.
func (o *Orchestrator) processDay(ctx context.Context, log logger.Logger, day time.Time) (domain.DayResult, error) {
	began := time.Now()
	o.writer.Reset()

	keys, err := o.source.ListDay(ctx, day)
	if err != nil {
		return domain.DayResult{}, fmt.Errorf("list archives for %s: %w", day.Format("2006-01-02"), err)
	}
	log.Info("Processing day",
		logger.Time("day", day),
		logger.Int("archives", len(keys)),
	)

	for _, key := range keys {
		records, readErr := o.source.ReadArchive(ctx, key)
		if readErr != nil {
			log.Error("Skipping unreadable archive",
				logger.String("key", key),
				logger.Error(readErr),
			)
			continue
		}

		for _, rec := range records {
			o.metrics.RecordsRead.Inc()
			doc, ok := o.normalizer.Normalize(rec)
			if !ok {
				o.metrics.RecordsFiltered.Inc()
				continue
			}
			if addErr := o.writer.Add(ctx, doc); addErr != nil {
				return domain.DayResult{}, fmt.Errorf("feed batch writer: %w", addErr)
			}
		}
	}

	// Day boundary: flush the remainder so batches stay shard-pure.
	if flushErr := o.writer.Flush(ctx); flushErr != nil {
		return domain.DayResult{}, fmt.Errorf("flush day remainder: %w", flushErr)
	}

	inserted, duplicates := o.writer.Totals()
	return domain.DayResult{
		Date:       day,
		Inserted:   inserted,
		Duplicates: duplicates,
		Elapsed:    time.Since(began),
	}, nil
}

// quotaHalt checks storage usage for the shard active on the given day
// and reports whether the run must halt. A failed check halts too:
// continuing to write while blind to usage is how a hard platform
// ceiling gets blown.
func (o *Orchestrator) quotaHalt(ctx context.Context, log logger.Logger, day time.Time) bool {
	shard := o.router.Route(day)
	reading, halt, err := o.monitor.Check(ctx, shard)
	if err != nil {
		log.Error("Quota check failed, halting conservatively",
			logger.String("shard", shard.ID),
			logger.Error(err),
		)
		return true
	}
	if halt {
		log.Warn("Shard storage within safety margin of ceiling",
			logger.String("shard", reading.ShardID),
			logger.Int64("used_bytes", reading.UsedBytes),
		)
	}
	return halt
}
