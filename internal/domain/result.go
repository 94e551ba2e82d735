package domain

import "time"

// DayResult summarizes one processed calendar day. It is produced once
// per orchestrator iteration and appended to the run log, never mutated.
type DayResult struct {
	// Date is the processed calendar day.
	Date time.Time
	// Inserted is the number of documents accepted by the store.
	Inserted int
	// Duplicates is the number of documents rejected as already present.
	Duplicates int
	// Elapsed is the wall-clock duration spent on the day.
	Elapsed time.Duration
}

// QuotaReading is a point-in-time storage usage sample for one shard.
// It is not persisted beyond the log line it produces.
type QuotaReading struct {
	// ShardID identifies the sampled shard.
	ShardID string
	// UsedBytes is the shard's current storage usage.
	UsedBytes int64
}
