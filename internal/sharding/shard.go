// Package sharding maps record timestamps to the storage shard
// responsible for that time range.
package sharding

import (
	"errors"
	"fmt"
	"time"
)

// Errors returned by shard set validation.
var (
	// ErrNoShards is returned when no shard is configured at all.
	ErrNoShards = errors.New("no shards configured")
	// ErrNoDefaultShard is returned when no shard is marked as the default.
	ErrNoDefaultShard = errors.New("no default shard configured")
	// ErrOverlappingWindows is returned when two shard windows overlap.
	ErrOverlappingWindows = errors.New("shard windows overlap")
	// ErrInvalidWindow is returned when a shard window ends before it starts.
	ErrInvalidWindow = errors.New("shard window ends before it starts")
)

// Shard describes one storage partition of the document store: where
// to connect and the inclusive time window it owns.
type Shard struct {
	// ID identifies the shard in logs and quota readings.
	ID string `yaml:"id"`
	// Addresses are the Elasticsearch node addresses for this shard.
	Addresses []string `yaml:"addresses"`
	// Username for basic authentication, optional.
	Username string `yaml:"username"`
	// Password for basic authentication, optional.
	Password string `yaml:"password"`
	// Index is the index documents for this shard are written to.
	Index string `yaml:"index"`
	// Start is the inclusive start of the shard's time window.
	Start time.Time `yaml:"start"`
	// End is the inclusive end of the shard's time window.
	End time.Time `yaml:"end"`
}

// Contains reports whether t falls inside the shard's inclusive window.
func (s Shard) Contains(t time.Time) bool {
	return !t.Before(s.Start) && !t.After(s.End)
}

// Validate checks the shard set invariants: at least one shard, valid
// non-overlapping windows, and a resolvable default.
func Validate(shards []Shard, def Shard) error {
	if len(shards) == 0 && def.ID == "" {
		return ErrNoShards
	}
	if def.ID == "" {
		return ErrNoDefaultShard
	}
	for i, s := range shards {
		if s.End.Before(s.Start) {
			return fmt.Errorf("%w: shard %s", ErrInvalidWindow, s.ID)
		}
		for _, other := range shards[i+1:] {
			if s.Contains(other.Start) || s.Contains(other.End) || other.Contains(s.Start) {
				return fmt.Errorf("%w: %s and %s", ErrOverlappingWindows, s.ID, other.ID)
			}
		}
	}
	return nil
}
