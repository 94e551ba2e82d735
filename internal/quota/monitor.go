// Package quota monitors shard storage usage against a configured
// ceiling and signals when the safety margin is reached.
package quota

import (
	"context"
	"fmt"

	"github.com/north-cloud/ingestor/internal/domain"
	"github.com/north-cloud/ingestor/internal/logger"
	"github.com/north-cloud/ingestor/internal/sharding"
)

// Defaults match the platform's hard per-shard storage ceiling.
const (
	// DefaultCeilingMB is the per-shard storage limit.
	DefaultCeilingMB = 512
	// DefaultMarginMB is the safety margin below the ceiling at which
	// ingestion halts.
	DefaultMarginMB = 22

	bytesPerMB = 1024 * 1024
)

// Config holds the quota guard settings.
type Config struct {
	// CeilingMB is the hard storage limit per shard, in megabytes.
	CeilingMB int64 `env:"QUOTA_CEILING_MB" yaml:"ceiling_mb"`
	// MarginMB is the safety margin below the ceiling, in megabytes.
	MarginMB int64 `env:"QUOTA_MARGIN_MB" yaml:"margin_mb"`
}

// SetDefaults applies default values to the config if not set.
func (c *Config) SetDefaults() {
	if c.CeilingMB <= 0 {
		c.CeilingMB = DefaultCeilingMB
	}
	if c.MarginMB <= 0 {
		c.MarginMB = DefaultMarginMB
	}
}

// StatsClient is the slice of the storage client the monitor needs.
type StatsClient interface {
	StoreSize(ctx context.Context) (domain.QuotaReading, error)
}

// Factory resolves a fresh stats client for a shard per check.
type Factory func(shard sharding.Shard) (StatsClient, error)

// Monitor samples shard storage usage on demand.
type Monitor struct {
	cfg     Config
	connect Factory
	logger  logger.Logger
}

// NewMonitor creates a quota monitor.
func NewMonitor(cfg Config, connect Factory, log logger.Logger) *Monitor {
	cfg.SetDefaults()
	return &Monitor{
		cfg:     cfg,
		connect: connect,
		logger:  log,
	}
}

// Threshold returns the usage, in bytes, at which ingestion halts.
func (m *Monitor) Threshold() int64 {
	return (m.cfg.CeilingMB - m.cfg.MarginMB) * bytesPerMB
}

// Check samples the shard's storage usage and reports whether the halt
// threshold has been reached. A failed sample is returned as an error,
// never silently treated as under quota: unmonitored growth is exactly
// what the guard exists to prevent.
func (m *Monitor) Check(ctx context.Context, shard sharding.Shard) (domain.QuotaReading, bool, error) {
	client, err := m.connect(shard)
	if err != nil {
		return domain.QuotaReading{}, false, fmt.Errorf("resolve stats client for shard %s: %w", shard.ID, err)
	}

	reading, err := client.StoreSize(ctx)
	if err != nil {
		return domain.QuotaReading{}, false, fmt.Errorf("sample storage usage for shard %s: %w", shard.ID, err)
	}

	halt := reading.UsedBytes >= m.Threshold()
	m.logger.Info("Sampled shard storage usage",
		logger.String("shard", reading.ShardID),
		logger.Int64("used_bytes", reading.UsedBytes),
		logger.Int64("threshold_bytes", m.Threshold()),
		logger.Bool("halt", halt),
	)
	return reading, halt, nil
}
