package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/north-cloud/ingestor/internal/logger"
	"github.com/north-cloud/ingestor/internal/objectstore"
	"github.com/north-cloud/ingestor/internal/quota"
	"github.com/north-cloud/ingestor/internal/sharding"
	"github.com/north-cloud/ingestor/internal/writer"
)

// Defaults for the ingest section.
const (
	// DefaultLanguage is the language gate applied when none is configured.
	DefaultLanguage = "en"
	// DefaultRunLogPath is where DayResult lines are appended.
	DefaultRunLogPath = "ingest_run.log"
	// DefaultFlushPause is the post-flush backpressure pause.
	DefaultFlushPause = 1 * time.Second

	dateLayout = "2006-01-02"
)

// Config represents the application configuration.
type Config struct {
	// Logging holds logger configuration.
	Logging logger.Config `yaml:"logging"`
	// ObjectStore holds the MinIO connection settings.
	ObjectStore objectstore.Config `yaml:"object_store"`
	// Writer holds batch writer tuning knobs.
	Writer writer.Config `yaml:"writer"`
	// Quota holds the storage quota guard settings.
	Quota quota.Config `yaml:"quota"`
	// Ingest holds the filter and date range settings.
	Ingest IngestConfig `yaml:"ingest"`
	// Shards holds the shard windows and the default shard.
	Shards ShardsConfig `yaml:"shards"`
}

// IngestConfig holds the record filter and run settings.
type IngestConfig struct {
	// Language is the exact-match language gate.
	Language string `env:"INGEST_LANGUAGE" yaml:"language"`
	// Keywords is the relevance gate keyword set.
	Keywords []string `env:"INGEST_KEYWORDS" yaml:"keywords"`
	// RunLogPath is the append-only DayResult log file.
	RunLogPath string `env:"INGEST_RUN_LOG" yaml:"run_log"`
	// StartDate is the inclusive first day of the operating range.
	StartDate string `env:"INGEST_START_DATE" yaml:"start_date"`
	// EndDate is the inclusive last day of the operating range.
	EndDate string `env:"INGEST_END_DATE" yaml:"end_date"`
}

// ShardsConfig holds the configured shard set.
type ShardsConfig struct {
	// Windows are the date-windowed shards, non-overlapping.
	Windows []sharding.Shard `yaml:"windows"`
	// Default receives every timestamp outside all windows.
	Default sharding.Shard `yaml:"default"`
}

// Load loads configuration from the specified path, applies defaults,
// and re-applies environment overrides so the environment always wins.
func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}

	cfg.SetDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// SetDefaults applies default values where the file left gaps.
func (c *Config) SetDefaults() {
	c.Logging.SetDefaults()
	c.Writer.SetDefaults()
	c.Quota.SetDefaults()
	if c.Ingest.Language == "" {
		c.Ingest.Language = DefaultLanguage
	}
	if c.Ingest.RunLogPath == "" {
		c.Ingest.RunLogPath = DefaultRunLogPath
	}
	if c.Writer.FlushPause <= 0 {
		c.Writer.FlushPause = DefaultFlushPause
	}
}

// Validate checks the configuration. A run cannot start without a
// resolvable object store and a valid shard set.
func (c *Config) Validate() error {
	if err := c.ObjectStore.Validate(); err != nil {
		return fmt.Errorf("object_store: %w", err)
	}
	if err := sharding.Validate(c.Shards.Windows, c.Shards.Default); err != nil {
		return fmt.Errorf("shards: %w", err)
	}
	if len(c.Shards.Default.Addresses) == 0 {
		return errors.New("shards: default shard has no addresses")
	}
	return nil
}

// DateRange parses the configured operating range.
func (c *Config) DateRange() (start, end time.Time, err error) {
	start, err = time.Parse(dateLayout, c.Ingest.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse start_date %q: %w", c.Ingest.StartDate, err)
	}
	end, err = time.Parse(dateLayout, c.Ingest.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse end_date %q: %w", c.Ingest.EndDate, err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date %s precedes start_date %s", c.Ingest.EndDate, c.Ingest.StartDate)
	}
	return start, end, nil
}
