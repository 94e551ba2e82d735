// Package common wires the ingestor's components from configuration
// for the CLI commands.
package common

import (
	"fmt"

	"github.com/north-cloud/ingestor/internal/config"
	"github.com/north-cloud/ingestor/internal/logger"
	"github.com/north-cloud/ingestor/internal/metrics"
	"github.com/north-cloud/ingestor/internal/normalize"
	"github.com/north-cloud/ingestor/internal/objectstore"
	"github.com/north-cloud/ingestor/internal/pipeline"
	"github.com/north-cloud/ingestor/internal/quota"
	"github.com/north-cloud/ingestor/internal/runlog"
	"github.com/north-cloud/ingestor/internal/sharding"
	"github.com/north-cloud/ingestor/internal/storage"
	"github.com/north-cloud/ingestor/internal/writer"
)

// Dependencies holds the wired component graph for one command run.
type Dependencies struct {
	Config       *config.Config
	Logger       logger.Logger
	Router       *sharding.Router
	Source       *objectstore.Client
	Writer       *writer.Writer
	Monitor      *quota.Monitor
	RunLog       *runlog.Log
	Metrics      *metrics.Metrics
	Orchestrator *pipeline.Orchestrator
}

// Build loads configuration and constructs the component graph.
// Failure here is the unrecoverable-setup error path: no shard set, no
// object store, no run.
func Build(cfgPath string) (*Dependencies, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	router, err := sharding.NewRouter(cfg.Shards.Windows, cfg.Shards.Default)
	if err != nil {
		return nil, fmt.Errorf("create shard router: %w", err)
	}

	source, err := objectstore.NewClient(&cfg.ObjectStore, log)
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}

	m := metrics.NewDefault()
	factory := storage.NewFactory(log)

	w := writer.New(
		cfg.Writer,
		router,
		func(shard sharding.Shard) (writer.BulkClient, error) { return factory(shard) },
		m,
		log,
	)

	monitor := quota.NewMonitor(
		cfg.Quota,
		func(shard sharding.Shard) (quota.StatsClient, error) { return factory(shard) },
		log,
	)

	normalizer := normalize.New(cfg.Ingest.Language, cfg.Ingest.Keywords, log)
	rlog := runlog.New(cfg.Ingest.RunLogPath)

	return &Dependencies{
		Config:       cfg,
		Logger:       log,
		Router:       router,
		Source:       source,
		Writer:       w,
		Monitor:      monitor,
		RunLog:       rlog,
		Metrics:      m,
		Orchestrator: pipeline.New(source, normalizer, w, monitor, router, rlog, m, log),
	}, nil
}
