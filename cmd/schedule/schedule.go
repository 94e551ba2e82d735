// Package schedule implements the schedule command: a cron-driven
// daily catch-up ingestion of the previous day.
package schedule

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/north-cloud/ingestor/cmd/common"
	"github.com/north-cloud/ingestor/internal/logger"
	"github.com/north-cloud/ingestor/internal/metrics"
)

const (
	// defaultCronSpec runs the catch-up shortly after the day's
	// archives land.
	defaultCronSpec = "0 6 * * *"

	metricsReadTimeout = 10 * time.Second
)

// NewCommand creates the schedule command.
func NewCommand() *cobra.Command {
	var cronSpec string
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run daily catch-up ingestion on a cron schedule",
		Long: `Schedule keeps the document store current: on every cron tick it
ingests the previous calendar day through the same pipeline the ingest
command uses. The process stays resident until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			deps, err := common.Build(cfgPath)
			if err != nil {
				return err
			}
			defer func() { _ = deps.Logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if metricsAddr != "" {
				startMetricsServer(ctx, metricsAddr, deps.Logger)
			}

			scheduler := cron.New()
			_, err = scheduler.AddFunc(cronSpec, func() {
				runCatchUp(ctx, deps)
			})
			if err != nil {
				return fmt.Errorf("register cron schedule %q: %w", cronSpec, err)
			}

			deps.Logger.Info("Scheduler started",
				logger.String("cron", cronSpec),
			)
			scheduler.Start()
			<-ctx.Done()

			stopCtx := scheduler.Stop()
			<-stopCtx.Done()
			deps.Logger.Info("Scheduler stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&cronSpec, "cron", defaultCronSpec, "cron schedule for the daily catch-up")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (disabled when empty)")
	return cmd
}

// runCatchUp ingests yesterday.
func runCatchUp(ctx context.Context, deps *common.Dependencies) {
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Truncate(24 * time.Hour)

	summary, err := deps.Orchestrator.Run(ctx, yesterday, yesterday)
	if err != nil {
		deps.Logger.Error("Catch-up run failed",
			logger.Time("day", yesterday),
			logger.Error(err),
		)
		return
	}
	deps.Logger.Info("Catch-up run finished",
		logger.Time("day", yesterday),
		logger.String("state", summary.State.String()),
		logger.Int("inserted", summary.Inserted),
		logger.Int("duplicates", summary.Duplicates),
	)
}

// startMetricsServer serves /metrics until the context is cancelled.
func startMetricsServer(ctx context.Context, addr string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: metricsReadTimeout,
	}

	go func() {
		log.Info("Metrics server listening", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Metrics server failed", logger.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsReadTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
