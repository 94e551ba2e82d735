// Package ingest implements the ingest command: one run of the daily
// ingestion pipeline over a date range.
package ingest

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/north-cloud/ingestor/cmd/common"
	"github.com/north-cloud/ingestor/internal/logger"
)

const dateLayout = "2006-01-02"

// NewCommand creates the ingest command.
func NewCommand() *cobra.Command {
	var fromFlag, toFlag string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest archived records over a date range",
		Long: `Ingest streams compressed NDJSON archives from the object store,
filters and deduplicates records, and bulk-writes them into the
date-sharded document store, one calendar day at a time. The run halts
early when a shard approaches its storage ceiling.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			deps, err := common.Build(cfgPath)
			if err != nil {
				return err
			}
			defer func() { _ = deps.Logger.Sync() }()

			start, end, err := dateRange(deps, fromFlag, toFlag)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			summary, err := deps.Orchestrator.Run(ctx, start, end)
			if err != nil {
				return fmt.Errorf("ingestion run: %w", err)
			}

			deps.Logger.Info("Run summary",
				logger.String("state", summary.State.String()),
				logger.Int("days", summary.Days),
				logger.Int("inserted", summary.Inserted),
				logger.Int("duplicates", summary.Duplicates),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from", "", "first day to ingest (YYYY-MM-DD, overrides config)")
	cmd.Flags().StringVar(&toFlag, "to", "", "last day to ingest (YYYY-MM-DD, overrides config)")
	return cmd
}

// dateRange resolves the operating range, each flag independently
// overriding its configured counterpart.
func dateRange(deps *common.Dependencies, fromFlag, toFlag string) (start, end time.Time, err error) {
	start, end, err = deps.Config.DateRange()
	if err != nil && fromFlag == "" && toFlag == "" {
		return time.Time{}, time.Time{}, err
	}

	if fromFlag != "" {
		start, err = time.Parse(dateLayout, fromFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse --from %q: %w", fromFlag, err)
		}
	}
	if toFlag != "" {
		end, err = time.Parse(dateLayout, toFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse --to %q: %w", toFlag, err)
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end %s precedes start %s",
			end.Format(dateLayout), start.Format(dateLayout))
	}
	return start, end, nil
}
