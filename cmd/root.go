// Package cmd implements the command-line interface for the ingestor.
// It provides the root command and subcommands for running, scheduling,
// and inspecting the archive ingestion pipeline.
package cmd

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/north-cloud/ingestor/cmd/ingest"
	cmdquota "github.com/north-cloud/ingestor/cmd/quota"
	"github.com/north-cloud/ingestor/cmd/schedule"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// rootCmd represents the root command for the ingestor CLI.
	rootCmd = &cobra.Command{
		Use:   "ingestor",
		Short: "Date-sharded archive ingestion pipeline",
		Long: `Ingestor moves compressed, line-delimited JSON archives from object
storage into a date-sharded document store, with filtering,
deterministic deduplication, batched writes, and storage-quota-aware
halting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment overrides are visible everywhere.
	_ = godotenv.Load()

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yml",
		"config file path",
	)

	rootCmd.AddCommand(ingest.NewCommand())
	rootCmd.AddCommand(schedule.NewCommand())
	rootCmd.AddCommand(cmdquota.NewCommand())
}
