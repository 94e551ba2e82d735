// Package quota implements the quota command: print current storage
// usage for every configured shard.
package quota

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/north-cloud/ingestor/cmd/common"
	"github.com/north-cloud/ingestor/internal/logger"
	"github.com/north-cloud/ingestor/internal/storage"
)

const bytesPerMB = 1024 * 1024

// NewCommand creates the quota command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Show storage usage per shard against the quota ceiling",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			deps, err := common.Build(cfgPath)
			if err != nil {
				return err
			}
			defer func() { _ = deps.Logger.Sync() }()

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "SHARD\tINDEX\tUSED (MB)\tTHRESHOLD (MB)\tSTATUS")

			threshold := deps.Monitor.Threshold()
			for _, shard := range deps.Router.Shards() {
				client, err := storage.NewClient(shard, deps.Logger)
				if err != nil {
					deps.Logger.Error("Cannot resolve shard",
						logger.String("shard", shard.ID),
						logger.Error(err),
					)
					continue
				}

				reading, err := client.StoreSize(cmd.Context())
				if err != nil {
					fmt.Fprintf(w, "%s\t%s\t-\t%d\tUNREACHABLE\n",
						shard.ID, shard.Index, threshold/bytesPerMB)
					deps.Logger.Error("Quota check failed",
						logger.String("shard", shard.ID),
						logger.Error(err),
					)
					continue
				}

				status := "OK"
				if reading.UsedBytes >= threshold {
					status = "AT CEILING"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
					shard.ID, shard.Index,
					reading.UsedBytes/bytesPerMB, threshold/bytesPerMB, status)
			}
			return w.Flush()
		},
	}
}
