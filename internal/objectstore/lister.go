package objectstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	miniogo "github.com/minio/minio-go/v7"

	"github.com/north-cloud/ingestor/internal/logger"
)

const (
	// ArchiveSuffix is the expected compressed-archive object suffix.
	ArchiveSuffix = ".json.gz"
	// dayKeyLayout formats a day into the object key prefix.
	dayKeyLayout = "2006-01-02"
)

// DayKey formats a day as the object key prefix for its archives.
func DayKey(day time.Time) string {
	return day.Format(dayKeyLayout)
}

// ListDay returns the object keys of all archives for the given day,
// sorted lexicographically ascending so processing order is
// deterministic and resumable. An empty result means no data for that
// day, which is not an error.
func (c *Client) ListDay(ctx context.Context, day time.Time) ([]string, error) {
	prefix := DayKey(day)

	var keys []string
	for info := range c.client.ListObjects(ctx, c.bucket, miniogo.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if info.Err != nil {
			return nil, fmt.Errorf("list objects for %s: %w", prefix, info.Err)
		}
		if !strings.HasSuffix(info.Key, ArchiveSuffix) {
			continue
		}
		keys = append(keys, info.Key)
	}
	sort.Strings(keys)

	c.logger.Debug("Listed day archives",
		logger.String("prefix", prefix),
		logger.Int("count", len(keys)),
	)
	return keys, nil
}
