package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/north-cloud/ingestor/internal/domain"
)

// DefaultStatsTimeout bounds one administrative stats round trip.
const DefaultStatsTimeout = 15 * time.Second

// indexStatsResponse mirrors the fields of the _stats response the
// client consumes.
type indexStatsResponse struct {
	All struct {
		Total struct {
			Store struct {
				SizeInBytes int64 `json:"size_in_bytes"`
			} `json:"store"`
		} `json:"total"`
	} `json:"_all"`
}

// StoreSize returns the shard's current storage usage in bytes via the
// index stats administrative query. Failures surface to the caller; a
// monitoring failure must not silently read as "under quota".
func (c *Client) StoreSize(ctx context.Context) (domain.QuotaReading, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultStatsTimeout)
	defer cancel()

	res, err := c.es.Indices.Stats(
		c.es.Indices.Stats.WithContext(ctx),
		c.es.Indices.Stats.WithIndex(c.shard.Index),
		c.es.Indices.Stats.WithMetric("store"),
	)
	if err != nil {
		return domain.QuotaReading{}, fmt.Errorf("%w: stats request to shard %s: %v", ErrTransient, c.shard.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if isRetryableStatus(res.StatusCode) {
			return domain.QuotaReading{}, fmt.Errorf("%w: shard %s stats returned %d", ErrTransient, c.shard.ID, res.StatusCode)
		}
		return domain.QuotaReading{}, fmt.Errorf("stats query for shard %s failed: %s", c.shard.ID, res.String())
	}

	var parsed indexStatsResponse
	if decodeErr := json.NewDecoder(res.Body).Decode(&parsed); decodeErr != nil {
		return domain.QuotaReading{}, fmt.Errorf("%w: %v", ErrMalformedResponse, decodeErr)
	}

	return domain.QuotaReading{
		ShardID:   c.shard.ID,
		UsedBytes: parsed.All.Total.Store.SizeInBytes,
	}, nil
}
