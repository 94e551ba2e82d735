// Package storage provides per-shard Elasticsearch access: idempotent
// bulk document writes and administrative storage statistics.
package storage

import (
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/north-cloud/ingestor/internal/logger"
	"github.com/north-cloud/ingestor/internal/sharding"
)

// Client talks to the Elasticsearch cluster backing one shard. Clients
// are cheap and opened per operation rather than held across the run;
// a stale long-lived connection costs more than the setup.
type Client struct {
	es     *es.Client
	shard  sharding.Shard
	logger logger.Logger
}

// Factory resolves a fresh client for a shard. The writer and the
// quota monitor re-resolve through a Factory on every operation.
type Factory func(shard sharding.Shard) (*Client, error)

// NewFactory returns a Factory binding the given logger.
func NewFactory(log logger.Logger) Factory {
	return func(shard sharding.Shard) (*Client, error) {
		return NewClient(shard, log)
	}
}

// NewClient creates a client for the given shard's cluster.
func NewClient(shard sharding.Shard, log logger.Logger) (*Client, error) {
	if len(shard.Addresses) == 0 {
		return nil, fmt.Errorf("shard %s has no addresses", shard.ID)
	}

	client, err := es.NewClient(es.Config{
		Addresses: shard.Addresses,
		Username:  shard.Username,
		Password:  shard.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client for shard %s: %w", shard.ID, err)
	}

	return &Client{
		es:     client,
		shard:  shard,
		logger: log,
	}, nil
}

// Shard returns the shard this client is bound to.
func (c *Client) Shard() sharding.Shard {
	return c.shard
}
