// Package objectstore provides read access to archived NDJSON files in
// MinIO object storage: listing a day's archives and streaming their
// decoded records.
package objectstore

import (
	"errors"
	"fmt"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/north-cloud/ingestor/internal/logger"
)

// Config represents the object store connection settings.
type Config struct {
	// Endpoint is the MinIO server address (e.g., "minio:9000").
	Endpoint string `env:"OBJECTSTORE_ENDPOINT" yaml:"endpoint"`
	// AccessKey for MinIO authentication.
	AccessKey string `env:"OBJECTSTORE_ACCESS_KEY" yaml:"access_key"`
	// SecretKey for MinIO authentication.
	SecretKey string `env:"OBJECTSTORE_SECRET_KEY" yaml:"secret_key"`
	// UseSSL enables HTTPS for MinIO connections.
	UseSSL bool `env:"OBJECTSTORE_USE_SSL" yaml:"use_ssl"`
	// Bucket holds the archive objects.
	Bucket string `env:"OBJECTSTORE_BUCKET" yaml:"bucket"`
}

// Validate checks required connection settings.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("object store endpoint is required")
	}
	if c.Bucket == "" {
		return errors.New("object store bucket is required")
	}
	return nil
}

// Client wraps a MinIO client for read-only archive access.
type Client struct {
	client *miniogo.Client
	bucket string
	logger logger.Logger
}

// NewClient creates a new object store client from the given config.
func NewClient(cfg *Config, log logger.Logger) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("object store config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	log.Info("Object store client initialized",
		logger.String("endpoint", cfg.Endpoint),
		logger.String("bucket", cfg.Bucket),
	)

	return &Client{
		client: client,
		bucket: cfg.Bucket,
		logger: log,
	}, nil
}
