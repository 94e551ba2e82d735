package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/north-cloud/ingestor/internal/config"
)

const testYAML = `
logging:
  level: debug
  format: console

object_store:
  endpoint: minio:9000
  access_key: testkey
  secret_key: testsecret
  bucket: news-archives

writer:
  capacity: 250
  retry_attempts: 3
  retry_backoff: 5s
  flush_pause: 1s

quota:
  ceiling_mb: 512
  margin_mb: 22

ingest:
  language: en
  keywords: [earnings, merger]
  run_log: /var/log/ingest_run.log
  start_date: "2024-03-01"
  end_date: "2024-03-31"

shards:
  windows:
    - id: articles-2024
      addresses: ["http://es-2024:9200"]
      index: articles-2024
      start: 2024-01-01T00:00:00Z
      end: 2024-12-31T23:59:59Z
  default:
    id: articles-default
    addresses: ["http://es-default:9200"]
    index: articles-default
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, testYAML))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "minio:9000", cfg.ObjectStore.Endpoint)
	assert.Equal(t, "news-archives", cfg.ObjectStore.Bucket)
	assert.Equal(t, 250, cfg.Writer.Capacity)
	assert.Equal(t, 5*time.Second, cfg.Writer.RetryBackoff)
	assert.Equal(t, int64(512), cfg.Quota.CeilingMB)
	assert.Equal(t, []string{"earnings", "merger"}, cfg.Ingest.Keywords)
	require.Len(t, cfg.Shards.Windows, 1)
	assert.Equal(t, "articles-2024", cfg.Shards.Windows[0].ID)
	assert.Equal(t, 2024, cfg.Shards.Windows[0].Start.Year())
	assert.Equal(t, "articles-default", cfg.Shards.Default.ID)

	require.NoError(t, cfg.Validate())
}

func TestLoadAppliesDefaults(t *testing.T) {
	minimal := `
object_store:
  endpoint: minio:9000
  bucket: news-archives
shards:
  default:
    id: articles-default
    addresses: ["http://es:9200"]
    index: articles-default
`
	cfg, err := config.Load(writeConfig(t, minimal))
	require.NoError(t, err)

	assert.Equal(t, "en", cfg.Ingest.Language)
	assert.Equal(t, config.DefaultRunLogPath, cfg.Ingest.RunLogPath)
	assert.Equal(t, 500, cfg.Writer.Capacity)
	assert.Equal(t, 3, cfg.Writer.RetryAttempts)
	assert.Equal(t, 5*time.Second, cfg.Writer.RetryBackoff)
	assert.Equal(t, time.Second, cfg.Writer.FlushPause)
	assert.Equal(t, int64(512), cfg.Quota.CeilingMB)
	assert.Equal(t, int64(22), cfg.Quota.MarginMB)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("INGEST_LANGUAGE", "de")
	t.Setenv("INGEST_KEYWORDS", "gewinn, fusion")
	t.Setenv("OBJECTSTORE_BUCKET", "archives-de")
	t.Setenv("WRITER_BATCH_SIZE", "100")

	cfg, err := config.Load(writeConfig(t, testYAML))
	require.NoError(t, err)

	assert.Equal(t, "de", cfg.Ingest.Language)
	assert.Equal(t, []string{"gewinn", "fusion"}, cfg.Ingest.Keywords)
	assert.Equal(t, "archives-de", cfg.ObjectStore.Bucket)
	assert.Equal(t, 100, cfg.Writer.Capacity)
}

func TestDateRange(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, testYAML))
	require.NoError(t, err)

	start, end, err := cfg.DateRange()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), end)
}

func TestDateRangeInverted(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, testYAML))
	require.NoError(t, err)
	cfg.Ingest.StartDate = "2024-04-01"

	_, _, err = cfg.DateRange()
	assert.Error(t, err)
}

func TestValidateRejectsMissingDefaultShard(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, testYAML))
	require.NoError(t, err)
	cfg.Shards.Default.ID = ""

	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsMissingBucket(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, testYAML))
	require.NoError(t, err)
	cfg.ObjectStore.Bucket = ""

	assert.Error(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
