package objectstore

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	miniogo "github.com/minio/minio-go/v7"

	"github.com/north-cloud/ingestor/internal/domain"
	"github.com/north-cloud/ingestor/internal/logger"
)

const (
	// scanBufferSize is the initial line buffer for the archive scanner.
	scanBufferSize = 64 * 1024
	// maxLineSize bounds a single NDJSON line. Records carrying
	// embedding vectors can run long.
	maxLineSize = 16 * 1024 * 1024
)

// ReadArchive streams one compressed archive and decodes each line as
// a RawRecord. Malformed lines are skipped with a diagnostic naming
// the offending key; a single bad line never aborts the file. The
// remote byte stream is fully drained and closed on every exit path.
func (c *Client) ReadArchive(ctx context.Context, key string) ([]domain.RawRecord, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, key, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer func() {
		// Drain before close so the connection can be reused even
		// when decoding stopped early.
		_, _ = io.Copy(io.Discard, obj)
		_ = obj.Close()
	}()

	records, err := c.decodeArchive(obj, key)
	if err != nil {
		return nil, fmt.Errorf("decode archive %s: %w", key, err)
	}
	return records, nil
}

// decodeArchive gunzips the stream and decodes it line by line.
func (c *Client) decodeArchive(r io.Reader, key string) ([]domain.RawRecord, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	defer gz.Close()

	var (
		records []domain.RawRecord
		lineNo  int
		skipped int
	)

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, scanBufferSize), maxLineSize)
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec domain.RawRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			skipped++
			c.logger.Warn("Skipping malformed archive line",
				logger.String("key", key),
				logger.Int("line", lineNo),
				logger.Error(err),
			)
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan archive: %w", err)
	}

	if skipped > 0 {
		c.logger.Warn("Archive contained malformed lines",
			logger.String("key", key),
			logger.Int("skipped", skipped),
			logger.Int("decoded", len(records)),
		)
	}
	return records, nil
}
