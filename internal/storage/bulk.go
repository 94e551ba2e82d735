package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/north-cloud/ingestor/internal/domain"
	"github.com/north-cloud/ingestor/internal/logger"
)

// DefaultBulkTimeout bounds a single bulk write round trip.
const DefaultBulkTimeout = 30 * time.Second

// BulkResult classifies the outcome of one bulk write.
type BulkResult struct {
	// Inserted is the number of documents the store accepted.
	Inserted int
	// Duplicates is the number rejected for an existing identity.
	Duplicates int
	// Failed is the number rejected for any other per-document reason.
	Failed int
}

// bulkResponse mirrors the fields of the _bulk response the client
// consumes.
type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		Status int `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// BulkCreate writes documents to the shard's index with create
// semantics and content-derived IDs, so an already-present document is
// rejected per item instead of blocking the rest of the batch. Per-item
// 409s count as duplicates. Transport failures, overload pushback, and
// shard-unavailable statuses surface as ErrTransient so the caller can
// retry the whole batch; idempotent IDs make the retry safe.
func (c *Client) BulkCreate(ctx context.Context, docs []domain.Document) (BulkResult, error) {
	if len(docs) == 0 {
		return BulkResult{}, ErrNoDocuments
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultBulkTimeout)
	defer cancel()

	body, err := encodeBulkBody(c.shard.Index, docs)
	if err != nil {
		return BulkResult{}, fmt.Errorf("encode bulk body: %w", err)
	}

	res, err := c.es.Bulk(
		bytes.NewReader(body),
		c.es.Bulk.WithContext(ctx),
	)
	if err != nil {
		return BulkResult{}, fmt.Errorf("%w: bulk request to shard %s: %v", ErrTransient, c.shard.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if isRetryableStatus(res.StatusCode) {
			return BulkResult{}, fmt.Errorf("%w: shard %s returned %d", ErrTransient, c.shard.ID, res.StatusCode)
		}
		return BulkResult{}, fmt.Errorf("bulk write to shard %s failed: %s", c.shard.ID, res.String())
	}

	var parsed bulkResponse
	if decodeErr := json.NewDecoder(res.Body).Decode(&parsed); decodeErr != nil {
		return BulkResult{}, fmt.Errorf("%w: %v", ErrMalformedResponse, decodeErr)
	}

	return c.classifyItems(parsed, len(docs))
}

// classifyItems folds per-item statuses into a BulkResult.
func (c *Client) classifyItems(parsed bulkResponse, sent int) (BulkResult, error) {
	if len(parsed.Items) != sent {
		return BulkResult{}, fmt.Errorf("%w: sent %d items, response carries %d", ErrMalformedResponse, sent, len(parsed.Items))
	}

	var result BulkResult
	for _, item := range parsed.Items {
		entry, ok := item["create"]
		if !ok {
			return BulkResult{}, fmt.Errorf("%w: item without create entry", ErrMalformedResponse)
		}
		switch {
		case entry.Status == http.StatusCreated || entry.Status == http.StatusOK:
			result.Inserted++
		case entry.Status == http.StatusConflict:
			result.Duplicates++
		case isRetryableStatus(entry.Status):
			// One overloaded item poisons the batch; retrying the
			// whole batch is safe because duplicates are rejected.
			return BulkResult{}, fmt.Errorf("%w: shard %s item status %d", ErrTransient, c.shard.ID, entry.Status)
		default:
			result.Failed++
			reason := ""
			if entry.Error != nil {
				reason = entry.Error.Reason
			}
			c.logger.Warn("Document rejected by store",
				logger.String("shard", c.shard.ID),
				logger.Int("status", entry.Status),
				logger.String("reason", reason),
			)
		}
	}
	return result, nil
}

// isRetryableStatus reports whether an HTTP status signals a transient
// cluster condition.
func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusInternalServerError:
		return true
	}
	return false
}

// encodeBulkBody renders the NDJSON action/document pairs for one
// bulk create call.
func encodeBulkBody(index string, docs []domain.Document) ([]byte, error) {
	var buf bytes.Buffer
	for i := range docs {
		action := map[string]map[string]string{
			"create": {"_index": index, "_id": docs[i].ID},
		}
		actionLine, err := json.Marshal(action)
		if err != nil {
			return nil, fmt.Errorf("marshal action line: %w", err)
		}
		docLine, err := json.Marshal(docs[i])
		if err != nil {
			return nil, fmt.Errorf("marshal document %s: %w", docs[i].ID, err)
		}
		buf.Write(actionLine)
		buf.WriteByte('\n')
		buf.Write(docLine)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
