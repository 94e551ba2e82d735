package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Document is the persisted unit of the pipeline. Its ID is a pure
// function of the record's stable identifying field, so re-ingesting
// the same source yields the same IDs and duplicate-key rejections
// instead of double writes.
type Document struct {
	// ID is the content-derived digest used as the store's primary key.
	ID string `json:"id"`
	// Date is the record's publication timestamp.
	Date time.Time `json:"date"`
	// Title of the article.
	Title string `json:"title"`
	// URL is the canonical article URL.
	URL string `json:"url"`
	// Language is the record's language tag.
	Language string `json:"language"`
	// Embedding is the article's embedding vector; empty when the
	// source record carried none, never null.
	Embedding []float64 `json:"embedding"`
}

// Identity derives the deterministic document ID for a raw record.
// Preference order: url, then title, then the full serialized record.
// encoding/json marshals map keys in sorted order, so the fallback is
// stable across runs.
func Identity(rec RawRecord) string {
	var basis []byte
	switch {
	case rec.URL() != "":
		basis = []byte(rec.URL())
	case rec.Title() != "":
		basis = []byte(rec.Title())
	default:
		// Marshal cannot fail for a map decoded from JSON.
		basis, _ = json.Marshal(map[string]any(rec))
	}
	sum := sha256.Sum256(basis)
	return hex.EncodeToString(sum[:])
}
