// Package normalize validates, filters, and canonicalizes raw archive
// records into documents ready for storage.
package normalize

import (
	"strings"
	"time"

	"github.com/north-cloud/ingestor/internal/domain"
	"github.com/north-cloud/ingestor/internal/logger"
)

// dateLayouts are the accepted record date formats, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalizer filters raw records and projects survivors into
// canonical documents.
type Normalizer struct {
	language string
	keywords []string
	logger   logger.Logger
}

// New creates a normalizer gating on the given language tag and
// keyword set. Keywords are matched case-insensitively, so they are
// lowercased once here.
func New(language string, keywords []string, log logger.Logger) *Normalizer {
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	return &Normalizer{
		language: language,
		keywords: lowered,
		logger:   log,
	}
}

// Normalize applies the language gate, the keyword relevance gate,
// identity computation, and projection, in that order. It returns
// ok=false for filtered-out records; filtering is expected high-volume
// noise and is not logged as an error. Missing optional fields never
// cause a failure.
func (n *Normalizer) Normalize(rec domain.RawRecord) (domain.Document, bool) {
	// Language gate: case-sensitive exact match.
	if rec.Language() != n.language {
		return domain.Document{}, false
	}

	// Relevance gate: at least one keyword must appear in title or url.
	if !n.matchesKeyword(rec.Title(), rec.URL()) {
		return domain.Document{}, false
	}

	doc := domain.Document{
		ID:       domain.Identity(rec),
		Date:     parseDate(rec.Date()),
		Title:    rec.Title(),
		URL:      rec.URL(),
		Language: rec.Language(),
		Embedding: func() []float64 {
			if vec := rec.Embedding(); vec != nil {
				return vec
			}
			return []float64{}
		}(),
	}
	return doc, true
}

// matchesKeyword reports whether any configured keyword appears as a
// case-insensitive substring of the title or url. An empty keyword set
// admits everything.
func (n *Normalizer) matchesKeyword(title, url string) bool {
	if len(n.keywords) == 0 {
		return true
	}
	title = strings.ToLower(title)
	url = strings.ToLower(url)
	for _, kw := range n.keywords {
		if strings.Contains(title, kw) || strings.Contains(url, kw) {
			return true
		}
	}
	return false
}

// parseDate parses a record date, trying the accepted layouts in
// order. An unparseable date yields the zero time, which the shard
// router sends to the default shard.
func parseDate(s string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
