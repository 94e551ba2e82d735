package normalize_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/north-cloud/ingestor/internal/domain"
	"github.com/north-cloud/ingestor/internal/logger"
	"github.com/north-cloud/ingestor/internal/normalize"
)

func newNormalizer() *normalize.Normalizer {
	return normalize.New("en", []string{"earnings", "merger"}, logger.NewNop())
}

func record() domain.RawRecord {
	return domain.RawRecord{
		"date":     "2024-03-01T09:30:00Z",
		"title":    "Earnings preview",
		"url":      "https://example.com/earnings-preview",
		"language": "en",
	}
}

func TestNormalizeAccepts(t *testing.T) {
	doc, ok := newNormalizer().Normalize(record())

	require.True(t, ok)
	assert.Equal(t, "Earnings preview", doc.Title)
	assert.Equal(t, "https://example.com/earnings-preview", doc.URL)
	assert.Equal(t, "en", doc.Language)
	assert.Equal(t, time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC), doc.Date)
	assert.Len(t, doc.ID, 64)
	assert.NotNil(t, doc.Embedding)
	assert.Empty(t, doc.Embedding, "absent embedding defaults to empty, not nil")
}

func TestLanguageGate(t *testing.T) {
	tests := []struct {
		name     string
		language any
		want     bool
	}{
		{"exact match passes", "en", true},
		{"different language dropped", "fr", false},
		{"case-sensitive match", "EN", false},
		{"missing language dropped", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := record()
			if tt.language == nil {
				delete(rec, "language")
			} else {
				rec["language"] = tt.language
			}
			_, ok := newNormalizer().Normalize(rec)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestKeywordGate(t *testing.T) {
	tests := []struct {
		name  string
		title string
		url   string
		want  bool
	}{
		{"keyword in title", "Big Earnings beat", "https://example.com/x", true},
		{"keyword in url", "Nothing here", "https://example.com/merger-talks", true},
		{"case-insensitive", "EARNINGS season", "https://example.com/x", true},
		{"no keyword anywhere", "Weather report", "https://example.com/weather", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := record()
			rec["title"] = tt.title
			rec["url"] = tt.url
			_, ok := newNormalizer().Normalize(rec)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestLanguageGateRunsFirst(t *testing.T) {
	rec := record()
	rec["language"] = "fr"
	// Keyword matches, but the language gate must still drop it.
	_, ok := newNormalizer().Normalize(rec)
	assert.False(t, ok)
}

func TestNormalizeKeepsEmbedding(t *testing.T) {
	rec := record()
	rec["embedding"] = []any{0.5, -0.25}

	doc, ok := newNormalizer().Normalize(rec)
	require.True(t, ok)
	assert.Equal(t, []float64{0.5, -0.25}, doc.Embedding)
}

func TestNormalizeIdentityStableAcrossRuns(t *testing.T) {
	first, ok := newNormalizer().Normalize(record())
	require.True(t, ok)
	second, ok := newNormalizer().Normalize(record())
	require.True(t, ok)

	assert.Equal(t, first.ID, second.ID)
}

func TestNormalizeUnparseableDate(t *testing.T) {
	rec := record()
	rec["date"] = "last tuesday"

	doc, ok := newNormalizer().Normalize(rec)
	require.True(t, ok)
	assert.True(t, doc.Date.IsZero(), "bad dates route to the default shard via zero time")
}

func TestEmptyKeywordSetAdmitsAll(t *testing.T) {
	n := normalize.New("en", nil, logger.NewNop())
	rec := record()
	rec["title"] = "Completely unrelated"
	rec["url"] = "https://example.com/unrelated"

	_, ok := n.Normalize(rec)
	assert.True(t, ok)
}
