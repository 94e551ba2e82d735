// Package domain provides domain models used across the application.
package domain

// RawRecord is one line of an archive, decoded as untyped JSON.
// Only the fields the pipeline consumes have accessors; everything
// else rides along and is ignored.
type RawRecord map[string]any

// stringField returns the named field as a string, or "" when the
// field is absent or not a string.
func (r RawRecord) stringField(key string) string {
	v, ok := r[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// Date returns the record's date field as an ISO-8601 string.
func (r RawRecord) Date() string {
	return r.stringField("date")
}

// Title returns the record's title field.
func (r RawRecord) Title() string {
	return r.stringField("title")
}

// URL returns the record's url field.
func (r RawRecord) URL() string {
	return r.stringField("url")
}

// Language returns the record's language tag.
func (r RawRecord) Language() string {
	return r.stringField("language")
}

// Embedding returns the record's embedding vector, or nil when absent
// or malformed. JSON numbers decode as float64, so the vector is
// reassembled element by element.
func (r RawRecord) Embedding() []float64 {
	v, ok := r["embedding"]
	if !ok {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	vec := make([]float64, 0, len(raw))
	for _, e := range raw {
		f, ok := e.(float64)
		if !ok {
			return nil
		}
		vec = append(vec, f)
	}
	return vec
}
