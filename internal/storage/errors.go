package storage

import "errors"

var (
	// ErrTransient marks a storage failure worth retrying: transport
	// errors, overload pushback, and unavailable shards.
	ErrTransient = errors.New("transient storage failure")
	// ErrNoDocuments is returned when a bulk call receives an empty batch.
	ErrNoDocuments = errors.New("no documents to write")
	// ErrMalformedResponse indicates an Elasticsearch response the
	// client could not interpret.
	ErrMalformedResponse = errors.New("malformed elasticsearch response")
)

// IsTransient reports whether err is a retryable storage failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
