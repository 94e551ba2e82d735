// Package runlog appends per-day ingestion results to a persistent,
// append-only text log.
package runlog

import (
	"fmt"
	"os"

	"github.com/north-cloud/ingestor/internal/domain"
)

const (
	dateLayout  = "2006-01-02"
	filePerm    = 0o644
	minutesUnit = 60.0
)

// Log writes DayResult lines to a file. The file is opened per append
// so a crash between days never holds a dirty handle, and lines land
// in strictly increasing date order because a single goroutine writes
// them.
type Log struct {
	path string
}

// New creates a run log writer for the given path.
func New(path string) *Log {
	return &Log{path: path}
}

// Append writes one DayResult line. Lines are never rewritten.
func (l *Log) Append(res domain.DayResult) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("open run log %s: %w", l.path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatLine(res) + "\n"); err != nil {
		return fmt.Errorf("append to run log %s: %w", l.path, err)
	}
	return nil
}

// formatLine renders one DayResult in the run log's line format.
func formatLine(res domain.DayResult) string {
	minutes := res.Elapsed.Seconds() / minutesUnit
	return fmt.Sprintf("%s: Inserted=%d, Duplicates=%d, Time=%.2f min",
		res.Date.Format(dateLayout), res.Inserted, res.Duplicates, minutes)
}
