// Package pipeline drives the date-sharded ingestion run: one strictly
// sequential state machine transition per calendar day.
package pipeline

import "time"

// State is the orchestrator's position in the run.
type State int

const (
	// StateProcess means the orchestrator will ingest the next day.
	StateProcess State = iota
	// StateCompleted means the date range is exhausted.
	StateCompleted
	// StateHalted means the storage quota guard tripped. Terminal and
	// deliberate, not an error.
	StateHalted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateProcess:
		return "process"
	case StateCompleted:
		return "completed"
	case StateHalted:
		return "halted"
	default:
		return "unknown"
	}
}

// Next is the pure transition function of the day loop: given the day
// just finished, the end of the range, and whether the quota guard
// asked to halt, it decides the next state. Halting wins over range
// exhaustion so the halt is visible in the run summary.
func Next(day, end time.Time, quotaHalt bool) State {
	if quotaHalt {
		return StateHalted
	}
	if !day.Before(end) {
		return StateCompleted
	}
	return StateProcess
}
