package domain

import "strings"

// TaskCounts is the per-user task tally shown on the workspace.
type TaskCounts struct {
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Closed     int `json:"closed"`
}

// Total returns the number of tasks across all states.
func (t TaskCounts) Total() int {
	return t.Open + t.InProgress + t.Closed
}

var terminalExecutionStatuses = stringSet("COMPLETED", "FAILED", "STOPPED", "CANCELLED", "SKIPPED")

// ExecutionFinished reports whether a scheduler execution status is terminal.
func ExecutionFinished(status string) bool {
	return terminalExecutionStatuses[strings.ToUpper(strings.TrimSpace(status))]
}
