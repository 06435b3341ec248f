package domain

import "strings"

// Status is the canonical workflow status. Raw tracker statuses are
// normalized once at ingestion; everything downstream compares only
// against these values.
type Status string

const (
	StatusToDo       Status = "to_do"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusDone       Status = "done"
	StatusOther      Status = "other"
)

var statusAliases = map[string]Status{
	"to do":          StatusToDo,
	"to-do":          StatusToDo,
	"todo":           StatusToDo,
	"open":           StatusToDo,
	"backlog":        StatusToDo,
	"new":            StatusToDo,
	"in progress":    StatusInProgress,
	"in development": StatusInProgress,
	"in review":      StatusInProgress,
	"blocked":        StatusBlocked,
	"impediment":     StatusBlocked,
	"done":           StatusDone,
	"completed":      StatusDone,
	"closed":         StatusDone,
	"resolved":       StatusDone,
}

// NormalizeStatus maps a raw tracker status to its canonical bucket.
// Matching is case-insensitive; unrecognized statuses map to StatusOther
// rather than being dropped.
func NormalizeStatus(raw string) Status {
	if s, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return StatusOther
}
