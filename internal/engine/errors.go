package engine

import (
	"errors"
	"fmt"
)

// ErrNoActiveSprint is returned when an operation needs an active sprint
// and the board has none.
var ErrNoActiveSprint = errors.New("no active sprint")

// NotFoundError reports a tracker entity that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Resource, e.ID) }

// InvalidInputError reports a caller-supplied parameter that failed validation.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string { return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason) }

// UpstreamError wraps a tracker failure that the engine propagates unchanged.
// The engine never retries; retry policy lives in the gateway.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("tracker %s: %v", e.Op, e.Err) }
func (e *UpstreamError) Unwrap() error { return e.Err }
