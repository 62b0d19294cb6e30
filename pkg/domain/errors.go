package domain

import "errors"

// ErrEarlyTermination is wrapped by every error produced when a pipeline ends on
// Branch, Jump or Emit instead of Next.
var ErrEarlyTermination = errors.New("early termination")

// ErrEmptyTimeline is returned when an operation needs at least one timeline event.
var ErrEmptyTimeline = errors.New("timeline is empty")

// ErrCircuitNotFound is returned when a schematic cannot be found by name.
var ErrCircuitNotFound = errors.New("circuit not found")
