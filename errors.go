package fusion

import (
	"errors"
	"fmt"
)

// Standard errors returned by the registry, mode map, memory, and executor.
var (
	// ErrUnknownPattern is returned when a pattern id cannot be resolved.
	ErrUnknownPattern = errors.New("unknown pattern")

	// ErrDuplicatePattern is returned when a pattern id is registered twice.
	ErrDuplicatePattern = errors.New("pattern already registered")

	// ErrCyclicFallback is returned when pattern fallback links form a cycle.
	ErrCyclicFallback = errors.New("fallback chain contains a cycle")

	// ErrUnknownMode is returned for execution modes outside the fixed set.
	ErrUnknownMode = errors.New("unknown execution mode")

	// ErrUnknownAgent is returned when a chain step names an agent that is
	// not in the roster.
	ErrUnknownAgent = errors.New("unknown agent")

	// ErrGenerationUnavailable is returned when the text generator cannot be
	// reached. It aborts the whole run.
	ErrGenerationUnavailable = errors.New("text generation unavailable")

	// ErrEmptyOutput is returned when the generator produces no text.
	ErrEmptyOutput = errors.New("generator returned empty output")
)

// PatternError wraps an error with the pattern id that caused it.
type PatternError struct {
	ID  string
	Err error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("pattern %s: %v", e.ID, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// StepError wraps an error with the chain step where it occurred.
type StepError struct {
	Step  int
	Agent string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Step, e.Agent, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
