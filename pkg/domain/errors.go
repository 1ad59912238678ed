package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyQuery is returned when a run is requested without a query.
var ErrEmptyQuery = errors.New("query cannot be empty")

// ErrUnknownStep is returned when a resume targets a step the graph does not define.
var ErrUnknownStep = errors.New("unknown step")

// ErrRecordNotFound is returned when a run ID cannot be found in the store.
var ErrRecordNotFound = errors.New("record not found")

// ErrStepLimit is returned when a run exceeds the executor's hard step cap.
var ErrStepLimit = errors.New("step limit exceeded")

// ConfigError reports collaborator wiring or credentials missing at startup.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: missing %s", strings.Join(e.Missing, ", "))
}

// UnknownFieldError is raised when a step update names a field outside the Record schema.
type UnknownFieldError struct {
	Step  string
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("step '%s' wrote unknown field '%s'", e.Step, e.Field)
}

// OwnershipError is raised when a step writes a field it does not own.
type OwnershipError struct {
	Step  string
	Field string
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("step '%s' is not allowed to write field '%s'", e.Step, e.Field)
}

// MergeError wraps a type mismatch found while applying an update.
type MergeError struct {
	Step string
	Err  error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("failed to merge update from step '%s': %v", e.Step, e.Err)
}

func (e *MergeError) Unwrap() error {
	return e.Err
}

// RouteError is raised when a router emits a label with no branch.
type RouteError struct {
	Step  string
	Label string
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("router of step '%s' emitted unmapped label '%s'", e.Step, e.Label)
}
