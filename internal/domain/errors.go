package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrLogementNotFound    = errors.New("logement not found")
	ErrCandidatureNotFound = errors.New("candidature not found")
	ErrContractNotFound    = errors.New("contract not found")
	ErrInspectionNotFound  = errors.New("inspection not found")
	ErrPhotoNotFound       = errors.New("photo not found")
	ErrFileNotFound        = errors.New("file not found")
	ErrUnsafePath          = errors.New("unsafe path")
)

// ValidationError reports bad or missing input. No state is changed when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError is returned when an operation would break a uniqueness or
// occupancy invariant, such as two active contracts on one logement.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}

// TransitionError is returned when a state transition is not allowed.
type TransitionError struct {
	Entity  string
	Event   string
	Current string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: event %q is not valid from state %q", e.Entity, e.Event, e.Current)
}
