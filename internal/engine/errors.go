package engine

import (
	"errors"
	"fmt"
)

// NotFoundError is returned when a referenced mission, debt or project does
// not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// InvalidStateError is returned when an operation targets an entity in a
// terminal state, or when no ticket quota remains.
type InvalidStateError struct {
	Kind   string
	ID     string
	Reason string
}

func (e InvalidStateError) Error() string {
	if e.ID == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s %s %s", e.Kind, e.ID, e.Reason)
}

// AlreadyClearedError is the invalid state of writing an insight twice.
type AlreadyClearedError struct {
	DebtID string
}

func (e AlreadyClearedError) Error() string {
	return fmt.Sprintf("insight debt %s is already cleared", e.DebtID)
}

// ValidationError reports malformed input. It is surfaced, never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindInvalidState ErrorKind = "invalid_state"
	KindValidation   ErrorKind = "validation"
	KindInternal     ErrorKind = "internal"
)

// Classify maps an error returned by the Service to its category.
func Classify(err error) ErrorKind {
	var (
		nf NotFoundError
		is InvalidStateError
		ac AlreadyClearedError
		ve ValidationError
	)
	switch {
	case errors.As(err, &nf):
		return KindNotFound
	case errors.As(err, &is), errors.As(err, &ac):
		return KindInvalidState
	case errors.As(err, &ve):
		return KindValidation
	default:
		return KindInternal
	}
}
