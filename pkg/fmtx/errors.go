package fmtx

import (
	"errors"
	"fmt"
)

var (
	// ErrTooManyPending indicates the general command pool is exhausted.
	ErrTooManyPending = errors.New("too many pending commands")
	// ErrConflictingCommand indicates a command of the same single-slot
	// kind (PS text, RT text, raw data) is already pending or executing.
	ErrConflictingCommand = errors.New("conflicting command in progress")
	// ErrUnknownCommand indicates the command kind is not known.
	ErrUnknownCommand = errors.New("unknown command")
)

// ParamError is returned by Enqueue when a request payload fails validation.
type ParamError struct {
	Kind   CommandKind
	Reason string
}

// Error implements error.
func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: invalid parameter: %s", e.Kind, e.Reason)
}

// StatusError wraps a non-success completion status as an error.
type StatusError struct {
	Kind   CommandKind
	Status Status
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Status)
}

// Err returns nil for a successful event, otherwise a *StatusError.
func (e *Event) Err() error {
	if e.Status == StatusSuccess {
		return nil
	}
	return &StatusError{Kind: e.Kind, Status: e.Status}
}
