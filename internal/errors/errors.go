package errors

import (
	"errors"
	"fmt"
)

// Kinds of failure the booking core reports to its callers.
var (
	ErrConflict       = errors.New("seat is already booked")
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation failed")
	ErrInfrastructure = errors.New("storage unavailable")
)

// Outcome is the closed set of results of a booking attempt.
type Outcome string

const (
	OutcomeCreated        Outcome = "created"
	OutcomeConflict       Outcome = "conflict"
	OutcomeNotFound       Outcome = "not_found"
	OutcomeValidation     Outcome = "validation"
	OutcomeInfrastructure Outcome = "infrastructure"
)

// Error pairs a failure kind with a human readable message and an optional cause.
type Error struct {
	Kind  error
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	case e.Msg != "":
		return e.Msg
	case e.Cause != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Cause)
	default:
		return e.Kind.Error()
	}
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

// Infrastructure wraps a storage or transport failure. The cause stays reachable.
func Infrastructure(cause error, format string, args ...any) error {
	return &Error{Kind: ErrInfrastructure, Msg: fmt.Sprintf(format, args...), Cause: cause}
}

func IsConflict(err error) bool       { return errors.Is(err, ErrConflict) }
func IsNotFound(err error) bool       { return errors.Is(err, ErrNotFound) }
func IsValidation(err error) bool     { return errors.Is(err, ErrValidation) }
func IsInfrastructure(err error) bool { return errors.Is(err, ErrInfrastructure) }

// OutcomeOf classifies err. A nil error is a successful creation; anything
// unclassified is treated as an infrastructure failure so it is never mistaken
// for a seat conflict.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeCreated
	case IsConflict(err):
		return OutcomeConflict
	case IsNotFound(err):
		return OutcomeNotFound
	case IsValidation(err):
		return OutcomeValidation
	default:
		return OutcomeInfrastructure
	}
}
