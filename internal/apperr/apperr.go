// Package apperr carries the error kinds the engine reports. Every business
// rule violation is raised as an *Error with one of the kinds below, so the
// transport layer can map errors to responses with a single exhaustive switch
// instead of matching individual sentinel values.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// Internal is the zero kind: anything that is not an *Error.
	Internal Kind = iota
	// Validation covers malformed or missing input and out-of-range values.
	Validation
	// NotFound covers absent classes, bookings, members and instructors.
	NotFound
	// Conflict covers instructor overlaps, duplicate bookings and capacity.
	Conflict
	// InvalidTransition covers illegal booking status changes.
	InvalidTransition
	// StoreUnavailable covers timeouts and connection failures from the
	// database. It is the only kind callers may retry.
	StoreUnavailable
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case InvalidTransition:
		return "invalid_transition"
	case StoreUnavailable:
		return "store_unavailable"
	default:
		return "internal"
	}
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an error of the given kind.
func E(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Store wraps an unexpected database error as StoreUnavailable. The engine
// runs every statement inside a transaction with a statement timeout, so by
// the time an error reaches here it is a timeout or a broken connection.
func Store(op string, err error) error {
	return &Error{Kind: StoreUnavailable, Msg: op, Err: err}
}

// KindOf reports the kind of err, or Internal for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}
