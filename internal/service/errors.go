package service

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure so callers can map it onto a transport
// without inspecting message text.
type Kind int

const (
	// KindNotFound means the referenced reservation does not exist.
	KindNotFound Kind = iota + 1
	// KindInvalidArgument means the input was malformed or violates a
	// business rule (bad dates, wrong status for the requested transition,
	// approval conflict).
	KindInvalidArgument
	// KindInvalidState means cancellation is disallowed by the current
	// lifecycle state.
	KindInvalidState
	// KindInternal means an unexpected failure, typically from the store.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindInvalidState:
		return "invalid_state"
	default:
		return "internal"
	}
}

// Error couples a failure category with its detail message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind carried by err, defaulting to KindInternal for
// errors that did not originate in this package.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func notFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func invalidArgumentf(format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func invalidStatef(format string, args ...any) error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func internalErr(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}
