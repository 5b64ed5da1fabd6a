package phase

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies what went wrong in a run.
type Kind int

// The kinds of run errors.
const (
	// KindMismatch is a deviation between predicted and observed behavior.
	KindMismatch Kind = iota + 1

	// KindObjectionMisuse is an objection dropped without being held.
	KindObjectionMisuse

	// KindTimeout is the simulation ceiling reached with objections still
	// raised.
	KindTimeout

	// KindOrdering is a broken per-cycle ordering between monitors, drivers
	// and checkers.
	KindOrdering
)

func (k Kind) String() string {
	switch k {
	case KindMismatch:
		return "mismatch"
	case KindObjectionMisuse:
		return "objection misuse"
	case KindTimeout:
		return "timeout"
	case KindOrdering:
		return "ordering violation"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ErrObjectionNotHeld is returned when dropping an objection that is not
// raised.
var ErrObjectionNotHeld = errors.New("objection not held")

// RunError is an error with a Kind attached.
type RunError struct {
	Kind  Kind
	cause error
}

// NewRunError creates a RunError from a message.
func NewRunError(kind Kind, format string, args ...interface{}) *RunError {
	return &RunError{Kind: kind, cause: errors.Errorf(format, args...)}
}

// WrapRunError attaches a kind and a message to an existing error.
func WrapRunError(
	kind Kind,
	err error,
	format string,
	args ...interface{},
) *RunError {
	return &RunError{Kind: kind, cause: errors.Wrapf(err, format, args...)}
}

func (e *RunError) Error() string {
	return e.Kind.String() + ": " + e.cause.Error()
}

// Unwrap returns the underlying error.
func (e *RunError) Unwrap() error {
	return e.cause
}

// Cause returns the root cause, following github.com/pkg/errors conventions.
func (e *RunError) Cause() error {
	return errors.Cause(e.cause)
}

// KindOf returns the kind of the first RunError in the chain of err.
func KindOf(err error) (Kind, bool) {
	var runErr *RunError
	if errors.As(err, &runErr) {
		return runErr.Kind, true
	}

	return 0, false
}
