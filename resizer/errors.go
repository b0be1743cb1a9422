package resizer

import (
	"github.com/pkg/errors"
)

// Error kinds returned by Resize. Every one of them is a deterministic function of the input
// and the options, so none is worth retrying.
var (
	ErrInvalidTargetEdge = errors.New("target short edge must be positive")
	ErrDecodeFailed      = errors.New("decode failed")
	ErrEncodeFailed      = errors.New("encode failed")
	ErrOutputTooLarge    = errors.New("output image too large")
)

// Error carries one of the kinds above together with the underlying cause.
type Error struct {
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

// Unwrap makes errors.Is match on the kind as well as on the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Cause returns the underlying error, if any.
func (e *Error) Cause() error { return e.Err }

func fail(kind, err error) error {
	return &Error{Kind: kind, Err: err}
}
