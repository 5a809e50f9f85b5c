package document

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package matches exactly one
// of these with errors.Is.
var (
	// ErrAssetFetch means the stylesheet or script could not be fetched.
	ErrAssetFetch = errors.New("asset fetch failed")

	// ErrIO means the document file could not be read or written.
	ErrIO = errors.New("document i/o failed")

	// ErrMarkerInvariant means the document does not hold exactly one
	// insertion marker, or a fragment would introduce another.
	ErrMarkerInvariant = errors.New("insertion marker invariant violated")

	// ErrInvalidArgument means a parameter is out of its allowed range.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrLengthMismatch means per-fragment classes do not line up with
	// the fragments.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrTypeMismatch means a nil or unusable table or figure was given.
	ErrTypeMismatch = errors.New("type mismatch")
)

// Error is a classified failure from a document operation.
type Error struct {
	// Kind is one of the Err* sentinels above.
	Kind error

	// Op names the failing operation, e.g. "append" or "add section".
	Op string

	// Path is the document path, when known.
	Path string

	// Err is the underlying cause. May be nil.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches the error's Kind.
func (e *Error) Is(target error) bool { return target == e.Kind }

func newError(kind error, op, path string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: cause}
}

func invalidArg(op, format string, args ...any) *Error {
	return newError(ErrInvalidArgument, op, "", fmt.Errorf(format, args...))
}
