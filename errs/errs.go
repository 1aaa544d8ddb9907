// Package errs defines the error-kind taxonomy used at stoap's request
// and load boundaries.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an error for the purposes of request-boundary
// handling and process fatality, per the engine's error design.
type Kind int

const (
	// Internal marks a broken invariant: cyclic hierarchy, key width
	// over 64 bits, an out-of-range source in an AggregationMap. Fatal
	// to the query, not to the process.
	Internal Kind = iota
	// InvalidCoordinates marks wrong arity, an out-of-range id, or an
	// id absent from its dimension.
	InvalidCoordinates
	// ConversionFailed marks a numeric parse with trailing garbage.
	ConversionFailed
	// FileNotFound marks a missing database file.
	FileNotFound
	// CorruptFile marks a missing section, an arity mismatch, or a
	// wrong element kind while loading a database file.
	CorruptFile
	// OutOfMemory is fatal to the process.
	OutOfMemory
	// ParameterMissing marks an absent or empty request parameter.
	ParameterMissing
	// SplashDisabled is reserved; unused in the query path.
	SplashDisabled
)

func (k Kind) String() string {
	switch k {
	case Internal:
		return "internal"
	case InvalidCoordinates:
		return "invalid-coordinates"
	case ConversionFailed:
		return "conversion-failed"
	case FileNotFound:
		return "file-not-found"
	case CorruptFile:
		return "corrupt-file"
	case OutOfMemory:
		return "out-of-memory"
	case ParameterMissing:
		return "parameter-missing"
	case SplashDisabled:
		return "splash-disabled"
	default:
		return "unknown"
	}
}

// Error is a Kind-tagged error. The underlying cause (if any) is kept
// so errors.Cause and "%+v" stack traces keep working.
type Error struct {
	kind  Kind
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.cause)
}

// Cause implements the interface github.com/pkg/errors.Cause looks for.
func (e *Error) Cause() error { return e.cause }

// Kind reports the error's kind.
func (e *Error) Kind() Kind { return e.kind }

// New builds a Kind-tagged error from a format string.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{kind: kind, cause: errors.Errorf(format, args...)}
}

// Wrap tags an existing error with a Kind, preserving it as the cause.
func Wrap(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, cause: errors.Wrapf(err, format, args...)}
}

// KindOf extracts the Kind from err, defaulting to Internal if err was
// not produced by New/Wrap. It unwraps via errors.Cause, since
// *Error itself is sometimes further wrapped by errors.Wrap.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.kind
		}
		cause := errors.Cause(err)
		if cause == err {
			break
		}
		err = cause
	}
	return Internal
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
