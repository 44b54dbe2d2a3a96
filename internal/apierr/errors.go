// Package apierr defines the error kinds shared across the core per
// spec.md §7. Components return a *apierr.Error wrapping the underlying
// cause; callers disposition on Kind rather than string-matching.
// Grounded on PsybeDev-tracktic/sims/simulator_connector.go's
// ConnectionError: a typed struct with an Error() string method and a
// queryable classification field (there, Retryable; here, Kind).
package apierr

import "fmt"

// Kind classifies an error per spec.md §7.
type Kind int

const (
	// KindMalformedInput covers structural violations of the binary
	// format: out-of-range offsets, unknown type codes, truncated
	// samples.
	KindMalformedInput Kind = iota
	// KindUnsupported covers a header version the parser does not accept.
	KindUnsupported
	// KindOutOfRange covers a client-requested index at or beyond the
	// valid range.
	KindOutOfRange
	// KindConflict covers an attempt to start a second concurrent
	// operation that must be exclusive (e.g. a second active replay).
	KindConflict
	// KindNotFound covers an operation that requires state that does not
	// currently exist (e.g. no active replay).
	KindNotFound
	// KindTransient covers a recoverable failure from a live source that
	// should be logged and skipped, not propagated as fatal.
	KindTransient
	// KindInternal covers any other unexpected failure.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindMalformedInput:
		return "malformed_input"
	case KindUnsupported:
		return "unsupported"
	case KindOutOfRange:
		return "out_of_range"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindTransient:
		return "transient"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the typed error every core operation returns.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an *Error.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if ok := As(err, &e); ok {
		return e.Kind == kind
	}
	return false
}

// As is a small local wrapper so callers don't need to import errors
// just to unwrap apierr.Error in the common case.
func As(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
