package tsio

import "errors"

// Sentinel errors surfaced through StreamError. They mirror the error kinds
// named in the core's error-handling design: a single latched bad_stream
// flag governs propagation, but these distinguish the underlying cause for
// callers that want to log or test against a specific kind.
var (
	ErrTruncated              = errors.New("tsio: truncated stream")
	ErrMalformedVarint        = errors.New("tsio: malformed varint")
	ErrContainerTokenMismatch = errors.New("tsio: container token mismatch")
	ErrIO                     = errors.New("tsio: underlying io failure")
	ErrPayloadTooLarge        = errors.New("tsio: payload exceeds enclosing context")
)

// StreamError wraps one of the sentinel errors above with the operation that
// triggered it, following the same Op+cause shape as the teacher's KVError.
type StreamError struct {
	Op  string
	Err error
}

func (e *StreamError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StreamError) Unwrap() error {
	return e.Err
}
