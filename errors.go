package fudge

import "github.com/fudgemsg/go-fudge/internal/wireerrors"

// Sentinel errors describing the structural failure kinds a reader or writer can produce. They are
// defined in internal/wireerrors so the stream, message and fudgejson packages can report them without
// importing this package; errors.Is against these vars works the same regardless of which package raised
// the error.
//
// IOFailure is not a sentinel here: low level transport errors are wrapped with fmt.Errorf("%w", ...) and
// propagated as-is so that errors.Is/errors.As against the underlying io error still works.
var (
	// ErrTruncated indicates the stream ended mid-field or mid-envelope. The reader that produced it
	// must not be used to continue reading the current message.
	ErrTruncated = wireerrors.Truncated

	// ErrFramingViolation indicates that length fields disagree, an ordinal is out of range or a name
	// length overlaps the payload. Fatal for the current message.
	ErrFramingViolation = wireerrors.FramingViolation

	// ErrUnknownType names the unknown-wire-type kind. No function in this module returns it: the type
	// dictionary reports a missing codec with Lookup's false result, and readers recover such a field by
	// preserving it as an opaque byte payload.
	ErrUnknownType = wireerrors.UnknownType

	// ErrTypeMismatch is returned on encode when a caller supplied a value whose Go type cannot be
	// resolved to any registered wire type.
	ErrTypeMismatch = wireerrors.TypeMismatch

	// ErrCapacityExceeded is returned when a message would exceed 32767 fields or an ordinal does not
	// fit in a signed 16 bit integer.
	ErrCapacityExceeded = wireerrors.CapacityExceeded

	// ErrClosed is returned by Reader/Writer operations after Close has been called.
	ErrClosed = wireerrors.ClosedStream
)
