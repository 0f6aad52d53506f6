// Package wireerrors holds the sentinel errors shared by every layer of the wire protocol engine
// (stream, message, fudgejson) and re-exported by the root fudge package. It exists only so that those
// packages, which the root package imports, can report the same error kinds the root package's public API
// promises without creating an import cycle back to it.
package wireerrors

import "errors"

var (
	// Truncated indicates the stream ended mid-field or mid-envelope.
	Truncated = errors.New("fudge: stream truncated")
	// FramingViolation indicates that length fields disagree, an ordinal is out of range, or a name
	// length overlaps the payload.
	FramingViolation = errors.New("fudge: framing violation")
	// UnknownType names the unknown-wire-type kind. No function in this module returns it: a wire type id
	// with no registered codec is reported by Dictionary.Lookup's false result, and readers preserve such a
	// field as an opaque byte payload rather than failing the message.
	UnknownType = errors.New("fudge: unknown wire type")
	// TypeMismatch is returned on encode when a caller supplied a value whose Go type cannot be resolved
	// to any registered wire type.
	TypeMismatch = errors.New("fudge: value type cannot be resolved to a wire type")
	// CapacityExceeded is returned when a message would exceed the 32767 field ceiling or an ordinal
	// does not fit a signed 16 bit integer.
	CapacityExceeded = errors.New("fudge: capacity exceeded")
	// ClosedStream is returned by Next/WriteField after Close has been called.
	ClosedStream = errors.New("fudge: stream already closed")
)
