// Package stream implements the Fudge pull-style binary stream reader and writer: the state machines that
// turn a byte stream into a sequence of StreamElements (or the reverse), with correct envelope and
// field-prefix framing, integer/byte-array narrowing, and taxonomy substitution.
//
// Grounded on aldas-go-nmea-client/actisense/binaryreader.go's DLE/STX/ETX state machine (Config struct,
// ctx-aware Read, internal buffering of partial reads) reimagined for Fudge's length-prefixed framing
// instead of byte-stuffed framing, and on fastpacket.go's bracket/sequence tracking idea, reimagined as an
// explicit remaining-bytes frame stack rather than a bitmask reassembly buffer.
package stream

// StreamElement names the four events a Reader can produce from a binary Fudge stream.
type StreamElement int

const (
	// MessageEnvelope is emitted by the first Next call of each envelope, carrying that envelope's header.
	MessageEnvelope StreamElement = iota
	// SimpleField is emitted for any field whose value was fully materialized (not a sub-message).
	SimpleField
	// SubmessageFieldStart is emitted when a field's value is itself a message; a matching
	// SubmessageFieldEnd follows once every nested field has been consumed.
	SubmessageFieldStart
	// SubmessageFieldEnd closes the frame opened by the matching SubmessageFieldStart.
	SubmessageFieldEnd
)

func (e StreamElement) String() string {
	switch e {
	case MessageEnvelope:
		return "MessageEnvelope"
	case SimpleField:
		return "SimpleField"
	case SubmessageFieldStart:
		return "SubmessageFieldStart"
	case SubmessageFieldEnd:
		return "SubmessageFieldEnd"
	default:
		return "Unknown"
	}
}
