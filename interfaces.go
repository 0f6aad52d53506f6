package fudge

import "context"

// MessageReader is the read side of the message-tree facade. *Reader satisfies it.
//
// Grounded on aldas-go-nmea-client/interface.go's RawMessageReader: a minimal capability interface a
// caller can depend on without binding to the concrete Reader type.
type MessageReader interface {
	// NextMessage consumes one full envelope and returns its reassembled tree.
	NextMessage(ctx context.Context) (*Message, Envelope, error)
	// HasNext reports whether a subsequent NextMessage call has a message to read.
	HasNext() bool
	// Close releases the underlying transport exactly once.
	Close() error
}

// MessageWriter is the write side of the message-tree facade. *Writer satisfies it.
type MessageWriter interface {
	// WriteMessage wraps msg in an envelope built from directives/version/taxonomyID and emits it.
	WriteMessage(ctx context.Context, msg *Message, directives, version uint8, taxonomyID int16) error
	// Close releases the underlying transport exactly once.
	Close() error
}

// MessageReaderWriter combines MessageReader and MessageWriter, for collaborators that hold a single
// bidirectional transport (a socket, a pipe) rather than separate read and write ends.
type MessageReaderWriter interface {
	MessageReader
	MessageWriter
}
