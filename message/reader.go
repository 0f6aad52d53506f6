package message

import (
	"context"
	"fmt"
	"io"

	"github.com/fudgemsg/go-fudge/internal/wireerrors"
	"github.com/fudgemsg/go-fudge/stream"
)

// Reader buffers stream.Reader events into whole message trees, hiding event management from callers who
// prefer a Message over a StreamElement sequence. Grounded on aldas-go-nmea-client/canboat/decoder.go's
// Decoder.decode, which does the equivalent tree-assembly over canboat's own field stream.
type Reader struct {
	sr *stream.Reader
}

// NewReader returns a Reader over src using a fresh standard Dictionary and no taxonomy substitution.
func NewReader(src io.Reader) *Reader {
	return NewReaderWithConfig(src, Config{})
}

// NewReaderWithConfig returns a Reader over src configured per cfg.
func NewReaderWithConfig(src io.Reader, cfg Config) *Reader {
	return &Reader{sr: stream.NewReaderWithConfig(src, stream.ReaderConfig{
		Dictionary: cfg.dictionary(),
		Taxonomy:   cfg.Taxonomy,
	})}
}

// Envelope carries the envelope header fields a NextMessage call read alongside the reassembled tree.
type Envelope struct {
	ProcessingDirectives uint8
	SchemaVersion        uint8
	TaxonomyID           int16
}

// HasNext reports whether a subsequent NextMessage call has a message to read.
func (r *Reader) HasNext() bool { return r.sr.HasNext() }

// NextMessage consumes stream events until one full envelope has been reassembled into a Message.
func (r *Reader) NextMessage(ctx context.Context) (*Message, Envelope, error) {
	elem, err := r.sr.Next(ctx)
	if err != nil {
		return nil, Envelope{}, err
	}
	if elem != stream.MessageEnvelope {
		return nil, Envelope{}, fmt.Errorf("expected envelope, got %v: %w", elem, wireerrors.FramingViolation)
	}
	env := Envelope{
		ProcessingDirectives: r.sr.ProcessingDirectives(),
		SchemaVersion:        r.sr.SchemaVersion(),
		TaxonomyID:           r.sr.TaxonomyID(),
	}
	root := New()
	if err := r.buildTree(ctx, root); err != nil {
		return nil, Envelope{}, err
	}
	return root, env, nil
}

// buildTree consumes events belonging to one nesting level, appending fields to msg, until that level's
// closing event: SubmessageFieldEnd for a nested message, io.EOF for the outermost (envelope) body.
func (r *Reader) buildTree(ctx context.Context, msg *Message) error {
	for {
		elem, err := r.sr.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch elem {
		case stream.SimpleField:
			f := Field{
				Type:    r.sr.FieldType(),
				Value:   r.sr.FieldValue(),
				Name:    r.sr.FieldName(),
				Ordinal: r.sr.FieldOrdinal(),
			}
			if err := msg.Add(f); err != nil {
				return err
			}
		case stream.SubmessageFieldStart:
			typ, name, ordinal := r.sr.FieldType(), r.sr.FieldName(), r.sr.FieldOrdinal()
			child := New()
			if err := r.buildTree(ctx, child); err != nil {
				return err
			}
			if err := msg.Add(Field{Type: typ, Value: child, Name: name, Ordinal: ordinal}); err != nil {
				return err
			}
		case stream.SubmessageFieldEnd:
			return nil
		default:
			return fmt.Errorf("unexpected stream element %v inside message body: %w", elem, wireerrors.FramingViolation)
		}
	}
}

// Close releases the underlying transport exactly once.
func (r *Reader) Close() error { return r.sr.Close() }
