package stream

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fudgemsg/go-fudge/internal/wireerrors"
	"github.com/fudgemsg/go-fudge/taxonomy"
	"github.com/fudgemsg/go-fudge/wiretype"
)

// WriterConfig configures a Writer. A zero Config is valid: it builds a fresh standard Dictionary and
// performs no taxonomy substitution.
type WriterConfig struct {
	Dictionary *wiretype.Dictionary
	Taxonomy   *taxonomy.Resolver
}

// Writer serializes a stream of StreamElements directly onto dst. Because Fudge framing is
// length-prefixed, Writer never buffers: every length it writes (envelope totalLength, a sub-message's
// payload length) must already be known to the caller, which is why WriteEnvelopeHeader and
// WriteSubmessageStart take the length as an explicit argument rather than computing it. The
// message.Writer facade does that precomputation via the type dictionary before calling down into this
// package, mirroring §4.4 of the wire format design.
type Writer struct {
	dst  io.Writer
	dict *wiretype.Dictionary
	tax  *taxonomy.Resolver

	closer io.Closer
	closed bool

	taxonomyID int16
	depth      int
}

// NewWriter returns a Writer over dst using a fresh standard Dictionary and no taxonomy substitution.
func NewWriter(dst io.Writer) *Writer {
	return NewWriterWithConfig(dst, WriterConfig{})
}

// NewWriterWithConfig returns a Writer over dst configured per cfg.
func NewWriterWithConfig(dst io.Writer, cfg WriterConfig) *Writer {
	dict := cfg.Dictionary
	if dict == nil {
		dict = wiretype.NewDictionary()
	}
	closer, _ := dst.(io.Closer)
	return &Writer{dst: dst, dict: dict, tax: cfg.Taxonomy, closer: closer}
}

// WriteEnvelopeHeader writes the 8 byte envelope. totalLength must be the full envelope size including
// these 8 bytes, precomputed by the caller.
func (w *Writer) WriteEnvelopeHeader(ctx context.Context, directives, version uint8, taxonomyID int16, totalLength int32) error {
	if w.closed {
		return wireerrors.ClosedStream
	}
	if totalLength < 8 {
		return fmt.Errorf("envelope totalLength %d is smaller than the header itself: %w", totalLength, wireerrors.FramingViolation)
	}
	w.taxonomyID = taxonomyID
	buf := make([]byte, 8)
	buf[0] = directives
	buf[1] = version
	binary.BigEndian.PutUint16(buf[2:4], uint16(taxonomyID))
	binary.BigEndian.PutUint32(buf[4:8], uint32(totalLength))
	return w.write(ctx, buf)
}

// WriteField writes one simple (non-container) field: prefix byte, type id, optional ordinal, optional
// name, payload length (when the type is not fixed width), and the encoded payload.
//
// If value carries a name but no ordinal and a taxonomy is active that maps the name to an ordinal, the
// ordinal is substituted and the name omitted from the wire, per §4.2.
func (w *Writer) WriteField(ctx context.Context, typeID uint8, value interface{}, name *string, ordinal *int16) error {
	if w.closed {
		return wireerrors.ClosedStream
	}
	wt, ok := w.dict.Lookup(typeID)
	if !ok {
		return fmt.Errorf("write field: type id %d is not registered: %w", typeID, wireerrors.TypeMismatch)
	}
	if wt.IsContainer {
		return fmt.Errorf("write field: type id %d is a container type, use WriteSubmessageStart: %w", typeID, wireerrors.TypeMismatch)
	}

	name, ordinal = w.substituteTaxonomy(name, ordinal)

	payload, err := wt.Encode(value)
	if err != nil {
		return fmt.Errorf("write field: %v: %w", err, wireerrors.TypeMismatch)
	}

	prefix := fieldPrefix{fixedWidth: wt.FixedWidth, hasOrdinal: ordinal != nil, hasName: name != nil}
	if !wt.FixedWidth {
		prefix.lengthWidth = lengthWidthFor(len(payload))
	}
	if err := w.writeHeader(ctx, prefix, typeID, ordinal, name, len(payload)); err != nil {
		return err
	}
	return w.write(ctx, payload)
}

// WriteSubmessageStart writes the field prefix and header for a sub-message field whose encoded payload is
// payloadLength bytes, computed by the caller ahead of time. It does not write any payload bytes itself;
// the caller follows with WriteField/WriteSubmessageStart calls for the nested fields and eventually
// WriteSubmessageEnd.
func (w *Writer) WriteSubmessageStart(ctx context.Context, name *string, ordinal *int16, payloadLength int32) error {
	if w.closed {
		return wireerrors.ClosedStream
	}
	name, ordinal = w.substituteTaxonomy(name, ordinal)
	prefix := fieldPrefix{fixedWidth: false, hasOrdinal: ordinal != nil, hasName: name != nil,
		lengthWidth: lengthWidthFor(int(payloadLength))}
	if err := w.writeHeader(ctx, prefix, wiretype.SubMessage, ordinal, name, int(payloadLength)); err != nil {
		return err
	}
	w.depth++
	return nil
}

// WriteSubmessageEnd closes the frame opened by the matching WriteSubmessageStart. It writes nothing to
// the wire; the sub-message's length was already committed to the header written by
// WriteSubmessageStart. It exists so writer-side bracketing can be validated the same way reader-side
// bracketing is.
func (w *Writer) WriteSubmessageEnd(ctx context.Context) error {
	if w.closed {
		return wireerrors.ClosedStream
	}
	if w.depth == 0 {
		return fmt.Errorf("write submessage end: no matching start: %w", wireerrors.FramingViolation)
	}
	w.depth--
	return nil
}

func (w *Writer) substituteTaxonomy(name *string, ordinal *int16) (*string, *int16) {
	if w.tax == nil || name == nil || ordinal != nil {
		return name, ordinal
	}
	if ord, ok := w.tax.OrdinalFor(w.taxonomyID, *name); ok {
		return nil, &ord
	}
	return name, ordinal
}

func (w *Writer) writeHeader(ctx context.Context, prefix fieldPrefix, typeID uint8, ordinal *int16, name *string, payloadLen int) error {
	buf := make([]byte, 0, 8+len(derefName(name)))
	buf = append(buf, prefix.encode(), typeID)
	if ordinal != nil {
		ob := make([]byte, 2)
		binary.BigEndian.PutUint16(ob, uint16(*ordinal))
		buf = append(buf, ob...)
	}
	if name != nil {
		if len(*name) > 0xFF {
			return fmt.Errorf("field name %q is %d bytes, exceeds 255 byte limit: %w", *name, len(*name), wireerrors.FramingViolation)
		}
		buf = append(buf, byte(len(*name)))
		buf = append(buf, []byte(*name)...)
	}
	switch prefix.lengthWidth {
	case 1:
		buf = append(buf, byte(payloadLen))
	case 2:
		lb := make([]byte, 2)
		binary.BigEndian.PutUint16(lb, uint16(payloadLen))
		buf = append(buf, lb...)
	case 4:
		lb := make([]byte, 4)
		binary.BigEndian.PutUint32(lb, uint32(payloadLen))
		buf = append(buf, lb...)
	}
	return w.write(ctx, buf)
}

func derefName(name *string) string {
	if name == nil {
		return ""
	}
	return *name
}

func (w *Writer) write(ctx context.Context, b []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if _, err := w.dst.Write(b); err != nil {
		return fmt.Errorf("fudge: transport write failed: %w", err)
	}
	return nil
}

// Close releases the underlying transport exactly once; a second Close is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}

// Dictionary returns the type dictionary this writer resolves wire types against, for callers (notably
// message.Writer) that need to precompute sizes with the same dictionary.
func (w *Writer) Dictionary() *wiretype.Dictionary { return w.dict }

// TaxonomyResolver returns the taxonomy resolver this writer substitutes against, if any.
func (w *Writer) TaxonomyResolver() *taxonomy.Resolver { return w.tax }
