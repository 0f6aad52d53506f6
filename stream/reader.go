package stream

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fudgemsg/go-fudge/internal/wireerrors"
	"github.com/fudgemsg/go-fudge/taxonomy"
	"github.com/fudgemsg/go-fudge/wiretype"
)

// frame tracks how many payload bytes remain at one nesting level: the outermost frame is the envelope
// body, every sub-message field pushes one more.
type frame struct {
	remaining int64
}

// ReaderConfig configures a Reader. A zero Config is valid: it builds a fresh standard Dictionary and
// performs no taxonomy substitution.
type ReaderConfig struct {
	Dictionary *wiretype.Dictionary
	Taxonomy   *taxonomy.Resolver
}

// Reader is the pull-style binary stream parser described by the format: each call to Next advances by
// exactly one StreamElement. Reader is single-threaded: one goroutine at a time may call Next.
type Reader struct {
	src  *bufio.Reader
	dict *wiretype.Dictionary
	tax  *taxonomy.Resolver

	closer io.Closer
	closed bool

	inBody bool
	frames []frame

	current      StreamElement
	fieldName    *string
	fieldOrdinal *int16
	fieldType    uint8
	fieldValue   interface{}

	processingDirectives uint8
	schemaVersion        uint8
	taxonomyID           int16
}

// NewReader returns a Reader over src using a fresh standard Dictionary and no taxonomy substitution.
func NewReader(src io.Reader) *Reader {
	return NewReaderWithConfig(src, ReaderConfig{})
}

// NewReaderWithConfig returns a Reader over src configured per cfg. If src also implements io.Closer,
// Close propagates to it.
func NewReaderWithConfig(src io.Reader, cfg ReaderConfig) *Reader {
	dict := cfg.Dictionary
	if dict == nil {
		dict = wiretype.NewDictionary()
	}
	closer, _ := src.(io.Closer)
	return &Reader{
		src:    bufio.NewReader(src),
		dict:   dict,
		tax:    cfg.Taxonomy,
		closer: closer,
	}
}

// HasNext reports whether a subsequent Next call can produce another element. Between messages this peeks
// the underlying source for more bytes; within a message it is always true until the outermost frame
// closes.
func (r *Reader) HasNext() bool {
	if r.closed {
		return false
	}
	if r.inBody {
		return true
	}
	_, err := r.src.Peek(1)
	return err == nil
}

// Next advances the parser by one element. ctx is checked cooperatively before each blocking read; it does
// not interrupt a read already in flight.
func (r *Reader) Next(ctx context.Context) (StreamElement, error) {
	if r.closed {
		return 0, wireerrors.ClosedStream
	}
	if !r.inBody {
		return r.readEnvelope(ctx)
	}
	return r.readBodyElement(ctx)
}

func (r *Reader) readEnvelope(ctx context.Context) (StreamElement, error) {
	hdr, err := r.readFull(ctx, 8)
	if err != nil {
		return 0, err
	}
	totalLength := int32(binary.BigEndian.Uint32(hdr[4:8]))
	if totalLength < 8 {
		return 0, fmt.Errorf("envelope declares totalLength %d: %w", totalLength, wireerrors.FramingViolation)
	}
	r.processingDirectives = hdr[0]
	r.schemaVersion = hdr[1]
	r.taxonomyID = int16(binary.BigEndian.Uint16(hdr[2:4]))

	r.frames = append(r.frames[:0], frame{remaining: int64(totalLength) - 8})
	r.inBody = true
	r.current = MessageEnvelope
	r.fieldName, r.fieldOrdinal, r.fieldValue = nil, nil, nil
	r.fieldType = 0
	return MessageEnvelope, nil
}

func (r *Reader) readBodyElement(ctx context.Context) (StreamElement, error) {
	for {
		if len(r.frames) == 0 {
			r.inBody = false
			return 0, io.EOF
		}
		top := &r.frames[len(r.frames)-1]
		if top.remaining > 0 {
			break
		}
		r.frames = r.frames[:len(r.frames)-1]
		if len(r.frames) == 0 {
			r.inBody = false
			return 0, io.EOF
		}
		r.current = SubmessageFieldEnd
		r.fieldName, r.fieldOrdinal, r.fieldValue = nil, nil, nil
		return SubmessageFieldEnd, nil
	}
	return r.readField(ctx)
}

func (r *Reader) readField(ctx context.Context) (StreamElement, error) {
	top := &r.frames[len(r.frames)-1]

	prefixByte, err := r.readFull(ctx, 1)
	if err != nil {
		return 0, err
	}
	prefix := decodeFieldPrefix(prefixByte[0])
	consumed := int64(1)

	typeByte, err := r.readFull(ctx, 1)
	if err != nil {
		return 0, err
	}
	typeID := typeByte[0]
	consumed++

	var ordinal *int16
	if prefix.hasOrdinal {
		b, err := r.readFull(ctx, 2)
		if err != nil {
			return 0, err
		}
		v := int16(binary.BigEndian.Uint16(b))
		ordinal = &v
		consumed += 2
	}

	var name *string
	if prefix.hasName {
		lb, err := r.readFull(ctx, 1)
		if err != nil {
			return 0, err
		}
		nameLen := int(lb[0])
		consumed++
		if int64(nameLen) > top.remaining-consumed {
			return 0, fmt.Errorf("name length %d overlaps remaining frame bytes: %w", nameLen, wireerrors.FramingViolation)
		}
		nb, err := r.readFull(ctx, nameLen)
		if err != nil {
			return 0, err
		}
		s := string(nb)
		name = &s
		consumed += int64(nameLen)
	}

	wt, known := r.dict.Lookup(typeID)

	var payloadLen int64
	if prefix.lengthWidth == 0 {
		if !known || !wt.FixedWidth {
			return 0, fmt.Errorf("field prefix claims fixed width for unrecognized type %d: %w", typeID, wireerrors.FramingViolation)
		}
		payloadLen = int64(wt.FixedSize)
	} else {
		lb, err := r.readFull(ctx, prefix.lengthWidth)
		if err != nil {
			return 0, err
		}
		consumed += int64(prefix.lengthWidth)
		switch prefix.lengthWidth {
		case 1:
			payloadLen = int64(lb[0])
		case 2:
			payloadLen = int64(binary.BigEndian.Uint16(lb))
		case 4:
			payloadLen = int64(binary.BigEndian.Uint32(lb))
		}
	}

	if consumed+payloadLen > top.remaining {
		return 0, fmt.Errorf("field of %d bytes exceeds %d remaining in frame: %w", consumed+payloadLen, top.remaining, wireerrors.FramingViolation)
	}
	top.remaining -= consumed + payloadLen

	r.fieldType = typeID
	r.fieldOrdinal = ordinal
	r.fieldName = name
	if r.tax != nil && ordinal != nil && name == nil {
		if resolved, ok := r.tax.NameFor(r.taxonomyID, *ordinal); ok {
			r.fieldName = &resolved
		}
	}

	if known && wt.IsContainer {
		r.frames = append(r.frames, frame{remaining: payloadLen})
		r.fieldValue = nil
		r.current = SubmessageFieldStart
		return SubmessageFieldStart, nil
	}

	payload, err := r.readFull(ctx, int(payloadLen))
	if err != nil {
		return 0, err
	}

	if !known {
		// UnknownType is recovered, not fatal: preserve the opaque bytes and carry on.
		r.fieldValue = append([]byte(nil), payload...)
		r.current = SimpleField
		return SimpleField, nil
	}

	value, err := wt.Decode(payload)
	if err != nil {
		return 0, fmt.Errorf("decode type %d: %v: %w", typeID, err, wireerrors.FramingViolation)
	}
	r.fieldValue = value
	r.current = SimpleField
	return SimpleField, nil
}

// readFull reads exactly n bytes, cooperatively checking ctx before the read and translating a short read
// into Truncated.
func (r *Reader) readFull(ctx context.Context, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.src, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("read %d bytes: %w", n, wireerrors.Truncated)
		}
		return nil, fmt.Errorf("fudge: transport read failed: %w", err)
	}
	return buf, nil
}

// Close releases the underlying transport exactly once; a second Close is a no-op.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// CurrentElement returns the StreamElement produced by the most recent Next call.
func (r *Reader) CurrentElement() StreamElement { return r.current }

// FieldName returns the current field's name, or nil if it has none (or taxonomy substitution did not
// resolve one).
func (r *Reader) FieldName() *string { return r.fieldName }

// FieldOrdinal returns the current field's ordinal, or nil if it has none.
func (r *Reader) FieldOrdinal() *int16 { return r.fieldOrdinal }

// FieldType returns the current field's wire type id. Meaningless for MessageEnvelope.
func (r *Reader) FieldType() uint8 { return r.fieldType }

// FieldValue returns the current field's decoded value. nil for MessageEnvelope, SubmessageFieldStart and
// SubmessageFieldEnd.
func (r *Reader) FieldValue() interface{} { return r.fieldValue }

// ProcessingDirectives returns the envelope's processingDirectives byte.
func (r *Reader) ProcessingDirectives() uint8 { return r.processingDirectives }

// SchemaVersion returns the envelope's schemaVersion byte.
func (r *Reader) SchemaVersion() uint8 { return r.schemaVersion }

// TaxonomyID returns the envelope's taxonomyId.
func (r *Reader) TaxonomyID() int16 { return r.taxonomyID }
