package message

import (
	"context"
	"fmt"
	"io"

	"github.com/fudgemsg/go-fudge/stream"
	"github.com/fudgemsg/go-fudge/taxonomy"
	"github.com/fudgemsg/go-fudge/wiretype"
)

// Writer wraps a tree of fields in an envelope and emits it, precomputing every length a sub-message or
// the envelope itself needs before any byte reaches the wire. Grounded on
// aldas-go-nmea-client/actisense/binaryreader.go's writeBstMessage, which computes its own checksum/length
// trailer before writing a frame the same way this precomputes totalLength before WriteEnvelopeHeader.
type Writer struct {
	sw   *stream.Writer
	dict *wiretype.Dictionary
	tax  *taxonomy.Resolver
}

// NewWriter returns a Writer over dst using a fresh standard Dictionary and no taxonomy substitution.
func NewWriter(dst io.Writer) *Writer {
	return NewWriterWithConfig(dst, Config{})
}

// NewWriterWithConfig returns a Writer over dst configured per cfg.
func NewWriterWithConfig(dst io.Writer, cfg Config) *Writer {
	dict := cfg.dictionary()
	return &Writer{
		sw:   stream.NewWriterWithConfig(dst, stream.WriterConfig{Dictionary: dict, Taxonomy: cfg.Taxonomy}),
		dict: dict,
		tax:  cfg.Taxonomy,
	}
}

// WriteMessage wraps msg in an envelope built from directives/version/taxonomyID and emits it.
func (w *Writer) WriteMessage(ctx context.Context, msg *Message, directives, version uint8, taxonomyID int16) error {
	bodySize, err := sizeOfMessageBody(w.dict, w.tax, taxonomyID, msg)
	if err != nil {
		return err
	}
	totalLength := int32(8 + bodySize)
	if err := w.sw.WriteEnvelopeHeader(ctx, directives, version, taxonomyID, totalLength); err != nil {
		return err
	}
	return w.writeFields(ctx, msg.Fields, taxonomyID)
}

func (w *Writer) writeFields(ctx context.Context, fields []Field, taxonomyID int16) error {
	for _, f := range fields {
		if sub, ok := f.Value.(*Message); ok {
			bodySize, err := sizeOfMessageBody(w.dict, w.tax, taxonomyID, sub)
			if err != nil {
				return err
			}
			if err := w.sw.WriteSubmessageStart(ctx, f.Name, f.Ordinal, int32(bodySize)); err != nil {
				return err
			}
			if err := w.writeFields(ctx, sub.Fields, taxonomyID); err != nil {
				return err
			}
			if err := w.sw.WriteSubmessageEnd(ctx); err != nil {
				return err
			}
			continue
		}

		wt, err := w.dict.ResolveValue(f.Value)
		if err != nil {
			return fmt.Errorf("write field %q: %w", f.NameOrEmpty(), err)
		}
		if err := w.sw.WriteField(ctx, wt.ID, f.Value, f.Name, f.Ordinal); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying transport exactly once.
func (w *Writer) Close() error { return w.sw.Close() }
