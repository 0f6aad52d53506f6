// Package message holds the Fudge field/message data model (Field, Message) and the MessageReader/
// MessageWriter facade that buffers stream.Reader/stream.Writer events into, or out of, a whole message
// tree. It is the one package that owns the Message type, so the root fudge package and the fudgejson
// package both depend on it rather than on each other.
//
// Grounded on aldas-go-nmea-client/canboat/decoder.go's recursive tree-building decode
// (decode/decodeWithRepeatedFields/postProcessFields) for the reassembly side, and on its FieldValues type
// for the plain ordered-fields container.
package message

import (
	"fmt"

	"github.com/fudgemsg/go-fudge/internal/wireerrors"
)

// MaxFieldsPerMessage is the short-count ceiling from the wire format: no message may carry 32768 or more
// fields.
const MaxFieldsPerMessage = 32767

// Field is a single tagged value inside a Message. A field is identified on the wire by its type, and
// optionally by a Name, an Ordinal, or both. Fields with neither are legal: they are "anonymous" and can
// only be recovered positionally.
//
// Field is immutable from the point of view of a Writer: once handed to Writer.WriteMessage the caller
// must not mutate Value.
type Field struct {
	// Type is the wire type id this field was read as. On decode it always reflects the byte actually
	// seen on the wire, even for unknown wire types. Writer ignores it: the wire type written is resolved
	// from Value through the type dictionary.
	Type uint8
	// Value holds the decoded (or to-be-encoded) payload. For the sub-message wire type it is a *Message,
	// for array types it is a slice of the matching Go element type, otherwise it is the natural Go value
	// (bool, int8, int16, int32, int64, float32, float64, string, []byte, time values).
	Value interface{}

	// Name is the field's textual name, if transmitted. nil when the field carries no name.
	Name *string
	// Ordinal is the field's numeric short-name, if transmitted. nil when the field carries no ordinal.
	Ordinal *int16
}

// HasName reports whether the field carries a name.
func (f Field) HasName() bool { return f.Name != nil }

// HasOrdinal reports whether the field carries an ordinal.
func (f Field) HasOrdinal() bool { return f.Ordinal != nil }

// NameOrEmpty returns the field's name, or "" when it has none.
func (f Field) NameOrEmpty() string {
	if f.Name == nil {
		return ""
	}
	return *f.Name
}

// String renders the field for debugging. It is not used for wire output.
func (f Field) String() string {
	ord := "-"
	if f.Ordinal != nil {
		ord = fmt.Sprintf("%d", *f.Ordinal)
	}
	name := "-"
	if f.Name != nil {
		name = *f.Name
	}
	return fmt.Sprintf("Field{type=%d, ordinal=%s, name=%s, value=%v}", f.Type, ord, name, f.Value)
}

// Name builds a *string out of a plain string, the shape Field.Name expects.
func Name(name string) *string { return &name }

// Ordinal builds a *int16 out of a plain integer, the shape Field.Ordinal expects.
func Ordinal(ordinal int16) *int16 { return &ordinal }

// Message is an ordered, mutable sequence of fields. A Message is not a map: duplicate names and duplicate
// ordinals are legal and order is significant. Messages are produced by Context.NewMessage and consumed by
// Writer; a Message handed to a writer must not be mutated concurrently.
type Message struct {
	Fields []Field
}

// New returns an empty, ready-to-use Message.
func New() *Message {
	return &Message{Fields: make([]Field, 0, 8)}
}

// Add appends a field and reports ErrCapacityExceeded if doing so would exceed MaxFieldsPerMessage.
func (m *Message) Add(f Field) error {
	if len(m.Fields) >= MaxFieldsPerMessage {
		return fmt.Errorf("add field %q: %w", f.NameOrEmpty(), wireerrors.CapacityExceeded)
	}
	m.Fields = append(m.Fields, f)
	return nil
}

// AddNamed appends a value under the given name. Type resolution happens at encode time against the
// context's type dictionary.
func (m *Message) AddNamed(name string, value interface{}) error {
	return m.Add(Field{Value: value, Name: Name(name)})
}

// AddOrdinal appends a value under the given ordinal.
func (m *Message) AddOrdinal(ordinal int16, value interface{}) error {
	return m.Add(Field{Value: value, Ordinal: Ordinal(ordinal)})
}

// RemoveByName removes all fields with the given name and reports how many were removed.
func (m *Message) RemoveByName(name string) int {
	kept := m.Fields[:0]
	removed := 0
	for _, f := range m.Fields {
		if f.Name != nil && *f.Name == name {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	m.Fields = kept
	return removed
}

// GetAllByName returns, in wire order, every field whose Name equals name. Fudge messages may legally
// contain repeated names, so this returns a slice rather than a single value.
func (m *Message) GetAllByName(name string) []Field {
	result := make([]Field, 0, 1)
	for _, f := range m.Fields {
		if f.Name != nil && *f.Name == name {
			result = append(result, f)
		}
	}
	return result
}

// GetByOrdinal returns the first field with the given ordinal.
func (m *Message) GetByOrdinal(ordinal int16) (Field, bool) {
	for _, f := range m.Fields {
		if f.Ordinal != nil && *f.Ordinal == ordinal {
			return f, true
		}
	}
	return Field{}, false
}
