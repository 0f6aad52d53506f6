package fudge

import "github.com/fudgemsg/go-fudge/message"

// Field, Message and their constructors live in package message so that the message, fudgejson and stream
// packages can share them without importing this root package. Aliased here so fudge.Field, fudge.Message
// and friends remain the public entry points a caller reaches for first.
type (
	Field   = message.Field
	Message = message.Message
)

// MaxFieldsPerMessage is the short-count ceiling from the wire format: no message may carry 32768 or more
// fields.
const MaxFieldsPerMessage = message.MaxFieldsPerMessage

// NewMessage returns an empty, ready-to-use Message.
func NewMessage() *Message { return message.New() }

// FieldName builds a *string out of a plain string, the shape Field.Name expects.
func FieldName(name string) *string { return message.Name(name) }

// FieldOrdinal builds a *int16 out of a plain integer, the shape Field.Ordinal expects.
func FieldOrdinal(ordinal int16) *int16 { return message.Ordinal(ordinal) }
