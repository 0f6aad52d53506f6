package message

import (
	"fmt"

	"github.com/fudgemsg/go-fudge/internal/wireerrors"
	"github.com/fudgemsg/go-fudge/taxonomy"
	"github.com/fudgemsg/go-fudge/wiretype"
)

// lengthWidthFor picks the narrowest byte width that can hold n. It must stay in lockstep with
// stream.lengthWidthFor: this package precomputes the length Writer.WriteSubmessageStart is told to use,
// and Writer independently recomputes the same width when it actually serializes a field, so both sides
// have to reach the same answer for the two to agree on where field boundaries fall.
func lengthWidthFor(n int) int {
	switch {
	case n <= 0xFF:
		return 1
	case n <= 0xFFFF:
		return 2
	default:
		return 4
	}
}

// sizeOfMessageBody returns the encoded byte length of msg's fields, with no envelope or sub-message
// header of its own — the same quantity a sub-message field's payload length must equal.
func sizeOfMessageBody(dict *wiretype.Dictionary, tax *taxonomy.Resolver, taxonomyID int16, msg *Message) (int, error) {
	total := 0
	for _, f := range msg.Fields {
		size, err := sizeOfField(dict, tax, taxonomyID, f)
		if err != nil {
			return 0, err
		}
		total += size
	}
	return total, nil
}

// sizeOfField returns one field's total encoded size: prefix byte + type id + optional ordinal + optional
// name + optional length + payload.
func sizeOfField(dict *wiretype.Dictionary, tax *taxonomy.Resolver, taxonomyID int16, f Field) (int, error) {
	name, ordinal := f.Name, f.Ordinal
	if tax != nil && name != nil && ordinal == nil {
		if ord, ok := tax.OrdinalFor(taxonomyID, *name); ok {
			ordinal = &ord
			name = nil
		}
	}

	header := 2 // prefix byte + type id
	if ordinal != nil {
		header += 2
	}
	if name != nil {
		if len(*name) > 0xFF {
			return 0, fmt.Errorf("field name %q is %d bytes, exceeds 255 byte limit: %w", *name, len(*name), wireerrors.FramingViolation)
		}
		header += 1 + len(*name)
	}

	if sub, ok := f.Value.(*Message); ok {
		bodySize, err := sizeOfMessageBody(dict, tax, taxonomyID, sub)
		if err != nil {
			return 0, err
		}
		header += lengthWidthFor(bodySize)
		return header + bodySize, nil
	}

	wt, err := dict.ResolveValue(f.Value)
	if err != nil {
		return 0, fmt.Errorf("size of field %q: %v: %w", f.NameOrEmpty(), err, wireerrors.TypeMismatch)
	}
	if wt.FixedWidth {
		return header + wt.FixedSize, nil
	}
	payloadSize, err := wt.SizeOf(f.Value)
	if err != nil {
		return 0, fmt.Errorf("size of field %q: %v: %w", f.NameOrEmpty(), err, wireerrors.TypeMismatch)
	}
	header += lengthWidthFor(payloadSize)
	return header + payloadSize, nil
}
