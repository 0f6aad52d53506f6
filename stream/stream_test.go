package stream

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fudgemsg/go-fudge/internal/wireerrors"
	"github.com/fudgemsg/go-fudge/wiretype"
)

// Scenario 1: empty envelope.
func TestScenario1_EmptyEnvelope(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWriter(buf)
	require.NoError(t, w.WriteEnvelopeHeader(context.Background(), 0, 0, 0, 8))
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 8}, buf.Bytes())

	r := NewReader(bytes.NewReader(buf.Bytes()))
	elem, err := r.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, MessageEnvelope, elem)

	_, err = r.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

// Scenario 2: single named indicator field, envelope length 15.
func TestScenario2_NamedIndicatorField(t *testing.T) {
	buf := &bytes.Buffer{}
	name := "flag"
	w := NewWriter(buf)
	require.NoError(t, w.WriteEnvelopeHeader(context.Background(), 0, 0, 0, 15))
	require.NoError(t, w.WriteField(context.Background(), wiretype.Indicator, nil, &name, nil))
	assert.Len(t, buf.Bytes(), 15)

	r := NewReader(bytes.NewReader(buf.Bytes()))
	elem, err := r.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, MessageEnvelope, elem)

	elem, err = r.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SimpleField, elem)
	assert.Equal(t, "flag", *r.FieldName())
	assert.Nil(t, r.FieldValue())
}

// Scenario 3: ordinal=5, type=int, value 0x01020304. Field prefix resolves to 0xC0 under the bit layout
// (fixedWidth=1, hasOrdinal=1, hasName=0, lengthWidth=0), not the literal 0x40 spec.md's worked example
// shows — see DESIGN.md's "Scenario 3 discrepancy" entry.
func TestScenario3_OrdinalIntField(t *testing.T) {
	buf := &bytes.Buffer{}
	ordinal := int16(5)
	w := NewWriter(buf)
	require.NoError(t, w.WriteField(context.Background(), wiretype.Int, int32(0x01020304), nil, &ordinal))

	want := []byte{0xC0, wiretype.Int, 0x00, 0x05, 0x01, 0x02, 0x03, 0x04}
	assert.Equal(t, want, buf.Bytes())
}

// Scenario 4: sub-message containing one boolean field.
func TestScenario4_Submessage(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWriter(buf)
	ctx := context.Background()
	// submessage header (prefix + type id + 1 byte length) = 3 bytes, nested boolean field
	// (prefix + type id + 1 byte payload, fixed width so no length byte) = 3 bytes.
	require.NoError(t, w.WriteEnvelopeHeader(ctx, 0, 0, 0, 8+3+3))
	require.NoError(t, w.WriteSubmessageStart(ctx, nil, nil, 3))
	require.NoError(t, w.WriteField(ctx, wiretype.Boolean, true, nil, nil))
	require.NoError(t, w.WriteSubmessageEnd(ctx))

	r := NewReader(bytes.NewReader(buf.Bytes()))
	var seq []StreamElement
	for {
		elem, err := r.Next(ctx)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		seq = append(seq, elem)
		if elem == SimpleField {
			assert.Equal(t, true, r.FieldValue())
		}
	}
	assert.Equal(t, []StreamElement{MessageEnvelope, SubmessageFieldStart, SimpleField, SubmessageFieldEnd}, seq)
}

// Scenario 5: unknown wire type id 200 with a 3 byte payload is recovered, not fatal.
func TestScenario5_UnknownType(t *testing.T) {
	ctx := context.Background()
	prefix := fieldPrefix{fixedWidth: false, hasOrdinal: false, hasName: false, lengthWidth: 1}
	field := []byte{prefix.encode(), 200, 3, 'a', 'b', 'c'}
	header := []byte{0, 0, 0, 0, 0, 0, 0, byte(8 + len(field))}
	data := append(append([]byte{}, header...), field...)

	r := NewReader(bytes.NewReader(data))
	_, err := r.Next(ctx)
	require.NoError(t, err)

	elem, err := r.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, SimpleField, elem)
	assert.Equal(t, []byte("abc"), r.FieldValue())

	_, err = r.Next(ctx)
	assert.ErrorIs(t, err, io.EOF, "hasNext continues normally after recovering the unknown field")
}

// Scenario 6: truncated stream raises Truncated once the reader runs out of the promised 100 bytes with
// only 50 supplied.
func TestScenario6_TruncatedStream(t *testing.T) {
	header := []byte{0, 0, 0, 0, 0, 0, 0, 100}
	data := append(append([]byte{}, header...), make([]byte, 50)...)

	ctx := context.Background()
	r := NewReader(bytes.NewReader(data))
	_, err := r.Next(ctx)
	require.NoError(t, err)

	var lastErr error
	for i := 0; i < 100; i++ {
		_, lastErr = r.Next(ctx)
		if lastErr != nil {
			break
		}
	}
	assert.ErrorIs(t, lastErr, wireerrors.Truncated)
}

func TestReader_Close_Idempotent(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	assert.NoError(t, r.Close())
	assert.NoError(t, r.Close())
}
