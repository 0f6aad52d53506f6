package message

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fudgemsg/go-fudge/internal/wireerrors"
)

func TestReader_NextMessage_MultipleEnvelopesInOneStream(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := context.Background()
	w := NewWriter(buf)
	first := New()
	require.NoError(t, first.AddNamed("a", int32(1)))
	second := New()
	require.NoError(t, second.AddNamed("b", int32(2)))
	require.NoError(t, w.WriteMessage(ctx, first, 0, 0, 0))
	require.NoError(t, w.WriteMessage(ctx, second, 0, 0, 0))

	r := NewReader(bytes.NewReader(buf.Bytes()))
	assert.True(t, r.HasNext())
	m1, _, err := r.NextMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", *m1.Fields[0].Name)

	assert.True(t, r.HasNext())
	m2, _, err := r.NextMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", *m2.Fields[0].Name)

	assert.False(t, r.HasNext())
}

func TestReader_NextMessage_EmptySource(t *testing.T) {
	r := NewReaderWithConfig(bytes.NewReader(nil), Config{})
	_, _, err := r.NextMessage(context.Background())
	assert.Error(t, err)
}

func TestReader_BuildTree_PropagatesStreamErrors(t *testing.T) {
	header := []byte{0, 0, 0, 0, 0, 0, 0, 100}
	data := append(append([]byte{}, header...), make([]byte, 10)...)

	r := NewReader(bytes.NewReader(data))
	_, _, err := r.NextMessage(context.Background())
	assert.ErrorIs(t, err, wireerrors.Truncated)
}

func TestReader_Close(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	assert.NoError(t, r.Close())
}
