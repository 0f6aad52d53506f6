package message

import (
	"bytes"
	"context"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fudgemsg/go-fudge/taxonomy"
)

// equalValue compares two decoded field values, normalizing integers to int64 first: a written int32 may
// come back as whatever fixed-width type the dictionary narrowed it to (int8, int16 or int32).
func equalValue(a, b interface{}) bool {
	av, aIsInt := asInt64(a)
	bv, bIsInt := asInt64(b)
	if aIsInt && bIsInt {
		return av == bv
	}
	return reflect.DeepEqual(a, b)
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

func roundTrip(t *testing.T, cfg Config, in *Message) (*Message, Envelope) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := NewWriterWithConfig(buf, cfg)
	ctx := context.Background()
	require.NoError(t, w.WriteMessage(ctx, in, 0, 0, cfg.taxonomyID()))
	require.NoError(t, w.Close())

	r := NewReaderWithConfig(bytes.NewReader(buf.Bytes()), cfg)
	out, env, err := r.NextMessage(ctx)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	return out, env
}

// taxonomyID lets tests drive WriteMessage's taxonomyID parameter from the same Config used to build the
// Writer/Reader pair, without adding a field Config itself has no use for.
func (c Config) taxonomyID() int16 {
	if c.Taxonomy == nil {
		return 0
	}
	return 1
}

func TestWriter_RoundTrip_FlatMessage(t *testing.T) {
	in := New()
	require.NoError(t, in.AddNamed("name", "hello"))
	require.NoError(t, in.AddOrdinal(7, int32(42)))
	require.NoError(t, in.Add(Field{Value: true}))

	out, _ := roundTrip(t, Config{}, in)
	if diff := cmp.Diff(in.Fields, out.Fields, cmp.Comparer(func(a, b Field) bool {
		return equalValue(a.Value, b.Value) && equalStrPtr(a.Name, b.Name) && equalOrdPtr(a.Ordinal, b.Ordinal)
	})); diff != "" {
		t.Errorf("round trip mismatch (-in +out):\n%s", diff)
	}
}

func TestWriter_RoundTrip_NestedSubmessage(t *testing.T) {
	in := New()
	sub := New()
	require.NoError(t, sub.AddNamed("inner", int32(9)))
	require.NoError(t, in.Add(Field{Value: sub, Name: Name("child")}))

	out, _ := roundTrip(t, Config{}, in)
	require.Len(t, out.Fields, 1)
	child, ok := out.Fields[0].Value.(*Message)
	require.True(t, ok, "nested field decodes back to a *Message")
	require.Len(t, child.Fields, 1)
	assert.Equal(t, "inner", *child.Fields[0].Name)
	assert.EqualValues(t, 9, child.Fields[0].Value)
}

func TestWriter_RoundTrip_TaxonomySubstitution(t *testing.T) {
	tax := taxonomy.NewResolver()
	tax.Register(1, taxonomy.NewTable([]taxonomy.Entry{{Ordinal: 7, Name: "price"}}))
	cfg := Config{Taxonomy: tax}

	in := New()
	require.NoError(t, in.AddNamed("price", int32(100)))

	out, env := roundTrip(t, cfg, in)
	assert.Equal(t, int16(1), env.TaxonomyID)
	require.Len(t, out.Fields, 1)
	// the writer substitutes name "price" for ordinal 7 on the wire; the reader, given the same taxonomy,
	// resolves ordinal 7 back to "price", so the name survives the round trip even though it never
	// travelled on the wire.
	require.NotNil(t, out.Fields[0].Name)
	assert.Equal(t, "price", *out.Fields[0].Name)
	require.NotNil(t, out.Fields[0].Ordinal)
	assert.Equal(t, int16(7), *out.Fields[0].Ordinal)
}

func TestWriter_Envelope_CarriesDirectivesAndVersion(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWriter(buf)
	ctx := context.Background()
	require.NoError(t, w.WriteMessage(ctx, New(), 3, 5, 42))

	r := NewReader(bytes.NewReader(buf.Bytes()))
	_, env, err := r.NextMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint8(3), env.ProcessingDirectives)
	assert.Equal(t, uint8(5), env.SchemaVersion)
	assert.Equal(t, int16(42), env.TaxonomyID)
}

func equalStrPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalOrdPtr(a, b *int16) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
