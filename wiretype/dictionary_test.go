package wiretype

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDictionary_NarrowInteger(t *testing.T) {
	d := NewDictionary()

	tests := []struct {
		name   string
		value  int64
		wantID uint8
	}{
		{"zero", 0, Byte},
		{"one", 1, Byte},
		{"minus one", -1, Byte},
		{"byte max", 127, Byte},
		{"byte max plus one", 128, Short},
		{"byte min", -128, Byte},
		{"byte min minus one", -129, Short},
		{"short max", 32767, Short},
		{"short max plus one", 32768, Int},
		{"int max", 1<<31 - 1, Int},
		{"int max plus one", 1 << 31, Long},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wt := d.NarrowInteger(tc.value)
			assert.Equal(t, tc.wantID, wt.ID)
		})
	}
}

func TestDictionary_BestMatchByteArray(t *testing.T) {
	d := NewDictionary()

	fixed := []struct {
		length int
		wantID uint8
	}{
		{4, ByteArray4},
		{8, ByteArray8},
		{16, ByteArray16},
		{20, ByteArray20},
		{32, ByteArray32},
		{64, ByteArray64},
		{128, ByteArray128},
		{256, ByteArray256},
		{512, ByteArray512},
	}
	for _, tc := range fixed {
		wt := d.BestMatchByteArray(tc.length)
		assert.Equal(t, tc.wantID, wt.ID, "length %d", tc.length)
	}

	nonMatching := []int{0, 1, 3, 5, 17, 63, 513, 1000}
	for _, length := range nonMatching {
		wt := d.BestMatchByteArray(length)
		assert.Equal(t, VarByteArray, wt.ID, "length %d should fall back to variable byte array", length)
	}
}

func TestDictionary_ResolveValue(t *testing.T) {
	d := NewDictionary()

	tests := []struct {
		name   string
		value  interface{}
		wantID uint8
	}{
		{"nil", nil, Indicator},
		{"bool", true, Boolean},
		{"narrow int32", int32(5), Byte},
		{"wide int32", int32(70000), Int},
		{"float32", float32(1.5), Float},
		{"float64", float64(1.5), Double},
		{"string", "hello", String},
		{"4 byte array", make([]byte, 4), ByteArray4},
		{"odd length byte array", make([]byte, 3), VarByteArray},
		{"int16 array", []int16{1, 2, 3}, ShortArray},
		{"int32 array", []int32{1, 2, 3}, IntArray},
		{"int64 array", []int64{1, 2, 3}, LongArray},
		{"float32 array", []float32{1, 2}, FloatArray},
		{"float64 array", []float64{1, 2}, DoubleArray},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wt, err := d.ResolveValue(tc.value)
			assert.NoError(t, err)
			assert.Equal(t, tc.wantID, wt.ID)
		})
	}
}

func TestDictionary_ResolveValue_TypeMismatch(t *testing.T) {
	d := NewDictionary()
	_, err := d.ResolveValue(struct{}{})
	assert.Error(t, err)
}

func TestDictionary_Register(t *testing.T) {
	d := NewDictionary()

	err := d.Register(WireType{ID: Boolean, Name: "oops"})
	assert.ErrorIs(t, err, ErrReservedID)

	custom := WireType{ID: 40, Name: "custom",
		Encode: func(v interface{}) ([]byte, error) { return []byte{1}, nil },
		Decode: func(p []byte) (interface{}, error) { return true, nil },
	}
	assert.NoError(t, d.Register(custom))

	err = d.Register(custom)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	wt, ok := d.Lookup(40)
	assert.True(t, ok)
	assert.Equal(t, "custom", wt.Name)
}

func TestDateTimeRoundTrip(t *testing.T) {
	d := NewDictionary()

	date, ok := d.Lookup(DateType)
	if !ok {
		t.Fatal("date type not registered")
	}
	in := DateValue(time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC))
	encoded, err := date.Encode(in)
	assert.NoError(t, err)
	assert.Len(t, encoded, 4)
	decoded, err := date.Decode(encoded)
	assert.NoError(t, err)
	assert.Equal(t, in, decoded)

	timeOfDay, ok := d.Lookup(TimeType)
	if !ok {
		t.Fatal("time type not registered")
	}
	tin := TimeOfDay(13*time.Hour + 4*time.Minute + 5*time.Second)
	encoded, err = timeOfDay.Encode(tin)
	assert.NoError(t, err)
	assert.Len(t, encoded, 8)
	decoded, err = timeOfDay.Decode(encoded)
	assert.NoError(t, err)
	assert.Equal(t, tin, decoded)

	dt, ok := d.Lookup(DateTimeType)
	if !ok {
		t.Fatal("datetime type not registered")
	}
	dtin := time.Date(2024, time.March, 15, 13, 4, 5, 0, time.UTC)
	encoded, err = dt.Encode(dtin)
	assert.NoError(t, err)
	assert.Len(t, encoded, 12)
	decoded, err = dt.Decode(encoded)
	assert.NoError(t, err)
	assert.Equal(t, dtin, decoded)
}

func TestNumericArrayRoundTrip(t *testing.T) {
	d := NewDictionary()

	tests := []struct {
		name string
		id   uint8
		in   interface{}
	}{
		{"short[]", ShortArray, []int16{1, -2, 32767}},
		{"int[]", IntArray, []int32{1, -2, 1 << 20}},
		{"long[]", LongArray, []int64{1, -2, 1 << 40}},
		{"float[]", FloatArray, []float32{1.5, -2.5}},
		{"double[]", DoubleArray, []float64{1.5, -2.5}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wt, ok := d.Lookup(tc.id)
			if !ok {
				t.Fatalf("type %d not registered", tc.id)
			}
			encoded, err := wt.Encode(tc.in)
			assert.NoError(t, err)
			decoded, err := wt.Decode(encoded)
			assert.NoError(t, err)
			assert.Equal(t, tc.in, decoded)
		})
	}
}
