// Package wiretype implements the Fudge type dictionary: the registry mapping wire type ids to codecs,
// and the reverse lookup from a native Go value to the wire type that best represents it.
//
// Grounded on the canboat.PGNs/Field type registry (aldas-go-nmea-client/canboat/canboatpgns.go) which
// keys a set of typed field decoders by a FieldType tag the same way this dictionary keys codecs by a
// wire type id, and on canboat/enum.go's flat registry-with-FindValue style for the lookup helpers.
package wiretype

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

// Standard wire type ids. Ids 0-31 are reserved for the built-in types below; a Dictionary rejects
// attempts to register custom codecs inside that range.
const (
	Indicator      uint8 = 0
	Boolean        uint8 = 1
	Byte           uint8 = 2
	Short          uint8 = 3
	Int            uint8 = 4
	Long           uint8 = 5
	Float          uint8 = 6
	Double         uint8 = 7
	ByteArray4     uint8 = 8
	ByteArray8     uint8 = 9
	ByteArray16    uint8 = 10
	ByteArray20    uint8 = 11
	ByteArray32    uint8 = 12
	ByteArray64    uint8 = 13
	ByteArray128   uint8 = 14
	VarByteArray   uint8 = 15
	String         uint8 = 16
	ShortArray     uint8 = 17
	IntArray       uint8 = 18
	LongArray      uint8 = 19
	FloatArray     uint8 = 20
	SubMessage     uint8 = 21
	DoubleArray    uint8 = 22
	FudgeMsgWithID uint8 = 23
	DateType       uint8 = 24
	TimeType       uint8 = 25
	DateTimeType   uint8 = 26
	ByteArray256   uint8 = 27
	ByteArray512   uint8 = 28

	// ReservedRangeEnd is the last id reserved for standard types. Custom types must register above it.
	ReservedRangeEnd uint8 = 31
)

// fixedByteArraySizes lists, in ascending order, every byte array length that has a dedicated fixed-width
// wire type. A length not in this list falls back to VarByteArray.
var fixedByteArraySizes = []struct {
	size int
	id   uint8
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

var (
	// ErrReservedID is returned by Register when the caller tries to register a codec inside the
	// reserved 0-31 range.
	ErrReservedID = errors.New("wiretype: ids 0-31 are reserved for standard types")
	// ErrAlreadyRegistered is returned by Register when the id is already taken.
	ErrAlreadyRegistered = errors.New("wiretype: id already registered")
)

// WireType is a registered codec: how to turn a wire payload into a Go value and back, plus how to size
// the payload before it is written.
type WireType struct {
	ID         uint8
	Name       string
	FixedWidth bool
	// FixedSize is the payload size in bytes when FixedWidth is true; meaningless otherwise.
	FixedSize int
	// IsContainer marks types whose payload is itself a nested message (sub-message, fudge-msg-with-id).
	// The stream/message layers handle framing for these directly; Encode/Decode/SizeOf are nil.
	IsContainer bool

	Encode func(value interface{}) ([]byte, error)
	Decode func(payload []byte) (interface{}, error)
	// SizeOf returns the payload size for a variable width type. Fixed width types never call this.
	SizeOf func(value interface{}) (int, error)
}

// Dictionary is a registry of wire types, extensible beyond the reserved range. A Dictionary is safe for
// concurrent reads once built; Register is not safe to call concurrently with lookups.
type Dictionary struct {
	byID map[uint8]*WireType
}

// NewDictionary returns a Dictionary pre-loaded with every standard wire type.
func NewDictionary() *Dictionary {
	d := &Dictionary{byID: make(map[uint8]*WireType, 40)}
	for _, wt := range standardTypes() {
		wt := wt
		d.byID[wt.ID] = &wt
	}
	return d
}

// Register adds a custom wire type codec. The id must be above ReservedRangeEnd.
func (d *Dictionary) Register(wt WireType) error {
	if wt.ID <= ReservedRangeEnd {
		return fmt.Errorf("register type %q at id %d: %w", wt.Name, wt.ID, ErrReservedID)
	}
	if _, ok := d.byID[wt.ID]; ok {
		return fmt.Errorf("register type %q at id %d: %w", wt.Name, wt.ID, ErrAlreadyRegistered)
	}
	d.byID[wt.ID] = &wt
	return nil
}

// Lookup returns the wire type registered under id, if any.
func (d *Dictionary) Lookup(id uint8) (*WireType, bool) {
	wt, ok := d.byID[id]
	return wt, ok
}

// BestMatchByteArray returns the narrowest fixed-length byte array type that exactly fits length, or
// VarByteArray when no fixed-length type matches.
func (d *Dictionary) BestMatchByteArray(length int) *WireType {
	for _, entry := range fixedByteArraySizes {
		if entry.size == length {
			wt, _ := d.Lookup(entry.id)
			return wt
		}
	}
	wt, _ := d.Lookup(VarByteArray)
	return wt
}

// NarrowInteger returns the narrowest standard integer wire type whose range losslessly represents v.
func (d *Dictionary) NarrowInteger(v int64) *WireType {
	var id uint8
	switch {
	case v >= math.MinInt8 && v <= math.MaxInt8:
		id = Byte
	case v >= math.MinInt16 && v <= math.MaxInt16:
		id = Short
	case v >= math.MinInt32 && v <= math.MaxInt32:
		id = Int
	default:
		id = Long
	}
	wt, _ := d.Lookup(id)
	return wt
}

// DateValue, TimeOfDay and a bare time.Time let a caller be explicit about which of the three temporal
// wire types (date-only, time-only, date+time) a value should be encoded as. A bare time.Time always
// resolves to DateTimeType; wrap it in DateValue or TimeOfDay to pick one of the narrower types.
type DateValue time.Time
type TimeOfDay time.Duration

// ResolveValue resolves a native Go value to the wire type that best represents it for encoding. Package
// message wraps an error from here with TypeMismatch (fudge.ErrTypeMismatch) when it sizes a message; this
// package reports a plain error so it has no dependency on the root package.
func (d *Dictionary) ResolveValue(value interface{}) (*WireType, error) {
	switch v := value.(type) {
	case nil:
		wt, _ := d.Lookup(Indicator)
		return wt, nil
	case bool:
		wt, _ := d.Lookup(Boolean)
		return wt, nil
	case int8:
		return d.NarrowInteger(int64(v)), nil
	case int16:
		return d.NarrowInteger(int64(v)), nil
	case int32:
		return d.NarrowInteger(int64(v)), nil
	case int64:
		return d.NarrowInteger(v), nil
	case int:
		return d.NarrowInteger(int64(v)), nil
	case float32:
		wt, _ := d.Lookup(Float)
		return wt, nil
	case float64:
		wt, _ := d.Lookup(Double)
		return wt, nil
	case []byte:
		return d.BestMatchByteArray(len(v)), nil
	case string:
		wt, _ := d.Lookup(String)
		return wt, nil
	case []int16:
		wt, _ := d.Lookup(ShortArray)
		return wt, nil
	case []int32:
		wt, _ := d.Lookup(IntArray)
		return wt, nil
	case []int64:
		wt, _ := d.Lookup(LongArray)
		return wt, nil
	case []float32:
		wt, _ := d.Lookup(FloatArray)
		return wt, nil
	case []float64:
		wt, _ := d.Lookup(DoubleArray)
		return wt, nil
	case DateValue:
		wt, _ := d.Lookup(DateType)
		return wt, nil
	case TimeOfDay:
		wt, _ := d.Lookup(TimeType)
		return wt, nil
	case time.Time:
		wt, _ := d.Lookup(DateTimeType)
		return wt, nil
	default:
		return nil, fmt.Errorf("value of type %T has no matching wire type", value)
	}
}

func standardTypes() []WireType {
	types := []WireType{
		{ID: Indicator, Name: "indicator", FixedWidth: true, FixedSize: 0,
			Encode: func(interface{}) ([]byte, error) { return nil, nil },
			Decode: func([]byte) (interface{}, error) { return nil, nil },
		},
		{ID: Boolean, Name: "boolean", FixedWidth: true, FixedSize: 1,
			Encode: func(v interface{}) ([]byte, error) {
				b, ok := v.(bool)
				if !ok {
					return nil, fmt.Errorf("boolean codec: %T is not bool", v)
				}
				if b {
					return []byte{1}, nil
				}
				return []byte{0}, nil
			},
			Decode: func(p []byte) (interface{}, error) {
				if len(p) != 1 {
					return nil, fmt.Errorf("boolean codec: expected 1 byte, got %d", len(p))
				}
				return p[0] != 0, nil
			},
		},
		{ID: Byte, Name: "byte", FixedWidth: true, FixedSize: 1,
			Encode: func(v interface{}) ([]byte, error) {
				n, err := asInt64(v)
				if err != nil {
					return nil, err
				}
				return []byte{byte(int8(n))}, nil
			},
			Decode: func(p []byte) (interface{}, error) {
				if len(p) != 1 {
					return nil, fmt.Errorf("byte codec: expected 1 byte, got %d", len(p))
				}
				return int8(p[0]), nil
			},
		},
		{ID: Short, Name: "short", FixedWidth: true, FixedSize: 2,
			Encode: func(v interface{}) ([]byte, error) {
				n, err := asInt64(v)
				if err != nil {
					return nil, err
				}
				b := make([]byte, 2)
				binary.BigEndian.PutUint16(b, uint16(int16(n)))
				return b, nil
			},
			Decode: func(p []byte) (interface{}, error) {
				if len(p) != 2 {
					return nil, fmt.Errorf("short codec: expected 2 bytes, got %d", len(p))
				}
				return int16(binary.BigEndian.Uint16(p)), nil
			},
		},
		{ID: Int, Name: "int", FixedWidth: true, FixedSize: 4,
			Encode: func(v interface{}) ([]byte, error) {
				n, err := asInt64(v)
				if err != nil {
					return nil, err
				}
				b := make([]byte, 4)
				binary.BigEndian.PutUint32(b, uint32(int32(n)))
				return b, nil
			},
			Decode: func(p []byte) (interface{}, error) {
				if len(p) != 4 {
					return nil, fmt.Errorf("int codec: expected 4 bytes, got %d", len(p))
				}
				return int32(binary.BigEndian.Uint32(p)), nil
			},
		},
		{ID: Long, Name: "long", FixedWidth: true, FixedSize: 8,
			Encode: func(v interface{}) ([]byte, error) {
				n, err := asInt64(v)
				if err != nil {
					return nil, err
				}
				b := make([]byte, 8)
				binary.BigEndian.PutUint64(b, uint64(n))
				return b, nil
			},
			Decode: func(p []byte) (interface{}, error) {
				if len(p) != 8 {
					return nil, fmt.Errorf("long codec: expected 8 bytes, got %d", len(p))
				}
				return int64(binary.BigEndian.Uint64(p)), nil
			},
		},
		{ID: Float, Name: "float", FixedWidth: true, FixedSize: 4,
			Encode: func(v interface{}) ([]byte, error) {
				f, ok := v.(float32)
				if !ok {
					return nil, fmt.Errorf("float codec: %T is not float32", v)
				}
				b := make([]byte, 4)
				binary.BigEndian.PutUint32(b, math.Float32bits(f))
				return b, nil
			},
			Decode: func(p []byte) (interface{}, error) {
				if len(p) != 4 {
					return nil, fmt.Errorf("float codec: expected 4 bytes, got %d", len(p))
				}
				return math.Float32frombits(binary.BigEndian.Uint32(p)), nil
			},
		},
		{ID: Double, Name: "double", FixedWidth: true, FixedSize: 8,
			Encode: func(v interface{}) ([]byte, error) {
				f, ok := v.(float64)
				if !ok {
					return nil, fmt.Errorf("double codec: %T is not float64", v)
				}
				b := make([]byte, 8)
				binary.BigEndian.PutUint64(b, math.Float64bits(f))
				return b, nil
			},
			Decode: func(p []byte) (interface{}, error) {
				if len(p) != 8 {
					return nil, fmt.Errorf("double codec: expected 8 bytes, got %d", len(p))
				}
				return math.Float64frombits(binary.BigEndian.Uint64(p)), nil
			},
		},
		fixedByteArrayType(ByteArray4, 4),
		fixedByteArrayType(ByteArray8, 8),
		fixedByteArrayType(ByteArray16, 16),
		fixedByteArrayType(ByteArray20, 20),
		fixedByteArrayType(ByteArray32, 32),
		fixedByteArrayType(ByteArray64, 64),
		fixedByteArrayType(ByteArray128, 128),
		fixedByteArrayType(ByteArray256, 256),
		fixedByteArrayType(ByteArray512, 512),
		{ID: VarByteArray, Name: "byte[]", FixedWidth: false,
			Encode: func(v interface{}) ([]byte, error) {
				b, ok := v.([]byte)
				if !ok {
					return nil, fmt.Errorf("byte[] codec: %T is not []byte", v)
				}
				return append([]byte(nil), b...), nil
			},
			Decode: func(p []byte) (interface{}, error) { return append([]byte(nil), p...), nil },
			SizeOf: func(v interface{}) (int, error) {
				b, ok := v.([]byte)
				if !ok {
					return 0, fmt.Errorf("byte[] codec: %T is not []byte", v)
				}
				return len(b), nil
			},
		},
		{ID: String, Name: "string", FixedWidth: false,
			Encode: func(v interface{}) ([]byte, error) {
				s, ok := v.(string)
				if !ok {
					return nil, fmt.Errorf("string codec: %T is not string", v)
				}
				return []byte(s), nil
			},
			Decode: func(p []byte) (interface{}, error) { return string(p), nil },
			SizeOf: func(v interface{}) (int, error) {
				s, ok := v.(string)
				if !ok {
					return 0, fmt.Errorf("string codec: %T is not string", v)
				}
				return len(s), nil
			},
		},
		{ID: SubMessage, Name: "message", IsContainer: true},
		{ID: FudgeMsgWithID, Name: "message-with-id", IsContainer: true},
		{ID: DateType, Name: "date", FixedWidth: true, FixedSize: 4,
			Encode: func(v interface{}) ([]byte, error) {
				d, ok := v.(DateValue)
				if !ok {
					return nil, fmt.Errorf("date codec: %T is not wiretype.DateValue", v)
				}
				t := time.Time(d)
				b := make([]byte, 4)
				binary.BigEndian.PutUint16(b[0:2], uint16(int16(t.Year())))
				b[2] = byte(t.Month())
				b[3] = byte(t.Day())
				return b, nil
			},
			Decode: func(p []byte) (interface{}, error) {
				if len(p) != 4 {
					return nil, fmt.Errorf("date codec: expected 4 bytes, got %d", len(p))
				}
				year := int(int16(binary.BigEndian.Uint16(p[0:2])))
				month := time.Month(p[2])
				day := int(p[3])
				return DateValue(time.Date(year, month, day, 0, 0, 0, 0, time.UTC)), nil
			},
		},
		{ID: TimeType, Name: "time", FixedWidth: true, FixedSize: 8,
			Encode: func(v interface{}) ([]byte, error) {
				t, ok := v.(TimeOfDay)
				if !ok {
					return nil, fmt.Errorf("time codec: %T is not wiretype.TimeOfDay", v)
				}
				b := make([]byte, 8)
				binary.BigEndian.PutUint64(b, uint64(time.Duration(t).Nanoseconds()))
				return b, nil
			},
			Decode: func(p []byte) (interface{}, error) {
				if len(p) != 8 {
					return nil, fmt.Errorf("time codec: expected 8 bytes, got %d", len(p))
				}
				return TimeOfDay(time.Duration(int64(binary.BigEndian.Uint64(p)))), nil
			},
		},
		{ID: DateTimeType, Name: "datetime", FixedWidth: true, FixedSize: 12,
			Encode: func(v interface{}) ([]byte, error) {
				t, ok := v.(time.Time)
				if !ok {
					return nil, fmt.Errorf("datetime codec: %T is not time.Time", v)
				}
				b := make([]byte, 12)
				binary.BigEndian.PutUint16(b[0:2], uint16(int16(t.Year())))
				b[2] = byte(t.Month())
				b[3] = byte(t.Day())
				nanosOfDay := time.Duration(t.Hour())*time.Hour +
					time.Duration(t.Minute())*time.Minute +
					time.Duration(t.Second())*time.Second +
					time.Duration(t.Nanosecond())
				binary.BigEndian.PutUint64(b[4:12], uint64(nanosOfDay.Nanoseconds()))
				return b, nil
			},
			Decode: func(p []byte) (interface{}, error) {
				if len(p) != 12 {
					return nil, fmt.Errorf("datetime codec: expected 12 bytes, got %d", len(p))
				}
				year := int(int16(binary.BigEndian.Uint16(p[0:2])))
				month := time.Month(p[2])
				day := int(p[3])
				nanosOfDay := int64(binary.BigEndian.Uint64(p[4:12]))
				return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Add(time.Duration(nanosOfDay)), nil
			},
		},
	}
	types = append(types,
		numericArrayType(ShortArray, "short[]", 2,
			func(b []byte, v float64) { binary.BigEndian.PutUint16(b, uint16(int16(v))) },
			func(b []byte) float64 { return float64(int16(binary.BigEndian.Uint16(b))) },
			shortArrayConvert,
		),
		numericArrayType(IntArray, "int[]", 4,
			func(b []byte, v float64) { binary.BigEndian.PutUint32(b, uint32(int32(v))) },
			func(b []byte) float64 { return float64(int32(binary.BigEndian.Uint32(b))) },
			intArrayConvert,
		),
		numericArrayType(LongArray, "long[]", 8,
			func(b []byte, v float64) { binary.BigEndian.PutUint64(b, uint64(int64(v))) },
			func(b []byte) float64 { return float64(int64(binary.BigEndian.Uint64(b))) },
			longArrayConvert,
		),
		numericArrayType(FloatArray, "float[]", 4,
			func(b []byte, v float64) { binary.BigEndian.PutUint32(b, math.Float32bits(float32(v))) },
			func(b []byte) float64 { return float64(math.Float32frombits(binary.BigEndian.Uint32(b))) },
			floatArrayConvert,
		),
		numericArrayType(DoubleArray, "double[]", 8,
			func(b []byte, v float64) { binary.BigEndian.PutUint64(b, math.Float64bits(v)) },
			func(b []byte) float64 { return math.Float64frombits(binary.BigEndian.Uint64(b)) },
			doubleArrayConvert,
		),
	)
	return types
}

// numericArrayType builds a variable-width, element-aligned array codec: a 4 byte big endian element
// count followed by that many fixed-width elements. put/get move one element to/from a float64 carrier so
// the five numeric array kinds can share this one builder; convert turns the raw []float64 into (and back
// out of) the caller-facing slice type (e.g. []int16, []float32).
func numericArrayType(id uint8, name string, elemSize int,
	put func(b []byte, v float64), get func(b []byte) float64,
	convert arrayConverter) WireType {
	return WireType{
		ID: id, Name: name, FixedWidth: false,
		Encode: func(v interface{}) ([]byte, error) {
			values, err := convert.toFloat64(v)
			if err != nil {
				return nil, fmt.Errorf("%s codec: %w", name, err)
			}
			b := make([]byte, 4+len(values)*elemSize)
			binary.BigEndian.PutUint32(b[0:4], uint32(len(values)))
			for i, f := range values {
				put(b[4+i*elemSize:4+(i+1)*elemSize], f)
			}
			return b, nil
		},
		Decode: func(p []byte) (interface{}, error) {
			if len(p) < 4 {
				return nil, fmt.Errorf("%s codec: payload too short for element count", name)
			}
			count := int(binary.BigEndian.Uint32(p[0:4]))
			want := 4 + count*elemSize
			if len(p) != want {
				return nil, fmt.Errorf("%s codec: expected %d bytes for %d elements, got %d", name, want, count, len(p))
			}
			values := make([]float64, count)
			for i := range values {
				values[i] = get(p[4+i*elemSize : 4+(i+1)*elemSize])
			}
			return convert.fromFloat64(values), nil
		},
		SizeOf: func(v interface{}) (int, error) {
			values, err := convert.toFloat64(v)
			if err != nil {
				return 0, fmt.Errorf("%s codec: %w", name, err)
			}
			return 4 + len(values)*elemSize, nil
		},
	}
}

type arrayConverter struct {
	toFloat64   func(interface{}) ([]float64, error)
	fromFloat64 func([]float64) interface{}
}

var shortArrayConvert = arrayConverter{
	toFloat64: func(v interface{}) ([]float64, error) {
		s, ok := v.([]int16)
		if !ok {
			return nil, fmt.Errorf("%T is not []int16", v)
		}
		out := make([]float64, len(s))
		for i, x := range s {
			out[i] = float64(x)
		}
		return out, nil
	},
	fromFloat64: func(values []float64) interface{} {
		out := make([]int16, len(values))
		for i, x := range values {
			out[i] = int16(x)
		}
		return out
	},
}

var intArrayConvert = arrayConverter{
	toFloat64: func(v interface{}) ([]float64, error) {
		s, ok := v.([]int32)
		if !ok {
			return nil, fmt.Errorf("%T is not []int32", v)
		}
		out := make([]float64, len(s))
		for i, x := range s {
			out[i] = float64(x)
		}
		return out, nil
	},
	fromFloat64: func(values []float64) interface{} {
		out := make([]int32, len(values))
		for i, x := range values {
			out[i] = int32(x)
		}
		return out
	},
}

var longArrayConvert = arrayConverter{
	toFloat64: func(v interface{}) ([]float64, error) {
		s, ok := v.([]int64)
		if !ok {
			return nil, fmt.Errorf("%T is not []int64", v)
		}
		out := make([]float64, len(s))
		for i, x := range s {
			out[i] = float64(x)
		}
		return out, nil
	},
	fromFloat64: func(values []float64) interface{} {
		out := make([]int64, len(values))
		for i, x := range values {
			out[i] = int64(x)
		}
		return out
	},
}

var floatArrayConvert = arrayConverter{
	toFloat64: func(v interface{}) ([]float64, error) {
		s, ok := v.([]float32)
		if !ok {
			return nil, fmt.Errorf("%T is not []float32", v)
		}
		out := make([]float64, len(s))
		for i, x := range s {
			out[i] = float64(x)
		}
		return out, nil
	},
	fromFloat64: func(values []float64) interface{} {
		out := make([]float32, len(values))
		for i, x := range values {
			out[i] = float32(x)
		}
		return out
	},
}

var doubleArrayConvert = arrayConverter{
	toFloat64: func(v interface{}) ([]float64, error) {
		s, ok := v.([]float64)
		if !ok {
			return nil, fmt.Errorf("%T is not []float64", v)
		}
		return s, nil
	},
	fromFloat64: func(values []float64) interface{} { return values },
}

func fixedByteArrayType(id uint8, size int) WireType {
	return WireType{
		ID: id, Name: fmt.Sprintf("byte[%d]", size), FixedWidth: true, FixedSize: size,
		Encode: func(v interface{}) ([]byte, error) {
			b, ok := v.([]byte)
			if !ok {
				return nil, fmt.Errorf("byte[%d] codec: %T is not []byte", size, v)
			}
			if len(b) != size {
				return nil, fmt.Errorf("byte[%d] codec: expected %d bytes, got %d", size, size, len(b))
			}
			return append([]byte(nil), b...), nil
		},
		Decode: func(p []byte) (interface{}, error) {
			if len(p) != size {
				return nil, fmt.Errorf("byte[%d] codec: expected %d bytes, got %d", size, size, len(p))
			}
			return append([]byte(nil), p...), nil
		},
	}
}

func asInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("expected an integer value, got %T", v)
	}
}
