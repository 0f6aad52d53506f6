package fudgejson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/fudgemsg/go-fudge/message"
)

// Unmarshal parses data as a Fudge JSON rendering per §4.6 and returns the reassembled message tree plus
// the envelope metadata read from the root object's configured keys.
//
// The two lookahead queues §4.6 describes for out-of-order envelope-key recognition are unnecessary here:
// json.Decoder.Token walks the input in true source order (unlike unmarshaling into a map, which the
// format spec's own "Open point" warns against), so a non-envelope key encountered before an envelope key
// is simply appended to the field list as it is read — no queue needed to preserve its position.
func Unmarshal(data []byte, cfg Config) (*message.Message, message.Envelope, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, message.Envelope{}, fmt.Errorf("fudgejson: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, message.Envelope{}, fmt.Errorf("fudgejson: expected a JSON object at the root")
	}
	return parseObjectBody(dec, true, cfg)
}

func parseObjectBody(dec *json.Decoder, isRoot bool, cfg Config) (*message.Message, message.Envelope, error) {
	msg := message.New()
	env := message.Envelope{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, message.Envelope{}, err
		}
		key, _ := keyTok.(string)

		if isRoot {
			switch key {
			case cfg.processingDirectivesField():
				v, err := readIntToken(dec)
				if err != nil {
					return nil, message.Envelope{}, err
				}
				env.ProcessingDirectives = uint8(v)
				continue
			case cfg.schemaVersionField():
				v, err := readIntToken(dec)
				if err != nil {
					return nil, message.Envelope{}, err
				}
				env.SchemaVersion = uint8(v)
				continue
			case cfg.taxonomyField():
				v, err := readIntToken(dec)
				if err != nil {
					return nil, message.Envelope{}, err
				}
				env.TaxonomyID = int16(v)
				continue
			}
		}

		fields, err := parseKeyedValue(dec, key)
		if err != nil {
			return nil, message.Envelope{}, fmt.Errorf("field %q: %w", key, err)
		}
		for _, f := range fields {
			if err := msg.Add(f); err != nil {
				return nil, message.Envelope{}, err
			}
		}
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return nil, message.Envelope{}, err
	}
	return msg, env, nil
}

// keyToNameOrOrdinal recognizes a decimal-string key as an ordinal, matching the writer's convention of
// rendering an ordinal-only field's key as its ordinal in base 10. Any other key is a name.
func keyToNameOrOrdinal(key string) (name *string, ordinal *int16) {
	if v, err := strconv.ParseInt(key, 10, 16); err == nil && strconv.FormatInt(v, 10) == key {
		ord := int16(v)
		return nil, &ord
	}
	k := key
	return &k, nil
}

func readIntToken(dec *json.Decoder) (int64, error) {
	tok, err := dec.Token()
	if err != nil {
		return 0, err
	}
	n, ok := tok.(json.Number)
	if !ok {
		return 0, fmt.Errorf("expected a JSON number, got %T", tok)
	}
	return n.Int64()
}

// parseKeyedValue reads the value following key and returns the Fudge field(s) it decodes to: usually one,
// but many for a heterogeneous JSON array (repeated fields) per §4.6.
func parseKeyedValue(dec *json.Decoder, key string) ([]message.Field, error) {
	name, ordinal := keyToNameOrOrdinal(key)
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); ok {
		switch d {
		case '{':
			sub, _, err := parseObjectBody(dec, false, Config{})
			if err != nil {
				return nil, err
			}
			return []message.Field{{Value: sub, Name: name, Ordinal: ordinal}}, nil
		case '[':
			return parseArray(dec, name, ordinal)
		}
	}
	v, err := scalarFromToken(tok)
	if err != nil {
		return nil, err
	}
	return []message.Field{{Value: v, Name: name, Ordinal: ordinal}}, nil
}

func parseArray(dec *json.Decoder, name *string, ordinal *int16) ([]message.Field, error) {
	var elements []interface{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{':
				sub, _, err := parseObjectBody(dec, false, Config{})
				if err != nil {
					return nil, err
				}
				elements = append(elements, sub)
			case '[':
				raw, err := readAnyFromDelim(dec, '[')
				if err != nil {
					return nil, err
				}
				src, err := json.Marshal(raw)
				if err != nil {
					return nil, err
				}
				elements = append(elements, string(src))
			}
			continue
		}
		elements = append(elements, tok)
	}
	if _, err := dec.Token(); err != nil { // closing ']'
		return nil, err
	}

	if isHomogeneousNumeric(elements) {
		arr, err := buildPrimitiveArray(elements)
		if err != nil {
			return nil, err
		}
		return []message.Field{{Value: arr, Name: name, Ordinal: ordinal}}, nil
	}

	fields := make([]message.Field, 0, len(elements))
	for _, e := range elements {
		v, err := toFieldValue(e)
		if err != nil {
			return nil, err
		}
		fields = append(fields, message.Field{Value: v, Name: name, Ordinal: ordinal})
	}
	return fields, nil
}

func isHomogeneousNumeric(elements []interface{}) bool {
	if len(elements) == 0 {
		return false
	}
	for _, e := range elements {
		if _, ok := e.(json.Number); !ok {
			return false
		}
	}
	return true
}

// buildPrimitiveArray narrows a homogeneous JSON number array to the smallest of int (int32), long
// (int64), double (float64) that losslessly represents every element, per §4.6's "int → long → double".
func buildPrimitiveArray(elements []interface{}) (interface{}, error) {
	ints := make([]int64, len(elements))
	allInt := true
	for i, e := range elements {
		n := e.(json.Number)
		v, err := n.Int64()
		if err != nil {
			allInt = false
			break
		}
		ints[i] = v
	}
	if allInt {
		fitsInt32 := true
		for _, v := range ints {
			if v < math.MinInt32 || v > math.MaxInt32 {
				fitsInt32 = false
				break
			}
		}
		if fitsInt32 {
			out := make([]int32, len(ints))
			for i, v := range ints {
				out[i] = int32(v)
			}
			return out, nil
		}
		return ints, nil
	}
	out := make([]float64, len(elements))
	for i, e := range elements {
		f, err := e.(json.Number).Float64()
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func scalarFromToken(tok json.Token) (interface{}, error) {
	switch v := tok.(type) {
	case nil:
		return nil, nil
	case bool:
		return v, nil
	case string:
		return v, nil
	case json.Number:
		if iv, err := v.Int64(); err == nil {
			return narrowJSONInt(iv), nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unexpected JSON token %v (%T)", tok, tok)
	}
}

// toFieldValue resolves one heterogeneous-array element to its field value. Only json.Number needs
// conversion (to the narrowest integer type, or float64); bool, string, nil and *message.Message elements
// (the latter two produced directly by parseArray) are already in their final Go form.
func toFieldValue(e interface{}) (interface{}, error) {
	if n, ok := e.(json.Number); ok {
		return scalarFromToken(n)
	}
	return e, nil
}

func narrowJSONInt(v int64) interface{} {
	switch {
	case v >= math.MinInt8 && v <= math.MaxInt8:
		return int8(v)
	case v >= math.MinInt16 && v <= math.MaxInt16:
		return int16(v)
	case v >= math.MinInt32 && v <= math.MaxInt32:
		return int32(v)
	default:
		return v
	}
}

// readAnyFromDelim reads a generic JSON value whose opening delimiter has already been consumed, used only
// to recover the source text of a nested array inside an array (§4.6: such an array is emitted as a string
// of its JSON source rather than decoded structurally).
func readAnyFromDelim(dec *json.Decoder, delim json.Delim) (interface{}, error) {
	switch delim {
	case '{':
		obj := map[string]interface{}{}
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := kt.(string)
			v, err := readAny(dec)
			if err != nil {
				return nil, err
			}
			obj[key] = v
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		var arr []interface{}
		for dec.More() {
			v, err := readAny(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}

func readAny(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); ok {
		return readAnyFromDelim(dec, d)
	}
	return tok, nil
}
