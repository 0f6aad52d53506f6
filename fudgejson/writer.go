package fudgejson

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/fudgemsg/go-fudge/message"
	"github.com/fudgemsg/go-fudge/wiretype"
)

// Marshal renders msg and its envelope as JSON text, per §4.6. Fields sharing one name or ordinal collapse
// into a single JSON array under that key, the inverse of the reader's heterogeneous-array expansion.
func Marshal(msg *message.Message, env message.Envelope, cfg Config) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := writeObject(buf, msg, true, env, cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type fieldGroup struct {
	key    string
	values []message.Field
}

// groupFields keys every field by its name, its ordinal rendered as a decimal string, or — for the
// anonymous fields the wire format permits but JSON has no native slot for — a synthetic "_<index>" key.
// Order of first appearance is preserved.
func groupFields(fields []message.Field) []fieldGroup {
	index := make(map[string]int, len(fields))
	var groups []fieldGroup
	for i, f := range fields {
		var key string
		switch {
		case f.HasName():
			key = *f.Name
		case f.HasOrdinal():
			key = strconv.Itoa(int(*f.Ordinal))
		default:
			key = fmt.Sprintf("_%d", i)
		}
		if gi, ok := index[key]; ok {
			groups[gi].values = append(groups[gi].values, f)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, fieldGroup{key: key, values: []message.Field{f}})
	}
	return groups
}

func writeObject(buf *bytes.Buffer, msg *message.Message, isRoot bool, env message.Envelope, cfg Config) error {
	buf.WriteByte('{')
	first := true
	comma := func() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
	}
	if isRoot {
		comma()
		writeKey(buf, cfg.processingDirectivesField())
		fmt.Fprintf(buf, "%d", env.ProcessingDirectives)
		comma()
		writeKey(buf, cfg.schemaVersionField())
		fmt.Fprintf(buf, "%d", env.SchemaVersion)
		comma()
		writeKey(buf, cfg.taxonomyField())
		fmt.Fprintf(buf, "%d", env.TaxonomyID)
	}
	for _, g := range groupFields(msg.Fields) {
		comma()
		writeKey(buf, g.key)
		if len(g.values) == 1 {
			if err := encodeFieldValue(buf, g.values[0].Value, cfg); err != nil {
				return fmt.Errorf("field %q: %w", g.key, err)
			}
			continue
		}
		buf.WriteByte('[')
		for i, f := range g.values {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeFieldValue(buf, f.Value, cfg); err != nil {
				return fmt.Errorf("field %q[%d]: %w", g.key, i, err)
			}
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return nil
}

func writeKey(buf *bytes.Buffer, key string) {
	k, _ := json.Marshal(key)
	buf.Write(k)
	buf.WriteByte(':')
}

func encodeFieldValue(buf *bytes.Buffer, value interface{}, cfg Config) error {
	switch v := value.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case int8:
		fmt.Fprintf(buf, "%d", v)
	case int16:
		fmt.Fprintf(buf, "%d", v)
	case int32:
		fmt.Fprintf(buf, "%d", v)
	case int64:
		fmt.Fprintf(buf, "%d", v)
	case float32:
		buf.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	case float64:
		buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	case string:
		s, _ := json.Marshal(v)
		buf.Write(s)
	case []byte:
		s, _ := json.Marshal(base64.StdEncoding.EncodeToString(v))
		buf.Write(s)
	case []int16:
		return encodeNumericSlice(buf, len(v), func(i int) interface{} { return v[i] })
	case []int32:
		return encodeNumericSlice(buf, len(v), func(i int) interface{} { return v[i] })
	case []int64:
		return encodeNumericSlice(buf, len(v), func(i int) interface{} { return v[i] })
	case []float32:
		return encodeNumericSlice(buf, len(v), func(i int) interface{} { return v[i] })
	case []float64:
		return encodeNumericSlice(buf, len(v), func(i int) interface{} { return v[i] })
	case *message.Message:
		return writeObject(buf, v, false, message.Envelope{}, cfg)
	case wiretype.DateValue:
		s, _ := json.Marshal(time.Time(v).Format("2006-01-02"))
		buf.Write(s)
	case wiretype.TimeOfDay:
		s, _ := json.Marshal(time.Duration(v).String())
		buf.Write(s)
	case time.Time:
		s, _ := json.Marshal(v.Format(time.RFC3339Nano))
		buf.Write(s)
	default:
		return fmt.Errorf("fudgejson: value of type %T has no JSON rendering", value)
	}
	return nil
}

func encodeNumericSlice(buf *bytes.Buffer, n int, at func(int) interface{}) error {
	buf.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		switch v := at(i).(type) {
		case int16:
			fmt.Fprintf(buf, "%d", v)
		case int32:
			fmt.Fprintf(buf, "%d", v)
		case int64:
			fmt.Fprintf(buf, "%d", v)
		case float32:
			buf.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
		case float64:
			buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
	}
	buf.WriteByte(']')
	return nil
}
