// Package format implements the diagnostic textual dump described in §4.7: one line per field, indented by
// nesting depth, with no round-trip requirement.
//
// Grounded on aldas-go-nmea-client/cmd/n2kreader/main.go's print loop (the same ordinal/name/value
// line-per-field convention used there for decoded PGN fields) and on internal/utils.FormatSpaces, reused
// here verbatim to escape control characters inside string and byte-array values.
package format

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fudgemsg/go-fudge/internal/utils"
	"github.com/fudgemsg/go-fudge/message"
)

// Dump writes a textual dump of msg to w: for each field, a line of
// "ordinal-or-blank\tname-or-blank\ttypeId\tvalue-or-submessage", recursing into sub-messages with two
// extra spaces of indentation per level.
func Dump(w io.Writer, msg *message.Message) error {
	return dumpAt(w, msg, 0)
}

func dumpAt(w io.Writer, msg *message.Message, depth int) error {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	for _, f := range msg.Fields {
		ordinal := ""
		if f.Ordinal != nil {
			ordinal = strconv.Itoa(int(*f.Ordinal))
		}
		name := f.NameOrEmpty()

		if sub, ok := f.Value.(*message.Message); ok {
			if _, err := fmt.Fprintf(w, "%s%s\t%s\t%d\tsubmessage\n", indent, ordinal, name, f.Type); err != nil {
				return err
			}
			if err := dumpAt(w, sub, depth+1); err != nil {
				return err
			}
			continue
		}

		if _, err := fmt.Fprintf(w, "%s%s\t%s\t%d\t%s\n", indent, ordinal, name, f.Type, formatValue(f.Value)); err != nil {
			return err
		}
	}
	return nil
}

func formatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case []byte:
		return utils.FormatSpaces(v)
	case string:
		return utils.FormatSpaces([]byte(v))
	default:
		return fmt.Sprintf("%v", v)
	}
}
