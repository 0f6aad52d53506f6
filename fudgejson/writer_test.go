package fudgejson

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fudgemsg/go-fudge/message"
	"github.com/fudgemsg/go-fudge/wiretype"
)

func TestMarshal_NamedFields(t *testing.T) {
	msg := message.New()
	require.NoError(t, msg.AddNamed("price", int32(100)))
	require.NoError(t, msg.AddNamed("label", "widget"))

	env := message.Envelope{ProcessingDirectives: 1, SchemaVersion: 2, TaxonomyID: 3}
	out, err := Marshal(msg, env, Config{})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"fudgeProcessingDirectives": 1,
		"fudgeSchemaVersion": 2,
		"fudgeTaxonomy": 3,
		"price": 100,
		"label": "widget"
	}`, string(out))
}

func TestMarshal_RepeatedNameCollapsesToArray(t *testing.T) {
	msg := message.New()
	require.NoError(t, msg.AddNamed("x", int32(1)))
	require.NoError(t, msg.AddNamed("x", "two"))
	require.NoError(t, msg.AddNamed("x", int32(3)))

	out, err := Marshal(msg, message.Envelope{}, Config{})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"fudgeProcessingDirectives": 0,
		"fudgeSchemaVersion": 0,
		"fudgeTaxonomy": 0,
		"x": [1, "two", 3]
	}`, string(out))
}

func TestMarshal_ByteArrayAsBase64(t *testing.T) {
	msg := message.New()
	raw := []byte{1, 2, 3, 4}
	require.NoError(t, msg.AddNamed("blob", raw))

	out, err := Marshal(msg, message.Envelope{}, Config{})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"fudgeProcessingDirectives": 0,
		"fudgeSchemaVersion": 0,
		"fudgeTaxonomy": 0,
		"blob": "`+base64.StdEncoding.EncodeToString(raw)+`"
	}`, string(out))
}

func TestMarshal_AnonymousFieldsGetSyntheticKeys(t *testing.T) {
	msg := message.New()
	require.NoError(t, msg.Add(message.Field{Value: int32(7)}))
	require.NoError(t, msg.Add(message.Field{Value: int32(8)}))

	out, err := Marshal(msg, message.Envelope{}, Config{})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"fudgeProcessingDirectives": 0,
		"fudgeSchemaVersion": 0,
		"fudgeTaxonomy": 0,
		"_0": 7,
		"_1": 8
	}`, string(out))
}

func TestMarshal_NestedSubmessage(t *testing.T) {
	msg := message.New()
	child := message.New()
	require.NoError(t, child.AddNamed("inner", int32(9)))
	require.NoError(t, msg.Add(message.Field{Value: child, Name: message.Name("child")}))

	out, err := Marshal(msg, message.Envelope{}, Config{})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"fudgeProcessingDirectives": 0,
		"fudgeSchemaVersion": 0,
		"fudgeTaxonomy": 0,
		"child": {"inner": 9}
	}`, string(out))
}

func TestMarshal_DateTimeValues(t *testing.T) {
	msg := message.New()
	require.NoError(t, msg.AddNamed("day", wiretype.DateValue(time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, msg.AddNamed("tod", wiretype.TimeOfDay(13*time.Hour+4*time.Minute)))
	require.NoError(t, msg.AddNamed("stamp", time.Date(2024, time.March, 15, 13, 4, 0, 0, time.UTC)))

	out, err := Marshal(msg, message.Envelope{}, Config{})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"day":"2024-03-15"`)
	assert.Contains(t, string(out), `"tod":"13h4m0s"`)
	assert.Contains(t, string(out), `"stamp":"2024-03-15T13:04:00Z"`)
}

func TestMarshal_CustomEnvelopeFieldNames(t *testing.T) {
	msg := message.New()
	require.NoError(t, msg.AddNamed("x", int32(1)))
	cfg := Config{ProcessingDirectivesField: "pd", SchemaVersionField: "sv", TaxonomyField: "tx"}

	out, err := Marshal(msg, message.Envelope{ProcessingDirectives: 1, SchemaVersion: 2, TaxonomyID: 3}, cfg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pd":1,"sv":2,"tx":3,"x":1}`, string(out))
}
