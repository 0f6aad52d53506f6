// Package fudgejson implements the alternate JSON surface described by §4.6: the same message trees the
// binary encoding carries, rendered as (and recovered from) JSON text, including primitive-array
// recognition and the heterogeneous-array-as-repeated-field expansion. It works on whole message trees and
// produces no stream.StreamElement events.
//
// Grounded on aldas-go-nmea-client/canboat/canboatpgns.go's custom UnmarshalJSON methods (FieldType,
// PacketType) for the general shape of hand-rolled JSON handling in this codebase; the token-level
// object/array walk uses encoding/json.Decoder.Token because no example repo carries a streaming JSON
// library and Decoder.Token is the one stdlib facility that preserves source key order, which the format
// spec's own "Open point" flags as otherwise unreliable.
package fudgejson

// Config names the JSON keys that carry envelope metadata at the root object. A zero Config falls back to
// the documented defaults.
type Config struct {
	ProcessingDirectivesField string
	SchemaVersionField        string
	TaxonomyField             string
}

const (
	defaultProcessingDirectivesField = "fudgeProcessingDirectives"
	defaultSchemaVersionField        = "fudgeSchemaVersion"
	defaultTaxonomyField             = "fudgeTaxonomy"
)

func (c Config) processingDirectivesField() string {
	if c.ProcessingDirectivesField != "" {
		return c.ProcessingDirectivesField
	}
	return defaultProcessingDirectivesField
}

func (c Config) schemaVersionField() string {
	if c.SchemaVersionField != "" {
		return c.SchemaVersionField
	}
	return defaultSchemaVersionField
}

func (c Config) taxonomyField() string {
	if c.TaxonomyField != "" {
		return c.TaxonomyField
	}
	return defaultTaxonomyField
}
