package fudge

import (
	"io"

	"github.com/fudgemsg/go-fudge/message"
	"github.com/fudgemsg/go-fudge/taxonomy"
	"github.com/fudgemsg/go-fudge/wiretype"
)

// Reader and Writer are the message-tree facade: they buffer the underlying binary stream events
// into, or out of, whole Message trees. Aliased from package message so callers rarely need to import it
// directly.
type (
	Reader   = message.Reader
	Writer   = message.Writer
	Envelope = message.Envelope
)

// Context is the process-level configuration object: it owns the type dictionary and taxonomy resolver
// every Reader/Writer it builds shares, and acts as the message factory. Grounded on
// aldas-go-nmea-client/actisense's Config/NewBinaryDeviceWithConfig pairing and on
// canboat.NewDecoder's role as the single object a caller constructs before reading any messages.
//
// A Context is safe for concurrent use once its setup is done: dictionary and taxonomy lookups are safe
// for concurrent callers, while RegisterType and RegisterTaxonomy modify the dictionary and resolver and
// are not, so they belong to setup only, mirroring §5's "immutable after publication" rule.
type Context struct {
	Dictionary *wiretype.Dictionary
	Taxonomy   *taxonomy.Resolver
}

// ContextConfig configures a Context. A zero Config is valid: NewContextWithConfig builds a fresh standard
// Dictionary and an empty Resolver.
type ContextConfig struct {
	Dictionary *wiretype.Dictionary
	Taxonomy   *taxonomy.Resolver
}

// NewContext returns a Context with a fresh standard type dictionary and no taxonomies registered.
func NewContext() *Context {
	return NewContextWithConfig(ContextConfig{})
}

// NewContextWithConfig returns a Context configured per cfg.
func NewContextWithConfig(cfg ContextConfig) *Context {
	dict := cfg.Dictionary
	if dict == nil {
		dict = wiretype.NewDictionary()
	}
	tax := cfg.Taxonomy
	if tax == nil {
		tax = taxonomy.NewResolver()
	}
	return &Context{Dictionary: dict, Taxonomy: tax}
}

// NewMessage returns an empty, ready-to-use Message.
func (c *Context) NewMessage() *Message { return NewMessage() }

// NewReader returns a Reader over src using this context's dictionary and taxonomy resolver.
func (c *Context) NewReader(src io.Reader) *Reader {
	return message.NewReaderWithConfig(src, message.Config{Dictionary: c.Dictionary, Taxonomy: c.Taxonomy})
}

// NewWriter returns a Writer over dst using this context's dictionary and taxonomy resolver.
func (c *Context) NewWriter(dst io.Writer) *Writer {
	return message.NewWriterWithConfig(dst, message.Config{Dictionary: c.Dictionary, Taxonomy: c.Taxonomy})
}

// RegisterTaxonomy binds table under taxonomyID so subsequent reads/writes through this context can
// substitute names for ordinals (and back) under that id.
func (c *Context) RegisterTaxonomy(taxonomyID int16, table *taxonomy.Table) {
	c.Taxonomy.Register(taxonomyID, table)
}

// RegisterType adds a custom wire type codec to this context's dictionary. wt.ID must be above
// wiretype.ReservedRangeEnd.
func (c *Context) RegisterType(wt wiretype.WireType) error {
	return c.Dictionary.Register(wt)
}
