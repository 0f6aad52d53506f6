package message

import (
	"github.com/fudgemsg/go-fudge/taxonomy"
	"github.com/fudgemsg/go-fudge/wiretype"
)

// Config configures a Reader or Writer. A zero Config is valid: it builds a fresh standard Dictionary and
// performs no taxonomy substitution.
type Config struct {
	Dictionary *wiretype.Dictionary
	Taxonomy   *taxonomy.Resolver
}

func (c Config) dictionary() *wiretype.Dictionary {
	if c.Dictionary != nil {
		return c.Dictionary
	}
	return wiretype.NewDictionary()
}
