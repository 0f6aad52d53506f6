// Package taxonomy implements Fudge taxonomy resolution: the bidirectional mapping between a field's
// numeric ordinal and its textual name within a given taxonomyId.
//
// Grounded directly on aldas-go-nmea-client/canboat/enum.go's LookupEnumerations/LookupBitEnumerations
// style: a flat table built once at construction time, looked up by either key, with NameFor/OrdinalFor/
// OrdinalsFor helpers rather than exposing the backing maps.
package taxonomy

import "fmt"

// Entry binds one field's ordinal to its name within a taxonomy.
type Entry struct {
	Ordinal int16
	Name    string
}

// Table is one resolved taxonomy: every ordinal/name pair a given taxonomyId defines.
type Table struct {
	byOrdinal map[int16]string
	byName    map[string][]int16
}

// NewTable builds a Table from a flat list of entries. Duplicate ordinals overwrite earlier ones, mirroring
// canboat's enum tables where a later definition wins; duplicate names accumulate, since a taxonomy may
// legitimately map one name to several ordinals (an Open Question the format spec leaves unresolved,
// decided here by preserving every ordinal a name maps to rather than silently keeping only one).
func NewTable(entries []Entry) *Table {
	t := &Table{
		byOrdinal: make(map[int16]string, len(entries)),
		byName:    make(map[string][]int16, len(entries)),
	}
	for _, e := range entries {
		t.byOrdinal[e.Ordinal] = e.Name
		t.byName[e.Name] = append(t.byName[e.Name], e.Ordinal)
	}
	return t
}

// NameFor returns the name bound to ordinal, if any.
func (t *Table) NameFor(ordinal int16) (string, bool) {
	name, ok := t.byOrdinal[ordinal]
	return name, ok
}

// OrdinalsFor returns every ordinal bound to name, in the order they were registered.
func (t *Table) OrdinalsFor(name string) []int16 {
	return t.byName[name]
}

// OrdinalFor returns the first ordinal bound to name. Most taxonomies bind a name to exactly one ordinal;
// callers that need every binding should use OrdinalsFor.
func (t *Table) OrdinalFor(name string) (int16, bool) {
	ords := t.byName[name]
	if len(ords) == 0 {
		return 0, false
	}
	return ords[0], true
}

// Resolver keys a set of Tables by taxonomyId, the way a Fudge envelope selects its taxonomy. A zero
// Resolver has no tables registered and resolves nothing, matching a stream with no taxonomy substitution
// in effect.
type Resolver struct {
	tables map[int16]*Table
}

// NewResolver returns an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{tables: make(map[int16]*Table)}
}

// Register binds a Table to a taxonomyId. Registering the same id twice replaces the earlier Table.
func (r *Resolver) Register(taxonomyID int16, table *Table) {
	r.tables[taxonomyID] = table
}

// Table returns the Table registered for taxonomyID, if any.
func (r *Resolver) Table(taxonomyID int16) (*Table, bool) {
	t, ok := r.tables[taxonomyID]
	return t, ok
}

// NameFor resolves ordinal to a name under taxonomyID. It reports false both when the taxonomy itself is
// unknown and when the taxonomy does not define that ordinal; Fudge decoders treat the two the same way
// (leave the field's Name unset rather than failing the message).
func (r *Resolver) NameFor(taxonomyID int16, ordinal int16) (string, bool) {
	t, ok := r.tables[taxonomyID]
	if !ok {
		return "", false
	}
	return t.NameFor(ordinal)
}

// OrdinalFor resolves name to an ordinal under taxonomyID.
func (r *Resolver) OrdinalFor(taxonomyID int16, name string) (int16, bool) {
	t, ok := r.tables[taxonomyID]
	if !ok {
		return 0, false
	}
	return t.OrdinalFor(name)
}

// String renders the resolver for debugging.
func (r *Resolver) String() string {
	return fmt.Sprintf("taxonomy.Resolver{tables=%d}", len(r.tables))
}
