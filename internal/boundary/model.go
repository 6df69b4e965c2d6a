// Package boundary loads administrative and atoll boundary files into
// immutable in-memory tables.
package boundary

import (
	"github.com/twpayne/go-geom"
)

// Record is one boundary polygon with its attributes.
type Record struct {
	// Index is the row position in the source file. It doubles as the
	// feature id handed to the map.
	Index int
	// Atoll is the parent-atoll name, empty when the source value is null.
	Atoll string
	// Geometry is always a single XY polygon, or nil for empty shapes.
	Geometry *geom.Polygon
	// Attrs holds float64, string, bool or nil values keyed by field name.
	Attrs map[string]any
}

// Value returns the attribute stored under field.
func (r *Record) Value(field string) (any, bool) {
	v, ok := r.Attrs[field]
	return v, ok
}

// Table is a read-only boundary dataset. Filtering returns a new view that
// shares records with its parent.
type Table struct {
	name       string
	atollField string
	fields     []string
	fieldSet   map[string]struct{}
	records    []*Record
	dropped    int
}

func newTable(name, atollField string, fields []string, records []*Record, dropped int) *Table {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return &Table{
		name:       name,
		atollField: atollField,
		fields:     fields,
		fieldSet:   set,
		records:    records,
		dropped:    dropped,
	}
}

// NewTable builds a table from already-simplified records. Fields keep the
// given order.
func NewTable(name, atollField string, fields []string, records []*Record) *Table {
	return newTable(name, atollField, append([]string(nil), fields...), records, 0)
}

// Name returns the table label ("admin" or "atolls").
func (t *Table) Name() string { return t.name }

// AtollField returns the column holding parent-atoll names.
func (t *Table) AtollField() string { return t.atollField }

// Fields returns the attribute columns in source order, geometry excluded.
func (t *Table) Fields() []string {
	return append([]string(nil), t.fields...)
}

// HasField reports whether the table carries the named column.
func (t *Table) HasField(name string) bool {
	_, ok := t.fieldSet[name]
	return ok
}

// Records returns the rows of the table. Callers must not modify them.
func (t *Table) Records() []*Record { return t.records }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.records) }

// DroppedParts returns how many secondary polygon parts were discarded
// while simplifying multi-part shapes at load time.
func (t *Table) DroppedParts() int { return t.dropped }

// Filter returns the rows whose atoll is in atolls. An empty selection
// returns the table itself.
func (t *Table) Filter(atolls []string) *Table {
	if len(atolls) == 0 {
		return t
	}
	want := make(map[string]struct{}, len(atolls))
	for _, a := range atolls {
		want[normalizeName(a)] = struct{}{}
	}

	var out []*Record
	for _, r := range t.records {
		if r.Atoll == "" {
			continue
		}
		if _, ok := want[r.Atoll]; ok {
			out = append(out, r)
		}
	}

	return &Table{
		name:       t.name,
		atollField: t.atollField,
		fields:     t.fields,
		fieldSet:   t.fieldSet,
		records:    out,
		dropped:    t.dropped,
	}
}

// AtollNames returns the distinct non-empty atoll names in first-appearance order.
func (t *Table) AtollNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range t.records {
		if r.Atoll == "" {
			continue
		}
		if _, ok := seen[r.Atoll]; ok {
			continue
		}
		seen[r.Atoll] = struct{}{}
		names = append(names, r.Atoll)
	}
	return names
}

// Dataset bundles the two boundary tables loaded at startup.
type Dataset struct {
	Admin  *Table
	Atolls *Table
	// IDField names the identifier column shown in hover text.
	IDField string
}
