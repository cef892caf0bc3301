package refdata

import "github.com/roach88/refdata/value"

// Record is one materialized row of a collection. Records are detached
// copies: staging new attribute values is allowed, but persisting them
// back - or removing the row - always fails with a read-only violation.
// Only the collection's own load path writes rows.
type Record struct {
	collection *Collection
	attrs      value.Mapping
}

// Collection returns the collection this record belongs to.
func (r *Record) Collection() *Collection {
	return r.collection
}

// PK returns the record's primary-key value.
func (r *Record) PK() value.Value {
	return r.attrs[r.collection.pkColumn]
}

// Get returns the value of a column, or ok=false if the column is not
// part of the record.
func (r *Record) Get(column string) (value.Value, bool) {
	v, ok := r.attrs[column]
	return v, ok
}

// Attributes returns a copy of the record's attribute mapping,
// primary key included.
func (r *Record) Attributes() value.Mapping {
	out := make(value.Mapping, len(r.attrs))
	for k, v := range r.attrs {
		out[k] = v
	}
	return out
}

// Set stages a new value on this detached copy. The store itself is
// untouched; a following Save fails.
func (r *Record) Set(column string, v value.Value) {
	r.attrs[column] = v
}

// Save rejects persisting staged changes.
func (r *Record) Save() error {
	return newReadOnlyError(r.collection.name, "Save")
}

// Delete rejects removing the record's row.
func (r *Record) Delete() error {
	return newReadOnlyError(r.collection.name, "Delete")
}

// Destroy rejects removing the record's row.
func (r *Record) Destroy() error {
	return newReadOnlyError(r.collection.name, "Destroy")
}
