package refdata

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/roach88/refdata/datafile"
	"github.com/roach88/refdata/store"
	"github.com/roach88/refdata/value"
)

// Collection is a named, typed group of records sharing an inferred
// schema - one in-memory relation. Created implicitly on first use,
// never deleted during the registry's lifetime.
//
// A collection moves from empty to schema-inferred on its first record
// and to loaded once a load sequence completes. The same transitions
// replay silently whenever the backing database is re-established.
type Collection struct {
	reg      *Registry
	name     string
	pkColumn string

	// pk and schema are fixed when the first record is seen.
	pk     value.Column
	schema *value.Schema

	// defs is the record definition store: every accepted mapping,
	// verbatim, in insertion order. The source of truth for replay.
	defs []value.Mapping

	symbols map[string]value.Value
	assocs  map[string]Association

	sourcePath string
	loaded     bool

	// handle is the storage handle identity seen at last access.
	handle string
}

// Name returns the collection name, which is also its relation name.
func (c *Collection) Name() string {
	return c.name
}

// PrimaryKey returns the primary-key column name.
func (c *Collection) PrimaryKey() string {
	return c.pkColumn
}

// Loaded reports whether an initial load sequence has completed.
func (c *Collection) Loaded() bool {
	return c.loaded
}

// Data defines one record: the mapping is validated, written as a row,
// retained for replay, and its name (if any) bound to a symbol token.
// Either all of those effects happen or none of them do.
func (c *Collection) Data(ctx context.Context, m value.Mapping) error {
	if err := c.ensureFresh(ctx); err != nil {
		return err
	}
	if err := c.define(ctx, m, true); err != nil {
		return err
	}
	c.loaded = true
	return nil
}

// LoadData sets (or defaults) the source file path and performs a full
// load. Without an explicit path the collection reads
// <DataDir>/<name>.yml under the registry's configuration.
//
// The file must parse to a non-empty sequence of mappings; anything
// else fails with a bad-data-file condition before any prior contents
// are touched.
func (c *Collection) LoadData(ctx context.Context, path ...string) error {
	if err := c.ensureFresh(ctx); err != nil {
		return err
	}

	p := c.sourcePath
	if len(path) > 0 && path[0] != "" {
		p = path[0]
	}
	if p == "" {
		p = filepath.Join(c.reg.cfg.DataDir, c.name+".yml")
	}

	recs, err := c.readSource(p)
	if err != nil {
		return err
	}
	c.sourcePath = p

	// Validated: safe to discard prior contents and load the file.
	if err := c.clear(ctx); err != nil {
		return err
	}
	for _, m := range recs {
		if err := c.define(ctx, m, true); err != nil {
			return err
		}
	}
	c.loaded = true
	return nil
}

// Reload forces a full reload: from the source file when one was set,
// otherwise by replaying the retained definitions into a fresh
// relation. Duplicate checking for the pass starts from an empty
// history, comparing only against records of this pass.
func (c *Collection) Reload(ctx context.Context) error {
	if err := c.ensureFresh(ctx); err != nil {
		return err
	}

	if c.sourcePath != "" {
		return c.LoadData(ctx, c.sourcePath)
	}

	defs := c.defs
	if err := c.clear(ctx); err != nil {
		return err
	}
	for _, m := range defs {
		if err := c.define(ctx, m, true); err != nil {
			return err
		}
	}
	if len(c.defs) > 0 {
		c.loaded = true
	}
	return nil
}

// readSource loads and validates the structured data file, classifying
// collaborator failures into the store's error taxonomy.
func (c *Collection) readSource(path string) ([]value.Mapping, error) {
	recs, err := datafile.Load(path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, wrapError(ErrCodeMissingFile, c.name, err.Error(), err)
		case errors.Is(err, datafile.ErrBadShape):
			return nil, wrapError(ErrCodeBadDataFile, c.name, err.Error(), err)
		default:
			return nil, err
		}
	}
	if len(recs) == 0 {
		return nil, &Error{
			Code:       ErrCodeBadDataFile,
			Collection: c.name,
			Message:    "data file " + path + " holds an empty sequence",
		}
	}
	return recs, nil
}

// clear drops the relation and resets the definition store and schema.
// Symbol bindings survive; re-derivation during the following load
// yields the same first-write-wins result.
func (c *Collection) clear(ctx context.Context) error {
	if err := c.reg.store.DropTable(ctx, c.name); err != nil {
		return err
	}
	c.defs = nil
	c.schema = nil
	c.loaded = false
	return nil
}

// define validates one mapping, materializes it, and retains it.
// checkDup is off only on the internal replay path, which reinserts
// previously-validated data.
func (c *Collection) define(ctx context.Context, m value.Mapping, checkDup bool) error {
	if len(m) == 0 {
		return newInvalidInputError(c.name, "attribute mapping is empty")
	}
	pkv, ok := m[c.pkColumn]
	if !ok {
		return newInvalidInputError(c.name, "attribute mapping has no value for primary-key column "+c.pkColumn)
	}
	if _, isNull := pkv.(value.Null); isNull {
		return newInvalidInputError(c.name, "primary-key column "+c.pkColumn+" is null")
	}

	if err := c.materialize(ctx, m); err != nil {
		return err
	}

	if checkDup {
		for _, d := range c.defs {
			if value.Equal(d[c.pkColumn], pkv) {
				return newDuplicateKeyError(c.name, d, m)
			}
		}
	}

	if err := c.insert(ctx, m); err != nil {
		return err
	}
	c.defs = append(c.defs, m)
	c.bindSymbol(m, pkv)
	return nil
}

// materialize infers the schema from the first mapping and creates the
// backing relation. A no-op once the relation exists on the current
// database.
func (c *Collection) materialize(ctx context.Context, first value.Mapping) error {
	if c.schema == nil {
		s := value.InferSchema(first, c.pkColumn)
		c.schema = &s
		c.pk = value.Column{Name: c.pkColumn, Type: value.InferType(first[c.pkColumn])}
	}
	return c.reg.store.CreateTable(ctx, c.name, c.pk, *c.schema)
}

// insert writes one row, classifying an out-of-schema column into the
// unknown-column condition.
func (c *Collection) insert(ctx context.Context, m value.Mapping) error {
	if err := c.reg.store.Insert(ctx, c.name, m); err != nil {
		if store.IsUnknownColumn(err) {
			return wrapError(ErrCodeUnknownColumn, c.name, err.Error(), err)
		}
		return err
	}
	return nil
}

// UpdateAll rejects bulk updates: collections are read-only after load.
func (c *Collection) UpdateAll(column string, v value.Value) error {
	return newReadOnlyError(c.name, "UpdateAll")
}

// DeleteAll rejects bulk deletes: collections are read-only after load.
func (c *Collection) DeleteAll() error {
	return newReadOnlyError(c.name, "DeleteAll")
}

// DestroyAll rejects bulk destroys: collections are read-only after load.
func (c *Collection) DestroyAll() error {
	return newReadOnlyError(c.name, "DestroyAll")
}
