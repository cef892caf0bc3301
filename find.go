package refdata

import (
	"context"

	"github.com/roach88/refdata/store"
	"github.com/roach88/refdata/value"
)

// Find returns the record with the given primary-key value, or ok=false
// when no such record exists.
func (c *Collection) Find(ctx context.Context, pk value.Value) (*Record, bool, error) {
	if err := c.ensureFresh(ctx); err != nil {
		return nil, false, err
	}
	m, ok, err := c.reg.store.FindByPK(ctx, c.name, pk)
	if err != nil {
		return nil, false, c.classifyQueryError(err)
	}
	if !ok {
		return nil, false, nil
	}
	return c.record(m), true, nil
}

// All returns every record, ordered by primary key.
func (c *Collection) All(ctx context.Context) ([]*Record, error) {
	if err := c.ensureFresh(ctx); err != nil {
		return nil, err
	}
	rows, err := c.reg.store.All(ctx, c.name)
	if err != nil {
		return nil, c.classifyQueryError(err)
	}
	return c.records(rows), nil
}

// Count returns the number of materialized records.
func (c *Collection) Count(ctx context.Context) (int64, error) {
	if err := c.ensureFresh(ctx); err != nil {
		return 0, err
	}
	n, err := c.reg.store.Count(ctx, c.name)
	if err != nil {
		return 0, c.classifyQueryError(err)
	}
	return n, nil
}

// Where returns all records whose column equals the given value,
// ordered by primary key.
func (c *Collection) Where(ctx context.Context, column string, v value.Value) ([]*Record, error) {
	if err := c.ensureFresh(ctx); err != nil {
		return nil, err
	}
	rows, err := c.reg.store.FindEq(ctx, c.name, column, v)
	if err != nil {
		return nil, c.classifyQueryError(err)
	}
	return c.records(rows), nil
}

// classifyQueryError maps the storage engine's missing-relation
// sentinel into the store's taxonomy; everything else passes through.
func (c *Collection) classifyQueryError(err error) error {
	if store.IsMissingRelation(err) {
		return wrapError(ErrCodeMissingRelation, c.name, err.Error(), err)
	}
	return err
}

func (c *Collection) record(m value.Mapping) *Record {
	return &Record{collection: c, attrs: m}
}

func (c *Collection) records(rows []value.Mapping) []*Record {
	out := make([]*Record, len(rows))
	for i, m := range rows {
		out[i] = c.record(m)
	}
	return out
}
