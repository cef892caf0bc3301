package refdata

import "context"

// EnsureFresh checks whether the backing database was re-established
// since this collection last touched it and, if so, replays every
// retained definition to rebuild the relation. Rebuilding is deliberate
// and observable here rather than hidden inside query getters' innards;
// every entry point calls it before touching storage.
func (c *Collection) EnsureFresh(ctx context.Context) error {
	return c.ensureFresh(ctx)
}

// ensureFresh compares the store's handle identity against the one seen
// at last access. A re-established database silently discarded all
// materialized relations, so the definition store is replayed in
// original insertion order with duplicate checking off - replay trusts
// previously-validated data and compares against nothing from the
// discarded generation.
func (c *Collection) ensureFresh(ctx context.Context) error {
	h := c.reg.store.Handle()
	if h == c.handle {
		return nil
	}
	c.handle = h

	// The new database holds nothing for this collection; the schema
	// must be re-inferred and the relation re-created during replay.
	c.schema = nil
	if len(c.defs) == 0 {
		return nil
	}

	for _, m := range c.defs {
		if err := c.materialize(ctx, m); err != nil {
			return err
		}
		if err := c.insert(ctx, m); err != nil {
			return err
		}
	}
	return nil
}
