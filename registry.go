package refdata

import (
	"github.com/roach88/refdata/store"
	"github.com/roach88/refdata/value"
)

// Registry owns the storage engine handle and the collections defined
// against it. Collections are created implicitly on first use and live
// for the registry's lifetime.
type Registry struct {
	cfg         Config
	store       *store.Store
	collections map[string]*Collection
}

// Open establishes the in-memory storage engine and returns a registry
// ready to define collections against it.
func Open(cfg Config) (*Registry, error) {
	if cfg.DataDir == "" {
		cfg = DefaultConfig()
	}
	s, err := store.Open(cfg.Store)
	if err != nil {
		return nil, err
	}
	return &Registry{
		cfg:         cfg,
		store:       s,
		collections: make(map[string]*Collection),
	}, nil
}

// Close releases the storage engine.
func (r *Registry) Close() error {
	return r.store.Close()
}

// Store returns the underlying storage engine. Exposed for callers that
// need to reset the in-memory database or issue direct queries.
func (r *Registry) Store() *store.Store {
	return r.store
}

// CollectionOption configures a collection at creation time.
type CollectionOption func(*Collection)

// WithPrimaryKey overrides the primary-key column name (default "id").
func WithPrimaryKey(column string) CollectionOption {
	return func(c *Collection) {
		c.pkColumn = column
	}
}

// Collection returns the named collection, creating it on first use.
// Options apply only on creation; later calls return the existing
// collection unchanged.
func (r *Registry) Collection(name string, opts ...CollectionOption) *Collection {
	if c, ok := r.collections[name]; ok {
		return c
	}
	c := &Collection{
		reg:      r,
		name:     name,
		pkColumn: "id",
		symbols:  make(map[string]value.Value),
		assocs:   make(map[string]Association),
	}
	for _, opt := range opts {
		opt(c)
	}
	r.collections[name] = c
	return c
}
