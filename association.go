package refdata

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/refdata/value"
)

// AssociationKind selects the resolution strategy for a one-to-many
// association. There is no implicit detection: callers declare whether
// the association is direct or goes through a join collection.
type AssociationKind int

const (
	// AssocDirect resolves with the engine's native foreign-key
	// equality lookup against the target relation.
	AssocDirect AssociationKind = iota

	// AssocThrough resolves many-to-many via a join collection with
	// two sequential lookups instead of a relational join.
	AssocThrough
)

// Association describes a one-to-many or many-to-many relationship from
// a source collection. Zero-valued key fields default by convention:
// the foreign key is the singularized source name + "_id", the target
// key (through only) the singularized target name + "_id".
type Association struct {
	// Name is the accessor name; it defaults the target collection.
	Name string

	// Kind selects direct or through resolution.
	Kind AssociationKind

	// Target is the target collection name (default: Name).
	Target string

	// Through is the join collection name. Required for AssocThrough.
	Through string

	// ForeignKey is the column on the target (direct) or join
	// (through) relation pointing back at the source record.
	ForeignKey string

	// TargetKey is the column on the join relation pointing at the
	// target record. Through associations only.
	TargetKey string

	// PrimaryKey overrides the target's primary-key column.
	PrimaryKey string
}

// HasMany declares an association on the collection. Defaults are
// filled in at declaration time so resolution never guesses.
func (c *Collection) HasMany(a Association) error {
	if a.Name == "" {
		return newInvalidInputError(c.name, "association has no name")
	}
	if a.Target == "" {
		a.Target = a.Name
	}
	if a.Kind == AssocThrough && a.Through == "" {
		return newInvalidInputError(c.name, "through association "+a.Name+" has no join collection")
	}
	if a.ForeignKey == "" {
		a.ForeignKey = foreignKeyFor(c.name)
	}
	if a.TargetKey == "" {
		a.TargetKey = foreignKeyFor(a.Target)
	}
	c.assocs[a.Name] = a
	return nil
}

// Associated resolves a declared association for one record.
//
// Direct associations issue a single native equality lookup on the
// target relation. Through associations issue exactly two lookups: the
// join relation for rows pointing back at the record, then the target
// relation for the collected key set. An empty join result
// short-circuits to an empty slice; an empty IN predicate is never
// issued. Querying a join or target collection that was never
// materialized fails with a missing-relation condition.
func (c *Collection) Associated(ctx context.Context, r *Record, name string) ([]*Record, error) {
	a, ok := c.assocs[name]
	if !ok {
		return nil, newInvalidInputError(c.name, fmt.Sprintf("no association %q declared", name))
	}

	target := c.reg.Collection(a.Target)
	if err := target.ensureFresh(ctx); err != nil {
		return nil, err
	}

	if a.Kind == AssocDirect {
		rows, err := c.reg.store.FindEq(ctx, target.name, a.ForeignKey, r.PK())
		if err != nil {
			return nil, target.classifyQueryError(err)
		}
		return target.records(rows), nil
	}

	join := c.reg.Collection(a.Through)
	if err := join.ensureFresh(ctx); err != nil {
		return nil, err
	}

	joinRows, err := c.reg.store.FindEq(ctx, join.name, a.ForeignKey, r.PK())
	if err != nil {
		return nil, join.classifyQueryError(err)
	}

	keys := distinctKeys(joinRows, a.TargetKey)
	if len(keys) == 0 {
		return []*Record{}, nil
	}

	pkColumn := a.PrimaryKey
	if pkColumn == "" {
		pkColumn = target.pkColumn
	}
	rows, err := c.reg.store.FindIn(ctx, target.name, pkColumn, keys)
	if err != nil {
		return nil, target.classifyQueryError(err)
	}
	return target.records(rows), nil
}

// distinctKeys extracts the ordered distinct sequence of key values
// from the join rows, skipping nulls.
func distinctKeys(rows []value.Mapping, column string) []value.Value {
	var keys []value.Value
	for _, row := range rows {
		v, ok := row[column]
		if !ok {
			continue
		}
		if _, isNull := v.(value.Null); isNull {
			continue
		}
		seen := false
		for _, k := range keys {
			if value.Equal(k, v) {
				seen = true
				break
			}
		}
		if !seen {
			keys = append(keys, v)
		}
	}
	return keys
}

// foreignKeyFor derives the conventional foreign-key column for a
// collection name: the singularized name plus "_id".
func foreignKeyFor(collection string) string {
	return singularize(collection) + "_id"
}

// singularize trims the plural suffix off a collection name. Covers the
// conventional cases (genres, albums, categories); irregular plurals
// take an explicit key instead.
func singularize(name string) string {
	switch {
	case strings.HasSuffix(name, "ies"):
		return name[:len(name)-3] + "y"
	case strings.HasSuffix(name, "ses"):
		return name[:len(name)-2]
	case strings.HasSuffix(name, "s") && !strings.HasSuffix(name, "ss"):
		return name[:len(name)-1]
	default:
		return name
	}
}
