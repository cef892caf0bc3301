package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/refdata/value"
)

// ErrUnknownColumn marks an insert whose mapping names a column absent
// from the relation's inferred schema.
var ErrUnknownColumn = errors.New("unknown column")

// ErrMissingRelation marks a query against a relation that was never
// materialized on the currently established database.
var ErrMissingRelation = errors.New("missing relation")

// CreateTable materializes the relation for a collection with the given
// identity column and inferred schema. Idempotent: a relation that
// already exists on the current database is left untouched.
//
// The identity column is declared PRIMARY KEY but values are always
// assigned explicitly by the caller, never auto-generated.
func (s *Store) CreateTable(ctx context.Context, name string, pk value.Column, schema value.Schema) error {
	if _, ok := s.tables[name]; ok {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (%s %s PRIMARY KEY", quoteIdent(name), quoteIdent(pk.Name), pk.Type)
	for _, col := range schema.Columns {
		fmt.Fprintf(&b, ", %s %s", quoteIdent(col.Name), col.Type)
	}
	b.WriteByte(')')

	if _, err := s.db.ExecContext(ctx, b.String()); err != nil {
		return fmt.Errorf("create table %q: %w", name, err)
	}

	s.tables[name] = tableInfo{pk: pk, schema: schema}
	return nil
}

// DropTable removes a materialized relation and its registration.
// A relation that does not exist is a no-op.
func (s *Store) DropTable(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(name)); err != nil {
		return fmt.Errorf("drop table %q: %w", name, err)
	}
	delete(s.tables, name)
	return nil
}

// Insert writes one row. The mapping must include the identity column;
// its value is written explicitly. A mapping column absent from the
// relation's schema fails with ErrUnknownColumn.
func (s *Store) Insert(ctx context.Context, name string, m value.Mapping) error {
	if _, err := s.table(name); err != nil {
		return err
	}

	cols := m.SortedKeys()
	args := make([]any, 0, len(cols))
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (", quoteIdent(name))
	for i, col := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteIdent(col))
		args = append(args, value.ToDriver(m[col]))
	}
	b.WriteString(") VALUES (")
	for i := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('?')
	}
	b.WriteByte(')')

	if _, err := s.db.ExecContext(ctx, b.String(), args...); err != nil {
		// The driver reports an out-of-schema column as a plain
		// message; classify it so callers can name the condition.
		if strings.Contains(err.Error(), "has no column named") {
			return fmt.Errorf("insert into %q: %v: %w", name, err, ErrUnknownColumn)
		}
		return fmt.Errorf("insert into %q: %w", name, err)
	}
	return nil
}

// quoteIdent quotes a SQL identifier. Collection and column names come
// from callers, not end users, but quoting keeps reserved words usable.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
