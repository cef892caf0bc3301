package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/refdata/value"
)

// FindByPK returns the row with the given identity value, or ok=false
// if no such row exists. The returned mapping includes the identity
// column.
func (s *Store) FindByPK(ctx context.Context, name string, pk value.Value) (value.Mapping, bool, error) {
	ti, err := s.table(name)
	if err != nil {
		return nil, false, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		selectList(ti), quoteIdent(name), quoteIdent(ti.pk.Name))

	rows, err := s.db.QueryContext(ctx, query, value.ToDriver(pk))
	if err != nil {
		return nil, false, fmt.Errorf("find %q by key: %w", name, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, false, fmt.Errorf("find %q by key: %w", name, err)
		}
		return nil, false, nil
	}
	m, err := scanRow(rows, ti)
	if err != nil {
		return nil, false, fmt.Errorf("find %q by key: %w", name, err)
	}
	return m, true, nil
}

// FindEq returns all rows whose column equals the given value, ordered
// by the identity column for determinism. Returns an empty slice (not
// nil) when nothing matches.
func (s *Store) FindEq(ctx context.Context, name, column string, v value.Value) ([]value.Mapping, error) {
	ti, err := s.table(name)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY %s ASC",
		selectList(ti), quoteIdent(name), quoteIdent(column), quoteIdent(ti.pk.Name))

	return s.queryRows(ctx, name, ti, query, value.ToDriver(v))
}

// FindIn returns all rows whose column value is in the given non-empty
// set, ordered by the identity column. Callers must short-circuit empty
// sets themselves; an empty set here is a programming error.
func (s *Store) FindIn(ctx context.Context, name, column string, vals []value.Value) ([]value.Mapping, error) {
	if len(vals) == 0 {
		return nil, fmt.Errorf("find %q: empty key set", name)
	}
	ti, err := s.table(name)
	if err != nil {
		return nil, err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(vals)), ", ")
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s IN (%s) ORDER BY %s ASC",
		selectList(ti), quoteIdent(name), quoteIdent(column), placeholders, quoteIdent(ti.pk.Name))

	args := make([]any, len(vals))
	for i, v := range vals {
		args[i] = value.ToDriver(v)
	}
	return s.queryRows(ctx, name, ti, query, args...)
}

// All returns every row of a relation, ordered by the identity column.
func (s *Store) All(ctx context.Context, name string) ([]value.Mapping, error) {
	ti, err := s.table(name)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s ASC",
		selectList(ti), quoteIdent(name), quoteIdent(ti.pk.Name))
	return s.queryRows(ctx, name, ti, query)
}

// Count returns the number of rows in a relation.
func (s *Store) Count(ctx context.Context, name string) (int64, error) {
	if _, err := s.table(name); err != nil {
		return 0, err
	}
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(name)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %q: %w", name, err)
	}
	return n, nil
}

func (s *Store) queryRows(ctx context.Context, name string, ti tableInfo, query string, args ...any) ([]value.Mapping, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", name, err)
	}
	defer rows.Close()

	out := []value.Mapping{}
	for rows.Next() {
		m, err := scanRow(rows, ti)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", name, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %q: %w", name, err)
	}
	return out, nil
}

// selectList builds the column list for a relation: identity column
// first, then schema columns in schema order.
func selectList(ti tableInfo) string {
	cols := make([]string, 0, len(ti.schema.Columns)+1)
	cols = append(cols, quoteIdent(ti.pk.Name))
	for _, c := range ti.schema.Columns {
		cols = append(cols, quoteIdent(c.Name))
	}
	return strings.Join(cols, ", ")
}

// scanRow reads one result row back into a Mapping, converting each
// column through the relation's typed schema.
func scanRow(rows *sql.Rows, ti tableInfo) (value.Mapping, error) {
	cols := make([]value.Column, 0, len(ti.schema.Columns)+1)
	cols = append(cols, ti.pk)
	cols = append(cols, ti.schema.Columns...)

	dests := make([]any, len(cols))
	for i := range cols {
		switch cols[i].Type {
		case value.TypeInteger:
			dests[i] = new(sql.NullInt64)
		case value.TypeDecimal:
			dests[i] = new(sql.NullFloat64)
		case value.TypeDate, value.TypeDatetime:
			// The driver converts DATE/DATETIME-declared columns to
			// time.Time on its own.
			dests[i] = new(sql.NullTime)
		default:
			dests[i] = new(sql.NullString)
		}
	}
	if err := rows.Scan(dests...); err != nil {
		return nil, err
	}

	m := make(value.Mapping, len(cols))
	for i, col := range cols {
		v, err := valueFromScan(col.Type, dests[i])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		m[col.Name] = v
	}
	return m, nil
}

func valueFromScan(t value.ColumnType, dest any) (value.Value, error) {
	switch t {
	case value.TypeInteger:
		d := dest.(*sql.NullInt64)
		if !d.Valid {
			return value.Null{}, nil
		}
		return value.Int(d.Int64), nil
	case value.TypeDecimal:
		d := dest.(*sql.NullFloat64)
		if !d.Valid {
			return value.Null{}, nil
		}
		return value.Float(d.Float64), nil
	case value.TypeDate:
		d := dest.(*sql.NullTime)
		if !d.Valid {
			return value.Null{}, nil
		}
		return value.Date{Year: d.Time.Year(), Month: d.Time.Month(), Day: d.Time.Day()}, nil
	case value.TypeDatetime:
		d := dest.(*sql.NullTime)
		if !d.Valid {
			return value.Null{}, nil
		}
		return value.DateTime(d.Time), nil
	default:
		d := dest.(*sql.NullString)
		if !d.Valid {
			return value.Null{}, nil
		}
		return value.String(d.String), nil
	}
}

// IsMissingRelation reports whether err marks a query against a
// never-materialized relation. Uses errors.Is to handle wrapped errors.
func IsMissingRelation(err error) bool {
	return errors.Is(err, ErrMissingRelation)
}

// IsUnknownColumn reports whether err marks an insert with a column
// outside the inferred schema. Uses errors.Is to handle wrapped errors.
func IsUnknownColumn(err error) bool {
	return errors.Is(err, ErrUnknownColumn)
}
