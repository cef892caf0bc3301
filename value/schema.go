package value

// ColumnType is the closed set of relational column types a Value
// kind can infer to.
type ColumnType string

const (
	TypeInteger  ColumnType = "INTEGER"
	TypeDecimal  ColumnType = "REAL"
	TypeDate     ColumnType = "DATE"
	TypeDatetime ColumnType = "DATETIME"
	TypeString   ColumnType = "TEXT"
)

// Column is one named, typed column of an inferred schema.
type Column struct {
	Name string
	Type ColumnType
}

// Schema is the ordered column layout inferred for a collection.
// The primary-key column is held separately as an identity column.
type Schema struct {
	Columns []Column
}

// Has reports whether the schema contains a column with the given name.
func (s Schema) Has(name string) bool {
	for _, c := range s.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Names returns the schema's column names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// InferType maps a Value to its column type. Null and strings (and the
// boolean fallback, which arrives here as a string) infer to TEXT.
func InferType(v Value) ColumnType {
	switch v.(type) {
	case Int:
		return TypeInteger
	case Float:
		return TypeDecimal
	case Date:
		return TypeDate
	case DateTime:
		return TypeDatetime
	default:
		return TypeString
	}
}

// InferSchema derives a schema from the first mapping seen for a
// collection, excluding the primary-key column. It runs exactly once per
// collection; later mappings are written against this schema as-is, so a
// later mapping introducing a new column fails at insert time rather
// than widening the schema.
//
// Column order is the mapping's lexical key order (mappings are
// unordered at the boundary).
func InferSchema(first Mapping, pkColumn string) Schema {
	var s Schema
	for _, name := range first.SortedKeys() {
		if name == pkColumn {
			continue
		}
		s.Columns = append(s.Columns, Column{Name: name, Type: InferType(first[name])})
	}
	return s
}
