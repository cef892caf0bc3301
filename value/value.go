// Package value defines the tagged scalar variant used for record
// attributes, plus the column-type inference rules that derive a
// relational schema from the first record of a collection.
//
// Only a closed set of kinds is admitted at the boundary:
// null, integer, decimal, date, datetime, and string. Anything else
// (booleans included) is carried as a string. This keeps schema
// inference a total function over a small variant instead of
// open-ended runtime type inspection.
package value

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Value is a sealed interface representing one attribute value.
// Only Null, Int, Float, Date, DateTime, and String implement it.
type Value interface {
	scalar() // Sealed - only the types in this package implement it.
}

// Null represents an absent value.
// Using an explicit type keeps every Value non-nil.
type Null struct{}

func (Null) scalar() {}

// Int represents an integer value. Always int64.
type Int int64

func (Int) scalar() {}

// Float represents a decimal value.
type Float float64

func (Float) scalar() {}

// Date represents a calendar date with no time component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (Date) scalar() {}

// DateTime represents a date with a time component, second precision.
type DateTime time.Time

func (DateTime) scalar() {}

// String represents a textual value.
type String string

func (String) scalar() {}

// Date/datetime layouts recognized at the boundary and used on the wire.
const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// FromAny converts a decoded document value (as produced by the YAML or
// JSON decoders) into a Value. Strings matching a date or datetime layout
// are promoted to the corresponding kind; booleans and any other scalar
// fall back to their string rendering.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint64:
		return Int(int64(val)), nil
	case float64:
		return Float(val), nil
	case float32:
		return Float(float64(val)), nil
	case bool:
		if val {
			return String("true"), nil
		}
		return String("false"), nil
	case time.Time:
		// The YAML decoder resolves timestamp scalars into time.Time.
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 {
			return Date{Year: val.Year(), Month: val.Month(), Day: val.Day()}, nil
		}
		return DateTime(val), nil
	case string:
		return fromString(val), nil
	case fmt.Stringer:
		return String(val.String()), nil
	default:
		return nil, fmt.Errorf("unsupported attribute value type: %T", v)
	}
}

// fromString promotes date-shaped strings, leaving everything else textual.
func fromString(s string) Value {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
	}
	if t, err := time.Parse(dateTimeLayout, s); err == nil {
		return DateTime(t)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateTime(t)
	}
	return String(s)
}

// ToDriver converts a Value to the representation handed to the SQL driver.
// Dates and datetimes travel as their canonical textual layouts.
func ToDriver(v Value) any {
	switch val := v.(type) {
	case Null:
		return nil
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Date:
		return fmt.Sprintf("%04d-%02d-%02d", val.Year, int(val.Month), val.Day)
	case DateTime:
		return time.Time(val).Format(dateTimeLayout)
	case String:
		return string(val)
	default:
		return nil
	}
}

// Equal reports whether two Values have the same kind and content.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Float:
		bv, ok := b.(Float)
		return ok && av == bv
	case Date:
		bv, ok := b.(Date)
		return ok && av == bv
	case DateTime:
		bv, ok := b.(DateTime)
		return ok && time.Time(av).Equal(time.Time(bv))
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	default:
		return false
	}
}

// Render returns a human-readable form of a Value for error messages.
func Render(v Value) string {
	switch val := v.(type) {
	case Null:
		return "null"
	case String:
		return fmt.Sprintf("%q", string(val))
	default:
		return fmt.Sprintf("%v", ToDriver(v))
	}
}

// Mapping is one record's attributes: column name to scalar value.
// Supplied unordered by the caller and retained verbatim for replay.
type Mapping map[string]Value

// MappingFromAny converts a decoded document object into a Mapping.
func MappingFromAny(m map[string]any) (Mapping, error) {
	out := make(Mapping, len(m))
	for k, raw := range m {
		v, err := FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

// Render returns a compact deterministic rendering of the mapping,
// used in duplicate-key error messages.
func (m Mapping) Render() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range m.SortedKeys() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(Render(m[k]))
	}
	b.WriteByte('}')
	return b.String()
}

// SortedKeys returns the mapping's column names in lexical order.
// Mappings are unordered at the boundary; all derived structures
// (schema, SQL column lists) use this order for determinism.
func (m Mapping) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
