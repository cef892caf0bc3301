package refdata

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/refdata/value"
)

var (
	separatorRuns = regexp.MustCompile(`[\s-]+`)
	leadingDigits = regexp.MustCompile(`^[0-9_]+`)
	nonWordRunes  = regexp.MustCompile(`[^A-Z0-9_]`)
)

// NormalizeToken derives a stable identifier token from a
// human-readable name: NFKC-normalize, trim, uppercase, collapse
// whitespace and hyphen runs to single underscores, strip any leading
// run of digits or underscores, and drop every remaining non-word rune.
//
// "Rock" becomes ROCK; "Hip-Hop" becomes HIP_HOP. An empty result is
// possible (e.g. a purely numeric name) and yields no binding.
func NormalizeToken(name string) string {
	s := norm.NFKC.String(strings.TrimSpace(name))
	s = strings.ToUpper(s)
	s = separatorRuns.ReplaceAllString(s, "_")
	s = leadingDigits.ReplaceAllString(s, "")
	return nonWordRunes.ReplaceAllString(s, "")
}

// bindSymbol derives a token from the mapping's name attribute and
// binds it to the record's primary key. First write wins: a token
// already bound is left untouched, silently. Collisions are a
// documented simplification, not an error.
func (c *Collection) bindSymbol(m value.Mapping, pk value.Value) {
	if c.schema == nil || !c.schema.Has("name") {
		return
	}
	name, ok := m["name"].(value.String)
	if !ok || name == "" {
		return
	}
	tok := NormalizeToken(string(name))
	if tok == "" {
		return
	}
	if _, bound := c.symbols[tok]; bound {
		return
	}
	c.symbols[tok] = pk
}

// SymbolValue returns the primary-key value bound to a derived token,
// or ok=false when the token is unbound.
func (c *Collection) SymbolValue(token string) (value.Value, bool) {
	v, ok := c.symbols[token]
	return v, ok
}

// Symbols returns a copy of the collection's token bindings.
func (c *Collection) Symbols() map[string]value.Value {
	out := make(map[string]value.Value, len(c.symbols))
	for k, v := range c.symbols {
		out[k] = v
	}
	return out
}
