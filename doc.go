// Package refdata is a read-only, in-memory, queryable record store for
// small, rarely-changing reference datasets - the kind of data usually
// hard-coded as enums or lookup tables (genres, statuses, categories)
// but which benefits from relational querying and associations.
//
// Records are defined inline or loaded from a structured data file,
// materialized into an in-memory relation with a schema inferred from
// the first record, and frozen: every application-level mutation fails
// with a read-only violation while the load path itself stays writable.
//
// # Critical Patterns
//
// CP-1: Schema Fixed At First Record
//   - The column layout is inferred once, from the first mapping seen
//   - A later mapping with an unknown column fails, never widens
//
// CP-2: Definitions Are The Source Of Truth
//   - Every defined mapping is retained verbatim, in insertion order
//   - When the backing database is re-established, the retained list
//     is replayed to rebuild the relation transparently
//
// CP-3: Two-Step Association Resolution
//   - Many-to-many associations issue two sequential lookups instead
//     of a relational join; an empty join result short-circuits
//
// CP-4: First-Write-Wins Symbol Bindings
//   - A record's name derives an uppercase token bound to its key
//   - Colliding tokens keep the first binding, silently
//
// All load operations are synchronous and single-threaded by design;
// perform them before serving concurrent read traffic.
package refdata
