// Package store provides the embeddable in-memory storage and query
// engine backing constant-record collections. It wraps an in-memory
// SQLite database behind the narrow contract the core needs:
// create-typed-table, insert-row, find-by-primary-key, find-by-equality,
// find-by-key-set, table-exists, and a handle identity for detecting
// that the underlying database was re-established.
//
// The engine is single-writer by construction (one pooled connection);
// concurrent reads after the load phase are as safe as SQLite's own
// read path under a single writer.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/refdata/value"
)

// Config holds the connection parameters for the in-memory engine.
type Config struct {
	// Adapter is the database/sql driver name.
	Adapter string

	// DSN is the data source name. Left empty, every established
	// database gets a uniquely named shared-cache in-memory DSN, which
	// lives as long as the pooled connection stays open and is never
	// shared with other stores in the process.
	DSN string

	// MaxConns bounds the connection pool. SQLite supports one writer
	// at a time; the in-memory database additionally dies with its
	// last connection, so this defaults to 1.
	MaxConns int
}

// DefaultConfig returns the conventional in-memory configuration.
func DefaultConfig() Config {
	return Config{
		Adapter:  "sqlite3",
		MaxConns: 1,
	}
}

type tableInfo struct {
	pk     value.Column
	schema value.Schema
}

// Store is a handle to one established in-memory database.
//
// Each established database carries a distinct identity token; callers
// that retain materialized state compare identities to notice that the
// database was silently replaced and their relations discarded.
type Store struct {
	cfg    Config
	db     *sql.DB
	handle string
	tables map[string]tableInfo
}

// Open establishes the in-memory database and stamps it with a fresh
// handle identity.
func Open(cfg Config) (*Store, error) {
	if cfg.Adapter == "" {
		cfg = DefaultConfig()
	}
	s := &Store{cfg: cfg}
	if err := s.establish(); err != nil {
		return nil, err
	}
	return s, nil
}

// establish opens a fresh database connection pool. With no configured
// DSN, each established database gets its own in-memory name so two
// stores (or two generations of one store) never share state.
func (s *Store) establish() error {
	handle := uuid.NewString()
	dsn := s.cfg.DSN
	if dsn == "" {
		dsn = fmt.Sprintf("file:refdata-%s?mode=memory&cache=shared", handle)
	}

	db, err := sql.Open(s.cfg.Adapter, dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Single writer, and the in-memory database must keep at least one
	// connection open or its contents vanish.
	maxConns := s.cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return fmt.Errorf("failed to apply pragmas: %w", err)
	}

	s.db = db
	s.handle = handle
	s.tables = make(map[string]tableInfo)
	return nil
}

// Handle returns the identity token of the currently established
// database. It changes every time the database is (re)established.
func (s *Store) Handle() string {
	return s.handle
}

// Reset tears down the current database and establishes a fresh one.
// All relations and rows are discarded and the handle identity changes.
// This models an externally re-established connection pool.
func (s *Store) Reset() error {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return s.establish()
}

// Close closes the database connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// TableExists reports whether a relation was materialized on the
// currently established database.
func (s *Store) TableExists(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?
	`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("table exists %q: %w", name, err)
	}
	return n > 0, nil
}

// table resolves a materialized relation, failing with ErrMissingRelation
// if nothing was ever materialized under that name on this database.
func (s *Store) table(name string) (tableInfo, error) {
	ti, ok := s.tables[name]
	if !ok {
		return tableInfo{}, fmt.Errorf("relation %q: %w", name, ErrMissingRelation)
	}
	return ti, nil
}
