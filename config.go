package refdata

import (
	"path/filepath"

	"github.com/roach88/refdata/store"
)

// Config is the process-wide configuration, passed explicitly at Open
// rather than read from ambient global state. It is consulted once per
// collection's first load.
type Config struct {
	// DataDir is the base directory for structured data files. A
	// collection loaded without an explicit path reads
	// <DataDir>/<collection>.yml.
	DataDir string

	// Store holds the connection parameters for the in-memory engine.
	Store store.Config
}

// DefaultConfig returns the conventional configuration: data files
// under config/data and a single-connection in-memory database.
func DefaultConfig() Config {
	return Config{
		DataDir: filepath.Join("config", "data"),
		Store:   store.DefaultConfig(),
	}
}
