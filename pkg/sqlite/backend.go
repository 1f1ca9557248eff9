// Package sqlite provides the public factory for the SQLite creature store
// while keeping the implementation internal.
package sqlite

import (
	"github.com/charmbracelet/log"

	"github.com/mesh-intelligence/dexhub/internal/sqlite"
	"github.com/mesh-intelligence/dexhub/pkg/types"
)

// NewStore creates an unattached SQLite store. A nil logger uses the default
// logger.
func NewStore(logger *log.Logger) types.Store {
	return sqlite.NewBackend(sqlite.WithLogger(logger))
}

// Open creates a store and attaches it to config.
//
// Example:
//
//	store, err := sqlite.Open(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: "/var/lib/dexhub",
//	}, nil)
//	if err != nil {
//	    return err
//	}
//	defer store.Detach()
func Open(config types.Config, logger *log.Logger) (types.Store, error) {
	store := NewStore(logger)
	if err := store.Attach(config); err != nil {
		return nil, err
	}
	return store, nil
}
