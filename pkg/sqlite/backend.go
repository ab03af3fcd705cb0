// Package sqlite is the public entry point to the omnibus SQLite catalog.
// It re-exports the backend so programs outside this module can embed the
// catalog without the CLI.
package sqlite

import (
	"github.com/mesh-intelligence/omnibus/internal/sqlite"
	"github.com/mesh-intelligence/omnibus/pkg/types"
)

// Backend is the catalog's database handle. See NewBackend.
type Backend = sqlite.Backend

// Record store accessors returned by Backend.
type (
	FrequencyTable = sqlite.FrequencyTable
	SystemTable    = sqlite.SystemTable
	SiteTable      = sqlite.SiteTable
	TalkgroupTable = sqlite.TalkgroupTable
	CountyTable    = sqlite.CountyTable
	RadioTable     = sqlite.RadioTable
	ProfileTable   = sqlite.ProfileTable
	SeedResult     = sqlite.SeedResult
)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".omnibus-db",
//	})
//	defer backend.Detach()
func NewBackend() *Backend {
	return sqlite.NewBackend()
}

// Open creates a backend and attaches it to dataDir with default settings.
func Open(dataDir string) (*Backend, error) {
	b := sqlite.NewBackend()
	if err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dataDir}); err != nil {
		return nil, err
	}
	return b, nil
}
