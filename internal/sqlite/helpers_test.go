// Shared fixtures for the SQLite backend tests.
package sqlite

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

// setupBackend attaches a backend to an isolated temp directory and detaches
// it when the test ends.
func setupBackend(t *testing.T) (*Backend, string) {
	t.Helper()
	dir := t.TempDir()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	t.Cleanup(func() { b.Detach() })
	return b, dir
}

// newFrequency returns a minimal valid active frequency.
func newFrequency(name string, mhz float64, mode string) *types.Frequency {
	return &types.Frequency{Frequency: mhz, Name: name, Mode: mode, Active: true}
}

// mustCreateFrequency inserts f and returns its id.
func mustCreateFrequency(t *testing.T, b *Backend, f *types.Frequency) int64 {
	t.Helper()
	id, err := b.Frequencies().Create(f)
	require.NoError(t, err)
	return id
}

// mustCreateSystem inserts a system with the given external id and returns
// its row id.
func mustCreateSystem(t *testing.T, b *Backend, systemID, name string) int64 {
	t.Helper()
	id, err := b.Systems().Create(&types.TrunkedSystem{
		SystemID: systemID, Name: name, Type: types.ProtocolP25, Active: true,
	})
	require.NoError(t, err)
	return id
}

func mustCreateSite(t *testing.T, b *Backend, systemID int64, siteID string) int64 {
	t.Helper()
	id, err := b.Sites().Create(&types.TrunkedSite{
		SystemID: systemID, SiteID: siteID, Name: "Site " + siteID, Active: true,
	})
	require.NoError(t, err)
	return id
}

func mustCreateTalkgroup(t *testing.T, b *Backend, systemID, decimal int64, tag string) int64 {
	t.Helper()
	id, err := b.Talkgroups().Create(&types.Talkgroup{
		SystemID: systemID, DecimalID: decimal, AlphaTag: tag, Active: true,
	})
	require.NoError(t, err)
	return id
}

func frequencyNames(freqs []types.Frequency) []string {
	names := make([]string, len(freqs))
	for i, f := range freqs {
		names[i] = f.Name
	}
	return names
}
