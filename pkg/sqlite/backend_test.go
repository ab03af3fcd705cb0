package sqlite_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/omnibus/pkg/sqlite"
	"github.com/mesh-intelligence/omnibus/pkg/types"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	b, err := sqlite.Open(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "omnibus.db"), b.Path())

	var freqs *sqlite.FrequencyTable = b.Frequencies()
	id, err := freqs.Create(&types.Frequency{Frequency: 146.52, Name: "KC Simplex", Mode: types.ModeFM, Active: true})
	require.NoError(t, err)
	assert.Positive(t, id)

	require.NoError(t, b.Detach())
	_, err = b.Frequencies().List(nil)
	assert.ErrorIs(t, err, types.ErrBackendDetached)
}

func TestNewBackend_RejectsBadConfig(t *testing.T) {
	b := sqlite.NewBackend()
	err := b.Attach(types.Config{Backend: "postgres", DataDir: t.TempDir()})
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}
