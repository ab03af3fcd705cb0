package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain builds the omnibus binary once before running tests.
func TestMain(m *testing.M) {
	projectRoot, err := FindProjectRoot()
	if err != nil {
		buildErr = err
		os.Exit(m.Run())
	}

	tmpDir, err := os.MkdirTemp("", "omnibus-test-*")
	if err != nil {
		buildErr = err
		os.Exit(m.Run())
	}
	omnibusBin = filepath.Join(tmpDir, "omnibus")

	cmd := exec.Command("go", "build", "-o", omnibusBin, "./cmd/omnibus")
	cmd.Dir = projectRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		buildErr = &BuildError{Err: err, Output: string(output)}
	}

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

func TestVersion(t *testing.T) {
	env := NewTestEnv(t)
	result := env.MustRun("version")
	assert.True(t, strings.HasPrefix(result.Stdout, "omnibus v"), result.Stdout)
}

func TestInit_WritesConfigAndSeeds(t *testing.T) {
	env := NewTestEnv(t)

	result := env.MustRun("init", "--seed")
	assert.Contains(t, result.Stdout, "Wrote "+filepath.Join(env.Config, "config.yaml"))
	assert.Contains(t, result.Stdout, "seeded")
	assert.FileExists(t, filepath.Join(env.DataDir, "omnibus.db"))

	// Running again neither rewrites the config nor reseeds.
	result = env.MustRun("init", "--seed")
	assert.NotContains(t, result.Stdout, "Wrote ")
	assert.Contains(t, result.Stdout, "seeded 0 counties, 0 radios")

	radios := env.MustRun("radio", "list")
	assert.Contains(t, radios.Stdout, "Baofeng UV-5R")
}

func TestCatalogLifecycle(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRun("init")

	added := env.MustRun("freq", "add", "frequency=155.475", "name=Jackson County EOC", "mode=FM", "export_chirp=true")
	assert.Equal(t, "Created frequency 1\n", added.Stdout)

	f := ParseJSON[Frequency](t, env.MustRun("freq", "get", "1").Stdout)
	assert.Equal(t, 155.475, f.Frequency)
	assert.True(t, f.Active)
	assert.True(t, f.ExportChirp)

	out := filepath.Join(env.TempDir, "chirp.csv")
	result := env.MustRun("export", "chirp", "--out", out)
	assert.Equal(t, "Wrote 1 rows to "+out+"\n", result.Stdout)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Jackson ,155.47500")

	backup := filepath.Join(env.TempDir, "snap.db")
	env.MustRun("backup", backup)

	env.MustRun("freq", "delete", "1", "--yes")
	missing := env.Run("freq", "get", "1")
	assert.Equal(t, 1, missing.ExitCode)
	assert.Contains(t, missing.Stderr, "record not found")

	env.MustRun("restore", backup)
	f = ParseJSON[Frequency](t, env.MustRun("freq", "get", "1").Stdout)
	assert.Equal(t, "Jackson County EOC", f.Name)
}

func TestImport_PartialExitsNonZero(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRun("init")

	csv := filepath.Join(env.TempDir, "freqs.csv")
	require.NoError(t, os.WriteFile(csv, []byte(
		"frequency,name,mode\n146.52,Simplex,FM\n0,Broken,FM\n"), 0o644))

	result := env.Run("import", "frequencies", csv)
	assert.Equal(t, 1, result.ExitCode)
	assert.Contains(t, result.Stdout, "Imported 1 of 2 records")
	assert.Contains(t, result.Stdout, "row 2:")

	list := env.MustRun("--json", "freq", "list")
	freqs := ParseJSON[[]Frequency](t, list.Stdout)
	require.Len(t, freqs, 1)
	assert.Equal(t, "Simplex", freqs[0].Name)
}

func TestInvalidConfigExitsNonZero(t *testing.T) {
	env := NewTestEnv(t)
	require.NoError(t, os.MkdirAll(env.Config, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.Config, "config.yaml"), []byte("backend: postgres\n"), 0o644))

	result := env.Run("freq", "list")
	assert.Equal(t, 1, result.ExitCode)
	assert.Contains(t, result.Stderr, "unknown backend")
}
