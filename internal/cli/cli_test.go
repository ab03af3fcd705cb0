package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/omnibus/internal/paths"
	"github.com/mesh-intelligence/omnibus/pkg/types"
)

// testEnv is an isolated config and data directory pair.
type testEnv struct {
	configDir string
	dataDir   string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	t.Setenv(paths.EnvConfigDir, "")
	t.Setenv(paths.EnvDataDir, "")
	t.Setenv("OMNIBUS_LOG_LEVEL", "error")
	t.Setenv("OMNIBUS_LOG_FORMAT", "")
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.InfoLevel)
	})
	dir := t.TempDir()
	return testEnv{
		configDir: filepath.Join(dir, "config"),
		dataDir:   filepath.Join(dir, "data"),
	}
}

// run executes the CLI in process and returns stdout and stderr.
func (e testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// mustRun executes the CLI and fails the test on error.
func (e testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := e.run(t, args...)
	require.NoError(t, err, "omnibus %s\nstderr: %s", strings.Join(args, " "), errOut)
	return out
}

func decodeJSON[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), "output: %s", out)
	return v
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun(t, "version")
	assert.Contains(t, out, "omnibus v"+Version)
	assert.Contains(t, out, modulePath)
	assert.NoDirExists(t, env.configDir, "version does not touch the config directory")
}

func TestInit(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "init", "--seed")
	assert.Contains(t, out, "Wrote")
	assert.Contains(t, out, "seeded 16 counties, 5 radios")
	assert.FileExists(t, filepath.Join(env.configDir, "config.yaml"))
	assert.FileExists(t, filepath.Join(env.dataDir, "omnibus.db"))

	out = env.mustRun(t, "init", "--seed")
	assert.NotContains(t, out, "Wrote", "existing config is left alone")
	assert.Contains(t, out, "seeded 0 counties, 0 radios")
}

func TestFrequencyLifecycle(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "freq", "add", "frequency=146.52", "name=KC Simplex", "mode=FM", "county=Jackson")
	assert.Equal(t, "Created frequency 1\n", out)

	f := decodeJSON[types.Frequency](t, env.mustRun(t, "freq", "get", "1"))
	assert.Equal(t, 146.52, f.Frequency)
	assert.True(t, f.Active, "active defaults to true")
	assert.False(t, f.ExportChirp)

	env.mustRun(t, "freq", "update", "1", "name=KC Calling", "county=")
	out = env.mustRun(t, "freq", "toggle", "1", "chirp")
	assert.Contains(t, out, "export_chirp is now true")

	f = decodeJSON[types.Frequency](t, env.mustRun(t, "freq", "get", "1"))
	assert.Equal(t, "KC Calling", f.Name)
	assert.Nil(t, f.County, "empty value clears the column")
	assert.True(t, f.ExportChirp)
	assert.False(t, f.ExportUniden, "toggle changes one flag only")

	out = env.mustRun(t, "freq", "list")
	assert.Contains(t, out, "KC Calling")
	assert.Contains(t, out, "C----")
	assert.Contains(t, out, "Total: 1 frequencies")

	env.mustRun(t, "freq", "delete", "1", "--yes")
	_, _, err := env.run(t, "freq", "get", "1")
	require.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestFrequencyList_Filters(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "freq", "add", "frequency=146.52", "name=Simplex", "mode=FM")
	env.mustRun(t, "freq", "add", "frequency=453.5", "name=Metro", "mode=P25", "active=false")
	env.mustRun(t, "freq", "add", "frequency=162.55", "name=NOAA", "mode=AM", "tags=weather,noaa")

	tests := []struct {
		name   string
		filter []string
		want   []string
	}{
		{"no filter", nil, []string{"Simplex", "NOAA", "Metro"}},
		{"mode list", []string{"mode=FM,P25"}, []string{"Simplex", "Metro"}},
		{"inactive", []string{"active=false"}, []string{"Metro"}},
		{"range", []string{"frequency_range=140,170"}, []string{"Simplex", "NOAA"}},
		{"tag", []string{"tag_contains=noaa"}, []string{"NOAA"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--json", "freq", "list"}, tt.filter...)
			freqs := decodeJSON[[]types.Frequency](t, env.mustRun(t, args...))
			var names []string
			for _, f := range freqs {
				names = append(names, f.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	_, _, err := env.run(t, "freq", "list", "colour=red")
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
	_, _, err = env.run(t, "freq", "list", "nonsense")
	assert.ErrorIs(t, err, types.ErrInvalidData)
}

func TestFrequencyList_Page(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 5; i++ {
		env.mustRun(t, "freq", "add", fmt.Sprintf("frequency=%d.5", 146+i), fmt.Sprintf("name=Ch %d", i), "mode=FM")
	}
	page := decodeJSON[types.FrequencyPage](t, env.mustRun(t, "--json", "freq", "list", "--page", "2", "--page-size", "2"))
	assert.Equal(t, 5, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Ch 2", page.Items[0].Name)
}

func TestFrequencyBatchUpdate(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "freq", "add", "frequency=146.52", "name=A", "mode=FM")
	env.mustRun(t, "freq", "add", "frequency=146.94", "name=B", "mode=FM")

	env.mustRun(t, "freq", "update", "1,2", "export_uniden=1")
	freqs := decodeJSON[[]types.Frequency](t, env.mustRun(t, "--json", "freq", "list"))
	require.Len(t, freqs, 2)
	assert.True(t, freqs[0].ExportUniden)
	assert.True(t, freqs[1].ExportUniden)

	_, _, err := env.run(t, "freq", "update", "1,99", "name=C")
	require.Error(t, err)
	f := decodeJSON[types.Frequency](t, env.mustRun(t, "freq", "get", "1"))
	assert.Equal(t, "A", f.Name, "a failed batch changes nothing")
}

func TestSystemCascade(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "system", "add", "system_id=6643", "name=Metro", "type=P25", "system_class=Business")
	env.mustRun(t, "site", "add", "system_id=1", "site_id=001", "name=Downtown")
	env.mustRun(t, "talkgroup", "add", "system_id=1", "decimal_id=1001", "alpha_tag=DISPATCH")

	d := decodeJSON[types.SystemDetail](t, env.mustRun(t, "system", "get", "1"))
	assert.Len(t, d.Sites, 1)
	assert.Len(t, d.Talkgroups, 1)

	env.mustRun(t, "system", "delete", "1", "-y")
	sites := decodeJSON[[]types.TrunkedSite](t, env.mustRun(t, "--json", "site", "list"))
	assert.Empty(t, sites)

	_, _, err := env.run(t, "site", "add", "system_id=1", "site_id=002", "name=Orphan")
	require.Error(t, err)
	assert.Equal(t, exitSysError, exitCode(err), "a foreign key violation is an engine error")
}

func TestExport(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "init", "--seed")
	env.mustRun(t, "freq", "add", "frequency=155.475", "name=Jackson County EOC Primary", "mode=FM", "export_chirp=1")
	env.mustRun(t, "freq", "add", "frequency=453.5", "name=Metro", "mode=P25", "export_chirp=1")

	out := env.mustRun(t, "export", "chirp")
	assert.True(t, strings.HasPrefix(out, "Location,Name,Frequency"))
	assert.Contains(t, out, ",Jackson ,155.47500,")
	assert.Contains(t, out, "KC Frequency Omnibus")

	dir := t.TempDir()
	out, errOut, err := env.run(t, "export", "CHIRP", "--out", dir, "--radio", "Baofeng UV-5R")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 2 rows")
	assert.Contains(t, errOut, "warning: Frequency 453.5 MHz is outside the supported range for Baofeng UV-5R")
	assert.Contains(t, errOut, "warning: Mode P25 is not supported by Baofeng UV-5R")

	data, err := os.ReadFile(filepath.Join(dir, "omnibus-chirp.csv"))
	require.NoError(t, err)
	assert.False(t, strings.HasSuffix(string(data), "\n"))

	out = env.mustRun(t, "export", "sdrtrunk")
	assert.Contains(t, out, `"trunked": []`)

	_, _, err = env.run(t, "export", "kml")
	assert.ErrorIs(t, err, types.ErrInvalidData)
}

func TestExport_SDRPlusUsesFlag(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "freq", "add", "frequency=162.55", "name=NOAA", "mode=AM", "export_sdrplus=1")
	env.mustRun(t, "freq", "add", "frequency=146.52", "name=Simplex", "mode=FM")

	var doc struct {
		Bookmarks []struct {
			Name      string `json:"name"`
			Bandwidth int    `json:"bandwidth"`
		} `json:"bookmarks"`
	}
	require.NoError(t, json.Unmarshal([]byte(env.mustRun(t, "export", "sdrplus")), &doc))
	require.Len(t, doc.Bookmarks, 1)
	assert.Equal(t, "NOAA", doc.Bookmarks[0].Name)
	assert.Equal(t, 10000, doc.Bookmarks[0].Bandwidth)
}

func TestExport_HamDashTakesActiveSDRRows(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "freq", "add", "frequency=453.5", "name=Metro", "mode=P25", "export_sdrtrunk=1")
	env.mustRun(t, "freq", "add", "frequency=155.475", "name=EOC", "mode=FM", "service_type=Emergency", "export_sdrplus=1")
	env.mustRun(t, "freq", "add", "frequency=146.52", "name=Simplex", "mode=FM")
	env.mustRun(t, "freq", "add", "frequency=162.55", "name=Retired", "mode=AM", "export_sdrplus=1", "active=false")

	var doc struct {
		Frequencies []struct {
			Name     string `json:"name"`
			Priority int    `json:"priority"`
		} `json:"frequencies"`
	}
	require.NoError(t, json.Unmarshal([]byte(env.mustRun(t, "export", "hamdash")), &doc))
	require.Len(t, doc.Frequencies, 2)
	assert.Equal(t, "EOC", doc.Frequencies[0].Name)
	assert.Equal(t, 1, doc.Frequencies[0].Priority)
	assert.Equal(t, "Metro", doc.Frequencies[1].Name)
	assert.Equal(t, 0, doc.Frequencies[1].Priority)
}

func TestProfileRun(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "init", "--seed")
	env.mustRun(t, "freq", "add", "frequency=146.52", "name=Simplex", "mode=FM")
	env.mustRun(t, "freq", "add", "frequency=146.94", "name=Repeater", "mode=FM")
	env.mustRun(t, "freq", "add", "frequency=453.5", "name=Metro", "mode=P25")

	env.mustRun(t, "profile", "add", "radio_id=1", "name=2m",
		`filter_query={"frequency_range":[144,148]}`, "sort_order=frequency DESC")

	out := env.mustRun(t, "profile", "run", "1")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3, "CHIRP is picked from the radio type")
	assert.Contains(t, lines[1], "Repeater")
	assert.Contains(t, lines[2], "Simplex")

	_, _, err := env.run(t, "profile", "add", "radio_id=1", "name=bad", "sort_order=frequency; DROP TABLE radios")
	assert.Error(t, err)
}

func TestImport(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()

	var sb strings.Builder
	sb.WriteString("frequency,name,mode\n")
	for i := 1; i <= 10; i++ {
		mhz := fmt.Sprintf("146.%03d", i*15)
		if i == 4 {
			mhz = "abc"
		}
		fmt.Fprintf(&sb, "%s,Ch %d,FM\n", mhz, i)
	}
	file := filepath.Join(dir, "freqs.csv")
	require.NoError(t, os.WriteFile(file, []byte(sb.String()), 0o644))

	out, _, err := env.run(t, "import", "frequencies", "--dry-run", file)
	require.ErrorIs(t, err, types.ErrInvalidData)
	assert.Contains(t, out, "Validated 10 records, 1 rejected")
	assert.Contains(t, out, "row 4:")
	assert.Empty(t, decodeJSON[[]types.Frequency](t, env.mustRun(t, "--json", "freq", "list")))

	out, _, err = env.run(t, "import", "frequencies", file)
	require.ErrorIs(t, err, types.ErrInvalidData)
	assert.Equal(t, exitUserError, exitCode(err))
	assert.Contains(t, out, "Imported 9 of 10 records")
	assert.Len(t, decodeJSON[[]types.Frequency](t, env.mustRun(t, "--json", "freq", "list")), 9)

	_, _, err = env.run(t, "import", "stations", file)
	assert.ErrorIs(t, err, types.ErrInvalidData)
	_, _, err = env.run(t, "import", "frequencies", filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	assert.Equal(t, exitSysError, exitCode(err))
}

func TestImport_RadioReference(t *testing.T) {
	env := newTestEnv(t)
	file := filepath.Join(t.TempDir(), "rr.json")
	doc := `{"systems":[{"id":6643,"name":"Metro","type":"P25","sites":[{"id":"001","name":"Downtown"}]}],
"conventional":[{"frequency":155.475,"name":"NLEEC","mode":"FM"}]}`
	require.NoError(t, os.WriteFile(file, []byte(doc), 0o644))

	res := decodeJSON[types.ImportResult](t, env.mustRun(t, "--json", "import", "radioreference", file))
	assert.True(t, res.Success)
	assert.Equal(t, 3, res.ImportedRecords)
}

func TestSettings(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, "\"dashboard\"\n", env.mustRun(t, "settings", "get", "activeTab", "--default", "dashboard"))

	env.mustRun(t, "settings", "set", "darkMode", "true", "--type", "boolean")
	env.mustRun(t, "settings", "set", "modals", `{"import":false}`, "--type", "json")
	assert.Equal(t, "true\n", env.mustRun(t, "settings", "get", "darkMode"))

	settings := decodeJSON[[]types.Setting](t, env.mustRun(t, "--json", "settings", "list"))
	require.Len(t, settings, 2)
	assert.Equal(t, "darkMode", settings[0].Key)
	assert.Equal(t, map[string]any{"import": false}, settings[1].Value)

	env.mustRun(t, "settings", "delete", "darkMode")
	_, _, err := env.run(t, "settings", "delete", "darkMode")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, _, err = env.run(t, "settings", "set", "x", "abc", "--type", "number")
	assert.ErrorIs(t, err, types.ErrInvalidData)
}

func TestBackupRestore(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "freq", "add", "frequency=146.52", "name=Keep", "mode=FM")

	snapshot := filepath.Join(t.TempDir(), "snap.db")
	out := env.mustRun(t, "backup", snapshot)
	assert.Contains(t, out, "Backed up")

	env.mustRun(t, "freq", "delete", "1", "--yes")
	env.mustRun(t, "restore", snapshot)

	f := decodeJSON[types.Frequency](t, env.mustRun(t, "freq", "get", "1"))
	assert.Equal(t, "Keep", f.Name)

	env.mustRun(t, "backup")
	snaps, err := filepath.Glob(filepath.Join(env.dataDir, "omnibus-*.db"))
	require.NoError(t, err)
	assert.Len(t, snaps, 1)

	junk := filepath.Join(t.TempDir(), "junk.db")
	require.NoError(t, os.WriteFile(junk, []byte("not a database"), 0o644))
	_, _, err = env.run(t, "restore", junk)
	assert.ErrorIs(t, err, types.ErrInvalidSnapshot)
}

func TestConfigFile(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(env.configDir, 0o755))

	cfgPath := filepath.Join(env.configDir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log_format: xml\n"), 0o644))
	_, _, err := env.run(t, "freq", "list")
	assert.ErrorIs(t, err, types.ErrInvalidData)

	require.NoError(t, os.WriteFile(cfgPath, []byte("import:\n  chunk_size: \" 7 \"\nexport:\n  output_dir: /srv/exports\n"), 0o644))
	v, err := loadConfig(env.configDir)
	require.NoError(t, err)
	cfg, err := decodeConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Import.ChunkSize)
	assert.Equal(t, "/srv/exports", cfg.Export.OutputDir)
	assert.Equal(t, types.BackendSQLite, cfg.Backend)
	assert.Equal(t, "error", cfg.LogLevel, "OMNIBUS_LOG_LEVEL overrides the file")
}

func TestConfigFile_DataDir(t *testing.T) {
	env := newTestEnv(t)
	dataDir := filepath.Join(t.TempDir(), "from-config")
	require.NoError(t, os.MkdirAll(env.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, "config.yaml"),
		[]byte("data_dir: "+dataDir+"\n"), 0o644))

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config-dir", env.configDir, "init"})
	require.NoError(t, root.Execute())
	assert.FileExists(t, filepath.Join(dataDir, "omnibus.db"))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"not found", fmt.Errorf("frequency 3: %w", types.ErrNotFound), exitUserError},
		{"invalid filter", types.ErrInvalidFilter, exitUserError},
		{"store error", &types.StoreError{Op: "list", Err: fmt.Errorf("disk I/O error")}, exitSysError},
		{"detached", types.ErrBackendDetached, exitSysError},
		{"path error", &os.PathError{Op: "open", Path: "x", Err: os.ErrNotExist}, exitSysError},
		{"usage", fmt.Errorf("accepts 1 arg(s), received 0"), exitUserError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestDecodeFilter(t *testing.T) {
	var f types.FrequencyFilter
	require.NoError(t, decodeFilter([]string{
		"mode=FM,NFM", "active=false", "frequency_range=144,148", "distance_from_kc=25", "search=fire",
	}, &f))
	assert.Equal(t, []string{"FM", "NFM"}, f.Mode)
	require.NotNil(t, f.Active)
	assert.False(t, *f.Active)
	assert.Equal(t, []float64{144, 148}, f.FrequencyRange)
	require.NotNil(t, f.MaxDistance)
	assert.Equal(t, 25.0, *f.MaxDistance)
	assert.Equal(t, "fire", f.Search)

	var s types.SiteFilter
	require.NoError(t, decodeFilter([]string{"system_id=4"}, &s))
	require.NotNil(t, s.SystemID)
	assert.Equal(t, int64(4), *s.SystemID)

	assert.ErrorIs(t, decodeFilter([]string{"active=maybe"}, &f), types.ErrInvalidFilter)
}

func TestDeleteConfirmation(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "county", "add", "name=Bates", "state=MO", "region=Regional", "distance_from_kc=60")

	deleteWith := func(input string) (string, error) {
		root := NewRootCmd()
		var stdout, stderr bytes.Buffer
		root.SetIn(strings.NewReader(input))
		root.SetOut(&stdout)
		root.SetErr(&stderr)
		root.SetArgs([]string{"--config-dir", env.configDir, "--data-dir", env.dataDir, "county", "delete", "1"})
		err := root.Execute()
		return stderr.String(), err
	}

	prompt, err := deleteWith("n\n")
	assert.ErrorIs(t, err, errAborted)
	assert.Contains(t, prompt, "Delete county 1? [y/N]")

	_, err = deleteWith("")
	assert.ErrorIs(t, err, errAborted, "EOF declines")
	assert.Len(t, decodeJSON[[]types.County](t, env.mustRun(t, "--json", "county", "list")), 1)

	_, err = deleteWith("yes\n")
	require.NoError(t, err)
	assert.Empty(t, decodeJSON[[]types.County](t, env.mustRun(t, "--json", "county", "list")))
}
