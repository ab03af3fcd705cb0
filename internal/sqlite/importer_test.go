package sqlite

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

// frequencyCSV builds a frequencies CSV with n rows; the row at badRow
// (1-based, 0 for none) has a non-numeric frequency.
func frequencyCSV(n, badRow int) string {
	var sb strings.Builder
	sb.WriteString("frequency,name,mode,county,export_chirp\n")
	for i := 1; i <= n; i++ {
		mhz := fmt.Sprintf("%.3f", 146.0+float64(i)*0.015)
		if i == badRow {
			mhz = "abc"
		}
		fmt.Fprintf(&sb, "%s,Channel %d,FM,Jackson,1\n", mhz, i)
	}
	return sb.String()
}

func TestImportCSV_RowErrorsDoNotAbort(t *testing.T) {
	b, _ := setupBackend(t)

	res, err := b.ImportCSV(context.Background(), types.ImportFrequencies, strings.NewReader(frequencyCSV(10, 4)))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 10, res.TotalRecords)
	assert.Equal(t, 9, res.ImportedRecords)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 4, res.Errors[0].Row)
	assert.Contains(t, res.Errors[0].Message, "frequency")

	freqs, err := b.Frequencies().List(nil)
	require.NoError(t, err)
	assert.Len(t, freqs, 9)
	assert.True(t, freqs[0].ExportChirp)
	assert.True(t, freqs[0].Active, "active defaults to true when the column is absent")
}

func TestImportCSV_ChunkingDoesNotChangeResult(t *testing.T) {
	dir := t.TempDir()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{
		Backend: types.BackendSQLite, DataDir: dir, Import: types.ImportConfig{ChunkSize: 3},
	}))
	defer b.Detach()

	res, err := b.ImportCSV(context.Background(), types.ImportFrequencies, strings.NewReader(frequencyCSV(10, 0)))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 10, res.ImportedRecords)
	assert.Empty(t, res.Errors)
}

func TestImportCSV_HeaderQuirks(t *testing.T) {
	b, _ := setupBackend(t)

	input := "\ufeff frequency , name ,mode,notes\n" +
		"146.52, KC Simplex ,FM,\n" +
		"\"146.94\",\"W0ERH, Kansas City\",FM,\"repeater\"\n"
	res, err := b.ImportCSV(context.Background(), types.ImportFrequencies, strings.NewReader(input))
	require.NoError(t, err)
	require.True(t, res.Success, "errors: %v", res.Errors)

	freqs, err := b.Frequencies().List(nil)
	require.NoError(t, err)
	require.Len(t, freqs, 2)
	assert.Equal(t, "KC Simplex", freqs[0].Name)
	assert.Nil(t, freqs[0].Notes, "empty cells are absent")
	assert.Equal(t, "W0ERH, Kansas City", freqs[1].Name)
}

func TestImportCSV_SystemsRouteSiteColumns(t *testing.T) {
	b, _ := setupBackend(t)

	input := "system_id,name,type,system_class,site_site_id,site_name,site_county\n" +
		"1234,Metro P25,P25,Public Safety,001,Downtown,Jackson\n" +
		"5678,Rail Yard,LTR,Business,,,\n" +
		"9999,Broken Site,P25,,002,,\n"
	res, err := b.ImportCSV(context.Background(), types.ImportSystems, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalRecords)
	assert.Equal(t, 2, res.ImportedRecords)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 3, res.Errors[0].Row)

	systems, err := b.Systems().List(nil)
	require.NoError(t, err)
	require.Len(t, systems, 2, "a system whose site is invalid is not inserted")

	metro := systems[0]
	require.Equal(t, "Metro P25", metro.Name)
	d, err := b.Systems().Detail(metro.ID)
	require.NoError(t, err)
	require.Len(t, d.Sites, 1)
	assert.Equal(t, "Downtown", d.Sites[0].Name)
	require.NotNil(t, d.Sites[0].County)
	assert.Equal(t, "Jackson", *d.Sites[0].County)
}

func TestImportCSV_FailedSiteUndoesItsSystem(t *testing.T) {
	b, _ := setupBackend(t)
	_, err := b.db.Exec(`CREATE TRIGGER reject_sites BEFORE INSERT ON trunked_sites
    BEGIN SELECT RAISE(ABORT, 'site rejected'); END`)
	require.NoError(t, err)

	input := "system_id,name,type,site_site_id,site_name\n" +
		"1234,Metro P25,P25,001,Downtown\n" +
		"5678,Rail Yard,LTR,,\n"
	res, err := b.ImportCSV(context.Background(), types.ImportSystems, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, res.ImportedRecords)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 1, res.Errors[0].Row)
	assert.Contains(t, res.Errors[0].Message, "site rejected")

	systems, err := b.Systems().List(nil)
	require.NoError(t, err)
	require.Len(t, systems, 1)
	assert.Equal(t, "Rail Yard", systems[0].Name)
}

func TestImportCSV_EngineFailureRollsBack(t *testing.T) {
	b, _ := setupBackend(t)
	// The backend holds a single connection, so the pragma applies to the
	// import transaction.
	_, err := b.db.Exec("PRAGMA query_only = 1")
	require.NoError(t, err)

	res, err := b.ImportCSV(context.Background(), types.ImportFrequencies, strings.NewReader(frequencyCSV(3, 0)))
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, types.IsStoreError(err), "got %v", err)

	_, err = b.db.Exec("PRAGMA query_only = 0")
	require.NoError(t, err)
	freqs, err := b.Frequencies().List(nil)
	require.NoError(t, err)
	assert.Empty(t, freqs)
}

func TestImportCSV_TalkgroupsNeedParent(t *testing.T) {
	b, _ := setupBackend(t)
	sys := mustCreateSystem(t, b, "1234", "Metro")

	input := fmt.Sprintf("system_id,decimal_id,alpha_tag,priority\n%d,100,DISPATCH,1\n%d,200,ORPHAN,\n%d,,NO DECIMAL,\n",
		sys, sys+50, sys)
	res, err := b.ImportCSV(context.Background(), types.ImportTalkgroups, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, res.ImportedRecords)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 2, res.Errors[0].Row)
	assert.Equal(t, 3, res.Errors[1].Row)
}

func TestImportCSV_Rejects(t *testing.T) {
	b, _ := setupBackend(t)

	_, err := b.ImportCSV(context.Background(), types.ImportKind("stations"), strings.NewReader("a\n1\n"))
	assert.ErrorIs(t, err, types.ErrInvalidData)

	_, err = b.ImportCSV(context.Background(), types.ImportFrequencies, strings.NewReader(""))
	assert.ErrorIs(t, err, types.ErrInvalidData)
}

func TestImportCSV_CancelledContextRollsBack(t *testing.T) {
	b, _ := setupBackend(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.ImportCSV(ctx, types.ImportFrequencies, strings.NewReader(frequencyCSV(5, 0)))
	assert.ErrorIs(t, err, context.Canceled)

	freqs, err := b.Frequencies().List(nil)
	require.NoError(t, err)
	assert.Empty(t, freqs)
}

func TestValidateImport(t *testing.T) {
	records := []map[string]string{
		{"frequency": "146.52", "name": "OK", "mode": "FM"},
		{"frequency": "0", "name": "Zero", "mode": "FM"},
		{"frequency": "146.52", "name": " ", "mode": "FM"},
		{"frequency": "146.52", "name": "Bad mode", "mode": "CW"},
		{"frequency": "146.52", "name": "Bad flag", "mode": "FM", "export_chirp": "yes"},
	}

	errs := ValidateImport(types.ImportFrequencies, records)
	rows := make([]int, len(errs))
	for i, e := range errs {
		rows[i] = e.Row
	}
	assert.Equal(t, []int{2, 3, 4, 5}, rows)
	assert.Contains(t, errs[0].Message, "greater than zero")
	assert.Contains(t, errs[1].Message, "name is required")

	assert.Empty(t, ValidateImport(types.ImportSystems, []map[string]string{
		{"system_id": "1", "name": "Metro", "type": "P25", "site_site_id": "001", "site_name": "Downtown"},
	}))
	assert.Len(t, ValidateImport(types.ImportSites, []map[string]string{{"site_id": "001", "name": "x"}}), 1)
}

const radioReferenceDoc = `{
  "systems": [
    {
      "id": 6643,
      "name": "Metro Area Radio System",
      "type": "P25",
      "systemClass": "Public Safety",
      "wacn": "BEE00",
      "sites": [
        {"id": "001", "name": "Downtown", "county": "Jackson", "state": "MO", "latitude": 39.1, "longitude": -94.58},
        {"id": 2, "name": "Overland Park", "county": "Johnson", "state": "KS"}
      ],
      "talkgroups": [
        {"decimal": 1001, "hex": "3E9", "alphaTag": "KCPD 1", "mode": "D", "category": "Law Dispatch"},
        {"decimal": 1002, "alphaTag": ""}
      ]
    },
    {"id": "", "name": "Nameless"}
  ],
  "conventional": [
    {"frequency": 155.475, "name": "NLEEC", "mode": "FM", "toneFreq": 156.7, "tags": ["interop", "law"]},
    {"frequency": 0, "name": "Broken", "mode": "FM"}
  ]
}`

func TestImportRadioReference(t *testing.T) {
	b, _ := setupBackend(t)

	res, err := b.ImportRadioReference(context.Background(), strings.NewReader(radioReferenceDoc))
	require.NoError(t, err)
	// 1 system + 2 sites + 2 talkgroups, 1 nameless system, 2 conventional.
	assert.Equal(t, 8, res.TotalRecords)
	assert.Equal(t, 5, res.ImportedRecords)
	assert.Len(t, res.Errors, 3)
	assert.False(t, res.Success)

	systems, err := b.Systems().List(nil)
	require.NoError(t, err)
	require.Len(t, systems, 1)
	assert.Equal(t, "6643", systems[0].SystemID)

	d, err := b.Systems().Detail(systems[0].ID)
	require.NoError(t, err)
	require.Len(t, d.Sites, 2)
	assert.Equal(t, "2", d.Sites[1].SiteID)
	assert.Equal(t, systems[0].ID, d.Sites[0].SystemID, "children reference the inserted row id")
	require.Len(t, d.Talkgroups, 1)
	assert.Equal(t, "KCPD 1", d.Talkgroups[0].AlphaTag)

	freqs, err := b.Frequencies().List(nil)
	require.NoError(t, err)
	require.Len(t, freqs, 1)
	require.NotNil(t, freqs[0].ToneFreq)
	assert.Equal(t, "156.7", *freqs[0].ToneFreq)
	require.NotNil(t, freqs[0].Tags)
	assert.Equal(t, "interop,law", *freqs[0].Tags)
}

func TestImportRadioReference_BadDocument(t *testing.T) {
	b, _ := setupBackend(t)

	_, err := b.ImportRadioReference(context.Background(), strings.NewReader(`{"systems": [`))
	assert.ErrorIs(t, err, types.ErrInvalidData)

	counts, err := b.Counts()
	require.NoError(t, err)
	assert.Zero(t, counts[types.SystemsTable])
}

func TestImportRadioReference_EngineFailureRollsBack(t *testing.T) {
	b, _ := setupBackend(t)
	_, err := b.db.Exec("PRAGMA query_only = 1")
	require.NoError(t, err)

	_, err = b.ImportRadioReference(context.Background(), strings.NewReader(radioReferenceDoc))
	require.Error(t, err)
	assert.True(t, types.IsStoreError(err), "got %v", err)

	_, err = b.db.Exec("PRAGMA query_only = 0")
	require.NoError(t, err)
	counts, err := b.Counts()
	require.NoError(t, err)
	assert.Zero(t, counts[types.SystemsTable])
	assert.Zero(t, counts[types.FrequenciesTable])
}
