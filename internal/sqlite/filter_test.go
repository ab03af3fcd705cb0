package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

func TestCompileFrequencyFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter *types.FrequencyFilter
		sql    string
		args   []any
	}{
		{"nil", nil, "", nil},
		{"empty", &types.FrequencyFilter{}, "", nil},
		{
			"mode list",
			&types.FrequencyFilter{Mode: []string{"FM", "NFM"}},
			" WHERE mode IN (?, ?)",
			[]any{"FM", "NFM"},
		},
		{
			"active false is a predicate",
			&types.FrequencyFilter{Active: types.Bool(false)},
			" WHERE active = ?",
			[]any{0},
		},
		{
			"search spans three columns",
			&types.FrequencyFilter{Search: "fire"},
			` WHERE (name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\' OR alpha_tag LIKE ? ESCAPE '\')`,
			[]any{"%fire%", "%fire%", "%fire%"},
		},
		{
			"tag wildcards are literal",
			&types.FrequencyFilter{TagContains: `50%_off\`},
			` WHERE tags LIKE ? ESCAPE '\'`,
			[]any{`%50\%\_off\\%`},
		},
		{
			"range and distance",
			&types.FrequencyFilter{FrequencyRange: []float64{144, 148}, MaxDistance: types.Float(50)},
			" WHERE distance_from_kc <= ? AND frequency BETWEEN ? AND ?",
			[]any{50.0, 144.0, 148.0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := compileFrequencyFilter(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.sql, w.String())
			assert.Equal(t, tt.args, w.args)
		})
	}
}

func TestFrequencyList_SearchMatchesLiterally(t *testing.T) {
	b, _ := setupBackend(t)
	mustCreateFrequency(t, b, newFrequency("Fire Dispatch", 154.25, "FM"))
	mustCreateFrequency(t, b, newFrequency("Police", 155.1, "FM"))
	mustCreateFrequency(t, b, newFrequency("50% Duty_Cycle", 462.55, "FM"))

	tests := []struct {
		search string
		want   []string
	}{
		{"_", []string{"50% Duty_Cycle"}},
		{"%", []string{"50% Duty_Cycle"}},
		{"0%", []string{"50% Duty_Cycle"}},
		{"e_d", []string{}},
		{"FIRE", []string{"Fire Dispatch"}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			got, err := b.Frequencies().List(&types.FrequencyFilter{Search: tt.search})
			require.NoError(t, err)
			assert.Equal(t, tt.want, frequencyNames(got))
		})
	}
}

func TestBuildUpdate(t *testing.T) {
	query, args, err := buildUpdate(types.FrequenciesTable, 9, types.Patch{
		"offset": 0.6,
		"name":   "Renamed",
		"active": "false",
	})
	require.NoError(t, err)
	assert.Equal(t,
		`UPDATE frequencies SET active = ?, name = ?, "offset" = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		query)
	assert.Equal(t, []any{0, "Renamed", 0.6, int64(9)}, args)
}
