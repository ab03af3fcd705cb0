package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

func TestSettings_MissingKeyReturnsDefault(t *testing.T) {
	b, _ := setupBackend(t)

	v, err := b.GetSetting(types.SettingActiveTab, "dashboard")
	require.NoError(t, err)
	assert.Equal(t, "dashboard", v)
}

func TestSettings_ValuesParseByType(t *testing.T) {
	b, _ := setupBackend(t)

	tests := []struct {
		key   string
		value any
		typ   types.SettingType
		want  any
	}{
		{"tab", "frequencies", types.SettingString, "frequencies"},
		{"pageSize", 50, types.SettingNumber, 50.0},
		{types.SettingDarkMode, true, types.SettingBoolean, true},
		{types.SettingSidebarOpen, false, types.SettingBoolean, false},
		{types.SettingModals, map[string]any{"import": false}, types.SettingJSON, map[string]any{"import": false}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			require.NoError(t, b.SetSetting(tt.key, tt.value, tt.typ))
			got, err := b.GetSetting(tt.key, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettings_SetUpserts(t *testing.T) {
	b, _ := setupBackend(t)

	require.NoError(t, b.SetSetting(types.SettingActiveTab, "dashboard", types.SettingString))
	require.NoError(t, b.SetSetting(types.SettingActiveTab, "export", types.SettingString))

	all, err := b.AllSettings()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "export", all[0].Value)
	assert.NotNil(t, all[0].UpdatedAt)
}

func TestSettings_SetRejectsBadInput(t *testing.T) {
	b, _ := setupBackend(t)

	assert.ErrorIs(t, b.SetSetting("", "x", types.SettingString), types.ErrInvalidData)
	assert.ErrorIs(t, b.SetSetting("k", "x", types.SettingType("yaml")), types.ErrInvalidData)
	assert.ErrorIs(t, b.SetSetting("k", func() {}, types.SettingJSON), types.ErrInvalidData)
}

func TestSettings_SetRejectsValueOfWrongType(t *testing.T) {
	b, _ := setupBackend(t)
	require.NoError(t, b.SetSetting("pageSize", 25, types.SettingNumber))

	tests := []struct {
		name  string
		key   string
		value any
		typ   types.SettingType
	}{
		{"word as number", "zoom", "abc", types.SettingNumber},
		{"empty number", "zoom", "", types.SettingNumber},
		{"yes as boolean", types.SettingDarkMode, "yes", types.SettingBoolean},
		{"one as boolean", types.SettingDarkMode, 1, types.SettingBoolean},
		{"overwrite number", "pageSize", "lots", types.SettingNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, b.SetSetting(tt.key, tt.value, tt.typ), types.ErrInvalidData)
		})
	}

	require.NoError(t, b.SetSetting("zoom", "12.5", types.SettingNumber))
	all, err := b.AllSettings()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "pageSize", all[0].Key)
	assert.Equal(t, 25.0, all[0].Value)
	assert.Equal(t, 12.5, all[1].Value)
}

func TestSettings_Delete(t *testing.T) {
	b, _ := setupBackend(t)
	require.NoError(t, b.SetSetting("k", "v", types.SettingString))

	require.NoError(t, b.DeleteSetting("k"))
	v, err := b.GetSetting("k", "gone")
	require.NoError(t, err)
	assert.Equal(t, "gone", v)

	assert.ErrorIs(t, b.DeleteSetting("k"), types.ErrNotFound)
}

func TestSettings_AllOrderedByKey(t *testing.T) {
	b, _ := setupBackend(t)
	require.NoError(t, b.SetSetting("zeta", "1", types.SettingString))
	require.NoError(t, b.SetSetting("alpha", 2, types.SettingNumber))

	all, err := b.AllSettings()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].Key)
	assert.Equal(t, 2.0, all[0].Value)
	assert.Equal(t, types.SettingNumber, all[0].Type)
	assert.Equal(t, "zeta", all[1].Key)
	assert.Equal(t, "1", all[1].Value)
}
