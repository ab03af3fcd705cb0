package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImportKind(t *testing.T) {
	for _, k := range ImportKinds {
		got, err := ParseImportKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseImportKind("radios")
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestImportResultAddError(t *testing.T) {
	var r ImportResult
	r.AddError(3, "unknown mode %q", "TETRA")
	r.AddError(7, "name is required")
	assert.Equal(t, []ImportError{
		{Row: 3, Message: `unknown mode "TETRA"`},
		{Row: 7, Message: "name is required"},
	}, r.Errors)
}

func TestFrequencyViewValid(t *testing.T) {
	for _, v := range FrequencyViews {
		assert.True(t, v.Valid(), v)
	}
	assert.False(t, FrequencyView(ViewBusinessTrunked).Valid())
	assert.False(t, FrequencyView("frequencies").Valid())
}

func TestSettingTypeValid(t *testing.T) {
	for _, st := range []SettingType{SettingString, SettingNumber, SettingBoolean, SettingJSON} {
		assert.True(t, st.Valid())
	}
	assert.False(t, SettingType("date").Valid())
}

func TestStoreError(t *testing.T) {
	cause := errors.New("FOREIGN KEY constraint failed")
	err := fmt.Errorf("delete: %w", &StoreError{Op: "delete", Table: SystemsTable, Err: cause})

	assert.True(t, IsStoreError(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "delete: store delete trunked_systems: FOREIGN KEY constraint failed", err.Error())
	assert.Equal(t, "store vacuum: boom", (&StoreError{Op: "vacuum", Err: errors.New("boom")}).Error())
	assert.False(t, IsStoreError(ErrNotFound))
}

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"county without state", (&County{Name: "Jackson", Region: RegionKCCore}).Validate()},
		{"county negative distance", (&County{Name: "Jackson", State: "MO", Region: RegionKCCore, DistanceFromKC: -1}).Validate()},
		{"system without system_id", (&TrunkedSystem{Name: "MARRS", Type: "P25"}).Validate()},
		{"site without parent", (&TrunkedSite{SiteID: "001", Name: "Downtown"}).Validate()},
		{"talkgroup without alpha tag", (&Talkgroup{SystemID: 1}).Validate()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, ErrInvalidData)
		})
	}

	assert.NoError(t, (&County{Name: "Jackson", State: "MO", Region: RegionKCCore}).Validate())
	assert.NoError(t, (&TrunkedSystem{SystemID: "6", Name: "MARRS", Type: "P25"}).Validate())
	assert.NoError(t, (&TrunkedSite{SystemID: 1, SiteID: "001", Name: "Downtown"}).Validate())
	assert.NoError(t, (&Talkgroup{SystemID: 1, AlphaTag: "KCPD Disp"}).Validate())
}
