package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

// kcRepeater is a duplex P25 repeater inside the KC radius.
func kcRepeater() *types.Frequency {
	f := newFrequency("KC Metro P25 Repeater", 453.5, types.ModeP25)
	f.TransmitFrequency = types.Float(458.5)
	f.Duplex = types.String("+")
	f.Offset = types.Float(5)
	f.DistanceFromKC = types.Float(12)
	return f
}

func TestViews_KCRepeaters(t *testing.T) {
	b, _ := setupBackend(t)

	mustCreateFrequency(t, b, kcRepeater())

	far := kcRepeater()
	far.Name = "Far Repeater"
	far.DistanceFromKC = types.Float(51)
	mustCreateFrequency(t, b, far)

	simplex := kcRepeater()
	simplex.Name = "Simplex"
	simplex.Duplex = types.String("")
	mustCreateFrequency(t, b, simplex)

	noTX := kcRepeater()
	noTX.Name = "No TX"
	noTX.TransmitFrequency = nil
	mustCreateFrequency(t, b, noTX)

	inactive := kcRepeater()
	inactive.Name = "Inactive"
	inactive.Active = false
	mustCreateFrequency(t, b, inactive)

	got, err := b.View(types.ViewKCRepeaters)
	require.NoError(t, err)
	require.Equal(t, []string{"KC Metro P25 Repeater"}, frequencyNames(got))
	assert.Equal(t, types.ModeP25, got[0].Mode)
	assert.True(t, got[0].IsRepeater())
}

func TestViews_ExportFlagViews(t *testing.T) {
	b, _ := setupBackend(t)

	chirp := newFrequency("Chirp Only", 146.52, types.ModeFM)
	chirp.ExportChirp = true
	mustCreateFrequency(t, b, chirp)

	off := newFrequency("Chirp Inactive", 146.55, types.ModeFM)
	off.ExportChirp = true
	off.Active = false
	mustCreateFrequency(t, b, off)

	dmr := newFrequency("DMR Talkaround", 441.0, types.ModeDMR)
	dmr.ExportOpenGD77 = true
	dmr.ExportUniden = true
	mustCreateFrequency(t, b, dmr)

	p25 := newFrequency("P25 Not For GD77", 851.0, types.ModeP25)
	p25.ExportOpenGD77 = true
	p25.ExportSDRTrunk = true
	mustCreateFrequency(t, b, p25)

	tests := []struct {
		view types.FrequencyView
		want []string
	}{
		{types.ViewChirp, []string{"Chirp Only"}},
		{types.ViewUniden, []string{"DMR Talkaround"}},
		{types.ViewSDRTrunkConventional, []string{"P25 Not For GD77"}},
		{types.ViewOpenGD77, []string{"DMR Talkaround"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.view), func(t *testing.T) {
			got, err := b.View(tt.view)
			require.NoError(t, err)
			assert.Equal(t, tt.want, frequencyNames(got))
		})
	}
}

func TestViews_ChirpCarriesComment(t *testing.T) {
	b, _ := setupBackend(t)
	f := newFrequency("Jackson County EOC", 155.475, types.ModeFM)
	f.ExportChirp = true
	mustCreateFrequency(t, b, f)

	got, err := b.View(types.ViewChirp)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ChirpComment, got[0].Comment)

	rows, err := b.Rows(string(types.ViewChirp))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ChirpComment, rows[0]["comment"])
	assert.Equal(t, 155.475, rows[0]["frequency"])
}

func TestViews_Business(t *testing.T) {
	b, _ := setupBackend(t)

	biz := newFrequency("Hotel Security", 461.0375, types.ModeNFM)
	biz.ServiceType = types.String(types.ServiceBusiness)
	mustCreateFrequency(t, b, biz)
	ham := newFrequency("Ham", 146.52, types.ModeFM)
	ham.ServiceType = types.String(types.ServiceHam)
	mustCreateFrequency(t, b, ham)

	_, err := b.Systems().Create(&types.TrunkedSystem{
		SystemID: "B1", Name: "Rail Yard", Type: types.ProtocolLTR,
		SystemClass: types.String(types.ClassBusiness), Active: true,
	})
	require.NoError(t, err)
	_, err = b.Systems().Create(&types.TrunkedSystem{
		SystemID: "B2", Name: "Closed Plant", Type: types.ProtocolLTR,
		SystemClass: types.String(types.ClassBusiness), Active: false,
	})
	require.NoError(t, err)
	mustCreateSystem(t, b, "P1", "County P25")

	freqs, err := b.View(types.ViewBusinessFrequencies)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hotel Security"}, frequencyNames(freqs))

	systems, err := b.BusinessTrunked()
	require.NoError(t, err)
	require.Len(t, systems, 1)
	assert.Equal(t, "Rail Yard", systems[0].Name)
}

func TestViews_UnknownNames(t *testing.T) {
	b, _ := setupBackend(t)

	_, err := b.View(types.FrequencyView("frequencies; DROP TABLE frequencies"))
	assert.ErrorIs(t, err, types.ErrInvalidFilter)

	_, err = b.Rows("sqlite_master")
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
}

func TestRows_CoercesNumericText(t *testing.T) {
	b, _ := setupBackend(t)
	f := newFrequency("Tone", 146.94, types.ModeFM)
	f.ToneFreq = types.String("151.4")
	f.Callsign = types.String("W0ERH")
	mustCreateFrequency(t, b, f)

	rows, err := b.Rows(types.FrequenciesTable)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 151.4, rows[0]["tone_freq"])
	assert.Equal(t, "W0ERH", rows[0]["callsign"])
	assert.Nil(t, rows[0]["description"])
}
