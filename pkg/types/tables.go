package types

// Table names, verbatim from the catalog DDL.
const (
	FrequenciesTable    = "frequencies"
	SystemsTable        = "trunked_systems"
	SitesTable          = "trunked_sites"
	TalkgroupsTable     = "talkgroups"
	CountiesTable       = "counties"
	RadiosTable         = "radios"
	ExportProfilesTable = "export_profiles"
	SettingsTable       = "app_settings"
)

// StandardTableNames lists every table in dependency order (parents first).
var StandardTableNames = []string{
	FrequenciesTable,
	SystemsTable,
	SitesTable,
	TalkgroupsTable,
	CountiesTable,
	RadiosTable,
	ExportProfilesTable,
	SettingsTable,
}

// FrequencyView names a derived view over the frequencies table.
type FrequencyView string

// Frequency views. Each is a pure predicate over frequencies.
const (
	ViewChirp                FrequencyView = "view_chirp_export"
	ViewUniden               FrequencyView = "view_uniden_export"
	ViewSDRTrunkConventional FrequencyView = "view_sdrtrunk_conventional"
	ViewOpenGD77             FrequencyView = "view_opengd77_export"
	ViewKCRepeaters          FrequencyView = "view_kc_repeaters"
	ViewBusinessFrequencies  FrequencyView = "view_business_frequencies"
)

// ViewBusinessTrunked is the only view over trunked_systems.
const ViewBusinessTrunked = "view_business_trunked"

// FrequencyViews lists the frequency views in creation order.
var FrequencyViews = []FrequencyView{
	ViewChirp,
	ViewUniden,
	ViewSDRTrunkConventional,
	ViewOpenGD77,
	ViewKCRepeaters,
	ViewBusinessFrequencies,
}

// Valid reports whether v is one of the known frequency views.
func (v FrequencyView) Valid() bool {
	for _, known := range FrequencyViews {
		if v == known {
			return true
		}
	}
	return false
}
