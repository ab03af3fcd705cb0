package types

import (
	"strings"
	"time"
)

// Operating modes. Modes lists the catalog's canonical set; LegacyModes are
// vendor spellings that appear in imported data and in the OpenGD77 and SDR++
// paths.
const (
	ModeFM   = "FM"
	ModeNFM  = "NFM"
	ModeAM   = "AM"
	ModeDMR  = "DMR"
	ModeP25  = "P25"
	ModeNXDN = "NXDN"

	ModeFMN = "FMN"
	ModeWFM = "WFM"
	ModeUSB = "USB"
	ModeLSB = "LSB"
)

var (
	Modes       = []string{ModeFM, ModeNFM, ModeAM, ModeDMR, ModeP25, ModeNXDN}
	LegacyModes = []string{ModeFMN, ModeWFM, ModeUSB, ModeLSB}
)

// Service types used for classification and the business views.
const (
	ServiceHam          = "Ham"
	ServicePublicSafety = "Public Safety"
	ServiceBusiness     = "Business"
	ServiceRailroad     = "Railroad"
	ServiceAircraft     = "Aircraft"
	ServiceMarine       = "Marine"
	ServiceEmergency    = "Emergency"
)

// Tone squelch modes.
const (
	ToneCTCSS = "CTCSS"
	ToneDCS   = "DCS"
)

// ValidMode reports whether mode is a canonical or legacy mode name.
func ValidMode(mode string) bool {
	for _, m := range Modes {
		if m == mode {
			return true
		}
	}
	for _, m := range LegacyModes {
		if m == mode {
			return true
		}
	}
	return false
}

// ExportFlag names one of the five per-vendor inclusion columns.
type ExportFlag string

// Export flags; the values are the column names.
const (
	FlagChirp    ExportFlag = "export_chirp"
	FlagUniden   ExportFlag = "export_uniden"
	FlagSDRTrunk ExportFlag = "export_sdrtrunk"
	FlagSDRPlus  ExportFlag = "export_sdrplus"
	FlagOpenGD77 ExportFlag = "export_opengd77"
)

// ExportFlags lists all export flags in column order.
var ExportFlags = []ExportFlag{FlagChirp, FlagUniden, FlagSDRTrunk, FlagSDRPlus, FlagOpenGD77}

// Valid reports whether f is one of the five export columns.
func (f ExportFlag) Valid() bool {
	for _, known := range ExportFlags {
		if f == known {
			return true
		}
	}
	return false
}

// ParseExportFlag accepts a column name ("export_chirp") or its short vendor
// form ("chirp"), case-insensitively.
func ParseExportFlag(s string) (ExportFlag, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "export_") {
		s = "export_" + s
	}
	f := ExportFlag(s)
	if !f.Valid() {
		return "", ErrInvalidFlag
	}
	return f, nil
}

// Frequency is a conventional (non-trunked) radio channel. Nullable columns
// are pointers so that an absent value and a zero value stay distinct.
type Frequency struct {
	ID                int64    `json:"id"`
	Frequency         float64  `json:"frequency"`
	TransmitFrequency *float64 `json:"transmit_frequency,omitempty"`
	Name              string   `json:"name"`
	Description       *string  `json:"description,omitempty"`
	AlphaTag          *string  `json:"alpha_tag,omitempty"`
	Mode              string   `json:"mode"`
	ToneMode          *string  `json:"tone_mode,omitempty"`
	ToneFreq          *string  `json:"tone_freq,omitempty"`
	County            *string  `json:"county,omitempty"`
	State             *string  `json:"state,omitempty"`
	Agency            *string  `json:"agency,omitempty"`
	Callsign          *string  `json:"callsign,omitempty"`
	ServiceType       *string  `json:"service_type,omitempty"`
	Tags              *string  `json:"tags,omitempty"`
	Duplex            *string  `json:"duplex,omitempty"`
	Offset            *float64 `json:"offset,omitempty"`
	LastVerified      *string  `json:"last_verified,omitempty"`
	Notes             *string  `json:"notes,omitempty"`
	Source            *string  `json:"source,omitempty"`
	Active            bool     `json:"active"`
	DistanceFromKC    *float64 `json:"distance_from_kc,omitempty"`
	Latitude          *float64 `json:"latitude,omitempty"`
	Longitude         *float64 `json:"longitude,omitempty"`
	ClassStationCode  *string  `json:"class_station_code,omitempty"`

	ExportChirp    bool `json:"export_chirp"`
	ExportUniden   bool `json:"export_uniden"`
	ExportSDRTrunk bool `json:"export_sdrtrunk"`
	ExportSDRPlus  bool `json:"export_sdrplus"`
	ExportOpenGD77 bool `json:"export_opengd77"`

	// Comment is only populated when reading view_chirp_export.
	Comment string `json:"comment,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Validate checks the required fields before a write.
func (f *Frequency) Validate() error {
	if !(f.Frequency > 0) {
		return invalidf("frequency must be greater than zero")
	}
	if strings.TrimSpace(f.Name) == "" {
		return invalidf("name is required")
	}
	if f.Mode == "" {
		return invalidf("mode is required")
	}
	if !ValidMode(f.Mode) {
		return invalidf("unknown mode %q", f.Mode)
	}
	return nil
}

// Flag returns the value of one export flag.
func (f *Frequency) Flag(flag ExportFlag) bool {
	switch flag {
	case FlagChirp:
		return f.ExportChirp
	case FlagUniden:
		return f.ExportUniden
	case FlagSDRTrunk:
		return f.ExportSDRTrunk
	case FlagSDRPlus:
		return f.ExportSDRPlus
	case FlagOpenGD77:
		return f.ExportOpenGD77
	}
	return false
}

// IsRepeater reports whether the channel has a transmit frequency and a duplex
// direction, i.e. it is not simplex.
func (f *Frequency) IsRepeater() bool {
	if f.TransmitFrequency == nil || f.Duplex == nil {
		return false
	}
	return *f.Duplex == "+" || *f.Duplex == "-"
}

// FrequencyUpdate pairs a record ID with a partial patch for batch updates.
type FrequencyUpdate struct {
	ID    int64
	Patch Patch
}

// Patch is a partial update keyed by column name. Only the supplied columns
// are written; absent columns are never overwritten.
type Patch map[string]any

// String returns a pointer to s, for populating nullable text fields.
func String(s string) *string { return &s }

// Float returns a pointer to v, for populating nullable numeric fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int64) *int64 { return &v }

// Bool returns a pointer to v, for optional filter fields.
func Bool(v bool) *bool { return &v }

// FrequencyPage is one page of a filtered frequency listing. Total counts
// every matching row, not just those on the page.
type FrequencyPage struct {
	Items    []Frequency `json:"items"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}
