package types

import (
	"strings"
	"time"
)

// Radio is a target hardware or software radio profile. SupportedModes is
// stored comma-delimited.
type Radio struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	MinFrequency    float64    `json:"min_frequency"`
	MaxFrequency    float64    `json:"max_frequency"`
	SupportedModes  string     `json:"supported_modes"`
	ChannelCapacity *int64     `json:"channel_capacity,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// Validate checks the required fields before a write.
func (r *Radio) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return invalidf("name is required")
	}
	if strings.TrimSpace(r.Type) == "" {
		return invalidf("type is required")
	}
	if r.MinFrequency < 0 || r.MaxFrequency <= 0 || r.MinFrequency > r.MaxFrequency {
		return invalidf("frequency range %v-%v is invalid", r.MinFrequency, r.MaxFrequency)
	}
	if len(r.Modes()) == 0 {
		return invalidf("supported_modes is required")
	}
	return nil
}

// Modes splits SupportedModes into its trimmed, non-empty entries.
func (r *Radio) Modes() []string {
	var modes []string
	for _, m := range strings.Split(r.SupportedModes, ",") {
		if m = strings.TrimSpace(m); m != "" {
			modes = append(modes, m)
		}
	}
	return modes
}

// SupportsMode reports whether mode appears in the radio's mode list.
func (r *Radio) SupportsMode(mode string) bool {
	for _, m := range r.Modes() {
		if m == mode {
			return true
		}
	}
	return false
}

// InRange reports whether mhz lies within [MinFrequency, MaxFrequency].
func (r *Radio) InRange(mhz float64) bool {
	return mhz >= r.MinFrequency && mhz <= r.MaxFrequency
}

// ExportProfile is a saved radio plus filter plus sort order used to
// regenerate the same export repeatedly. FilterQuery holds the JSON encoding
// of a FrequencyFilter; SortOrder is "column [ASC|DESC]".
type ExportProfile struct {
	ID          int64      `json:"id"`
	RadioID     int64      `json:"radio_id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	FilterQuery string     `json:"filter_query"`
	SortOrder   string     `json:"sort_order"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Validate checks the required fields before a write. FilterQuery and
// SortOrder contents are checked by the store, which owns the column
// whitelist.
func (p *ExportProfile) Validate() error {
	if p.RadioID <= 0 {
		return invalidf("radio_id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return invalidf("name is required")
	}
	if strings.TrimSpace(p.FilterQuery) == "" {
		return invalidf("filter_query is required")
	}
	if strings.TrimSpace(p.SortOrder) == "" {
		return invalidf("sort_order is required")
	}
	return nil
}

// ProfileRun is the resolved input for one profile export: the profile, its
// radio, and the frequencies its filter and sort order select.
type ProfileRun struct {
	Profile     ExportProfile `json:"profile"`
	Radio       Radio         `json:"radio"`
	Frequencies []Frequency   `json:"frequencies"`
}
