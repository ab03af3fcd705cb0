package types

import (
	"strings"
	"time"
)

// System classes. Only Business systems reach the SDRTrunk trunked export.
const (
	ClassPublicSafety = "Public Safety"
	ClassBusiness     = "Business"
	ClassMixed        = "Mixed"
)

// Trunking protocols.
const (
	ProtocolP25     = "P25"
	ProtocolLTR     = "LTR"
	ProtocolMPT1327 = "MPT-1327"
	ProtocolDMR     = "DMR"
)

// TrunkedSystem is a trunked radio network. SystemID is the external
// identifier from the data source and is not unique across sources.
type TrunkedSystem struct {
	ID             int64      `json:"id"`
	SystemID       string     `json:"system_id"`
	Name           string     `json:"name"`
	Type           string     `json:"type"`
	SystemClass    *string    `json:"system_class,omitempty"`
	BusinessType   *string    `json:"business_type,omitempty"`
	BusinessOwner  *string    `json:"business_owner,omitempty"`
	Description    *string    `json:"description,omitempty"`
	WACN           *string    `json:"wacn,omitempty"`
	SystemProtocol *string    `json:"system_protocol,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	Active         bool       `json:"active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// Validate checks the required fields before a write.
func (s *TrunkedSystem) Validate() error {
	if strings.TrimSpace(s.SystemID) == "" {
		return invalidf("system_id is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return invalidf("name is required")
	}
	if strings.TrimSpace(s.Type) == "" {
		return invalidf("type is required")
	}
	return nil
}

// TrunkedSite is a physical tower or site within a TrunkedSystem.
// SystemID references trunked_systems.id.
type TrunkedSite struct {
	ID             int64      `json:"id"`
	SystemID       int64      `json:"system_id"`
	SiteID         string     `json:"site_id"`
	Name           string     `json:"name"`
	Description    *string    `json:"description,omitempty"`
	County         *string    `json:"county,omitempty"`
	State          *string    `json:"state,omitempty"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
	RangeMiles     *float64   `json:"range_miles,omitempty"`
	NAC            *string    `json:"nac,omitempty"`
	Active         bool       `json:"active"`
	DistanceFromKC *float64   `json:"distance_from_kc,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// Validate checks the required fields before a write. The parent system's
// existence is left to the engine's foreign key check.
func (s *TrunkedSite) Validate() error {
	if s.SystemID <= 0 {
		return invalidf("system_id is required")
	}
	if strings.TrimSpace(s.SiteID) == "" {
		return invalidf("site_id is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return invalidf("name is required")
	}
	return nil
}

// Talkgroup is a logical channel within a TrunkedSystem. DecimalID is not
// required to be unique within a system.
type Talkgroup struct {
	ID          int64      `json:"id"`
	SystemID    int64      `json:"system_id"`
	DecimalID   int64      `json:"decimal_id"`
	HexID       *string    `json:"hex_id,omitempty"`
	AlphaTag    string     `json:"alpha_tag"`
	Description *string    `json:"description,omitempty"`
	Mode        *string    `json:"mode,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Tag         *string    `json:"tag,omitempty"`
	Priority    int64      `json:"priority"`
	Active      bool       `json:"active"`
	Notes       *string    `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Validate checks the required fields before a write.
func (tg *Talkgroup) Validate() error {
	if tg.SystemID <= 0 {
		return invalidf("system_id is required")
	}
	if strings.TrimSpace(tg.AlphaTag) == "" {
		return invalidf("alpha_tag is required")
	}
	return nil
}

// SystemDetail is a system together with all of its sites and talkgroups.
type SystemDetail struct {
	System     TrunkedSystem `json:"system"`
	Sites      []TrunkedSite `json:"sites"`
	Talkgroups []Talkgroup   `json:"talkgroups"`
}
