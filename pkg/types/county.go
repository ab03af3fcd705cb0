package types

import (
	"strings"
	"time"
)

// Regions classify counties by distance from the reference point.
const (
	RegionKCCore   = "KC Core"
	RegionKCMetro  = "KC Metro"
	RegionRegional = "Regional"
)

// County is ancillary geographic reference data. Frequencies relate to it by
// county name only; there is no foreign key.
type County struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	State          string     `json:"state"`
	Region         string     `json:"region"`
	DistanceFromKC float64    `json:"distance_from_kc"`
	FIPSCode       *string    `json:"fips_code,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// Validate checks the required fields before a write.
func (c *County) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalidf("name is required")
	}
	if strings.TrimSpace(c.State) == "" {
		return invalidf("state is required")
	}
	if strings.TrimSpace(c.Region) == "" {
		return invalidf("region is required")
	}
	if c.DistanceFromKC < 0 {
		return invalidf("distance_from_kc must not be negative")
	}
	return nil
}
