package types

// Filter objects are the contract between callers and the record store.
// Every field is optional; each present field ANDs one predicate, and a nil
// or zero filter matches every row. Nothing defaults to "active only".
//
// The json tags define the encoding stored in export_profiles.filter_query;
// the mapstructure tags let the CLI decode key=value arguments.

// FrequencyFilter selects frequencies.
type FrequencyFilter struct {
	Mode        []string `json:"mode,omitempty" mapstructure:"mode"`
	ServiceType []string `json:"service_type,omitempty" mapstructure:"service_type"`
	County      []string `json:"county,omitempty" mapstructure:"county"`
	State       []string `json:"state,omitempty" mapstructure:"state"`
	Active      *bool    `json:"active,omitempty" mapstructure:"active"`

	// Search matches name, description, or alpha_tag by case-insensitive
	// substring.
	Search string `json:"search,omitempty" mapstructure:"search"`

	// MaxDistance is an upper bound on distance_from_kc.
	MaxDistance *float64 `json:"distance_from_kc,omitempty" mapstructure:"distance_from_kc"`

	// FrequencyRange is a closed [low, high] range in MHz; it must hold
	// exactly two values when set.
	FrequencyRange []float64 `json:"frequency_range,omitempty" mapstructure:"frequency_range"`

	// TagContains matches the free-text tags column by substring.
	TagContains string `json:"tag_contains,omitempty" mapstructure:"tag_contains"`
}

// SystemFilter selects trunked systems.
type SystemFilter struct {
	Type        []string `json:"type,omitempty" mapstructure:"type"`
	SystemClass []string `json:"system_class,omitempty" mapstructure:"system_class"`
	Protocol    []string `json:"protocol,omitempty" mapstructure:"protocol"`
	Active      *bool    `json:"active,omitempty" mapstructure:"active"`
	Search      string   `json:"search,omitempty" mapstructure:"search"`
}

// SiteFilter selects trunked sites.
type SiteFilter struct {
	SystemID *int64   `json:"system_id,omitempty" mapstructure:"system_id"`
	County   []string `json:"county,omitempty" mapstructure:"county"`
	State    []string `json:"state,omitempty" mapstructure:"state"`
	Active   *bool    `json:"active,omitempty" mapstructure:"active"`
}

// TalkgroupFilter selects talkgroups.
type TalkgroupFilter struct {
	SystemID *int64   `json:"system_id,omitempty" mapstructure:"system_id"`
	Category []string `json:"category,omitempty" mapstructure:"category"`
	Mode     []string `json:"mode,omitempty" mapstructure:"mode"`
	Active   *bool    `json:"active,omitempty" mapstructure:"active"`

	// Search matches alpha_tag or description.
	Search string `json:"search,omitempty" mapstructure:"search"`
}

// CountyFilter selects counties.
type CountyFilter struct {
	State       []string `json:"state,omitempty" mapstructure:"state"`
	Region      []string `json:"region,omitempty" mapstructure:"region"`
	MaxDistance *float64 `json:"distance_from_kc,omitempty" mapstructure:"distance_from_kc"`
}
