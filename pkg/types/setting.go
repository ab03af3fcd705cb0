package types

import "time"

// SettingType tags how a stored setting value is parsed on read.
type SettingType string

// Setting value types.
const (
	SettingString  SettingType = "string"
	SettingNumber  SettingType = "number"
	SettingBoolean SettingType = "boolean"
	SettingJSON    SettingType = "json"
)

// Valid reports whether t is a known setting type.
func (t SettingType) Valid() bool {
	switch t {
	case SettingString, SettingNumber, SettingBoolean, SettingJSON:
		return true
	}
	return false
}

// Conventional setting keys. The store does not restrict keys to this set.
const (
	SettingDarkMode    = "darkMode"
	SettingSidebarOpen = "sidebarOpen"
	SettingActiveTab   = "activeTab"
	SettingModals      = "modals"
)

// Setting is one row of app_settings with its value already parsed per Type.
type Setting struct {
	Key       string      `json:"key"`
	Value     any         `json:"value"`
	Type      SettingType `json:"type"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt *time.Time  `json:"updated_at,omitempty"`
}
