// Package sqlite implements the catalog's SQLite storage backend: schema and
// view management, typed record access with filter compilation, the settings
// store, bulk import, and whole-database backup and restore.
package sqlite

import (
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

// Schema DDL for all tables. Column names, types and defaults are part of
// the database image format and must not drift.
const (
	createFrequencies = `CREATE TABLE IF NOT EXISTS frequencies (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    frequency REAL NOT NULL,
    transmit_frequency REAL,
    name TEXT NOT NULL,
    description TEXT,
    alpha_tag TEXT,
    mode TEXT NOT NULL,
    tone_mode TEXT,
    tone_freq TEXT,
    county TEXT,
    state TEXT,
    agency TEXT,
    callsign TEXT,
    service_type TEXT,
    tags TEXT,
    duplex TEXT,
    "offset" REAL,
    last_verified TEXT,
    notes TEXT,
    source TEXT,
    active INTEGER DEFAULT 1,
    distance_from_kc REAL,
    latitude REAL,
    longitude REAL,
    class_station_code TEXT,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT,
    export_chirp INTEGER DEFAULT 0,
    export_uniden INTEGER DEFAULT 0,
    export_sdrtrunk INTEGER DEFAULT 0,
    export_sdrplus INTEGER DEFAULT 0,
    export_opengd77 INTEGER DEFAULT 0
);`

	createTrunkedSystems = `CREATE TABLE IF NOT EXISTS trunked_systems (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    system_id TEXT NOT NULL,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    system_class TEXT,
    business_type TEXT,
    business_owner TEXT,
    description TEXT,
    wacn TEXT,
    system_protocol TEXT,
    notes TEXT,
    active INTEGER DEFAULT 1,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT
);`

	createTrunkedSites = `CREATE TABLE IF NOT EXISTS trunked_sites (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    system_id INTEGER NOT NULL,
    site_id TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT,
    county TEXT,
    state TEXT,
    latitude REAL,
    longitude REAL,
    range_miles REAL,
    nac TEXT,
    active INTEGER DEFAULT 1,
    distance_from_kc REAL,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT,
    FOREIGN KEY (system_id) REFERENCES trunked_systems(id)
);`

	createTalkgroups = `CREATE TABLE IF NOT EXISTS talkgroups (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    system_id INTEGER NOT NULL,
    decimal_id INTEGER NOT NULL,
    hex_id TEXT,
    alpha_tag TEXT NOT NULL,
    description TEXT,
    mode TEXT,
    category TEXT,
    tag TEXT,
    priority INTEGER DEFAULT 0,
    active INTEGER DEFAULT 1,
    notes TEXT,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT,
    FOREIGN KEY (system_id) REFERENCES trunked_systems(id)
);`

	createCounties = `CREATE TABLE IF NOT EXISTS counties (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    state TEXT NOT NULL,
    region TEXT NOT NULL,
    distance_from_kc REAL NOT NULL,
    fips_code TEXT,
    notes TEXT,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT
);`

	createRadios = `CREATE TABLE IF NOT EXISTS radios (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    min_frequency REAL NOT NULL,
    max_frequency REAL NOT NULL,
    supported_modes TEXT NOT NULL,
    channel_capacity INTEGER,
    notes TEXT,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT
);`

	createExportProfiles = `CREATE TABLE IF NOT EXISTS export_profiles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    radio_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    description TEXT,
    filter_query TEXT NOT NULL,
    sort_order TEXT NOT NULL,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT,
    FOREIGN KEY (radio_id) REFERENCES radios(id)
);`

	createAppSettings = `CREATE TABLE IF NOT EXISTS app_settings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    key TEXT NOT NULL UNIQUE,
    value TEXT NOT NULL,
    type TEXT NOT NULL,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT
);`
)

// Index DDL for common queries.
const (
	idxFrequenciesFrequency   = `CREATE INDEX IF NOT EXISTS idx_frequencies_frequency ON frequencies(frequency);`
	idxFrequenciesMode        = `CREATE INDEX IF NOT EXISTS idx_frequencies_mode ON frequencies(mode);`
	idxFrequenciesCounty      = `CREATE INDEX IF NOT EXISTS idx_frequencies_county ON frequencies(county);`
	idxFrequenciesState       = `CREATE INDEX IF NOT EXISTS idx_frequencies_state ON frequencies(state);`
	idxFrequenciesServiceType = `CREATE INDEX IF NOT EXISTS idx_frequencies_service_type ON frequencies(service_type);`
	idxFrequenciesActive      = `CREATE INDEX IF NOT EXISTS idx_frequencies_active ON frequencies(active);`
	idxSystemsSystemID        = `CREATE INDEX IF NOT EXISTS idx_trunked_systems_system_id ON trunked_systems(system_id);`
	idxSystemsType            = `CREATE INDEX IF NOT EXISTS idx_trunked_systems_type ON trunked_systems(type);`
	idxSystemsActive          = `CREATE INDEX IF NOT EXISTS idx_trunked_systems_active ON trunked_systems(active);`
	idxSitesSystemID          = `CREATE INDEX IF NOT EXISTS idx_trunked_sites_system_id ON trunked_sites(system_id);`
	idxTalkgroupsSystemID     = `CREATE INDEX IF NOT EXISTS idx_talkgroups_system_id ON talkgroups(system_id);`
	idxTalkgroupsDecimalID    = `CREATE INDEX IF NOT EXISTS idx_talkgroups_decimal_id ON talkgroups(decimal_id);`
	idxTalkgroupsActive       = `CREATE INDEX IF NOT EXISTS idx_talkgroups_active ON talkgroups(active);`
	idxCountiesName           = `CREATE INDEX IF NOT EXISTS idx_counties_name ON counties(name);`
	idxCountiesState          = `CREATE INDEX IF NOT EXISTS idx_counties_state ON counties(state);`
	idxRadiosName             = `CREATE INDEX IF NOT EXISTS idx_radios_name ON radios(name);`
	idxExportProfilesRadio    = `CREATE INDEX IF NOT EXISTS idx_export_profiles_radio ON export_profiles(radio_id);`
	idxAppSettingsKey         = `CREATE INDEX IF NOT EXISTS idx_app_settings_key ON app_settings(key);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createFrequencies,
	createTrunkedSystems,
	createTrunkedSites,
	createTalkgroups,
	createCounties,
	createRadios,
	createExportProfiles,
	createAppSettings,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxFrequenciesFrequency,
	idxFrequenciesMode,
	idxFrequenciesCounty,
	idxFrequenciesState,
	idxFrequenciesServiceType,
	idxFrequenciesActive,
	idxSystemsSystemID,
	idxSystemsType,
	idxSystemsActive,
	idxSitesSystemID,
	idxTalkgroupsSystemID,
	idxTalkgroupsDecimalID,
	idxTalkgroupsActive,
	idxCountiesName,
	idxCountiesState,
	idxRadiosName,
	idxExportProfilesRadio,
	idxAppSettingsKey,
}

// ChirpComment is the constant Comment column exposed by view_chirp_export.
const ChirpComment = "KC Frequency Omnibus"

// viewDef is one derived view. The predicates are export business rules.
type viewDef struct {
	name string
	body string
}

// viewDDL lists every view in creation order.
var viewDDL = []viewDef{
	{string(types.ViewChirp), `SELECT *, '` + ChirpComment + `' AS comment FROM frequencies
    WHERE export_chirp = 1 AND active = 1
    ORDER BY frequency ASC`},
	{string(types.ViewUniden), `SELECT * FROM frequencies
    WHERE export_uniden = 1 AND active = 1
    ORDER BY frequency ASC`},
	{string(types.ViewSDRTrunkConventional), `SELECT * FROM frequencies
    WHERE export_sdrtrunk = 1 AND active = 1
    ORDER BY frequency ASC`},
	{string(types.ViewOpenGD77), `SELECT * FROM frequencies
    WHERE export_opengd77 = 1 AND active = 1
      AND (mode = 'DMR' OR mode = 'FM' OR mode = 'FMN')
    ORDER BY frequency ASC`},
	{string(types.ViewKCRepeaters), `SELECT * FROM frequencies
    WHERE distance_from_kc <= 50 AND active = 1
      AND (duplex = '+' OR duplex = '-')
      AND transmit_frequency IS NOT NULL
    ORDER BY frequency ASC`},
	{types.ViewBusinessTrunked, `SELECT * FROM trunked_systems
    WHERE system_class = 'Business' AND active = 1
    ORDER BY name ASC`},
	{string(types.ViewBusinessFrequencies), `SELECT * FROM frequencies
    WHERE service_type = 'Business' AND active = 1
    ORDER BY frequency ASC`},
}

// createSchema creates all tables and indices if absent, in one transaction.
// A failure rolls back every statement: a partial schema is never left
// behind.
func createSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return &types.StoreError{Op: "create schema", Err: err}
	}
	defer tx.Rollback()

	for _, ddl := range schemaDDL {
		if _, err := tx.Exec(ddl); err != nil {
			return &types.StoreError{Op: "create schema", Err: err}
		}
	}
	for _, ddl := range indexDDL {
		if _, err := tx.Exec(ddl); err != nil {
			return &types.StoreError{Op: "create index", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &types.StoreError{Op: "create schema", Err: err}
	}
	return nil
}

// createViews drops and recreates every view so that definitions can evolve
// without a migration. Views carry no state.
func createViews(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return &types.StoreError{Op: "create views", Err: err}
	}
	defer tx.Rollback()

	for _, v := range viewDDL {
		if _, err := tx.Exec(fmt.Sprintf("DROP VIEW IF EXISTS %s", v.name)); err != nil {
			return &types.StoreError{Op: "drop view", Table: v.name, Err: err}
		}
		if _, err := tx.Exec(fmt.Sprintf("CREATE VIEW %s AS %s", v.name, v.body)); err != nil {
			return &types.StoreError{Op: "create view", Table: v.name, Err: err}
		}
		log.WithField("view", v.name).Debug("sqlite: view rebuilt")
	}

	if err := tx.Commit(); err != nil {
		return &types.StoreError{Op: "create views", Err: err}
	}
	return nil
}
