// This file implements the trunked_sites table accessor.
package sqlite

import (
	"database/sql"
	"strings"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

var siteWriteColumns = []string{
	"system_id", "site_id", "name", "description", "county", "state",
	"latitude", "longitude", "range_miles", "nac", "active", "distance_from_kc",
}

var siteSelect = "id, " + strings.Join(siteWriteColumns, ", ") + ", created_at, updated_at"

// SiteTable is the accessor for trunked sites.
type SiteTable struct {
	backend *Backend
}

// Sites returns the trunked sites accessor.
func (b *Backend) Sites() *SiteTable {
	return &SiteTable{backend: b}
}

// List returns sites matching filter, ordered by name.
func (st *SiteTable) List(filter *types.SiteFilter) ([]types.TrunkedSite, error) {
	w := compileSiteFilter(filter)
	if err := st.backend.readLock(); err != nil {
		return nil, err
	}
	defer st.backend.mu.RUnlock()

	query := "SELECT " + siteSelect + " FROM trunked_sites" + w.String() + " ORDER BY name ASC, id ASC"
	return queryAll(st.backend.db, "list", types.SitesTable, query, w.args, scanSite)
}

// Get retrieves a site by ID.
func (st *SiteTable) Get(id int64) (*types.TrunkedSite, error) {
	if err := st.backend.readLock(); err != nil {
		return nil, err
	}
	defer st.backend.mu.RUnlock()

	return queryOne(st.backend.db, types.SitesTable, id,
		"SELECT "+siteSelect+" FROM trunked_sites WHERE id = ?", scanSite)
}

// Create inserts s and sets s.ID. A SystemID that names no system fails
// the engine's foreign key check.
func (st *SiteTable) Create(s *types.TrunkedSite) (int64, error) {
	if s == nil {
		return 0, types.ErrInvalidData
	}
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if err := st.backend.writeLock(); err != nil {
		return 0, err
	}
	defer st.backend.mu.Unlock()

	id, err := insertRow(st.backend.db, types.SitesTable, siteWriteColumns, siteArgs(s))
	if err != nil {
		return 0, err
	}
	s.ID = id
	return id, nil
}

// Update writes only the columns present in patch.
func (st *SiteTable) Update(id int64, patch types.Patch) error {
	if err := st.backend.writeLock(); err != nil {
		return err
	}
	defer st.backend.mu.Unlock()

	return applyPatch(st.backend.db, types.SitesTable, id, patch)
}

// Delete removes a site by ID.
func (st *SiteTable) Delete(id int64) error {
	if err := st.backend.writeLock(); err != nil {
		return err
	}
	defer st.backend.mu.Unlock()

	return deleteRow(st.backend.db, types.SitesTable, id)
}

func siteArgs(s *types.TrunkedSite) []any {
	return []any{
		s.SystemID, s.SiteID, s.Name, nullString(s.Description), nullString(s.County), nullString(s.State),
		nullFloat(s.Latitude), nullFloat(s.Longitude), nullFloat(s.RangeMiles), nullString(s.NAC),
		boolInt(s.Active), nullFloat(s.DistanceFromKC),
	}
}

func scanSite(sc scanner) (*types.TrunkedSite, error) {
	var (
		s                        types.TrunkedSite
		desc, county, state, nac sql.NullString
		lat, lon, rng, distance  sql.NullFloat64
		created, updated         sql.NullString
		active                   sql.NullInt64
	)
	if err := sc.Scan(
		&s.ID, &s.SystemID, &s.SiteID, &s.Name, &desc, &county, &state,
		&lat, &lon, &rng, &nac, &active, &distance, &created, &updated,
	); err != nil {
		return nil, err
	}
	s.Description = strPtr(desc)
	s.County = strPtr(county)
	s.State = strPtr(state)
	s.Latitude = floatPtr(lat)
	s.Longitude = floatPtr(lon)
	s.RangeMiles = floatPtr(rng)
	s.NAC = strPtr(nac)
	s.Active = flag(active, true)
	s.DistanceFromKC = floatPtr(distance)
	s.CreatedAt = parseTimestamp(created)
	s.UpdatedAt = timestampPtr(updated)
	return &s, nil
}
