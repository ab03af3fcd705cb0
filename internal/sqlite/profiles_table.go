// This file implements the export_profiles table accessor. A profile stores
// a FrequencyFilter as JSON and a whitelisted sort order; Run resolves both
// into a frequency list.
package sqlite

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

var profileWriteColumns = []string{"radio_id", "name", "description", "filter_query", "sort_order"}

var profileSelect = "id, " + strings.Join(profileWriteColumns, ", ") + ", created_at, updated_at"

// ProfileTable is the accessor for export profiles.
type ProfileTable struct {
	backend *Backend
}

// Profiles returns the export profiles accessor.
func (b *Backend) Profiles() *ProfileTable {
	return &ProfileTable{backend: b}
}

// List returns every profile ordered by name.
func (pt *ProfileTable) List() ([]types.ExportProfile, error) {
	if err := pt.backend.readLock(); err != nil {
		return nil, err
	}
	defer pt.backend.mu.RUnlock()

	return queryAll(pt.backend.db, "list", types.ExportProfilesTable,
		"SELECT "+profileSelect+" FROM export_profiles ORDER BY name ASC, id ASC", nil, scanProfile)
}

// Get retrieves a profile by ID.
func (pt *ProfileTable) Get(id int64) (*types.ExportProfile, error) {
	if err := pt.backend.readLock(); err != nil {
		return nil, err
	}
	defer pt.backend.mu.RUnlock()

	return queryOne(pt.backend.db, types.ExportProfilesTable, id,
		"SELECT "+profileSelect+" FROM export_profiles WHERE id = ?", scanProfile)
}

// Create validates the stored filter and sort order, inserts p and sets
// p.ID.
func (pt *ProfileTable) Create(p *types.ExportProfile) (int64, error) {
	if p == nil {
		return 0, types.ErrInvalidData
	}
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if _, err := parseFilterQuery(p.FilterQuery); err != nil {
		return 0, err
	}
	if _, err := compileSortOrder(p.SortOrder); err != nil {
		return 0, err
	}
	if err := pt.backend.writeLock(); err != nil {
		return 0, err
	}
	defer pt.backend.mu.Unlock()

	id, err := insertRow(pt.backend.db, types.ExportProfilesTable, profileWriteColumns, []any{
		p.RadioID, p.Name, nullString(p.Description), p.FilterQuery, p.SortOrder,
	})
	if err != nil {
		return 0, err
	}
	p.ID = id
	return id, nil
}

// Update writes only the columns present in patch.
func (pt *ProfileTable) Update(id int64, patch types.Patch) error {
	if err := pt.backend.writeLock(); err != nil {
		return err
	}
	defer pt.backend.mu.Unlock()

	return applyPatch(pt.backend.db, types.ExportProfilesTable, id, patch)
}

// Delete removes a profile by ID.
func (pt *ProfileTable) Delete(id int64) error {
	if err := pt.backend.writeLock(); err != nil {
		return err
	}
	defer pt.backend.mu.Unlock()

	return deleteRow(pt.backend.db, types.ExportProfilesTable, id)
}

// Run loads a profile and its radio and selects the frequencies the
// profile's filter matches, in the profile's sort order.
func (pt *ProfileTable) Run(id int64) (*types.ProfileRun, error) {
	if err := pt.backend.readLock(); err != nil {
		return nil, err
	}
	defer pt.backend.mu.RUnlock()

	db := pt.backend.db
	p, err := queryOne(db, types.ExportProfilesTable, id,
		"SELECT "+profileSelect+" FROM export_profiles WHERE id = ?", scanProfile)
	if err != nil {
		return nil, err
	}
	r, err := queryOne(db, types.RadiosTable, p.RadioID,
		"SELECT "+radioSelect+" FROM radios WHERE id = ?", scanRadio)
	if err != nil {
		return nil, fmt.Errorf("profile %d radio: %w", id, err)
	}

	filter, err := parseFilterQuery(p.FilterQuery)
	if err != nil {
		return nil, err
	}
	w, err := compileFrequencyFilter(filter)
	if err != nil {
		return nil, err
	}
	order, err := compileSortOrder(p.SortOrder)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + frequencySelect + " FROM frequencies" + w.String() + " ORDER BY " + order + ", id ASC"
	freqs, err := queryAll(db, "run profile", types.FrequenciesTable, query, w.args, scanFrequency)
	if err != nil {
		return nil, err
	}
	return &types.ProfileRun{Profile: *p, Radio: *r, Frequencies: freqs}, nil
}

// parseFilterQuery decodes a stored filter. Unknown keys are rejected so a
// typo cannot silently widen an export.
func parseFilterQuery(s string) (*types.FrequencyFilter, error) {
	var f types.FrequencyFilter
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: filter_query: %v", types.ErrInvalidFilter, err)
	}
	if _, err := compileFrequencyFilter(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

func scanProfile(sc scanner) (*types.ExportProfile, error) {
	var (
		p                      types.ExportProfile
		desc, created, updated sql.NullString
	)
	if err := sc.Scan(
		&p.ID, &p.RadioID, &p.Name, &desc, &p.FilterQuery, &p.SortOrder, &created, &updated,
	); err != nil {
		return nil, err
	}
	p.Description = strPtr(desc)
	p.CreatedAt = parseTimestamp(created)
	p.UpdatedAt = timestampPtr(updated)
	return &p, nil
}
