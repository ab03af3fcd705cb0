// This file implements the counties table accessor. Counties are reference
// data; frequencies match them by name only.
package sqlite

import (
	"database/sql"
	"strings"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

var countyWriteColumns = []string{"name", "state", "region", "distance_from_kc", "fips_code", "notes"}

var countySelect = "id, " + strings.Join(countyWriteColumns, ", ") + ", created_at, updated_at"

// CountyTable is the accessor for counties.
type CountyTable struct {
	backend *Backend
}

// Counties returns the counties accessor.
func (b *Backend) Counties() *CountyTable {
	return &CountyTable{backend: b}
}

// List returns counties matching filter, nearest first.
func (ct *CountyTable) List(filter *types.CountyFilter) ([]types.County, error) {
	w := compileCountyFilter(filter)
	if err := ct.backend.readLock(); err != nil {
		return nil, err
	}
	defer ct.backend.mu.RUnlock()

	query := "SELECT " + countySelect + " FROM counties" + w.String() + " ORDER BY distance_from_kc ASC, name ASC"
	return queryAll(ct.backend.db, "list", types.CountiesTable, query, w.args, scanCounty)
}

// Get retrieves a county by ID.
func (ct *CountyTable) Get(id int64) (*types.County, error) {
	if err := ct.backend.readLock(); err != nil {
		return nil, err
	}
	defer ct.backend.mu.RUnlock()

	return queryOne(ct.backend.db, types.CountiesTable, id,
		"SELECT "+countySelect+" FROM counties WHERE id = ?", scanCounty)
}

// Create inserts c and sets c.ID.
func (ct *CountyTable) Create(c *types.County) (int64, error) {
	if c == nil {
		return 0, types.ErrInvalidData
	}
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if err := ct.backend.writeLock(); err != nil {
		return 0, err
	}
	defer ct.backend.mu.Unlock()

	id, err := insertRow(ct.backend.db, types.CountiesTable, countyWriteColumns, countyArgs(c))
	if err != nil {
		return 0, err
	}
	c.ID = id
	return id, nil
}

// Update writes only the columns present in patch.
func (ct *CountyTable) Update(id int64, patch types.Patch) error {
	if err := ct.backend.writeLock(); err != nil {
		return err
	}
	defer ct.backend.mu.Unlock()

	return applyPatch(ct.backend.db, types.CountiesTable, id, patch)
}

// Delete removes a county by ID. Frequencies naming the county are left
// untouched.
func (ct *CountyTable) Delete(id int64) error {
	if err := ct.backend.writeLock(); err != nil {
		return err
	}
	defer ct.backend.mu.Unlock()

	return deleteRow(ct.backend.db, types.CountiesTable, id)
}

func countyArgs(c *types.County) []any {
	return []any{c.Name, c.State, c.Region, c.DistanceFromKC, nullString(c.FIPSCode), nullString(c.Notes)}
}

func scanCounty(sc scanner) (*types.County, error) {
	var (
		c                             types.County
		fips, notes, created, updated sql.NullString
	)
	if err := sc.Scan(
		&c.ID, &c.Name, &c.State, &c.Region, &c.DistanceFromKC, &fips, &notes, &created, &updated,
	); err != nil {
		return nil, err
	}
	c.FIPSCode = strPtr(fips)
	c.Notes = strPtr(notes)
	c.CreatedAt = parseTimestamp(created)
	c.UpdatedAt = timestampPtr(updated)
	return &c, nil
}
