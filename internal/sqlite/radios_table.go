// This file implements the radios table accessor.
package sqlite

import (
	"database/sql"
	"strings"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

var radioWriteColumns = []string{
	"name", "type", "min_frequency", "max_frequency", "supported_modes", "channel_capacity", "notes",
}

var radioSelect = "id, " + strings.Join(radioWriteColumns, ", ") + ", created_at, updated_at"

// RadioTable is the accessor for target radio profiles.
type RadioTable struct {
	backend *Backend
}

// Radios returns the radios accessor.
func (b *Backend) Radios() *RadioTable {
	return &RadioTable{backend: b}
}

// List returns every radio ordered by name.
func (rt *RadioTable) List() ([]types.Radio, error) {
	if err := rt.backend.readLock(); err != nil {
		return nil, err
	}
	defer rt.backend.mu.RUnlock()

	return queryAll(rt.backend.db, "list", types.RadiosTable,
		"SELECT "+radioSelect+" FROM radios ORDER BY name ASC, id ASC", nil, scanRadio)
}

// Get retrieves a radio by ID.
func (rt *RadioTable) Get(id int64) (*types.Radio, error) {
	if err := rt.backend.readLock(); err != nil {
		return nil, err
	}
	defer rt.backend.mu.RUnlock()

	return queryOne(rt.backend.db, types.RadiosTable, id,
		"SELECT "+radioSelect+" FROM radios WHERE id = ?", scanRadio)
}

// FindByName returns the first radio whose name matches case-insensitively.
func (rt *RadioTable) FindByName(name string) (*types.Radio, error) {
	if err := rt.backend.readLock(); err != nil {
		return nil, err
	}
	defer rt.backend.mu.RUnlock()

	r, err := scanRadio(rt.backend.db.QueryRow(
		"SELECT "+radioSelect+" FROM radios WHERE name = ? COLLATE NOCASE ORDER BY id ASC LIMIT 1", name))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, &types.StoreError{Op: "get", Table: types.RadiosTable, Err: err}
	}
	return r, nil
}

// Create inserts r and sets r.ID.
func (rt *RadioTable) Create(r *types.Radio) (int64, error) {
	if r == nil {
		return 0, types.ErrInvalidData
	}
	if err := r.Validate(); err != nil {
		return 0, err
	}
	if err := rt.backend.writeLock(); err != nil {
		return 0, err
	}
	defer rt.backend.mu.Unlock()

	id, err := insertRow(rt.backend.db, types.RadiosTable, radioWriteColumns, radioArgs(r))
	if err != nil {
		return 0, err
	}
	r.ID = id
	return id, nil
}

// Update writes only the columns present in patch.
func (rt *RadioTable) Update(id int64, patch types.Patch) error {
	if err := rt.backend.writeLock(); err != nil {
		return err
	}
	defer rt.backend.mu.Unlock()

	return applyPatch(rt.backend.db, types.RadiosTable, id, patch)
}

// Delete removes a radio by ID. A radio still referenced by an export
// profile fails the foreign key check.
func (rt *RadioTable) Delete(id int64) error {
	if err := rt.backend.writeLock(); err != nil {
		return err
	}
	defer rt.backend.mu.Unlock()

	return deleteRow(rt.backend.db, types.RadiosTable, id)
}

func radioArgs(r *types.Radio) []any {
	return []any{
		r.Name, r.Type, r.MinFrequency, r.MaxFrequency, r.SupportedModes,
		nullInt(r.ChannelCapacity), nullString(r.Notes),
	}
}

func scanRadio(sc scanner) (*types.Radio, error) {
	var (
		r                       types.Radio
		capacity                sql.NullInt64
		notes, created, updated sql.NullString
	)
	if err := sc.Scan(
		&r.ID, &r.Name, &r.Type, &r.MinFrequency, &r.MaxFrequency, &r.SupportedModes,
		&capacity, &notes, &created, &updated,
	); err != nil {
		return nil, err
	}
	r.ChannelCapacity = intPtr(capacity)
	r.Notes = strPtr(notes)
	r.CreatedAt = parseTimestamp(created)
	r.UpdatedAt = timestampPtr(updated)
	return &r, nil
}
