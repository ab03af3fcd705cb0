// This file implements the talkgroups table accessor.
package sqlite

import (
	"database/sql"
	"strings"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

var talkgroupWriteColumns = []string{
	"system_id", "decimal_id", "hex_id", "alpha_tag", "description", "mode",
	"category", "tag", "priority", "active", "notes",
}

var talkgroupSelect = "id, " + strings.Join(talkgroupWriteColumns, ", ") + ", created_at, updated_at"

// TalkgroupTable is the accessor for talkgroups.
type TalkgroupTable struct {
	backend *Backend
}

// Talkgroups returns the talkgroups accessor.
func (b *Backend) Talkgroups() *TalkgroupTable {
	return &TalkgroupTable{backend: b}
}

// List returns talkgroups matching filter, ordered by decimal ID.
func (tt *TalkgroupTable) List(filter *types.TalkgroupFilter) ([]types.Talkgroup, error) {
	w := compileTalkgroupFilter(filter)
	if err := tt.backend.readLock(); err != nil {
		return nil, err
	}
	defer tt.backend.mu.RUnlock()

	query := "SELECT " + talkgroupSelect + " FROM talkgroups" + w.String() + " ORDER BY decimal_id ASC, id ASC"
	return queryAll(tt.backend.db, "list", types.TalkgroupsTable, query, w.args, scanTalkgroup)
}

// Get retrieves a talkgroup by ID.
func (tt *TalkgroupTable) Get(id int64) (*types.Talkgroup, error) {
	if err := tt.backend.readLock(); err != nil {
		return nil, err
	}
	defer tt.backend.mu.RUnlock()

	return queryOne(tt.backend.db, types.TalkgroupsTable, id,
		"SELECT "+talkgroupSelect+" FROM talkgroups WHERE id = ?", scanTalkgroup)
}

// Create inserts tg and sets tg.ID.
func (tt *TalkgroupTable) Create(tg *types.Talkgroup) (int64, error) {
	if tg == nil {
		return 0, types.ErrInvalidData
	}
	if err := tg.Validate(); err != nil {
		return 0, err
	}
	if err := tt.backend.writeLock(); err != nil {
		return 0, err
	}
	defer tt.backend.mu.Unlock()

	id, err := insertRow(tt.backend.db, types.TalkgroupsTable, talkgroupWriteColumns, talkgroupArgs(tg))
	if err != nil {
		return 0, err
	}
	tg.ID = id
	return id, nil
}

// Update writes only the columns present in patch.
func (tt *TalkgroupTable) Update(id int64, patch types.Patch) error {
	if err := tt.backend.writeLock(); err != nil {
		return err
	}
	defer tt.backend.mu.Unlock()

	return applyPatch(tt.backend.db, types.TalkgroupsTable, id, patch)
}

// Delete removes a talkgroup by ID.
func (tt *TalkgroupTable) Delete(id int64) error {
	if err := tt.backend.writeLock(); err != nil {
		return err
	}
	defer tt.backend.mu.Unlock()

	return deleteRow(tt.backend.db, types.TalkgroupsTable, id)
}

func talkgroupArgs(tg *types.Talkgroup) []any {
	return []any{
		tg.SystemID, tg.DecimalID, nullString(tg.HexID), tg.AlphaTag, nullString(tg.Description),
		nullString(tg.Mode), nullString(tg.Category), nullString(tg.Tag), tg.Priority,
		boolInt(tg.Active), nullString(tg.Notes),
	}
}

func scanTalkgroup(sc scanner) (*types.Talkgroup, error) {
	var (
		tg                                    types.Talkgroup
		hex, desc, mode, category, tag, notes sql.NullString
		created, updated                      sql.NullString
		priority, active                      sql.NullInt64
	)
	if err := sc.Scan(
		&tg.ID, &tg.SystemID, &tg.DecimalID, &hex, &tg.AlphaTag, &desc, &mode,
		&category, &tag, &priority, &active, &notes, &created, &updated,
	); err != nil {
		return nil, err
	}
	tg.HexID = strPtr(hex)
	tg.Description = strPtr(desc)
	tg.Mode = strPtr(mode)
	tg.Category = strPtr(category)
	tg.Tag = strPtr(tag)
	tg.Priority = priority.Int64
	tg.Active = flag(active, true)
	tg.Notes = strPtr(notes)
	tg.CreatedAt = parseTimestamp(created)
	tg.UpdatedAt = timestampPtr(updated)
	return &tg, nil
}
