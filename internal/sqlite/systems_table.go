// This file implements the trunked_systems table accessor, including the
// cascading delete that removes a system's sites and talkgroups.
package sqlite

import (
	"database/sql"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

var systemWriteColumns = []string{
	"system_id", "name", "type", "system_class", "business_type", "business_owner",
	"description", "wacn", "system_protocol", "notes", "active",
}

var systemSelect = "id, " + strings.Join(systemWriteColumns, ", ") + ", created_at, updated_at"

// SystemTable is the accessor for trunked systems.
type SystemTable struct {
	backend *Backend
}

// Systems returns the trunked systems accessor.
func (b *Backend) Systems() *SystemTable {
	return &SystemTable{backend: b}
}

// List returns systems matching filter, ordered by name.
func (st *SystemTable) List(filter *types.SystemFilter) ([]types.TrunkedSystem, error) {
	w := compileSystemFilter(filter)
	if err := st.backend.readLock(); err != nil {
		return nil, err
	}
	defer st.backend.mu.RUnlock()

	query := "SELECT " + systemSelect + " FROM trunked_systems" + w.String() + " ORDER BY name ASC, id ASC"
	return queryAll(st.backend.db, "list", types.SystemsTable, query, w.args, scanSystem)
}

// Get retrieves a system by ID.
func (st *SystemTable) Get(id int64) (*types.TrunkedSystem, error) {
	if err := st.backend.readLock(); err != nil {
		return nil, err
	}
	defer st.backend.mu.RUnlock()

	return queryOne(st.backend.db, types.SystemsTable, id,
		"SELECT "+systemSelect+" FROM trunked_systems WHERE id = ?", scanSystem)
}

// Detail returns a system with all of its sites and talkgroups, read in one
// transaction so the three lists are consistent with each other.
func (st *SystemTable) Detail(id int64) (*types.SystemDetail, error) {
	if err := st.backend.readLock(); err != nil {
		return nil, err
	}
	defer st.backend.mu.RUnlock()

	tx, err := st.backend.db.Begin()
	if err != nil {
		return nil, &types.StoreError{Op: "detail", Table: types.SystemsTable, Err: err}
	}
	defer tx.Rollback()

	sys, err := queryOne(tx, types.SystemsTable, id,
		"SELECT "+systemSelect+" FROM trunked_systems WHERE id = ?", scanSystem)
	if err != nil {
		return nil, err
	}
	sites, err := queryAll(tx, "list", types.SitesTable,
		"SELECT "+siteSelect+" FROM trunked_sites WHERE system_id = ? ORDER BY name ASC, id ASC",
		[]any{id}, scanSite)
	if err != nil {
		return nil, err
	}
	tgs, err := queryAll(tx, "list", types.TalkgroupsTable,
		"SELECT "+talkgroupSelect+" FROM talkgroups WHERE system_id = ? ORDER BY decimal_id ASC, id ASC",
		[]any{id}, scanTalkgroup)
	if err != nil {
		return nil, err
	}
	return &types.SystemDetail{System: *sys, Sites: sites, Talkgroups: tgs}, nil
}

// Create inserts s and sets s.ID.
func (st *SystemTable) Create(s *types.TrunkedSystem) (int64, error) {
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

	id, err := insertRow(st.backend.db, types.SystemsTable, systemWriteColumns, systemArgs(s))
	if err != nil {
		return 0, err
	}
	s.ID = id
	return id, nil
}

// Update writes only the columns present in patch.
func (st *SystemTable) Update(id int64, patch types.Patch) error {
	if err := st.backend.writeLock(); err != nil {
		return err
	}
	defer st.backend.mu.Unlock()

	return applyPatch(st.backend.db, types.SystemsTable, id, patch)
}

// Delete removes a system together with every talkgroup and site that
// references it, in one transaction. Either all of them go or none do.
func (st *SystemTable) Delete(id int64) error {
	if id <= 0 {
		return types.ErrInvalidID
	}
	if err := st.backend.writeLock(); err != nil {
		return err
	}
	defer st.backend.mu.Unlock()

	tx, err := st.backend.db.Begin()
	if err != nil {
		return &types.StoreError{Op: "delete system", Table: types.SystemsTable, Err: err}
	}
	defer tx.Rollback()

	tgs, err := tx.Exec("DELETE FROM talkgroups WHERE system_id = ?", id)
	if err != nil {
		return &types.StoreError{Op: "delete system", Table: types.TalkgroupsTable, Err: err}
	}
	sites, err := tx.Exec("DELETE FROM trunked_sites WHERE system_id = ?", id)
	if err != nil {
		return &types.StoreError{Op: "delete system", Table: types.SitesTable, Err: err}
	}
	if err := deleteRow(tx, types.SystemsTable, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return &types.StoreError{Op: "delete system", Table: types.SystemsTable, Err: err}
	}

	nTG, _ := tgs.RowsAffected()
	nSites, _ := sites.RowsAffected()
	log.WithFields(log.Fields{
		"system":     id,
		"talkgroups": nTG,
		"sites":      nSites,
	}).Debug("sqlite: system deleted")
	return nil
}

func systemArgs(s *types.TrunkedSystem) []any {
	return []any{
		s.SystemID, s.Name, s.Type, nullString(s.SystemClass), nullString(s.BusinessType),
		nullString(s.BusinessOwner), nullString(s.Description), nullString(s.WACN),
		nullString(s.SystemProtocol), nullString(s.Notes), boolInt(s.Active),
	}
}

func scanSystem(sc scanner) (*types.TrunkedSystem, error) {
	var (
		s                                             types.TrunkedSystem
		class, btype, owner, desc, wacn, proto, notes sql.NullString
		created, updated                              sql.NullString
		active                                        sql.NullInt64
	)
	if err := sc.Scan(
		&s.ID, &s.SystemID, &s.Name, &s.Type, &class, &btype, &owner,
		&desc, &wacn, &proto, &notes, &active, &created, &updated,
	); err != nil {
		return nil, err
	}
	s.SystemClass = strPtr(class)
	s.BusinessType = strPtr(btype)
	s.BusinessOwner = strPtr(owner)
	s.Description = strPtr(desc)
	s.WACN = strPtr(wacn)
	s.SystemProtocol = strPtr(proto)
	s.Notes = strPtr(notes)
	s.Active = flag(active, true)
	s.CreatedAt = parseTimestamp(created)
	s.UpdatedAt = timestampPtr(updated)
	return &s, nil
}
