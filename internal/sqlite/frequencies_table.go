// This file implements the frequencies table accessor for the SQLite backend.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

// DefaultPageSize is used by Page when the caller passes a non-positive size.
const DefaultPageSize = 100

// frequencyWriteColumns are the columns written on insert, in the order
// frequencyArgs produces values.
var frequencyWriteColumns = []string{
	"frequency", "transmit_frequency", "name", "description", "alpha_tag",
	"mode", "tone_mode", "tone_freq", "county", "state", "agency", "callsign",
	"service_type", "tags", "duplex", `"offset"`, "last_verified", "notes",
	"source", "active", "distance_from_kc", "latitude", "longitude",
	"class_station_code", "export_chirp", "export_uniden", "export_sdrtrunk",
	"export_sdrplus", "export_opengd77",
}

// frequencySelect is the column list read back by scanFrequency.
var frequencySelect = "id, " + strings.Join(frequencyWriteColumns, ", ") + ", created_at, updated_at"

// FrequencyTable is the accessor for conventional channels.
type FrequencyTable struct {
	backend *Backend
}

// Frequencies returns the frequencies accessor.
func (b *Backend) Frequencies() *FrequencyTable {
	return &FrequencyTable{backend: b}
}

// List returns every frequency matching filter, ordered by frequency.
// A nil or empty filter returns all rows, active or not.
func (ft *FrequencyTable) List(filter *types.FrequencyFilter) ([]types.Frequency, error) {
	w, err := compileFrequencyFilter(filter)
	if err != nil {
		return nil, err
	}
	if err := ft.backend.readLock(); err != nil {
		return nil, err
	}
	defer ft.backend.mu.RUnlock()

	query := "SELECT " + frequencySelect + " FROM frequencies" + w.String() + " ORDER BY frequency ASC, id ASC"
	return queryAll(ft.backend.db, "list", types.FrequenciesTable, query, w.args, scanFrequency)
}

// Page returns one 1-based page of the filtered listing plus the total
// match count.
func (ft *FrequencyTable) Page(filter *types.FrequencyFilter, page, pageSize int) (*types.FrequencyPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	w, err := compileFrequencyFilter(filter)
	if err != nil {
		return nil, err
	}
	if err := ft.backend.readLock(); err != nil {
		return nil, err
	}
	defer ft.backend.mu.RUnlock()

	var total int
	if err := ft.backend.db.QueryRow("SELECT COUNT(*) FROM frequencies"+w.String(), w.args...).Scan(&total); err != nil {
		return nil, &types.StoreError{Op: "count", Table: types.FrequenciesTable, Err: err}
	}

	query := "SELECT " + frequencySelect + " FROM frequencies" + w.String() +
		" ORDER BY frequency ASC, id ASC LIMIT ? OFFSET ?"
	args := append(append([]any{}, w.args...), pageSize, (page-1)*pageSize)
	items, err := queryAll(ft.backend.db, "list", types.FrequenciesTable, query, args, scanFrequency)
	if err != nil {
		return nil, err
	}
	return &types.FrequencyPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Get retrieves a frequency by ID.
func (ft *FrequencyTable) Get(id int64) (*types.Frequency, error) {
	if err := ft.backend.readLock(); err != nil {
		return nil, err
	}
	defer ft.backend.mu.RUnlock()

	return queryOne(ft.backend.db, types.FrequenciesTable, id,
		"SELECT "+frequencySelect+" FROM frequencies WHERE id = ?", scanFrequency)
}

// Create inserts f and sets f.ID. Every column is written explicitly, so
// Active and the export flags take the values on f.
func (ft *FrequencyTable) Create(f *types.Frequency) (int64, error) {
	if f == nil {
		return 0, types.ErrInvalidData
	}
	if err := f.Validate(); err != nil {
		return 0, err
	}
	if err := ft.backend.writeLock(); err != nil {
		return 0, err
	}
	defer ft.backend.mu.Unlock()

	id, err := insertRow(ft.backend.db, types.FrequenciesTable, frequencyWriteColumns, frequencyArgs(f))
	if err != nil {
		return 0, err
	}
	f.ID = id
	return id, nil
}

// Update writes only the columns present in patch and stamps updated_at.
// An empty patch is a no-op.
func (ft *FrequencyTable) Update(id int64, patch types.Patch) error {
	if err := ft.backend.writeLock(); err != nil {
		return err
	}
	defer ft.backend.mu.Unlock()

	return applyPatch(ft.backend.db, types.FrequenciesTable, id, patch)
}

// BatchUpdate applies every update in one transaction; any failure rolls
// back the whole batch.
func (ft *FrequencyTable) BatchUpdate(updates []types.FrequencyUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	if err := ft.backend.writeLock(); err != nil {
		return err
	}
	defer ft.backend.mu.Unlock()

	tx, err := ft.backend.db.Begin()
	if err != nil {
		return &types.StoreError{Op: "batch update", Table: types.FrequenciesTable, Err: err}
	}
	defer tx.Rollback()

	for i, u := range updates {
		if err := applyPatch(tx, types.FrequenciesTable, u.ID, u.Patch); err != nil {
			return fmt.Errorf("update %d of %d: %w", i+1, len(updates), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return &types.StoreError{Op: "batch update", Table: types.FrequenciesTable, Err: err}
	}

	log.WithField("count", len(updates)).Debug("sqlite: batch update committed")
	return nil
}

// Delete removes a frequency by ID.
func (ft *FrequencyTable) Delete(id int64) error {
	if err := ft.backend.writeLock(); err != nil {
		return err
	}
	defer ft.backend.mu.Unlock()

	return deleteRow(ft.backend.db, types.FrequenciesTable, id)
}

// ToggleFlag inverts one export flag on one row and returns the new value.
// The flip happens in a single UPDATE, and no other column changes besides
// updated_at.
func (ft *FrequencyTable) ToggleFlag(id int64, flag types.ExportFlag) (bool, error) {
	if !flag.Valid() {
		return false, types.ErrInvalidFlag
	}
	if id <= 0 {
		return false, types.ErrInvalidID
	}
	if err := ft.backend.writeLock(); err != nil {
		return false, err
	}
	defer ft.backend.mu.Unlock()

	col := string(flag)
	var value int
	err := ft.backend.db.QueryRow(fmt.Sprintf(
		"UPDATE frequencies SET %[1]s = CASE WHEN %[1]s = 1 THEN 0 ELSE 1 END, updated_at = CURRENT_TIMESTAMP WHERE id = ? RETURNING %[1]s",
		col), id).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, fmt.Errorf("%s %d: %w", types.FrequenciesTable, id, types.ErrNotFound)
		}
		return false, &types.StoreError{Op: "toggle " + col, Table: types.FrequenciesTable, Err: err}
	}
	return value == 1, nil
}

// frequencyArgs returns insert values in frequencyWriteColumns order.
func frequencyArgs(f *types.Frequency) []any {
	return []any{
		f.Frequency, nullFloat(f.TransmitFrequency), f.Name, nullString(f.Description), nullString(f.AlphaTag),
		f.Mode, nullString(f.ToneMode), nullString(f.ToneFreq), nullString(f.County), nullString(f.State),
		nullString(f.Agency), nullString(f.Callsign),
		nullString(f.ServiceType), nullString(f.Tags), nullString(f.Duplex), nullFloat(f.Offset),
		nullString(f.LastVerified), nullString(f.Notes),
		nullString(f.Source), boolInt(f.Active), nullFloat(f.DistanceFromKC), nullFloat(f.Latitude), nullFloat(f.Longitude),
		nullString(f.ClassStationCode), boolInt(f.ExportChirp), boolInt(f.ExportUniden), boolInt(f.ExportSDRTrunk),
		boolInt(f.ExportSDRPlus), boolInt(f.ExportOpenGD77),
	}
}

// scanFrequency hydrates a row selected with frequencySelect. extra receives
// any trailing columns, such as the CHIRP view's comment.
func scanFrequency(sc scanner) (*types.Frequency, error) {
	return scanFrequencyExtra(sc)
}

func scanFrequencyExtra(sc scanner, extra ...any) (*types.Frequency, error) {
	var (
		f                                                      types.Frequency
		transmit, offset, distance, lat, lon                   sql.NullFloat64
		desc, alpha, toneMode, toneFreq, county, state, agency sql.NullString
		callsign, service, tags, duplex, verified, notes       sql.NullString
		source, classCode, created, updated                    sql.NullString
		active, chirp, uniden, sdrtrunk, sdrplus, opengd77     sql.NullInt64
	)
	dest := []any{
		&f.ID, &f.Frequency, &transmit, &f.Name, &desc, &alpha,
		&f.Mode, &toneMode, &toneFreq, &county, &state, &agency, &callsign,
		&service, &tags, &duplex, &offset, &verified, &notes,
		&source, &active, &distance, &lat, &lon,
		&classCode, &chirp, &uniden, &sdrtrunk,
		&sdrplus, &opengd77, &created, &updated,
	}
	if err := sc.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	f.TransmitFrequency = floatPtr(transmit)
	f.Description = strPtr(desc)
	f.AlphaTag = strPtr(alpha)
	f.ToneMode = strPtr(toneMode)
	f.ToneFreq = strPtr(toneFreq)
	f.County = strPtr(county)
	f.State = strPtr(state)
	f.Agency = strPtr(agency)
	f.Callsign = strPtr(callsign)
	f.ServiceType = strPtr(service)
	f.Tags = strPtr(tags)
	f.Duplex = strPtr(duplex)
	f.Offset = floatPtr(offset)
	f.LastVerified = strPtr(verified)
	f.Notes = strPtr(notes)
	f.Source = strPtr(source)
	f.Active = flag(active, true)
	f.DistanceFromKC = floatPtr(distance)
	f.Latitude = floatPtr(lat)
	f.Longitude = floatPtr(lon)
	f.ClassStationCode = strPtr(classCode)
	f.ExportChirp = flag(chirp, false)
	f.ExportUniden = flag(uniden, false)
	f.ExportSDRTrunk = flag(sdrtrunk, false)
	f.ExportSDRPlus = flag(sdrplus, false)
	f.ExportOpenGD77 = flag(opengd77, false)
	f.CreatedAt = parseTimestamp(created)
	f.UpdatedAt = timestampPtr(updated)
	return &f, nil
}
