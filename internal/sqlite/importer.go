// This file implements flat CSV import for frequencies, systems, sites and
// talkgroups. Rows are parsed and validated one at a time; a bad row is
// recorded in the result and the import continues. Every row of one import
// shares a single transaction, and each row runs in its own savepoint so a
// failed row leaves nothing behind. Engine failures other than constraint
// violations abort the whole import.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

// sitePrefix marks systems-CSV columns that describe a site of the system.
const sitePrefix = "site_"

// record is one CSV data row keyed by header. Empty cells are absent.
type record map[string]string

func (r record) text(key string) *string {
	v, ok := r[key]
	if !ok {
		return nil
	}
	return &v
}

func (r record) float(key string) (*float64, error) {
	v, ok := r[key]
	if !ok {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid number %q", key, v)
	}
	return &f, nil
}

func (r record) int(key string) (*int64, error) {
	v, ok := r[key]
	if !ok {
		return nil, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	n := int64(i)
	return &n, nil
}

// flag reads a 0/1 column, defaulting when absent.
func (r record) flag(key string, def bool) (bool, error) {
	i, err := r.int(key)
	if err != nil || i == nil {
		return def, err
	}
	return *i != 0, nil
}

// parser accumulates the first conversion error so that field extraction
// reads straight through.
type parser struct {
	rec record
	err error
}

func (p *parser) float(key string) *float64 {
	v, err := p.rec.float(key)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (p *parser) int(key string) *int64 {
	v, err := p.rec.int(key)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (p *parser) flag(key string, def bool) bool {
	v, err := p.rec.flag(key, def)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (p *parser) required(key string) string {
	if v := p.rec.text(key); v != nil {
		return *v
	}
	return ""
}

func frequencyFromRecord(rec record) (*types.Frequency, error) {
	p := &parser{rec: rec}
	f := &types.Frequency{
		TransmitFrequency: p.float("transmit_frequency"),
		Name:              p.required("name"),
		Description:       rec.text("description"),
		AlphaTag:          rec.text("alpha_tag"),
		Mode:              p.required("mode"),
		ToneMode:          rec.text("tone_mode"),
		ToneFreq:          rec.text("tone_freq"),
		County:            rec.text("county"),
		State:             rec.text("state"),
		Agency:            rec.text("agency"),
		Callsign:          rec.text("callsign"),
		ServiceType:       rec.text("service_type"),
		Tags:              rec.text("tags"),
		Duplex:            rec.text("duplex"),
		Offset:            p.float("offset"),
		LastVerified:      rec.text("last_verified"),
		Notes:             rec.text("notes"),
		Source:            rec.text("source"),
		Active:            p.flag("active", true),
		DistanceFromKC:    p.float("distance_from_kc"),
		Latitude:          p.float("latitude"),
		Longitude:         p.float("longitude"),
		ClassStationCode:  rec.text("class_station_code"),
		ExportChirp:       p.flag("export_chirp", false),
		ExportUniden:      p.flag("export_uniden", false),
		ExportSDRTrunk:    p.flag("export_sdrtrunk", false),
		ExportSDRPlus:     p.flag("export_sdrplus", false),
		ExportOpenGD77:    p.flag("export_opengd77", false),
	}
	if mhz := p.float("frequency"); mhz != nil {
		f.Frequency = *mhz
	}
	if p.err != nil {
		return nil, p.err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func systemFromRecord(rec record) (*types.TrunkedSystem, error) {
	p := &parser{rec: rec}
	s := &types.TrunkedSystem{
		SystemID:       p.required("system_id"),
		Name:           p.required("name"),
		Type:           p.required("type"),
		SystemClass:    rec.text("system_class"),
		BusinessType:   rec.text("business_type"),
		BusinessOwner:  rec.text("business_owner"),
		Description:    rec.text("description"),
		WACN:           rec.text("wacn"),
		SystemProtocol: rec.text("system_protocol"),
		Notes:          rec.text("notes"),
		Active:         p.flag("active", true),
	}
	if p.err != nil {
		return nil, p.err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// siteFromRecord builds a site. systemID overrides the record's system_id
// column when non-zero, for sites routed from a systems CSV.
func siteFromRecord(rec record, systemID int64) (*types.TrunkedSite, error) {
	p := &parser{rec: rec}
	s := &types.TrunkedSite{
		SiteID:         p.required("site_id"),
		Name:           p.required("name"),
		Description:    rec.text("description"),
		County:         rec.text("county"),
		State:          rec.text("state"),
		Latitude:       p.float("latitude"),
		Longitude:      p.float("longitude"),
		RangeMiles:     p.float("range_miles"),
		NAC:            rec.text("nac"),
		Active:         p.flag("active", true),
		DistanceFromKC: p.float("distance_from_kc"),
	}
	if systemID != 0 {
		s.SystemID = systemID
	} else if id := p.int("system_id"); id != nil {
		s.SystemID = *id
	}
	if p.err != nil {
		return nil, p.err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func talkgroupFromRecord(rec record) (*types.Talkgroup, error) {
	p := &parser{rec: rec}
	tg := &types.Talkgroup{
		HexID:       rec.text("hex_id"),
		AlphaTag:    p.required("alpha_tag"),
		Description: rec.text("description"),
		Mode:        rec.text("mode"),
		Category:    rec.text("category"),
		Tag:         rec.text("tag"),
		Active:      p.flag("active", true),
		Notes:       rec.text("notes"),
	}
	if id := p.int("system_id"); id != nil {
		tg.SystemID = *id
	}
	if dec := p.int("decimal_id"); dec != nil {
		tg.DecimalID = *dec
	} else if p.err == nil {
		p.err = errors.New("decimal_id is required")
	}
	if prio := p.int("priority"); prio != nil {
		tg.Priority = *prio
	}
	if p.err != nil {
		return nil, p.err
	}
	if err := tg.Validate(); err != nil {
		return nil, err
	}
	return tg, nil
}

// splitSite separates site_ columns from a systems-CSV record.
func splitSite(rec record) (system, site record) {
	system, site = record{}, record{}
	for k, v := range rec {
		if strings.HasPrefix(k, sitePrefix) {
			site[strings.TrimPrefix(k, sitePrefix)] = v
		} else {
			system[k] = v
		}
	}
	return system, site
}

// readRecords parses CSV input into header-keyed records. Values are trimmed
// and empty cells dropped. A header that cannot be read is an error.
func readRecords(r io.Reader) ([]record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty CSV input", types.ErrInvalidData)
		}
		return nil, fmt.Errorf("%w: reading CSV header: %v", types.ErrInvalidData, err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var records []record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading CSV: %v", types.ErrInvalidData, err)
		}
		rec := record{}
		for i, cell := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			if v := strings.TrimSpace(cell); v != "" {
				rec[header[i]] = v
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadCSV parses CSV input the way ImportCSV does and returns the rows as
// plain maps, for use with ValidateImport.
func ReadCSV(r io.Reader) ([]map[string]string, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]string, len(records))
	for i, rec := range records {
		out[i] = rec
	}
	return out, nil
}

// ValidateImport dry-runs records of kind through the same parsing and
// validation rules as ImportCSV without touching the database.
func ValidateImport(kind types.ImportKind, records []map[string]string) []types.ImportError {
	errs := []types.ImportError{}
	for i, raw := range records {
		rec := record{}
		for k, v := range raw {
			if v = strings.TrimSpace(v); v != "" {
				rec[strings.TrimSpace(k)] = v
			}
		}
		if err := validateRecord(kind, rec); err != nil {
			errs = append(errs, types.ImportError{Row: i + 1, Message: err.Error()})
		}
	}
	return errs
}

func validateRecord(kind types.ImportKind, rec record) error {
	var err error
	switch kind {
	case types.ImportFrequencies:
		_, err = frequencyFromRecord(rec)
	case types.ImportSystems:
		sys, site := splitSite(rec)
		if _, err = systemFromRecord(sys); err == nil && site["site_id"] != "" {
			_, err = siteFromRecord(site, 1)
		}
	case types.ImportSites:
		_, err = siteFromRecord(rec, 0)
	case types.ImportTalkgroups:
		_, err = talkgroupFromRecord(rec)
	default:
		err = fmt.Errorf("%w: unknown import kind %q", types.ErrInvalidData, kind)
	}
	return err
}

// ImportCSV imports r as kind. Rows are processed in chunks of the
// configured chunk size; cancellation is checked between chunks and rolls
// back the whole import. Row errors never abort; an engine failure
// returns the error and rolls back everything.
func (b *Backend) ImportCSV(ctx context.Context, kind types.ImportKind, r io.Reader) (*types.ImportResult, error) {
	if _, err := types.ParseImportKind(string(kind)); err != nil {
		return nil, err
	}
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}

	if err := b.writeLock(); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()

	runID := uuid.Must(uuid.NewV7()).String()
	logger := log.WithFields(log.Fields{"run": runID, "kind": kind})
	chunkSize := b.config.ChunkSize()

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &types.StoreError{Op: "import", Err: err}
	}
	defer tx.Rollback()

	result := &types.ImportResult{TotalRecords: len(records), Errors: []types.ImportError{}}
	for start := 0; start < len(records); start += chunkSize {
		if err := ctx.Err(); err != nil {
			logger.WithError(err).Warn("import: cancelled, rolling back")
			return nil, err
		}
		end := min(start+chunkSize, len(records))
		for i := start; i < end; i++ {
			row := i + 1
			rowErr, err := inSavepoint(tx, func() error { return importRecord(tx, kind, records[i]) })
			if err != nil {
				logger.WithError(err).WithField("row", row).Error("import: engine failure, rolling back")
				return nil, err
			}
			if rowErr != nil {
				result.AddError(row, "%v", rowErr)
				continue
			}
			result.ImportedRecords++
		}
		logger.WithFields(log.Fields{
			"rows":     end,
			"of":       len(records),
			"imported": result.ImportedRecords,
		}).Debug("import: chunk done")
	}

	if err := tx.Commit(); err != nil {
		return nil, &types.StoreError{Op: "import", Err: err}
	}
	result.Success = len(result.Errors) == 0

	logger.WithFields(log.Fields{
		"imported": result.ImportedRecords,
		"errors":   len(result.Errors),
	}).Info("import: finished")
	return result, nil
}

// inSavepoint runs fn inside a savepoint of tx. A row-level failure of fn
// is rolled back to the savepoint and returned as rowErr; an engine failure,
// or a failure of the savepoint itself, is returned as err and leaves tx for
// the caller to roll back.
func inSavepoint(tx *sql.Tx, fn func() error) (rowErr, err error) {
	if _, err := tx.Exec("SAVEPOINT import_row"); err != nil {
		return nil, &types.StoreError{Op: "import", Err: err}
	}
	if rowErr = fn(); rowErr != nil {
		if engineFatal(rowErr) {
			return nil, rowErr
		}
		if _, err := tx.Exec("ROLLBACK TO import_row"); err != nil {
			return nil, &types.StoreError{Op: "import", Err: err}
		}
	}
	if _, err := tx.Exec("RELEASE import_row"); err != nil {
		return nil, &types.StoreError{Op: "import", Err: err}
	}
	return rowErr, nil
}

// engineFatal reports whether err came from the SQLite engine with a
// primary result code other than SQLITE_CONSTRAINT.
func engineFatal(err error) bool {
	var se *sqlitedriver.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code()&0xff != sqlite3.SQLITE_CONSTRAINT
}

// importRecord converts and inserts one row inside tx.
func importRecord(tx *sql.Tx, kind types.ImportKind, rec record) error {
	switch kind {
	case types.ImportFrequencies:
		f, err := frequencyFromRecord(rec)
		if err != nil {
			return err
		}
		_, err = insertRow(tx, types.FrequenciesTable, frequencyWriteColumns, frequencyArgs(f))
		return err
	case types.ImportSystems:
		sysRec, siteRec := splitSite(rec)
		s, err := systemFromRecord(sysRec)
		if err != nil {
			return err
		}
		var site *types.TrunkedSite
		if siteRec["site_id"] != "" {
			if site, err = siteFromRecord(siteRec, 1); err != nil {
				return fmt.Errorf("site: %w", err)
			}
		}
		id, err := insertRow(tx, types.SystemsTable, systemWriteColumns, systemArgs(s))
		if err != nil {
			return err
		}
		if site != nil {
			site.SystemID = id
			if _, err := insertRow(tx, types.SitesTable, siteWriteColumns, siteArgs(site)); err != nil {
				return fmt.Errorf("site: %w", err)
			}
		}
		return nil
	case types.ImportSites:
		s, err := siteFromRecord(rec, 0)
		if err != nil {
			return err
		}
		_, err = insertRow(tx, types.SitesTable, siteWriteColumns, siteArgs(s))
		return err
	case types.ImportTalkgroups:
		tg, err := talkgroupFromRecord(rec)
		if err != nil {
			return err
		}
		_, err = insertRow(tx, types.TalkgroupsTable, talkgroupWriteColumns, talkgroupArgs(tg))
		return err
	}
	return fmt.Errorf("%w: unknown import kind %q", types.ErrInvalidData, kind)
}
