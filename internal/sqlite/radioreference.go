// This file implements import of RadioReference-style JSON exports: trunked
// systems with nested sites and talkgroups, plus conventional channels.
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

// looseString accepts a JSON string or number. RadioReference identifiers
// and tone values appear as either.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = looseString(n.String())
	return nil
}

func (s looseString) ptr() *string {
	if s == "" {
		return nil
	}
	v := string(s)
	return &v
}

type rrDocument struct {
	Systems      []rrSystem    `json:"systems"`
	Conventional []rrFrequency `json:"conventional"`
}

type rrSystem struct {
	ID          looseString   `json:"id"`
	Name        string        `json:"name"`
	Type        string        `json:"type"`
	SystemClass looseString   `json:"systemClass"`
	Protocol    looseString   `json:"protocol"`
	Description looseString   `json:"description"`
	WACN        looseString   `json:"wacn"`
	Sites       []rrSite      `json:"sites"`
	Talkgroups  []rrTalkgroup `json:"talkgroups"`
}

type rrSite struct {
	ID        looseString `json:"id"`
	Name      string      `json:"name"`
	County    looseString `json:"county"`
	State     looseString `json:"state"`
	Latitude  *float64    `json:"latitude"`
	Longitude *float64    `json:"longitude"`
	Range     *float64    `json:"range"`
}

type rrTalkgroup struct {
	Decimal     int64       `json:"decimal"`
	Hex         looseString `json:"hex"`
	AlphaTag    string      `json:"alphaTag"`
	Description looseString `json:"description"`
	Mode        looseString `json:"mode"`
	Category    looseString `json:"category"`
	Priority    int64       `json:"priority"`
}

type rrFrequency struct {
	Frequency   float64     `json:"frequency"`
	Name        string      `json:"name"`
	Description looseString `json:"description"`
	Mode        string      `json:"mode"`
	ToneMode    looseString `json:"toneMode"`
	ToneFreq    looseString `json:"toneFreq"`
	County      looseString `json:"county"`
	State       looseString `json:"state"`
	Agency      looseString `json:"agency"`
	Callsign    looseString `json:"callsign"`
	ServiceType looseString `json:"serviceType"`
	Tags        []string    `json:"tags"`
	Duplex      looseString `json:"duplex"`
	Offset      *float64    `json:"offset"`
}

func (f *rrFrequency) toFrequency() *types.Frequency {
	out := &types.Frequency{
		Frequency:   f.Frequency,
		Name:        f.Name,
		Description: f.Description.ptr(),
		Mode:        f.Mode,
		ToneMode:    f.ToneMode.ptr(),
		ToneFreq:    f.ToneFreq.ptr(),
		County:      f.County.ptr(),
		State:       f.State.ptr(),
		Agency:      f.Agency.ptr(),
		Callsign:    f.Callsign.ptr(),
		ServiceType: f.ServiceType.ptr(),
		Duplex:      f.Duplex.ptr(),
		Offset:      f.Offset,
		Active:      true,
	}
	if len(f.Tags) > 0 {
		out.Tags = types.String(strings.Join(f.Tags, ","))
	}
	return out
}

// ImportRadioReference imports a RadioReference JSON document. Each system
// is inserted before its sites and talkgroups so that children reference
// the new row id. Items that fail validation are recorded as row errors;
// Row is the 1-based position within the item's own list. A document that
// does not decode imports nothing.
func (b *Backend) ImportRadioReference(ctx context.Context, r io.Reader) (*types.ImportResult, error) {
	var doc rrDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decoding RadioReference JSON: %v", types.ErrInvalidData, err)
	}

	if err := b.writeLock(); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()

	logger := log.WithFields(log.Fields{"run": uuid.Must(uuid.NewV7()).String(), "kind": "radioreference"})

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &types.StoreError{Op: "import", Err: err}
	}
	defer tx.Rollback()

	result := &types.ImportResult{Errors: []types.ImportError{}}
	for i := range doc.Systems {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := importRRSystem(tx, i+1, &doc.Systems[i], result); err != nil {
			logger.WithError(err).Error("import: engine failure, rolling back")
			return nil, err
		}
	}

	for i := range doc.Conventional {
		if i%b.config.ChunkSize() == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		result.TotalRecords++
		f := doc.Conventional[i].toFrequency()
		if err := f.Validate(); err != nil {
			result.AddError(i+1, "conventional: %v", err)
			continue
		}
		rowErr, err := inSavepoint(tx, func() error {
			_, err := insertRow(tx, types.FrequenciesTable, frequencyWriteColumns, frequencyArgs(f))
			return err
		})
		if err != nil {
			logger.WithError(err).Error("import: engine failure, rolling back")
			return nil, err
		}
		if rowErr != nil {
			result.AddError(i+1, "conventional: %v", rowErr)
			continue
		}
		result.ImportedRecords++
	}

	if err := tx.Commit(); err != nil {
		return nil, &types.StoreError{Op: "import", Err: err}
	}
	result.Success = len(result.Errors) == 0

	logger.WithFields(log.Fields{
		"systems":      len(doc.Systems),
		"conventional": len(doc.Conventional),
		"imported":     result.ImportedRecords,
		"errors":       len(result.Errors),
	}).Info("import: finished")
	return result, nil
}

// importRRSystem inserts one system and its children, each in its own
// savepoint. A system that fails skips its children, which are still counted
// toward the total. The returned error is an engine failure that must abort
// the import.
func importRRSystem(tx *sql.Tx, row int, rs *rrSystem, result *types.ImportResult) error {
	result.TotalRecords += 1 + len(rs.Sites) + len(rs.Talkgroups)

	sys := &types.TrunkedSystem{
		SystemID:       string(rs.ID),
		Name:           rs.Name,
		Type:           rs.Type,
		SystemClass:    rs.SystemClass.ptr(),
		SystemProtocol: rs.Protocol.ptr(),
		Description:    rs.Description.ptr(),
		WACN:           rs.WACN.ptr(),
		Active:         true,
	}
	if err := sys.Validate(); err != nil {
		result.AddError(row, "system: %v", err)
		return nil
	}
	var id int64
	rowErr, err := inSavepoint(tx, func() (err error) {
		id, err = insertRow(tx, types.SystemsTable, systemWriteColumns, systemArgs(sys))
		return err
	})
	if err != nil {
		return err
	}
	if rowErr != nil {
		result.AddError(row, "system: %v", rowErr)
		return nil
	}
	result.ImportedRecords++

	for j, rsite := range rs.Sites {
		site := &types.TrunkedSite{
			SystemID:   id,
			SiteID:     string(rsite.ID),
			Name:       rsite.Name,
			County:     rsite.County.ptr(),
			State:      rsite.State.ptr(),
			Latitude:   rsite.Latitude,
			Longitude:  rsite.Longitude,
			RangeMiles: rsite.Range,
			Active:     true,
		}
		if err := site.Validate(); err != nil {
			result.AddError(row, "system %s site %d: %v", rs.ID, j+1, err)
			continue
		}
		rowErr, err := inSavepoint(tx, func() error {
			_, err := insertRow(tx, types.SitesTable, siteWriteColumns, siteArgs(site))
			return err
		})
		if err != nil {
			return err
		}
		if rowErr != nil {
			result.AddError(row, "system %s site %d: %v", rs.ID, j+1, rowErr)
			continue
		}
		result.ImportedRecords++
	}

	for j, rtg := range rs.Talkgroups {
		tg := &types.Talkgroup{
			SystemID:    id,
			DecimalID:   rtg.Decimal,
			HexID:       rtg.Hex.ptr(),
			AlphaTag:    rtg.AlphaTag,
			Description: rtg.Description.ptr(),
			Mode:        rtg.Mode.ptr(),
			Category:    rtg.Category.ptr(),
			Priority:    rtg.Priority,
			Active:      true,
		}
		if err := tg.Validate(); err != nil {
			result.AddError(row, "system %s talkgroup %d: %v", rs.ID, j+1, err)
			continue
		}
		rowErr, err := inSavepoint(tx, func() error {
			_, err := insertRow(tx, types.TalkgroupsTable, talkgroupWriteColumns, talkgroupArgs(tg))
			return err
		})
		if err != nil {
			return err
		}
		if rowErr != nil {
			result.AddError(row, "system %s talkgroup %d: %v", rs.ID, j+1, rowErr)
			continue
		}
		result.ImportedRecords++
	}
	return nil
}
