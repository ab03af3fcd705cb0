// This file implements reference data seeding: the KC-area counties and the
// default radio models. Seeding is explicit and only fills empty tables.
package sqlite

import (
	"database/sql"

	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

// seedCounties are the counties around the reference point, with driving
// distance in miles.
var seedCounties = []types.County{
	{Name: "Jackson", State: "MO", Region: types.RegionKCCore, DistanceFromKC: 0},
	{Name: "Clay", State: "MO", Region: types.RegionKCCore, DistanceFromKC: 5},
	{Name: "Platte", State: "MO", Region: types.RegionKCCore, DistanceFromKC: 7},
	{Name: "Johnson", State: "KS", Region: types.RegionKCCore, DistanceFromKC: 8},
	{Name: "Wyandotte", State: "KS", Region: types.RegionKCCore, DistanceFromKC: 3},
	{Name: "Cass", State: "MO", Region: types.RegionKCMetro, DistanceFromKC: 20},
	{Name: "Lafayette", State: "MO", Region: types.RegionKCMetro, DistanceFromKC: 35},
	{Name: "Ray", State: "MO", Region: types.RegionKCMetro, DistanceFromKC: 25},
	{Name: "Clinton", State: "MO", Region: types.RegionKCMetro, DistanceFromKC: 30},
	{Name: "Leavenworth", State: "KS", Region: types.RegionKCMetro, DistanceFromKC: 25},
	{Name: "Miami", State: "KS", Region: types.RegionKCMetro, DistanceFromKC: 40},
	{Name: "Douglas", State: "KS", Region: types.RegionRegional, DistanceFromKC: 45},
	{Name: "Franklin", State: "KS", Region: types.RegionRegional, DistanceFromKC: 50},
	{Name: "Buchanan", State: "MO", Region: types.RegionRegional, DistanceFromKC: 55},
	{Name: "Pettis", State: "MO", Region: types.RegionRegional, DistanceFromKC: 70},
	{Name: "Johnson", State: "MO", Region: types.RegionRegional, DistanceFromKC: 50},
}

// seedRadios are the default target radio models.
var seedRadios = []types.Radio{
	{Name: "Baofeng UV-5R", Type: "CHIRP", MinFrequency: 136.0, MaxFrequency: 174.0, SupportedModes: "FM,FMN"},
	{Name: "Uniden SDS100", Type: "Uniden", MinFrequency: 25.0, MaxFrequency: 1300.0, SupportedModes: "FM,FMN,AM,DMR,P25"},
	{Name: "SDRTrunk", Type: "SDRTrunk", MinFrequency: 24.0, MaxFrequency: 1800.0, SupportedModes: "FM,FMN,AM,DMR,P25"},
	{Name: "SDR++", Type: "SDRPlus", MinFrequency: 0.5, MaxFrequency: 2000.0, SupportedModes: "FM,FMN,AM,DMR,P25,WFM,USB,LSB"},
	{Name: "OpenGD77", Type: "OpenGD77", MinFrequency: 136.0, MaxFrequency: 174.0, SupportedModes: "FM,DMR"},
}

// SeedResult reports how many reference rows Seed inserted.
type SeedResult struct {
	Counties int `json:"counties"`
	Radios   int `json:"radios"`
}

// Seed inserts the reference counties and radios. Each table is seeded only
// when it is empty, so Seed is safe to call repeatedly.
func (b *Backend) Seed() (*SeedResult, error) {
	if err := b.writeLock(); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()

	tx, err := b.db.Begin()
	if err != nil {
		return nil, &types.StoreError{Op: "seed", Err: err}
	}
	defer tx.Rollback()

	result := &SeedResult{}

	empty, err := tableEmpty(tx, types.CountiesTable)
	if err != nil {
		return nil, err
	}
	if empty {
		for i := range seedCounties {
			if _, err := insertRow(tx, types.CountiesTable, countyWriteColumns, countyArgs(&seedCounties[i])); err != nil {
				return nil, err
			}
			result.Counties++
		}
	}

	empty, err = tableEmpty(tx, types.RadiosTable)
	if err != nil {
		return nil, err
	}
	if empty {
		for i := range seedRadios {
			if _, err := insertRow(tx, types.RadiosTable, radioWriteColumns, radioArgs(&seedRadios[i])); err != nil {
				return nil, err
			}
			result.Radios++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, &types.StoreError{Op: "seed", Err: err}
	}

	log.WithFields(log.Fields{
		"counties": result.Counties,
		"radios":   result.Radios,
	}).Info("sqlite: reference data seeded")
	return result, nil
}

func tableEmpty(tx *sql.Tx, table string) (bool, error) {
	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		return false, &types.StoreError{Op: "count", Table: table, Err: err}
	}
	return count == 0, nil
}
