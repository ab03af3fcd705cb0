package sqlite

import (
	"fmt"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

// View reads one of the frequency views. Rows from view_chirp_export carry
// the constant Comment.
func (b *Backend) View(v types.FrequencyView) ([]types.Frequency, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("%w: unknown view %q", types.ErrInvalidFilter, v)
	}
	if err := b.readLock(); err != nil {
		return nil, err
	}
	defer b.mu.RUnlock()

	cols := frequencySelect
	scan := scanFrequency
	if v == types.ViewChirp {
		cols += ", comment"
		scan = func(sc scanner) (*types.Frequency, error) {
			var comment string
			f, err := scanFrequencyExtra(sc, &comment)
			if err != nil {
				return nil, err
			}
			f.Comment = comment
			return f, nil
		}
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY frequency ASC, id ASC", cols, v)
	return queryAll(b.db, "read view", string(v), query, nil, scan)
}

// BusinessTrunked reads view_business_trunked.
func (b *Backend) BusinessTrunked() ([]types.TrunkedSystem, error) {
	if err := b.readLock(); err != nil {
		return nil, err
	}
	defer b.mu.RUnlock()

	return queryAll(b.db, "read view", types.ViewBusinessTrunked,
		"SELECT "+systemSelect+" FROM "+types.ViewBusinessTrunked+" ORDER BY name ASC, id ASC", nil, scanSystem)
}

// Rows reads every row of a table or view as column-keyed maps, ordered by
// id where the relation has one. Numeric-looking text is returned as a
// number.
func (b *Backend) Rows(name string) ([]map[string]any, error) {
	if !knownRelation(name) {
		return nil, fmt.Errorf("%w: unknown table or view %q", types.ErrInvalidFilter, name)
	}
	if err := b.readLock(); err != nil {
		return nil, err
	}
	defer b.mu.RUnlock()

	rows, err := b.db.Query(fmt.Sprintf("SELECT * FROM %s ORDER BY id ASC", name))
	if err != nil {
		return nil, &types.StoreError{Op: "read", Table: name, Err: err}
	}
	defer rows.Close()

	out, err := scanMaps(rows)
	if err != nil {
		return nil, &types.StoreError{Op: "read", Table: name, Err: err}
	}
	return out, nil
}

// Counts returns the row count of every table.
func (b *Backend) Counts() (map[string]int, error) {
	if err := b.readLock(); err != nil {
		return nil, err
	}
	defer b.mu.RUnlock()

	counts := make(map[string]int, len(types.StandardTableNames))
	for _, table := range types.StandardTableNames {
		var n int
		if err := b.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			return nil, &types.StoreError{Op: "count", Table: table, Err: err}
		}
		counts[table] = n
	}
	return counts, nil
}

func knownRelation(name string) bool {
	for _, t := range types.StandardTableNames {
		if t == name {
			return true
		}
	}
	if name == types.ViewBusinessTrunked {
		return true
	}
	return types.FrequencyView(name).Valid()
}
