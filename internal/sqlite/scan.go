// This file holds the row hydration helpers shared by every table accessor.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

// sqliteTimestamp is the layout CURRENT_TIMESTAMP produces.
const sqliteTimestamp = "2006-01-02 15:04:05"

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// queryAll runs query and hydrates every row with scan.
func queryAll[T any](q querier, op, table, query string, args []any, scan func(scanner) (*T, error)) ([]T, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, &types.StoreError{Op: op, Table: table, Err: err}
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, &types.StoreError{Op: op, Table: table, Err: err}
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.StoreError{Op: op, Table: table, Err: err}
	}
	return out, nil
}

// queryOne runs a single-row query. A missing row becomes ErrNotFound.
func queryOne[T any](q querier, table string, id int64, query string, scan func(scanner) (*T, error)) (*T, error) {
	if id <= 0 {
		return nil, types.ErrInvalidID
	}
	v, err := scan(q.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s %d: %w", table, id, types.ErrNotFound)
		}
		return nil, &types.StoreError{Op: "get", Table: table, Err: err}
	}
	return v, nil
}

// querier is the read surface shared by *sql.DB and *sql.Tx.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// execer is the write surface shared by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// insertSQL builds "INSERT INTO table (c1, c2) VALUES (?, ?)".
func insertSQL(table string, columns []string) string {
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
}

// insertRow executes an insert and returns the new row id.
func insertRow(e execer, table string, columns []string, args []any) (int64, error) {
	res, err := e.Exec(insertSQL(table, columns), args...)
	if err != nil {
		return 0, &types.StoreError{Op: "create", Table: table, Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &types.StoreError{Op: "create", Table: table, Err: err}
	}
	return id, nil
}

// deleteRow deletes one row by id. Zero affected rows is ErrNotFound.
func deleteRow(e execer, table string, id int64) error {
	if id <= 0 {
		return types.ErrInvalidID
	}
	res, err := e.Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if err != nil {
		return &types.StoreError{Op: "delete", Table: table, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &types.StoreError{Op: "delete", Table: table, Err: err}
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", table, id, types.ErrNotFound)
	}
	return nil
}

// Nullable value helpers. Pointer nil maps to SQL NULL.

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullInt(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

func intPtr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	i := ni.Int64
	return &i
}

// flag reads an INTEGER boolean column; NULL reads as def.
func flag(ni sql.NullInt64, def bool) bool {
	if !ni.Valid {
		return def
	}
	return ni.Int64 != 0
}

// parseTimestamp reads a TEXT timestamp written by CURRENT_TIMESTAMP or as
// RFC 3339. Unparseable or NULL values read as the zero time.
func parseTimestamp(ns sql.NullString) time.Time {
	if !ns.Valid || ns.String == "" {
		return time.Time{}
	}
	for _, layout := range []string{sqliteTimestamp, time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, ns.String); err == nil {
			return t
		}
	}
	return time.Time{}
}

func timestampPtr(ns sql.NullString) *time.Time {
	t := parseTimestamp(ns)
	if t.IsZero() {
		return nil
	}
	return &t
}

// scanMaps reads rows generically into column-keyed maps. Text values that
// are numeric literals are coerced to numbers.
func scanMaps(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = coerceNumeric(values[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
