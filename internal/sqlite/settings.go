// This file implements the key/value settings store over app_settings.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

// GetSetting returns the value stored under key parsed by its type tag, or
// def when the key is absent.
func (b *Backend) GetSetting(key string, def any) (any, error) {
	if err := b.readLock(); err != nil {
		return nil, err
	}
	defer b.mu.RUnlock()

	var value, typ string
	err := b.db.QueryRow("SELECT value, type FROM app_settings WHERE key = ?", key).Scan(&value, &typ)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return nil, &types.StoreError{Op: "get setting", Table: types.SettingsTable, Err: err}
	}
	return parseSettingValue(key, value, types.SettingType(typ))
}

// SetSetting upserts key. The value is serialised according to typ: json
// values are marshalled, everything else is formatted with fmt.Sprint. A
// serialised value that does not read back as typ is ErrInvalidData.
func (b *Backend) SetSetting(key string, value any, typ types.SettingType) error {
	if key == "" {
		return fmt.Errorf("%w: setting key is required", types.ErrInvalidData)
	}
	if !typ.Valid() {
		return fmt.Errorf("%w: unknown setting type %q", types.ErrInvalidData, typ)
	}

	var encoded string
	if typ == types.SettingJSON {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("%w: setting %s: %v", types.ErrInvalidData, key, err)
		}
		encoded = string(data)
	} else {
		encoded = fmt.Sprint(value)
	}
	if err := checkSettingValue(encoded, typ); err != nil {
		return fmt.Errorf("%w: setting %s: %v", types.ErrInvalidData, key, err)
	}

	if err := b.writeLock(); err != nil {
		return err
	}
	defer b.mu.Unlock()

	_, err := b.db.Exec(`INSERT INTO app_settings (key, value, type) VALUES (?, ?, ?)
    ON CONFLICT(key) DO UPDATE SET value = excluded.value, type = excluded.type, updated_at = CURRENT_TIMESTAMP`,
		key, encoded, string(typ))
	if err != nil {
		return &types.StoreError{Op: "set setting", Table: types.SettingsTable, Err: err}
	}
	return nil
}

// DeleteSetting removes key. A missing key is ErrNotFound.
func (b *Backend) DeleteSetting(key string) error {
	if err := b.writeLock(); err != nil {
		return err
	}
	defer b.mu.Unlock()

	res, err := b.db.Exec("DELETE FROM app_settings WHERE key = ?", key)
	if err != nil {
		return &types.StoreError{Op: "delete setting", Table: types.SettingsTable, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &types.StoreError{Op: "delete setting", Table: types.SettingsTable, Err: err}
	}
	if n == 0 {
		return fmt.Errorf("setting %q: %w", key, types.ErrNotFound)
	}
	return nil
}

// AllSettings returns every setting ordered by key, with values parsed.
func (b *Backend) AllSettings() ([]types.Setting, error) {
	if err := b.readLock(); err != nil {
		return nil, err
	}
	defer b.mu.RUnlock()

	rows, err := b.db.Query("SELECT key, value, type, created_at, updated_at FROM app_settings ORDER BY key ASC")
	if err != nil {
		return nil, &types.StoreError{Op: "list settings", Table: types.SettingsTable, Err: err}
	}
	defer rows.Close()

	out := []types.Setting{}
	for rows.Next() {
		var (
			key, value, typ  string
			created, updated sql.NullString
		)
		if err := rows.Scan(&key, &value, &typ, &created, &updated); err != nil {
			return nil, &types.StoreError{Op: "list settings", Table: types.SettingsTable, Err: err}
		}
		parsed, err := parseSettingValue(key, value, types.SettingType(typ))
		if err != nil {
			return nil, err
		}
		out = append(out, types.Setting{
			Key:       key,
			Value:     parsed,
			Type:      types.SettingType(typ),
			CreatedAt: parseTimestamp(created),
			UpdatedAt: timestampPtr(updated),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &types.StoreError{Op: "list settings", Table: types.SettingsTable, Err: err}
	}
	return out, nil
}

// checkSettingValue reports whether encoded parses as typ.
func checkSettingValue(encoded string, typ types.SettingType) error {
	switch typ {
	case types.SettingNumber:
		if _, err := strconv.ParseFloat(encoded, 64); err != nil {
			return fmt.Errorf("%q is not a number", encoded)
		}
	case types.SettingBoolean:
		if encoded != "true" && encoded != "false" {
			return fmt.Errorf("%q is not true or false", encoded)
		}
	}
	return nil
}

// parseSettingValue decodes a stored value by its type tag. Unknown tags
// read as strings.
func parseSettingValue(key, value string, typ types.SettingType) (any, error) {
	switch typ {
	case types.SettingNumber:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w: %v", key, types.ErrInvalidData, err)
		}
		return f, nil
	case types.SettingBoolean:
		return value == "true", nil
	case types.SettingJSON:
		var v any
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			return nil, fmt.Errorf("setting %s: %w: %v", key, types.ErrInvalidData, err)
		}
		return v, nil
	default:
		return value, nil
	}
}
