// This file turns a types.Patch into a whitelisted UPDATE statement.
package sqlite

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

// columnKind drives value normalisation for patch writes.
type columnKind int

const (
	kindText columnKind = iota
	kindReal
	kindInt
	kindBool
)

// column describes one updatable column.
type column struct {
	kind     columnKind
	required bool
}

// updatableColumns lists, per table, the columns a Patch may write. id,
// created_at and updated_at are never patchable.
var updatableColumns = map[string]map[string]column{
	types.FrequenciesTable: {
		"frequency":          {kindReal, true},
		"transmit_frequency": {kindReal, false},
		"name":               {kindText, true},
		"description":        {kindText, false},
		"alpha_tag":          {kindText, false},
		"mode":               {kindText, true},
		"tone_mode":          {kindText, false},
		"tone_freq":          {kindText, false},
		"county":             {kindText, false},
		"state":              {kindText, false},
		"agency":             {kindText, false},
		"callsign":           {kindText, false},
		"service_type":       {kindText, false},
		"tags":               {kindText, false},
		"duplex":             {kindText, false},
		"offset":             {kindReal, false},
		"last_verified":      {kindText, false},
		"notes":              {kindText, false},
		"source":             {kindText, false},
		"active":             {kindBool, false},
		"distance_from_kc":   {kindReal, false},
		"latitude":           {kindReal, false},
		"longitude":          {kindReal, false},
		"class_station_code": {kindText, false},
		"export_chirp":       {kindBool, false},
		"export_uniden":      {kindBool, false},
		"export_sdrtrunk":    {kindBool, false},
		"export_sdrplus":     {kindBool, false},
		"export_opengd77":    {kindBool, false},
	},
	types.SystemsTable: {
		"system_id":       {kindText, true},
		"name":            {kindText, true},
		"type":            {kindText, true},
		"system_class":    {kindText, false},
		"business_type":   {kindText, false},
		"business_owner":  {kindText, false},
		"description":     {kindText, false},
		"wacn":            {kindText, false},
		"system_protocol": {kindText, false},
		"notes":           {kindText, false},
		"active":          {kindBool, false},
	},
	types.SitesTable: {
		"system_id":        {kindInt, true},
		"site_id":          {kindText, true},
		"name":             {kindText, true},
		"description":      {kindText, false},
		"county":           {kindText, false},
		"state":            {kindText, false},
		"latitude":         {kindReal, false},
		"longitude":        {kindReal, false},
		"range_miles":      {kindReal, false},
		"nac":              {kindText, false},
		"active":           {kindBool, false},
		"distance_from_kc": {kindReal, false},
	},
	types.TalkgroupsTable: {
		"system_id":   {kindInt, true},
		"decimal_id":  {kindInt, true},
		"hex_id":      {kindText, false},
		"alpha_tag":   {kindText, true},
		"description": {kindText, false},
		"mode":        {kindText, false},
		"category":    {kindText, false},
		"tag":         {kindText, false},
		"priority":    {kindInt, false},
		"active":      {kindBool, false},
		"notes":       {kindText, false},
	},
	types.CountiesTable: {
		"name":             {kindText, true},
		"state":            {kindText, true},
		"region":           {kindText, true},
		"distance_from_kc": {kindReal, true},
		"fips_code":        {kindText, false},
		"notes":            {kindText, false},
	},
	types.RadiosTable: {
		"name":             {kindText, true},
		"type":             {kindText, true},
		"min_frequency":    {kindReal, true},
		"max_frequency":    {kindReal, true},
		"supported_modes":  {kindText, true},
		"channel_capacity": {kindInt, false},
		"notes":            {kindText, false},
	},
	types.ExportProfilesTable: {
		"radio_id":     {kindInt, true},
		"name":         {kindText, true},
		"description":  {kindText, false},
		"filter_query": {kindText, true},
		"sort_order":   {kindText, true},
	},
}

// quoteColumn quotes identifiers that collide with SQL keywords.
func quoteColumn(name string) string {
	if name == "offset" {
		return `"offset"`
	}
	return name
}

// buildUpdate renders the UPDATE for patch against table. Keys are emitted
// in sorted order so the statement is deterministic. updated_at is always
// stamped.
func buildUpdate(table string, id int64, patch types.Patch) (string, []any, error) {
	cols, ok := updatableColumns[table]
	if !ok {
		return "", nil, fmt.Errorf("%w: table %q is not patchable", types.ErrInvalidData, table)
	}

	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sets := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+1)
	for _, k := range keys {
		col, ok := cols[k]
		if !ok {
			return "", nil, fmt.Errorf("%w: column %q cannot be updated", types.ErrInvalidData, k)
		}
		v, err := normalize(k, col, patch[k])
		if err != nil {
			return "", nil, err
		}
		if err := checkPatchValue(table, k, v); err != nil {
			return "", nil, err
		}
		sets = append(sets, quoteColumn(k)+" = ?")
		args = append(args, v)
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", "))
	return query, args, nil
}

// checkPatchValue applies the field-level rules that the entity Validate
// methods enforce on create.
func checkPatchValue(table, key string, v any) error {
	switch {
	case table == types.FrequenciesTable && key == "frequency":
		if f, _ := v.(float64); !(f > 0) {
			return fmt.Errorf("%w: frequency must be greater than zero", types.ErrInvalidData)
		}
	case table == types.FrequenciesTable && key == "mode":
		if s, _ := v.(string); !types.ValidMode(s) {
			return fmt.Errorf("%w: unknown mode %q", types.ErrInvalidData, s)
		}
	case table == types.ExportProfilesTable && key == "sort_order":
		s, _ := v.(string)
		if _, err := compileSortOrder(s); err != nil {
			return err
		}
	case table == types.ExportProfilesTable && key == "filter_query":
		s, _ := v.(string)
		if _, err := parseFilterQuery(s); err != nil {
			return err
		}
	}
	return nil
}

// normalize converts a patch value to the column's storage type. Strings
// are parsed for numeric and boolean columns so that CLI arguments can be
// passed through unchanged.
func normalize(key string, col column, v any) (any, error) {
	v = deref(v)
	if v == nil {
		if col.required {
			return nil, fmt.Errorf("%w: %s cannot be null", types.ErrInvalidData, key)
		}
		return nil, nil
	}

	bad := func() error {
		return fmt.Errorf("%w: %s: unexpected value %v (%T)", types.ErrInvalidData, key, v, v)
	}

	switch col.kind {
	case kindText:
		s, ok := v.(string)
		if !ok {
			return nil, bad()
		}
		if col.required && strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("%w: %s cannot be empty", types.ErrInvalidData, key)
		}
		return s, nil
	case kindReal:
		switch t := v.(type) {
		case float64:
			return t, nil
		case float32:
			return float64(t), nil
		case int:
			return float64(t), nil
		case int64:
			return float64(t), nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
			if err != nil {
				return nil, bad()
			}
			return f, nil
		}
		return nil, bad()
	case kindInt:
		switch t := v.(type) {
		case int:
			return int64(t), nil
		case int64:
			return t, nil
		case float64:
			if t != float64(int64(t)) {
				return nil, bad()
			}
			return int64(t), nil
		case string:
			i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
			if err != nil {
				return nil, bad()
			}
			return i, nil
		}
		return nil, bad()
	case kindBool:
		switch t := v.(type) {
		case bool:
			return boolInt(t), nil
		case int:
			return boolInt(t != 0), nil
		case int64:
			return boolInt(t != 0), nil
		case float64:
			return boolInt(t != 0), nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(t))
			if err != nil {
				return nil, bad()
			}
			return boolInt(b), nil
		}
		return nil, bad()
	}
	return nil, bad()
}

// deref unwraps the pointer helpers from the types package. A nil pointer
// becomes an untyped nil.
func deref(v any) any {
	switch t := v.(type) {
	case *string:
		if t == nil {
			return nil
		}
		return *t
	case *float64:
		if t == nil {
			return nil
		}
		return *t
	case *int64:
		if t == nil {
			return nil
		}
		return *t
	case *bool:
		if t == nil {
			return nil
		}
		return *t
	}
	return v
}

// applyPatch runs a patch against one row. An empty patch is a no-op and
// does not check existence. Zero affected rows is ErrNotFound.
func applyPatch(e execer, table string, id int64, patch types.Patch) error {
	if id <= 0 {
		return types.ErrInvalidID
	}
	if len(patch) == 0 {
		return nil
	}
	query, args, err := buildUpdate(table, id, patch)
	if err != nil {
		return err
	}
	res, err := e.Exec(query, args...)
	if err != nil {
		return &types.StoreError{Op: "update", Table: table, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &types.StoreError{Op: "update", Table: table, Err: err}
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", table, id, types.ErrNotFound)
	}
	return nil
}
