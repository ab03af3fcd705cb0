// This file compiles filter objects into parameterised WHERE clauses. Column
// names come only from code; every caller-supplied value is a placeholder.
package sqlite

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

// where accumulates AND-joined conditions and their arguments.
type where struct {
	conditions []string
	args       []any
}

// in adds "column IN (?, ...)" when values is non-empty.
func (w *where) in(column string, values []string) {
	if len(values) == 0 {
		return
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		w.args = append(w.args, v)
	}
	w.conditions = append(w.conditions, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
}

// eq adds "column = ?".
func (w *where) eq(column string, value any) {
	w.conditions = append(w.conditions, column+" = ?")
	w.args = append(w.args, value)
}

// active adds the active flag predicate when set.
func (w *where) active(column string, v *bool) {
	if v == nil {
		return
	}
	w.eq(column, boolInt(*v))
}

// likeEscaper escapes the LIKE wildcards so a term matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// contains adds a case-insensitive substring match over one or more columns,
// OR-ed together. SQLite's LIKE folds ASCII case.
func (w *where) contains(columns []string, term string) {
	if term == "" {
		return
	}
	pattern := "%" + likeEscaper.Replace(term) + "%"
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = col + ` LIKE ? ESCAPE '\'`
		w.args = append(w.args, pattern)
	}
	if len(parts) == 1 {
		w.conditions = append(w.conditions, parts[0])
		return
	}
	w.conditions = append(w.conditions, "("+strings.Join(parts, " OR ")+")")
}

// atMost adds "column <= ?" when bound is set.
func (w *where) atMost(column string, bound *float64) {
	if bound == nil {
		return
	}
	w.conditions = append(w.conditions, column+" <= ?")
	w.args = append(w.args, *bound)
}

// String renders " WHERE ..." or "" when there are no conditions.
func (w *where) String() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conditions, " AND ")
}

func compileFrequencyFilter(f *types.FrequencyFilter) (*where, error) {
	w := &where{}
	if f == nil {
		return w, nil
	}
	w.in("mode", f.Mode)
	w.in("service_type", f.ServiceType)
	w.in("county", f.County)
	w.in("state", f.State)
	w.active("active", f.Active)
	w.contains([]string{"name", "description", "alpha_tag"}, f.Search)
	w.atMost("distance_from_kc", f.MaxDistance)
	if f.FrequencyRange != nil {
		if len(f.FrequencyRange) != 2 {
			return nil, fmt.Errorf("%w: frequency_range needs exactly two values, got %d",
				types.ErrInvalidFilter, len(f.FrequencyRange))
		}
		if f.FrequencyRange[0] > f.FrequencyRange[1] {
			return nil, fmt.Errorf("%w: frequency_range low %v is above high %v",
				types.ErrInvalidFilter, f.FrequencyRange[0], f.FrequencyRange[1])
		}
		w.conditions = append(w.conditions, "frequency BETWEEN ? AND ?")
		w.args = append(w.args, f.FrequencyRange[0], f.FrequencyRange[1])
	}
	w.contains([]string{"tags"}, f.TagContains)
	return w, nil
}

func compileSystemFilter(f *types.SystemFilter) *where {
	w := &where{}
	if f == nil {
		return w
	}
	w.in("type", f.Type)
	w.in("system_class", f.SystemClass)
	w.in("system_protocol", f.Protocol)
	w.active("active", f.Active)
	w.contains([]string{"name", "description"}, f.Search)
	return w
}

func compileSiteFilter(f *types.SiteFilter) *where {
	w := &where{}
	if f == nil {
		return w
	}
	if f.SystemID != nil {
		w.eq("system_id", *f.SystemID)
	}
	w.in("county", f.County)
	w.in("state", f.State)
	w.active("active", f.Active)
	return w
}

func compileTalkgroupFilter(f *types.TalkgroupFilter) *where {
	w := &where{}
	if f == nil {
		return w
	}
	if f.SystemID != nil {
		w.eq("system_id", *f.SystemID)
	}
	w.in("category", f.Category)
	w.in("mode", f.Mode)
	w.active("active", f.Active)
	w.contains([]string{"alpha_tag", "description"}, f.Search)
	return w
}

func compileCountyFilter(f *types.CountyFilter) *where {
	w := &where{}
	if f == nil {
		return w
	}
	w.in("state", f.State)
	w.in("region", f.Region)
	w.atMost("distance_from_kc", f.MaxDistance)
	return w
}

// sortableFrequencyColumns is the whitelist for export profile sort orders.
var sortableFrequencyColumns = map[string]bool{
	"id":               true,
	"frequency":        true,
	"name":             true,
	"alpha_tag":        true,
	"mode":             true,
	"county":           true,
	"state":            true,
	"agency":           true,
	"service_type":     true,
	"distance_from_kc": true,
	"created_at":       true,
}

// compileSortOrder validates "column [ASC|DESC][, column [ASC|DESC]...]"
// against the whitelist and returns the ORDER BY body.
func compileSortOrder(s string) (string, error) {
	terms := strings.Split(s, ",")
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		fields := strings.Fields(term)
		if len(fields) == 0 || len(fields) > 2 {
			return "", fmt.Errorf("%w: bad sort term %q", types.ErrInvalidFilter, strings.TrimSpace(term))
		}
		col := strings.ToLower(fields[0])
		if !sortableFrequencyColumns[col] {
			return "", fmt.Errorf("%w: cannot sort by %q", types.ErrInvalidFilter, fields[0])
		}
		dir := "ASC"
		if len(fields) == 2 {
			dir = strings.ToUpper(fields[1])
			if dir != "ASC" && dir != "DESC" {
				return "", fmt.Errorf("%w: bad sort direction %q", types.ErrInvalidFilter, fields[1])
			}
		}
		out = append(out, col+" "+dir)
	}
	return strings.Join(out, ", "), nil
}
