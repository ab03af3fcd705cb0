package types

import "fmt"

// ImportKind names the record type carried by a flat CSV import.
type ImportKind string

// CSV import kinds.
const (
	ImportFrequencies ImportKind = "frequencies"
	ImportSystems     ImportKind = "systems"
	ImportSites       ImportKind = "sites"
	ImportTalkgroups  ImportKind = "talkgroups"
)

// ImportKinds lists the accepted CSV import kinds.
var ImportKinds = []ImportKind{ImportFrequencies, ImportSystems, ImportSites, ImportTalkgroups}

// ParseImportKind validates a kind name.
func ParseImportKind(s string) (ImportKind, error) {
	for _, k := range ImportKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown import kind %q", ErrInvalidData, s)
}

// ImportError describes one rejected row. Row is the 1-based position of
// the data row (the header is not counted).
type ImportError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarises a bulk import. Success is true when no row was
// rejected.
type ImportResult struct {
	Success         bool          `json:"success"`
	TotalRecords    int           `json:"totalRecords"`
	ImportedRecords int           `json:"importedRecords"`
	Errors          []ImportError `json:"errors"`
}

// AddError records a rejected row.
func (r *ImportResult) AddError(row int, format string, args ...any) {
	r.Errors = append(r.Errors, ImportError{Row: row, Message: fmt.Sprintf(format, args...)})
}
