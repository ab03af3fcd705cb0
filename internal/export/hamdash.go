package export

import (
	"cmp"
	"slices"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

type hamDashChannel struct {
	Frequency float64 `json:"frequency"`
	Name      string  `json:"name"`
	Mode      string  `json:"mode"`
	Tone      string  `json:"tone,omitempty"`
	Priority  int     `json:"priority"`
}

type hamDashDocument struct {
	Frequencies []hamDashChannel `json:"frequencies"`
}

// HamDashPriority is 1 for Emergency service rows and 0 otherwise.
func HamDashPriority(f *types.Frequency) int {
	if f.ServiceType != nil && *f.ServiceType == types.ServiceEmergency {
		return 1
	}
	return 0
}

// HamDash renders the dashboard channel list, ordered by frequency. Like
// SDR++ it takes whatever rows the caller selected.
func HamDash(freqs []types.Frequency) ([]byte, error) {
	sorted := slices.Clone(freqs)
	slices.SortStableFunc(sorted, func(a, b types.Frequency) int {
		return cmp.Compare(a.Frequency, b.Frequency)
	})

	doc := hamDashDocument{Frequencies: make([]hamDashChannel, len(sorted))}
	for i := range sorted {
		f := &sorted[i]
		doc.Frequencies[i] = hamDashChannel{
			Frequency: f.Frequency,
			Name:      f.Name,
			Mode:      f.Mode,
			Tone:      str(f.ToneFreq),
			Priority:  HamDashPriority(f),
		}
	}
	return marshalIndent(doc)
}
