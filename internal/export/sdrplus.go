package export

import (
	"strings"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

type sdrPlusBookmark struct {
	Name        string  `json:"name"`
	Frequency   float64 `json:"frequency"`
	Description string  `json:"description"`
	Mode        string  `json:"mode"`
	Bandwidth   int     `json:"bandwidth"`
}

type sdrPlusDocument struct {
	Bookmarks []sdrPlusBookmark `json:"bookmarks"`
}

// Bandwidth returns the SDR++ receive bandwidth in Hz for a mode.
func Bandwidth(mode string) int {
	switch strings.ToUpper(mode) {
	case types.ModeAM:
		return 10000
	case types.ModeUSB, types.ModeLSB:
		return 3000
	default:
		return 12500
	}
}

// SDRPlus renders an SDR++ bookmark list. It takes whatever rows the
// caller selected; no view backs this format.
func SDRPlus(freqs []types.Frequency) ([]byte, error) {
	doc := sdrPlusDocument{Bookmarks: make([]sdrPlusBookmark, len(freqs))}
	for i := range freqs {
		f := &freqs[i]
		doc.Bookmarks[i] = sdrPlusBookmark{
			Name:        f.Name,
			Frequency:   f.Frequency,
			Description: str(f.Description),
			Mode:        f.Mode,
			Bandwidth:   Bandwidth(f.Mode),
		}
	}
	return marshalIndent(doc)
}
