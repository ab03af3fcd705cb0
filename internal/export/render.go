package export

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

// Format names an export file format.
type Format string

// Export formats.
const (
	FormatChirp      Format = "chirp"
	FormatUniden     Format = "uniden"
	FormatSDRTrunk   Format = "sdrtrunk"
	FormatOpenGD77   Format = "opengd77"
	FormatSDRPlus    Format = "sdrplus"
	FormatHamDash    Format = "hamdash"
	FormatKCRepeater Format = "kc-repeaters"
	FormatBusiness   Format = "business"
)

// Formats lists every format in display order.
var Formats = []Format{
	FormatChirp, FormatUniden, FormatSDRTrunk, FormatOpenGD77,
	FormatSDRPlus, FormatHamDash, FormatKCRepeater, FormatBusiness,
}

// ParseFormat validates a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown export format %q", types.ErrInvalidData, s)
}

// View returns the frequency view that feeds f. SDR++ and HamDash have no
// view and report false; their rows are picked with Selects.
func (f Format) View() (types.FrequencyView, bool) {
	switch f {
	case FormatChirp:
		return types.ViewChirp, true
	case FormatUniden:
		return types.ViewUniden, true
	case FormatSDRTrunk:
		return types.ViewSDRTrunkConventional, true
	case FormatOpenGD77:
		return types.ViewOpenGD77, true
	case FormatKCRepeater:
		return types.ViewKCRepeaters, true
	case FormatBusiness:
		return types.ViewBusinessFrequencies, true
	}
	return "", false
}

// Selects reports whether an active frequency belongs in an f export that
// has no view.
func (f Format) Selects(fr *types.Frequency) bool {
	switch f {
	case FormatSDRPlus:
		return fr.Flag(types.FlagSDRPlus)
	case FormatHamDash:
		return fr.Flag(types.FlagSDRTrunk) || fr.Flag(types.FlagSDRPlus)
	}
	return false
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatSDRTrunk, FormatSDRPlus, FormatHamDash:
		return ".json"
	}
	return ".csv"
}

// FileName is the default output file name for f.
func (f Format) FileName() string {
	return "omnibus-" + string(f) + f.Ext()
}

// Source carries the rows an export reads. Trunked is only used by
// SDRTrunk.
type Source struct {
	Frequencies []types.Frequency
	Trunked     []types.TrunkedSystem
}

// Render dispatches to the transform for f.
func Render(f Format, src Source) ([]byte, error) {
	switch f {
	case FormatChirp:
		return Chirp(src.Frequencies), nil
	case FormatUniden:
		return Uniden(src.Frequencies), nil
	case FormatSDRTrunk:
		return SDRTrunk(src.Frequencies, src.Trunked)
	case FormatOpenGD77:
		return OpenGD77(src.Frequencies), nil
	case FormatSDRPlus:
		return SDRPlus(src.Frequencies)
	case FormatHamDash:
		return HamDash(src.Frequencies)
	case FormatKCRepeater:
		return KCRepeaters(src.Frequencies), nil
	case FormatBusiness:
		return BusinessFrequencies(src.Frequencies), nil
	}
	return nil, fmt.Errorf("%w: unknown export format %q", types.ErrInvalidData, f)
}
