package export

import "github.com/mesh-intelligence/omnibus/pkg/types"

// chirpNameLength is the channel name width the CHIRP CSV carries.
const chirpNameLength = 8

var chirpHeaders = []string{
	"Location", "Name", "Frequency", "Duplex", "Offset", "Tone", "rToneFreq",
	"cToneFreq", "DtcsCode", "DtcsPolarity", "Mode", "TStep", "Skip",
	"Comment", "URCALL", "RPT1CALL", "RPT2CALL",
}

// Chirp renders rows read from view_chirp_export as a CHIRP CSV. The
// Comment column comes from the row's Comment field.
func Chirp(freqs []types.Frequency) []byte {
	return WriteCSV(chirpHeaders, frequencyRows(freqs, func(f *types.Frequency) []string {
		return []string{
			"",
			truncate(f.Name, chirpNameLength),
			fixed5(f.Frequency),
			str(f.Duplex),
			optFixed5(f.Offset),
			str(f.ToneMode),
			str(f.ToneFreq),
			str(f.ToneFreq),
			"",
			"",
			f.Mode,
			"",
			"",
			f.Comment,
			"",
			"",
			"",
		}
	}))
}
