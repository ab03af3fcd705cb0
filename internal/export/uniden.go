package export

import "github.com/mesh-intelligence/omnibus/pkg/types"

var unidenHeaders = []string{"Name", "Frequency", "Mode", "Tone", "Service Type", "County", "State", "Alpha Tag"}

// Uniden renders a Uniden scanner CSV.
func Uniden(freqs []types.Frequency) []byte {
	return WriteCSV(unidenHeaders, frequencyRows(freqs, func(f *types.Frequency) []string {
		return []string{
			f.Name,
			fixed5(f.Frequency),
			f.Mode,
			str(f.ToneFreq),
			str(f.ServiceType),
			str(f.County),
			str(f.State),
			str(f.AlphaTag),
		}
	}))
}
