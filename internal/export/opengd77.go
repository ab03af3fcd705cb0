package export

import "github.com/mesh-intelligence/omnibus/pkg/types"

var openGD77Headers = []string{"Name", "Frequency", "Transmit Frequency", "Mode", "Tone", "Alpha Tag"}

// OpenGD77 renders an OpenGD77 codeplug CSV.
func OpenGD77(freqs []types.Frequency) []byte {
	return WriteCSV(openGD77Headers, frequencyRows(freqs, func(f *types.Frequency) []string {
		return []string{
			f.Name,
			fixed5(f.Frequency),
			optFixed5(f.TransmitFrequency),
			f.Mode,
			str(f.ToneFreq),
			str(f.AlphaTag),
		}
	}))
}
