// This file holds the reference list exports that are not tied to a radio:
// KC-area repeaters and business frequencies.
package export

import "github.com/mesh-intelligence/omnibus/pkg/types"

var kcRepeaterHeaders = []string{"Name", "Frequency", "Transmit Frequency", "Mode", "Tone", "County", "Callsign", "Description"}

// KCRepeaters renders rows from view_kc_repeaters.
func KCRepeaters(freqs []types.Frequency) []byte {
	return WriteCSV(kcRepeaterHeaders, frequencyRows(freqs, func(f *types.Frequency) []string {
		return []string{
			f.Name,
			fixed5(f.Frequency),
			optFixed5(f.TransmitFrequency),
			f.Mode,
			str(f.ToneFreq),
			str(f.County),
			str(f.Callsign),
			str(f.Description),
		}
	}))
}

var businessHeaders = []string{"Name", "Frequency", "Mode", "Agency", "Service Type", "Description"}

// BusinessFrequencies renders rows from view_business_frequencies.
func BusinessFrequencies(freqs []types.Frequency) []byte {
	return WriteCSV(businessHeaders, frequencyRows(freqs, func(f *types.Frequency) []string {
		return []string{
			f.Name,
			fixed5(f.Frequency),
			f.Mode,
			str(f.Agency),
			str(f.ServiceType),
			str(f.Description),
		}
	}))
}
