package export

import (
	"fmt"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

// Validate checks rows against a radio's frequency range and supported
// modes and returns one message per problem: all range problems first, then
// all mode problems. An empty result means the rows are compatible. The
// check is advisory; nothing here blocks an export.
func Validate(freqs []types.Frequency, radio *types.Radio) []string {
	problems := []string{}
	for i := range freqs {
		if !radio.InRange(freqs[i].Frequency) {
			problems = append(problems, fmt.Sprintf("Frequency %v MHz is outside the supported range for %s",
				freqs[i].Frequency, radio.Name))
		}
	}
	for i := range freqs {
		if !radio.SupportsMode(freqs[i].Mode) {
			problems = append(problems, fmt.Sprintf("Mode %s is not supported by %s", freqs[i].Mode, radio.Name))
		}
	}
	return problems
}
