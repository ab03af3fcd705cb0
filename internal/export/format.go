package export

import (
	"strconv"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

// fixed5 renders a frequency in MHz with five decimals.
func fixed5(v float64) string {
	return strconv.FormatFloat(v, 'f', 5, 64)
}

// optFixed5 renders an optional value with five decimals. Nil and zero both
// render empty.
func optFixed5(v *float64) string {
	if v == nil || *v == 0 {
		return ""
	}
	return fixed5(*v)
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// truncate returns the first n runes of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// frequencyRows maps every frequency through fn.
func frequencyRows(freqs []types.Frequency, fn func(f *types.Frequency) []string) [][]string {
	rows := make([][]string, len(freqs))
	for i := range freqs {
		rows[i] = fn(&freqs[i])
	}
	return rows
}
