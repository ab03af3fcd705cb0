package sqlite

import (
	"regexp"
	"strconv"
)

// numericLiteral matches text that reads as a plain decimal number:
// "-12", "146.52", ".5". Exponents, signs other than '-', and surrounding
// space are not numeric literals.
var numericLiteral = regexp.MustCompile(`^-?\d*\.?\d+$`)

// coerceNumeric is the single read-boundary conversion for generic row
// reads: text that is a numeric literal becomes float64, byte slices are
// treated as text, everything else passes through unchanged. Typed scans and
// export formatting never use it.
func coerceNumeric(v any) any {
	switch t := v.(type) {
	case []byte:
		return coerceNumeric(string(t))
	case string:
		if !numericLiteral.MatchString(t) {
			return t
		}
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return t
		}
		return f
	default:
		return v
	}
}
