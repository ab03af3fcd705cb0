package export

import "strings"

// WriteCSV joins headers and rows with "," and lines with "\n", with no
// trailing newline. A cell containing a comma is wrapped in double quotes;
// quotes inside the cell are written as-is, so the output is only
// RFC 4180 clean for cells without embedded quotes.
func WriteCSV(headers []string, rows [][]string) []byte {
	var sb strings.Builder
	sb.WriteString(strings.Join(headers, ","))
	for _, row := range rows {
		sb.WriteByte('\n')
		for i, cell := range row {
			if i > 0 {
				sb.WriteByte(',')
			}
			if strings.Contains(cell, ",") {
				sb.WriteByte('"')
				sb.WriteString(cell)
				sb.WriteByte('"')
				continue
			}
			sb.WriteString(cell)
		}
	}
	return []byte(sb.String())
}
