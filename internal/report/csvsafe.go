package report

import "strings"

// formulaPrefixes are leading characters spreadsheets treat as the start
// of a formula or a control sequence.
const formulaPrefixes = "=+-@|%\t\r\n"

// EscapeCSVCell protects against CSV formula injection. Listing titles are
// seller-controlled, so any cell that a spreadsheet could evaluate is
// prefixed with a single quote.
func EscapeCSVCell(value string) string {
	if value == "" {
		return value
	}
	if strings.IndexByte(formulaPrefixes, value[0]) >= 0 {
		return "'" + value
	}
	return value
}

// EscapeCSVRow escapes all cells in a row
func EscapeCSVRow(row []string) []string {
	escaped := make([]string, len(row))
	for i, cell := range row {
		escaped[i] = EscapeCSVCell(cell)
	}
	return escaped
}
