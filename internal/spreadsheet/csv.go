// internal/spreadsheet/csv.go

// Package spreadsheet holds the CSV export and template-import glue used by
// the back-office list screens.
package spreadsheet

import "strings"

// ExportCSV renders rows as CSV text: values joined by commas, every value
// wrapped in quotes, embedded quotes escaped by doubling. This matches the
// template files the import side accepts.
func ExportCSV(headers []string, rows [][]string) string {
	var b strings.Builder

	writeLine := func(values []string) {
		for i, v := range values {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(v, `"`, `""`))
			b.WriteByte('"')
		}
		b.WriteByte('\n')
	}

	writeLine(headers)
	for _, row := range rows {
		writeLine(row)
	}

	return b.String()
}
