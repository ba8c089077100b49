// Package tabular turns raw delimited text into rows of trimmed string
// cells. Real-world CRM exports are messy: quoted fields with embedded
// commas and newlines, bare CR line endings, trailing blank lines. The
// scanner here is deliberately lenient about all of those while keeping
// RFC 4180 quote-doubling semantics.
package tabular

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNoData is returned when the input has fewer than two rows, i.e.
// no data rows beneath the header.
var ErrNoData = eris.New("tabular: no data rows")

// Parse scans text left to right and returns rows of cells. A comma
// outside quotes ends a cell, CR or LF outside quotes ends a row, and
// a doubled quote inside a quoted field is a literal quote. Each cell
// is whitespace-trimmed. Empty fragments between CR/LF pairs and after
// the last row are skipped.
func Parse(text string) [][]string {
	var (
		rows     [][]string
		row      []string
		cell     strings.Builder
		inQuotes bool
	)

	flushCell := func() {
		row = append(row, strings.TrimSpace(cell.String()))
		cell.Reset()
	}
	flushRow := func() {
		if cell.Len() > 0 || len(row) > 0 {
			flushCell()
			rows = append(rows, row)
			row = nil
		}
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				// Escaped quote inside a quoted field.
				cell.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			flushCell()
		case (c == '\n' || c == '\r') && !inQuotes:
			flushRow()
		default:
			cell.WriteRune(c)
		}
	}
	flushRow()

	return rows
}

// ParseDocument parses text and splits it into a header row and data
// rows. It fails with ErrNoData unless there is at least one header row
// and one data row.
func ParseDocument(text string) (header []string, data [][]string, err error) {
	rows := Parse(text)
	if len(rows) < 2 {
		return nil, nil, ErrNoData
	}
	return rows[0], rows[1:], nil
}
