package importer

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNoColumns is returned when not a single expected field resolved to
// any column in the source file.
var ErrNoColumns = eris.New("importer: could not find required columns")

// ResolveHeaders lower-cases and de-duplicates a raw header row. Empty
// headers become column_<index>; a repeated header gets a _<n> suffix
// on its later occurrences. Running the result through again is a
// no-op.
func ResolveHeaders(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))

	for i, h := range raw {
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "" {
			name = fmt.Sprintf("column_%d", i)
		}
		if n, dup := seen[name]; dup {
			// A suffixed name can itself collide with a raw header
			// ("foo, foo_1, foo"); keep counting until it is unused.
			base := name
			for {
				name = fmt.Sprintf("%s_%d", base, n)
				if _, taken := seen[name]; !taken {
					break
				}
				n++
			}
			seen[base] = n + 1
		}
		seen[name] = 1
		out[i] = name
	}
	return out
}

// FieldMap maps a canonical field name to the resolved header of the
// column it was found in.
type FieldMap map[string]string

// MapFields matches resolved headers against the schema's canonical
// fields and aliases. A header matches when it contains the canonical
// name or any alias as a case-insensitive substring; the leftmost
// matching column wins. Partial resolution is fine — the caller reports
// gaps per field — but when the schema expects fields and none of them
// resolved at all, the file is considered structurally wrong and
// ErrNoColumns is returned.
func MapFields(headers []string, schema Schema) (FieldMap, error) {
	fields := make(FieldMap)

	match := func(field string) (string, bool) {
		for _, h := range headers {
			for _, needle := range schema.AliasesFor(field) {
				if strings.Contains(h, strings.ToLower(needle)) {
					return h, true
				}
			}
		}
		return "", false
	}

	for _, field := range schema.Expected {
		if h, ok := match(field); ok {
			fields[field] = h
		}
	}
	// Auxiliary fields: aliased but not part of the coverage contract.
	for field := range schema.Aliases {
		if _, done := fields[field]; done {
			continue
		}
		if h, ok := match(field); ok {
			fields[field] = h
		}
	}

	if len(schema.Expected) > 0 {
		resolved := 0
		for _, field := range schema.Expected {
			if _, ok := fields[field]; ok {
				resolved++
			}
		}
		if resolved == 0 {
			return nil, ErrNoColumns
		}
	}
	return fields, nil
}

// Row is one parsed data row keyed by resolved header. Values are the
// raw trimmed cell contents; columns missing from a short row are empty
// strings.
type Row map[string]string

// BuildRows pairs resolved headers with row cells.
func BuildRows(headers []string, data [][]string) []Row {
	rows := make([]Row, len(data))
	for i, cells := range data {
		row := make(Row, len(headers))
		for j, h := range headers {
			if j < len(cells) {
				row[h] = cells[j]
			} else {
				row[h] = ""
			}
		}
		rows[i] = row
	}
	return rows
}

// Empty reports whether every cell in the row is an empty string.
func (r Row) Empty() bool {
	for _, v := range r {
		if v != "" {
			return false
		}
	}
	return true
}
