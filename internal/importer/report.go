package importer

// Coverage classifies how well one canonical field was served by the
// source file. Purely informational: the operator sees it before
// committing, but no value of it blocks the import.
type Coverage string

const (
	CoverageFound   Coverage = "FOUND"   // resolved and non-empty in at least one row
	CoverageEmpty   Coverage = "EMPTY"   // column resolved but blank in every row
	CoverageMissing Coverage = "MISSING" // no column resolved
)

// Report computes per-field coverage across all parsed rows. A field
// counts as resolved either through a mapped source column or through
// the canonical key itself, which AI-remapped rows carry directly.
func Report(rows []Row, fields FieldMap, expected []string) map[string]Coverage {
	report := make(map[string]Coverage, len(expected))
	for _, field := range expected {
		report[field] = coverageFor(rows, fields, field)
	}
	return report
}

func coverageFor(rows []Row, fields FieldMap, field string) Coverage {
	h, mapped := fields[field]
	cov := CoverageMissing
	if mapped {
		cov = CoverageEmpty
	}
	for _, row := range rows {
		if mapped && row[h] != "" {
			return CoverageFound
		}
		if v, ok := row[field]; ok {
			if v != "" {
				return CoverageFound
			}
			cov = CoverageEmpty
		}
	}
	return cov
}
