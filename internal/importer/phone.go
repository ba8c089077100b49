package importer

import (
	"regexp"
	"strings"
)

// phonePattern accepts an optional leading +, then at least seven
// digits, spaces, or dashes. Tokens matching it still need five real
// digits before they count as a phone number.
var phonePattern = regexp.MustCompile(`^\+?[\d\s-]{7,}$`)

func looksLikePhone(s string) bool {
	s = strings.TrimSpace(s)
	if !phonePattern.MatchString(s) {
		return false
	}
	digits := 0
	for _, c := range s {
		if c >= '0' && c <= '9' {
			digits++
		}
	}
	return digits >= 5
}

// ResolvePhone finds a phone number for the row: the mapped column
// first, then any column whose header mentions phone/mobile/cell, then
// a token scan across every cell. Exports routinely dump "555-0199
// mobile" into an unlabeled column, which is what the token scan is
// for.
func ResolvePhone(row Row, headers []string, fields FieldMap) string {
	if h, ok := fields[FieldPhone]; ok && row[h] != "" {
		return row[h]
	}
	// Remapped rows carry the canonical key directly.
	if v := row[FieldPhone]; v != "" {
		return v
	}

	for _, h := range headers {
		if strings.Contains(h, "phone") || strings.Contains(h, "mobile") || strings.Contains(h, "cell") {
			if row[h] != "" {
				return row[h]
			}
		}
	}

	for _, h := range headers {
		for _, token := range strings.Fields(row[h]) {
			if looksLikePhone(token) {
				return token
			}
		}
	}
	return ""
}
