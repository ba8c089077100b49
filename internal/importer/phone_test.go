package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLooksLikePhone(t *testing.T) {
	yes := []string{"555-0199", "+1 480 555 0199", "4805550199", "555 01 99"}
	for _, s := range yes {
		assert.True(t, looksLikePhone(s), "input %q", s)
	}

	no := []string{
		"123",        // too short
		"---- --- -", // matches the shape but fewer than five digits
		"john smith",
		"2024-03-15x", // trailing letter
		"",
	}
	for _, s := range no {
		assert.False(t, looksLikePhone(s), "input %q", s)
	}
}

func TestResolvePhone_MappedColumn(t *testing.T) {
	fields := FieldMap{FieldPhone: "cell"}
	row := Row{"cell": "555-0101", "notes": "555-9999"}
	assert.Equal(t, "555-0101", ResolvePhone(row, []string{"cell", "notes"}, fields))
}

func TestResolvePhone_HeaderNameFallback(t *testing.T) {
	row := Row{"name": "John", "mobile no": "555-0101"}
	assert.Equal(t, "555-0101", ResolvePhone(row, []string{"name", "mobile no"}, FieldMap{}))
}

func TestResolvePhone_TokenScanFallback(t *testing.T) {
	// Exports dump "555-0199 mobile" into unlabeled columns.
	row := Row{"name": "John", "column_2": "555-0199 mobile"}
	assert.Equal(t, "555-0199", ResolvePhone(row, []string{"name", "column_2"}, FieldMap{}))
}

func TestResolvePhone_NothingFound(t *testing.T) {
	row := Row{"name": "John Smith", "notes": "prefers email"}
	assert.Empty(t, ResolvePhone(row, []string{"name", "notes"}, FieldMap{}))
}
