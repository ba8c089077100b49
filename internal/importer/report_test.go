package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReport_Found(t *testing.T) {
	fields := FieldMap{FieldName: "name", FieldEmail: "email"}
	rows := []Row{
		{"name": "John", "email": ""},
		{"name": "", "email": "j@x.com"},
	}
	report := Report(rows, fields, []string{FieldName, FieldEmail})
	assert.Equal(t, CoverageFound, report[FieldName])
	assert.Equal(t, CoverageFound, report[FieldEmail])
}

func TestReport_EmptyVersusMissing(t *testing.T) {
	// A resolved-but-blank column is EMPTY; an unresolved field is
	// MISSING. The distinction tells the operator whether the file had
	// the column at all.
	fields := FieldMap{FieldName: "name", FieldPhone: "phone"}
	rows := []Row{
		{"name": "John", "phone": ""},
		{"name": "Jane", "phone": ""},
	}
	report := Report(rows, fields, []string{FieldName, FieldPhone, FieldEmail})
	assert.Equal(t, CoverageFound, report[FieldName])
	assert.Equal(t, CoverageEmpty, report[FieldPhone])
	assert.Equal(t, CoverageMissing, report[FieldEmail])
}

func TestReport_RemappedCanonicalKeysCount(t *testing.T) {
	// AI-remapped rows key cells by canonical field name; those fields
	// are resolved even though no source column mapped to them.
	fields := FieldMap{FieldName: "name"}
	rows := []Row{
		{"name": "John", FieldPhone: "+1 555 0101", FieldEmail: ""},
		{"name": "Jane", FieldPhone: "", FieldEmail: ""},
	}
	report := Report(rows, fields, []string{FieldName, FieldPhone, FieldEmail, FieldNotes})
	assert.Equal(t, CoverageFound, report[FieldName])
	assert.Equal(t, CoverageFound, report[FieldPhone])
	assert.Equal(t, CoverageEmpty, report[FieldEmail])
	assert.Equal(t, CoverageMissing, report[FieldNotes])
}

func TestReport_NoRows(t *testing.T) {
	fields := FieldMap{FieldName: "name"}
	report := Report(nil, fields, []string{FieldName})
	assert.Equal(t, CoverageEmpty, report[FieldName])
}
