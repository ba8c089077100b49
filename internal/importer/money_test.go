package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$450,000", 450000, true},
		{"450000", 450000, true},
		{"€1 250 000", 1250000, true},
		{"£99,999.50", 99999.50, true},
		{"  $12,500 ", 12500, true},
		{"TBD", 0, false},
		{"", 0, false},
		{"$", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseMoney(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.InDelta(t, tt.want, got, 0.001, "input %q", tt.in)
	}
}

func TestMoneyField_UnparseableDefaultsToZero(t *testing.T) {
	fields := FieldMap{FieldDownPayment: "down"}
	row := Row{"down": "call me"}
	assert.Zero(t, MoneyField(row, fields, FieldDownPayment))
}

func TestResolvePrice_MappedColumnWins(t *testing.T) {
	cfg := DefaultPriceConfig()
	fields := FieldMap{FieldPrice: "price"}
	headers := []string{"price", "other"}

	row := Row{"price": "$450,000", "other": "600000"}
	assert.InDelta(t, 450000, ResolvePrice(row, headers, fields, nil, cfg), 0.001)
}

func TestResolvePrice_MappedButUnparseableIsZero(t *testing.T) {
	// An unparseable mapped column must not fall through to the scan:
	// a wrong guess from an unrelated column is worse than no price.
	cfg := DefaultPriceConfig()
	fields := FieldMap{FieldPrice: "price"}
	headers := []string{"price", "lot"}

	row := Row{"price": "TBD", "lot": "450000"}
	assert.Zero(t, ResolvePrice(row, headers, fields, nil, cfg))
}

func TestResolvePrice_NarrowScanBeforeWide(t *testing.T) {
	cfg := DefaultPriceConfig()
	headers := []string{"a", "b"}

	// 5000 is only in the wide range; 250000 is in the narrow one.
	// Narrow wins even though "a" comes first.
	row := Row{"a": "5000", "b": "250000"}
	assert.InDelta(t, 250000, ResolvePrice(row, headers, FieldMap{}, nil, cfg), 0.001)
}

func TestResolvePrice_WideFallback(t *testing.T) {
	cfg := DefaultPriceConfig()
	row := Row{"deposit": "750"}
	assert.InDelta(t, 750, ResolvePrice(row, []string{"deposit"}, FieldMap{}, nil, cfg), 0.001)
}

func TestResolvePrice_SkipsConsumedAndZipColumns(t *testing.T) {
	cfg := DefaultPriceConfig()
	headers := []string{"zip code", "stage", "value"}
	consumed := map[string]bool{"stage": true}

	row := Row{"zip code": "85012", "stage": "40000", "value": "325000"}
	assert.InDelta(t, 325000, ResolvePrice(row, headers, FieldMap{}, consumed, cfg), 0.001)
}

func TestResolvePrice_NothingFound(t *testing.T) {
	cfg := DefaultPriceConfig()
	row := Row{"notes": "charming fixer-upper"}
	assert.Zero(t, ResolvePrice(row, []string{"notes"}, FieldMap{}, nil, cfg))
}

func TestPriceRange_Contains(t *testing.T) {
	r := PriceRange{Min: 10_000, Max: 99_999_999}
	assert.True(t, r.Contains(10_000))
	assert.True(t, r.Contains(99_999_999))
	assert.False(t, r.Contains(9_999))
	require.False(t, r.Contains(100_000_000))
}
