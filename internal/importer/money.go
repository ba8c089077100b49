package importer

import (
	"strconv"
	"strings"
)

// PriceRange bounds the full-row numeric scan so that zip codes, lot
// sizes, and year columns are not mistaken for prices.
type PriceRange struct {
	Min float64 `yaml:"min" mapstructure:"min"`
	Max float64 `yaml:"max" mapstructure:"max"`
}

// Contains reports whether v falls inside the range (inclusive).
func (r PriceRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// PriceConfig holds the two-tier fallback ranges. The boundaries are
// tuning constants, not correctness guarantees; they are configurable
// precisely because no documented rationale backs the exact values.
type PriceConfig struct {
	Narrow PriceRange `yaml:"narrow" mapstructure:"narrow"`
	Wide   PriceRange `yaml:"wide" mapstructure:"wide"`
}

// DefaultPriceConfig matches the ranges the import heuristics shipped
// with: a first pass over plausible listing prices, then a much wider
// net.
func DefaultPriceConfig() PriceConfig {
	return PriceConfig{
		Narrow: PriceRange{Min: 10_000, Max: 99_999_999},
		Wide:   PriceRange{Min: 500, Max: 999_999_999},
	}
}

var moneyCleaner = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "", " ", "")

// ParseMoney strips currency symbols, commas, and whitespace and parses
// the remainder as a float.
func ParseMoney(s string) (float64, bool) {
	cleaned := moneyCleaner.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// MoneyField coerces a mapped money column to a number, defaulting to 0
// when the column is missing or unparseable.
func MoneyField(row Row, fields FieldMap, field string) float64 {
	h, ok := fields[field]
	if !ok {
		return 0
	}
	v, _ := ParseMoney(row[h])
	return v
}

// ResolvePrice finds a price for the row. An explicitly mapped price
// column wins even when it fails to parse (the row then gets 0 rather
// than a guess from an unrelated column). Without a mapped column the
// whole row is scanned in header order for a numeric value inside the
// narrow range, then again inside the wide range — skipping cells
// already consumed by status detection and any column whose header
// mentions "zip".
func ResolvePrice(row Row, headers []string, fields FieldMap, consumed map[string]bool, cfg PriceConfig) float64 {
	if h, ok := fields[FieldPrice]; ok {
		v, _ := ParseMoney(row[h])
		return v
	}
	// Remapped rows carry the canonical key directly.
	if v, ok := ParseMoney(row[FieldPrice]); ok {
		return v
	}

	scan := func(r PriceRange) (float64, bool) {
		for _, h := range headers {
			if consumed[h] || strings.Contains(h, "zip") {
				continue
			}
			if v, ok := ParseMoney(row[h]); ok && r.Contains(v) {
				return v, true
			}
		}
		return 0, false
	}

	if v, ok := scan(cfg.Narrow); ok {
		return v
	}
	if v, ok := scan(cfg.Wide); ok {
		return v
	}
	return 0
}
