package importer

import (
	"strings"
	"time"

	"github.com/estatepulse/crm-cli/internal/model"
)

// statusKeywords are scanned across all cells when no explicit status
// column resolved, most specific first.
var statusKeywords = []string{
	"sold", "closed", "settled", "contract", "pending",
	"escrow", "active", "market", "listed", "new", "draft",
}

var statusBuckets = []struct {
	status   model.ListingStatus
	keywords []string
}{
	{model.ListingSold, []string{"sold", "closed", "settled", "archived", "done", "complete"}},
	{model.ListingUnderContract, []string{"contract", "pending", "option", "escrow", "offer", "accepted"}},
	{model.ListingActive, []string{"active", "sale", "available", "market", "listed", "open"}},
	{model.ListingNew, []string{"new", "draft", "incoming", "fresh"}},
}

// BucketStatus maps free text to a listing status by keyword. Anything
// unrecognized is New.
func BucketStatus(text string) model.ListingStatus {
	lower := strings.ToLower(text)
	for _, bucket := range statusBuckets {
		for _, kw := range bucket.keywords {
			if strings.Contains(lower, kw) {
				return bucket.status
			}
		}
	}
	return model.ListingNew
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02 Jan 2006",
}

// ParseDate tries the common spreadsheet date layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ResolveListingStatus infers a listing status from a row, in strict
// priority order:
//
//  1. A settlement-date column holding a parseable date forces Sold. A
//     recorded settlement is authoritative evidence of a closed sale
//     even when a textual status column disagrees (it is often a city
//     name or stale pipeline stage).
//  2. An explicit status/stage/state column, bucketed by keyword.
//  3. A keyword scan across every cell, in header order.
//  4. New.
//
// consumed names the headers whose cells fed the decision so the price
// fallback scan can skip them.
func ResolveListingStatus(row Row, headers []string, fields FieldMap) (status model.ListingStatus, consumed map[string]bool) {
	consumed = make(map[string]bool)

	if h, ok := fields[FieldSettlement]; ok {
		if _, valid := ParseDate(row[h]); valid {
			consumed[h] = true
			if sh, ok := fields[FieldStatus]; ok {
				consumed[sh] = true
			}
			return model.ListingSold, consumed
		}
	}

	if h, ok := fields[FieldStatus]; ok && row[h] != "" {
		consumed[h] = true
		return BucketStatus(row[h]), consumed
	}
	// Remapped rows carry the canonical key directly.
	if v := row[FieldStatus]; v != "" {
		consumed[FieldStatus] = true
		return BucketStatus(v), consumed
	}

	for _, h := range headers {
		lower := strings.ToLower(row[h])
		for _, kw := range statusKeywords {
			if strings.Contains(lower, kw) {
				consumed[h] = true
				return BucketStatus(lower), consumed
			}
		}
	}

	return model.ListingNew, consumed
}
