package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/estatepulse/crm-cli/internal/model"
)

func TestBucketStatus(t *testing.T) {
	tests := []struct {
		in   string
		want model.ListingStatus
	}{
		{"Sold", model.ListingSold},
		{"CLOSED 2024", model.ListingSold},
		{"settled", model.ListingSold},
		{"archived", model.ListingSold},
		{"Under Contract", model.ListingUnderContract},
		{"Pending", model.ListingUnderContract},
		{"in escrow", model.ListingUnderContract},
		{"offer accepted", model.ListingUnderContract},
		{"Active", model.ListingActive},
		{"for sale", model.ListingActive},
		{"on the market", model.ListingActive},
		{"listed", model.ListingActive},
		{"New", model.ListingNew},
		{"draft", model.ListingNew},
		{"no idea", model.ListingNew},
		{"", model.ListingNew},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketStatus(tt.in), "input %q", tt.in)
	}
}

func TestBucketStatus_SoldBeatsContract(t *testing.T) {
	// "closed pending paperwork" hits both the Sold and Under Contract
	// buckets; the more final one wins.
	assert.Equal(t, model.ListingSold, BucketStatus("closed pending paperwork"))
}

func TestParseDate_Layouts(t *testing.T) {
	valid := []string{
		"2024-03-15",
		"2024/03/15",
		"03/15/2024",
		"3/5/2024",
		"03-15-2024",
		"Mar 15, 2024",
		"March 15, 2024",
		"15 Mar 2024",
	}
	for _, s := range valid {
		_, ok := ParseDate(s)
		assert.True(t, ok, "input %q", s)
	}

	invalid := []string{"", "soon", "Phoenix", "2024", "13/45/2024"}
	for _, s := range invalid {
		_, ok := ParseDate(s)
		assert.False(t, ok, "input %q", s)
	}
}

func TestResolveListingStatus_SettlementDateForcesSold(t *testing.T) {
	fields := FieldMap{FieldStatus: "status", FieldSettlement: "settledate"}
	headers := []string{"address", "status", "settledate"}
	row := Row{"address": "123 Main St", "status": "Active", "settledate": "2024-03-15"}

	status, consumed := ResolveListingStatus(row, headers, fields)
	assert.Equal(t, model.ListingSold, status)
	assert.True(t, consumed["settledate"])
	assert.True(t, consumed["status"])
}

func TestResolveListingStatus_NonDateSettlementIgnored(t *testing.T) {
	// A settlement column holding a city name is not evidence of a sale.
	fields := FieldMap{FieldStatus: "status", FieldSettlement: "settlement"}
	headers := []string{"status", "settlement"}
	row := Row{"status": "Active", "settlement": "Phoenix"}

	status, _ := ResolveListingStatus(row, headers, fields)
	assert.Equal(t, model.ListingActive, status)
}

func TestResolveListingStatus_ExplicitColumn(t *testing.T) {
	fields := FieldMap{FieldStatus: "stage"}
	headers := []string{"address", "stage"}
	row := Row{"address": "123 Main St", "stage": "Pending"}

	status, consumed := ResolveListingStatus(row, headers, fields)
	assert.Equal(t, model.ListingUnderContract, status)
	assert.True(t, consumed["stage"])
}

func TestResolveListingStatus_KeywordScanFallback(t *testing.T) {
	headers := []string{"address", "remarks"}
	row := Row{"address": "123 Main St", "remarks": "sold at auction"}

	status, consumed := ResolveListingStatus(row, headers, FieldMap{})
	assert.Equal(t, model.ListingSold, status)
	assert.True(t, consumed["remarks"])
}

func TestResolveListingStatus_DefaultNew(t *testing.T) {
	headers := []string{"address"}
	row := Row{"address": "123 Main St"}

	status, consumed := ResolveListingStatus(row, headers, FieldMap{})
	assert.Equal(t, model.ListingNew, status)
	assert.Empty(t, consumed)
}
