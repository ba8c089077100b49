package importer

import (
	"strconv"
	"strings"

	"github.com/estatepulse/crm-cli/internal/model"
)

// TextField takes the mapped column verbatim when present and
// non-empty, then tries the synonym keys directly against the row, then
// falls back to the placeholder.
func TextField(row Row, fields FieldMap, field string, synonyms []string, placeholder string) string {
	if h, ok := fields[field]; ok && row[h] != "" {
		return row[h]
	}
	for _, key := range synonyms {
		if v := row[key]; v != "" {
			return v
		}
	}
	return placeholder
}

// SplitTags comma-splits and trims a free-text tag list.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Metadata copies the raw row for traceability. Every original column
// key survives, resolved or not.
func Metadata(row Row) map[string]string {
	m := make(map[string]string, len(row))
	for k, v := range row {
		m[k] = v
	}
	return m
}

// Draft is one normalized record produced from one source row. Exactly
// one of the entity pointers is set, except for offers against
// untracked properties, which also carry the shell Listing that anchors
// them.
type Draft struct {
	Contact *model.Contact `json:"contact,omitempty"`
	Listing *model.Listing `json:"listing,omitempty"`
	Offer   *model.Offer   `json:"offer,omitempty"`
	Task    *model.Task    `json:"task,omitempty"`
}

func buildContact(row Row, headers []string, fields FieldMap) *model.Contact {
	tags := []string{}
	if h, ok := fields[FieldTags]; ok {
		tags = SplitTags(row[h])
	}
	return &model.Contact{
		Name:     TextField(row, fields, FieldName, []string{"name", "full name", "client"}, "Unknown Contact"),
		Email:    TextField(row, fields, FieldEmail, []string{"email"}, ""),
		Phone:    ResolvePhone(row, headers, fields),
		Tags:     tags,
		Notes:    TextField(row, fields, FieldNotes, []string{"notes"}, ""),
		Metadata: Metadata(row),
	}
}

func buildListing(row Row, headers []string, fields FieldMap, cfg PriceConfig) *model.Listing {
	status, consumed := ResolveListingStatus(row, headers, fields)
	return &model.Listing{
		Address:    TextField(row, fields, FieldAddress, []string{"address", "property"}, "Unknown Address"),
		SellerName: TextField(row, fields, FieldSeller, []string{"seller", "owner"}, "Unknown Seller"),
		Price:      ResolvePrice(row, headers, fields, consumed, cfg),
		Status:     status,
		Notes:      TextField(row, fields, FieldNotes, []string{"notes"}, ""),
		Metadata:   Metadata(row),
	}
}

// offerStatusFor buckets free text into the five-stage negotiation
// pipeline. Unrecognized input starts as Draft.
func offerStatusFor(text string) model.OfferStatus {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "accept"):
		return model.OfferAccepted
	case strings.Contains(lower, "declin"), strings.Contains(lower, "reject"):
		return model.OfferDeclined
	case strings.Contains(lower, "talk"), strings.Contains(lower, "counter"), strings.Contains(lower, "negotiat"):
		return model.OfferInTalks
	case strings.Contains(lower, "sent"), strings.Contains(lower, "submit"), strings.Contains(lower, "pending"):
		return model.OfferSent
	default:
		return model.OfferDraft
	}
}

func financingFor(text string) model.Financing {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "cash"):
		return model.FinancingCash
	case strings.Contains(lower, "fha"):
		return model.FinancingFHA
	case strings.Contains(lower, "va"):
		return model.FinancingVA
	default:
		return model.FinancingConventional
	}
}

func buildOffer(row Row, headers []string, fields FieldMap, cfg PriceConfig) *Draft {
	offer := &model.Offer{
		BuyerName:     TextField(row, fields, FieldBuyer, []string{"buyer", "name"}, "Unknown Buyer"),
		Price:         ResolvePrice(row, headers, fields, map[string]bool{}, cfg),
		DownPayment:   MoneyField(row, fields, FieldDownPayment),
		EarnestMoney:  MoneyField(row, fields, FieldEarnestMoney),
		Financing:     financingFor(TextField(row, fields, FieldFinancing, nil, "")),
		Contingencies: []string{},
		ClosingDate:   TextField(row, fields, FieldClosingDate, nil, ""),
		Status:        offerStatusFor(TextField(row, fields, FieldStatus, nil, "")),
		Metadata:      Metadata(row),
	}
	if h, ok := fields[FieldInspection]; ok {
		if days, err := strconv.Atoi(strings.TrimSpace(row[h])); err == nil && days >= 0 {
			offer.InspectionPeriod = days
		}
	}
	if h, ok := fields[FieldContingencies]; ok {
		offer.Contingencies = SplitTags(row[h])
	}

	draft := &Draft{Offer: offer}

	// Offers sourced from external sheets usually describe properties
	// the agency does not track. Synthesize a shell listing so the
	// offer has something to anchor to; the service layer reuses an
	// existing listing when the address already matches.
	if h, ok := fields[FieldAddress]; ok && row[h] != "" {
		draft.Listing = &model.Listing{
			Address:    row[h],
			SellerName: "Unknown Seller",
			Status:     model.ListingNew,
			Metadata:   map[string]string{"shell": "true"},
		}
	}
	return draft
}

func buildTask(row Row, fields FieldMap) *model.Task {
	task := &model.Task{
		Title:    TextField(row, fields, FieldTitle, []string{"title", "task"}, "Untitled Task"),
		DueDate:  TextField(row, fields, FieldDueDate, []string{"due", "due date"}, ""),
		Status:   model.TaskPending,
		Priority: model.PriorityMedium,
		Metadata: Metadata(row),
	}
	if h, ok := fields[FieldStatus]; ok {
		lower := strings.ToLower(row[h])
		if strings.Contains(lower, "done") || strings.Contains(lower, "complete") || strings.Contains(lower, "closed") {
			task.Status = model.TaskDone
		}
	}
	if h, ok := fields[FieldPriority]; ok {
		lower := strings.ToLower(row[h])
		switch {
		case strings.Contains(lower, "high"), strings.Contains(lower, "urgent"):
			task.Priority = model.PriorityHigh
		case strings.Contains(lower, "low"):
			task.Priority = model.PriorityLow
		}
	}
	return task
}
