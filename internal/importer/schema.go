// Package importer implements the CSV ingestion pipeline: header
// resolution against per-entity alias dictionaries, heuristic field
// normalization, a pre-commit coverage report, and best-effort
// persistence of the resulting records.
package importer

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// EntityType selects which domain records a source file produces.
type EntityType string

const (
	EntityContacts EntityType = "contacts"
	EntityListings EntityType = "listings"
	EntityOffers   EntityType = "offers"
	EntityTasks    EntityType = "tasks"
)

// Canonical field names. Source columns are matched against these (and
// their aliases) by case-insensitive substring, never exact equality:
// real exports label a seller column "OwnerLastName" and a price column
// "SaleAmt".
const (
	FieldName          = "name"
	FieldEmail         = "email"
	FieldPhone         = "phone"
	FieldTags          = "tags"
	FieldNotes         = "notes"
	FieldAddress       = "address"
	FieldSeller        = "seller"
	FieldPrice         = "price"
	FieldStatus        = "status"
	FieldSettlement    = "settlement"
	FieldBuyer         = "buyer"
	FieldDownPayment   = "down payment"
	FieldEarnestMoney  = "earnest"
	FieldFinancing     = "financing"
	FieldInspection    = "inspection"
	FieldContingencies = "contingencies"
	FieldClosingDate   = "closing"
	FieldTitle         = "title"
	FieldDueDate       = "due"
	FieldPriority      = "priority"
)

// Schema describes what the pipeline looks for in a source file for one
// entity type. Expected lists the canonical fields reported on in the
// coverage summary; Aliases maps canonical fields to accepted synonym
// substrings. Auxiliary fields (settlement dates, shell-listing
// addresses) may carry aliases without appearing in Expected.
type Schema struct {
	Entity   EntityType          `yaml:"entity"`
	Expected []string            `yaml:"expected"`
	Aliases  map[string][]string `yaml:"aliases"`
}

// AliasesFor returns the synonym substrings for a canonical field,
// always including the field name itself as the first needle.
func (s Schema) AliasesFor(field string) []string {
	return append([]string{field}, s.Aliases[field]...)
}

// defaultSchemas holds the built-in alias dictionaries, tuned against
// MLS and county-record spreadsheet exports.
var defaultSchemas = map[EntityType]Schema{
	EntityContacts: {
		Entity:   EntityContacts,
		Expected: []string{FieldName, FieldEmail, FieldPhone},
		Aliases: map[string][]string{
			FieldName:  {"full name", "client", "contact", "lead"},
			FieldEmail: {"e-mail", "mail"},
			FieldPhone: {"mobile", "cell", "telephone"},
			FieldTags:  {"labels", "groups", "categories"},
			FieldNotes: {"comment", "remark", "description"},
		},
	},
	EntityListings: {
		Entity:   EntityListings,
		Expected: []string{FieldAddress, FieldSeller, FieldPrice, FieldStatus},
		Aliases: map[string][]string{
			FieldAddress:    {"property", "street", "location", "addr"},
			FieldSeller:     {"owner", "vendor", "client"},
			FieldPrice:      {"amount", "amt", "value", "asking", "list price", "cost", "sale"},
			FieldStatus:     {"stage", "state", "condition"},
			FieldSettlement: {"settle", "closing date", "close date", "sold date", "sale date"},
			FieldNotes:      {"comment", "remark", "description"},
		},
	},
	EntityOffers: {
		Entity:   EntityOffers,
		Expected: []string{FieldBuyer, FieldPrice, FieldStatus},
		Aliases: map[string][]string{
			FieldBuyer:         {"purchaser", "offeror", "client", "name"},
			FieldAddress:       {"property", "street", "location", "listing"},
			FieldPrice:         {"amount", "amt", "offer price", "value"},
			FieldDownPayment:   {"downpayment", "down_payment", "down"},
			FieldEarnestMoney:  {"earnest money", "emd", "deposit"},
			FieldFinancing:     {"loan", "mortgage", "funding"},
			FieldInspection:    {"inspection period", "due diligence"},
			FieldContingencies: {"contingency", "conditions"},
			FieldClosingDate:   {"close date", "settlement"},
			FieldStatus:        {"stage", "state"},
		},
	},
	EntityTasks: {
		Entity:   EntityTasks,
		Expected: []string{FieldTitle, FieldDueDate},
		Aliases: map[string][]string{
			FieldTitle:    {"task", "name", "subject", "summary"},
			FieldDueDate:  {"due date", "deadline", "date"},
			FieldPriority: {"importance", "urgency"},
			FieldStatus:   {"stage", "state", "done"},
		},
	},
}

// SchemaFor returns the built-in schema for an entity type.
func SchemaFor(entity EntityType) (Schema, error) {
	s, ok := defaultSchemas[entity]
	if !ok {
		return Schema{}, eris.Errorf("importer: unknown entity type %q", entity)
	}
	return s, nil
}

// LoadSchemaOverrides reads per-entity schema overrides from a YAML
// file. An override replaces the built-in schema for its entity type
// wholesale; entities not named in the file keep the defaults.
func LoadSchemaOverrides(path string) (map[EntityType]Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "importer: read schema file %s", path)
	}

	var overrides []Schema
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, eris.Wrap(err, "importer: parse schema file")
	}

	merged := make(map[EntityType]Schema, len(defaultSchemas))
	for entity, s := range defaultSchemas {
		merged[entity] = s
	}
	for _, o := range overrides {
		if _, ok := defaultSchemas[o.Entity]; !ok {
			return nil, eris.Errorf("importer: unknown entity type %q in schema file", o.Entity)
		}
		merged[o.Entity] = o
	}
	return merged, nil
}
