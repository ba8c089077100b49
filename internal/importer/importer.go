package importer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/estatepulse/crm-cli/internal/model"
	"github.com/estatepulse/crm-cli/internal/tabular"
)

// Context carries the actor and tenant an import runs under. It is
// passed explicitly into the pipeline; nothing here reads ambient
// session state.
type Context struct {
	AgencyID    string
	ActorUserID string
	Now         func() time.Time
}

func (c Context) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now().UTC()
}

// RecordStore is the slice of the persistence layer the importer needs:
// independent per-record upserts. Id generation and timestamps happen
// in hydration, before the save call.
type RecordStore interface {
	SaveContact(ctx context.Context, c model.Contact) error
	SaveListing(ctx context.Context, l model.Listing) error
	SaveOffer(ctx context.Context, o model.Offer) error
	SaveTask(ctx context.Context, t model.Task) error
}

// Remapper is the optional AI pre-pass. It must return rows in the same
// shape and order it received them; the heuristic normalizer always
// runs afterwards and is the final authority.
type Remapper interface {
	MapRows(ctx context.Context, rows []map[string]string, entity string) ([]map[string]string, error)
}

// Importer runs the ingestion pipeline.
type Importer struct {
	schemas map[EntityType]Schema
	price   PriceConfig
	remap   Remapper
}

// Option configures an Importer.
type Option func(*Importer)

// WithSchemas replaces the built-in entity schemas.
func WithSchemas(schemas map[EntityType]Schema) Option {
	return func(imp *Importer) { imp.schemas = schemas }
}

// WithPriceConfig overrides the price-scan fallback ranges.
func WithPriceConfig(cfg PriceConfig) Option {
	return func(imp *Importer) { imp.price = cfg }
}

// WithRemapper enables the AI field-remapping pre-pass.
func WithRemapper(r Remapper) Option {
	return func(imp *Importer) { imp.remap = r }
}

// New builds an Importer with the default schemas and price ranges.
func New(opts ...Option) *Importer {
	imp := &Importer{
		schemas: defaultSchemas,
		price:   DefaultPriceConfig(),
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// Preview is the parsed, normalized, not-yet-persisted result of an
// import. The operator reviews the coverage report and either commits
// or discards it.
type Preview struct {
	Entity   EntityType          `json:"entity"`
	Headers  []string            `json:"headers"`
	Rows     []Row               `json:"rows"`
	Drafts   []Draft             `json:"drafts"`
	Coverage map[string]Coverage `json:"coverage"`
}

// ParseText runs the full pipeline over raw delimited text.
func (imp *Importer) ParseText(ctx context.Context, text string, entity EntityType) (*Preview, error) {
	header, data, err := tabular.ParseDocument(text)
	if err != nil {
		return nil, err
	}
	return imp.ParseRows(ctx, header, data, entity)
}

// ParseRows runs header resolution, the optional AI remap, field
// normalization, and the coverage report over already-split rows. Rows
// where every cell is empty are discarded; everything else is kept
// best-effort, with per-field defaults filling the gaps.
func (imp *Importer) ParseRows(ctx context.Context, header []string, data [][]string, entity EntityType) (*Preview, error) {
	schema, ok := imp.schemas[entity]
	if !ok {
		return nil, eris.Errorf("importer: unknown entity type %q", entity)
	}

	// Data rows can be wider than the header row (exports with
	// unlabeled trailing columns). Pad so those cells get column_<i>
	// names and stay scannable.
	width := len(header)
	for _, row := range data {
		if len(row) > width {
			width = len(row)
		}
	}
	padded := make([]string, width)
	copy(padded, header)

	headers := ResolveHeaders(padded)
	fields, err := MapFields(headers, schema)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(data))
	for _, r := range BuildRows(headers, data) {
		if !r.Empty() {
			rows = append(rows, r)
		}
	}

	rows = imp.remapRows(ctx, rows, entity)

	drafts := make([]Draft, 0, len(rows))
	for _, row := range rows {
		switch entity {
		case EntityContacts:
			drafts = append(drafts, Draft{Contact: buildContact(row, headers, fields)})
		case EntityListings:
			drafts = append(drafts, Draft{Listing: buildListing(row, headers, fields, imp.price)})
		case EntityOffers:
			drafts = append(drafts, *buildOffer(row, headers, fields, imp.price))
		case EntityTasks:
			drafts = append(drafts, Draft{Task: buildTask(row, fields)})
		}
	}

	return &Preview{
		Entity:   entity,
		Headers:  headers,
		Rows:     rows,
		Drafts:   drafts,
		Coverage: Report(rows, fields, schema.Expected),
	}, nil
}

// remapRows applies the AI pre-pass when configured. Any failure is
// logged and swallowed; the heuristic path is the ground truth
// fallback.
func (imp *Importer) remapRows(ctx context.Context, rows []Row, entity EntityType) []Row {
	if imp.remap == nil || len(rows) == 0 {
		return rows
	}

	raw := make([]map[string]string, len(rows))
	for i, r := range rows {
		raw[i] = r
	}
	mapped, err := imp.remap.MapRows(ctx, raw, string(entity))
	if err != nil || len(mapped) != len(rows) {
		zap.L().Warn("ai remap unavailable, using heuristic mapping only",
			zap.String("entity", string(entity)),
			zap.Error(err),
		)
		return rows
	}

	out := make([]Row, len(mapped))
	for i, m := range mapped {
		out[i] = m
	}
	return out
}

// CommitReport summarizes a best-effort commit.
type CommitReport struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// Commit hydrates each draft into a full record (id, timestamps, owner,
// agency) and upserts them through the store. Saves are independent:
// one record failing does not roll back or stop the others. The report
// gives the operator per-batch success and failure counts.
func (imp *Importer) Commit(ctx context.Context, st RecordStore, ictx Context, p *Preview) CommitReport {
	var (
		mu     sync.Mutex
		report CommitReport
	)
	fail := func(err error) {
		mu.Lock()
		report.Failed++
		report.Errors = append(report.Errors, eris.ToString(err, false))
		mu.Unlock()
		zap.L().Error("import record save failed", zap.Error(err))
	}
	succeed := func() {
		mu.Lock()
		report.Succeeded++
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for _, draft := range p.Drafts {
		g.Go(func() error {
			if err := imp.saveDraft(gctx, st, ictx, draft); err != nil {
				fail(err)
			} else {
				succeed()
			}
			return nil // best-effort: never cancel siblings
		})
	}
	_ = g.Wait()

	zap.L().Info("import commit complete",
		zap.String("entity", string(p.Entity)),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
	)
	return report
}

func (imp *Importer) saveDraft(ctx context.Context, st RecordStore, ictx Context, d Draft) error {
	now := ictx.now()

	// A shell listing hydrates and saves before the offer that
	// references it.
	if d.Listing != nil {
		l := *d.Listing
		l.ID = uuid.New().String()
		l.AgencyID = ictx.AgencyID
		l.AssignedAgent = ictx.ActorUserID
		l.CreatedAt = now
		if !model.ValidListingStatus(l.Status) {
			l.Status = model.ListingNew
		}
		if err := st.SaveListing(ctx, l); err != nil {
			return eris.Wrap(err, "importer: save listing")
		}
		if d.Offer != nil {
			d.Offer.ListingID = l.ID
		}
	}

	switch {
	case d.Contact != nil:
		c := *d.Contact
		c.ID = uuid.New().String()
		c.AgencyID = ictx.AgencyID
		c.AssignedTo = ictx.ActorUserID
		c.CreatedAt = now
		if c.Name == "" {
			c.Name = "Unknown Contact"
		}
		return eris.Wrap(st.SaveContact(ctx, c), "importer: save contact")
	case d.Offer != nil:
		o := *d.Offer
		o.ID = uuid.New().String()
		o.AgencyID = ictx.AgencyID
		o.AssignedTo = ictx.ActorUserID
		o.CreatedAt = now
		return eris.Wrap(st.SaveOffer(ctx, o), "importer: save offer")
	case d.Task != nil:
		t := *d.Task
		t.ID = uuid.New().String()
		t.AgencyID = ictx.AgencyID
		t.AssignedTo = ictx.ActorUserID
		t.CreatedAt = now
		return eris.Wrap(st.SaveTask(ctx, t), "importer: save task")
	}
	return nil
}
