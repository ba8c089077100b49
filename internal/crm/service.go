// Package crm is the operations layer over the store: login, pipeline
// stage transitions, offers, tasks, messaging, and the audit feed.
package crm

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/estatepulse/crm-cli/internal/assist"
	"github.com/estatepulse/crm-cli/internal/model"
	"github.com/estatepulse/crm-cli/internal/store"
)

// Assist is the slice of the AI layer the service uses. All assist
// calls are optional enrichment; a nil Assist disables them.
type Assist interface {
	SummarizeOffer(ctx context.Context, offer model.Offer, listing *model.Listing) (string, error)
	ScoreDeal(ctx context.Context, listing model.Listing, offers []model.Offer) (*assist.DealScore, error)
	DraftReply(ctx context.Context, threadTitle string, msgs []model.Message, senderNames map[string]string) (string, error)
}

// Service implements the CRM operations.
type Service struct {
	store  store.Store
	assist Assist
	now    func() time.Time
}

// New creates a Service. assist may be nil.
func New(st store.Store, assist Assist) *Service {
	return &Service{
		store:  st,
		assist: assist,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock; used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Login resolves a user by email, provisioning a new agent in the given
// agency when the email is unknown. Password checks are out of scope;
// identity here is trust-the-operator, same as the original product's
// demo auth.
func (s *Service) Login(ctx context.Context, email, agencyID string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, eris.New("crm: email is required")
	}

	u, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !eris.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if agencyID == "" {
		return nil, eris.Errorf("crm: no user %s and no agency to provision into", email)
	}
	name := email
	if at := strings.Index(email, "@"); at > 0 {
		name = email[:at]
	}
	user := model.User{
		ID:       uuid.New().String(),
		AgencyID: agencyID,
		Name:     name,
		Email:    email,
		Role:     model.RoleAgent,
		Status:   "Active",
	}
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, eris.Wrap(err, "crm: provision user")
	}
	zap.L().Info("provisioned new agent",
		zap.String("email", email),
		zap.String("agency_id", agencyID),
	)
	return &user, nil
}

// CanUseAI reports whether the actor's agency may call AI features.
// Credit metering is not enforced yet; every agency is allowed.
func (s *Service) CanUseAI(ctx context.Context, agencyID string) bool {
	return true
}

// AdvanceListing moves a listing to the next pipeline stage, records
// the transition in the activity log, and notifies the assigned agent.
func (s *Service) AdvanceListing(ctx context.Context, scope store.Scope, listingID string) (*model.Listing, error) {
	l, err := s.store.GetListing(ctx, scope.AgencyID, listingID)
	if err != nil {
		return nil, err
	}

	next := model.NextListingStage(l.Status)
	if next == l.Status {
		return nil, eris.Errorf("crm: listing %s is already %s", listingID, l.Status)
	}
	if err := s.store.UpdateListingStatus(ctx, scope.AgencyID, listingID, next); err != nil {
		return nil, err
	}
	prev := l.Status
	l.Status = next

	s.audit(ctx, scope, "moved "+l.Address+" from "+string(prev)+" to "+string(next), listingID, model.ActivityAudit)
	if l.AssignedAgent != "" && l.AssignedAgent != scope.UserID {
		s.notify(ctx, scope.AgencyID, l.AssignedAgent, "Listing advanced", l.Address+" is now "+string(next))
	}
	return l, nil
}

// CreateContact saves a new contact owned by the actor.
func (s *Service) CreateContact(ctx context.Context, scope store.Scope, c model.Contact) (*model.Contact, error) {
	if c.Name == "" {
		return nil, eris.New("crm: contact name is required")
	}
	c.ID = uuid.New().String()
	c.AgencyID = scope.AgencyID
	if c.AssignedTo == "" {
		c.AssignedTo = scope.UserID
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	c.CreatedAt = s.now()
	if err := s.store.SaveContact(ctx, c); err != nil {
		return nil, err
	}
	s.audit(ctx, scope, "created contact "+c.Name, c.ID, model.ActivityEvent)
	return &c, nil
}

// CreateListing saves a new listing owned by the actor.
func (s *Service) CreateListing(ctx context.Context, scope store.Scope, l model.Listing) (*model.Listing, error) {
	if l.Address == "" {
		return nil, eris.New("crm: listing address is required")
	}
	l.ID = uuid.New().String()
	l.AgencyID = scope.AgencyID
	if l.AssignedAgent == "" {
		l.AssignedAgent = scope.UserID
	}
	if !model.ValidListingStatus(l.Status) {
		l.Status = model.ListingNew
	}
	l.CreatedAt = s.now()
	if err := s.store.SaveListing(ctx, l); err != nil {
		return nil, err
	}
	s.audit(ctx, scope, "created listing "+l.Address, l.ID, model.ActivityEvent)
	return &l, nil
}

// CreateOffer saves an offer. When the offer names a property address,
// an existing listing with that address is reused; otherwise a shell
// listing is synthesized so the offer has something to anchor to.
func (s *Service) CreateOffer(ctx context.Context, scope store.Scope, o model.Offer, address string) (*model.Offer, error) {
	if o.BuyerName == "" {
		return nil, eris.New("crm: offer buyer name is required")
	}

	if o.ListingID == "" && address != "" {
		l, err := s.store.FindListingByAddress(ctx, scope.AgencyID, address)
		switch {
		case err == nil:
			o.ListingID = l.ID
		case eris.Is(err, store.ErrNotFound):
			shell := model.Listing{
				ID:            uuid.New().String(),
				AgencyID:      scope.AgencyID,
				Address:       address,
				AssignedAgent: scope.UserID,
				Status:        model.ListingNew,
				CreatedAt:     s.now(),
				Metadata:      map[string]string{"shell": "true"},
			}
			if err := s.store.SaveListing(ctx, shell); err != nil {
				return nil, eris.Wrap(err, "crm: save shell listing")
			}
			o.ListingID = shell.ID
		default:
			return nil, err
		}
	}

	o.ID = uuid.New().String()
	o.AgencyID = scope.AgencyID
	if o.AssignedTo == "" {
		o.AssignedTo = scope.UserID
	}
	if o.Status == "" {
		o.Status = model.OfferDraft
	}
	if o.Financing == "" {
		o.Financing = model.FinancingConventional
	}
	o.CreatedAt = s.now()
	if err := s.store.SaveOffer(ctx, o); err != nil {
		return nil, err
	}
	s.audit(ctx, scope, "created offer from "+o.BuyerName, o.ID, model.ActivityEvent)
	return &o, nil
}

// SetOfferStatus transitions an offer through the negotiation pipeline.
// An accepted offer pulls its listing into Under Contract.
func (s *Service) SetOfferStatus(ctx context.Context, scope store.Scope, offerID string, status model.OfferStatus) (*model.Offer, error) {
	switch status {
	case model.OfferDraft, model.OfferSent, model.OfferInTalks, model.OfferAccepted, model.OfferDeclined:
	default:
		return nil, eris.Errorf("crm: invalid offer status %q", status)
	}

	o, err := s.store.GetOffer(ctx, scope.AgencyID, offerID)
	if err != nil {
		return nil, err
	}
	o.Status = status
	if err := s.store.SaveOffer(ctx, *o); err != nil {
		return nil, err
	}
	s.audit(ctx, scope, "offer from "+o.BuyerName+" is now "+string(status), offerID, model.ActivityAudit)

	if status == model.OfferAccepted && o.ListingID != "" {
		if err := s.store.UpdateListingStatus(ctx, scope.AgencyID, o.ListingID, model.ListingUnderContract); err != nil {
			// The offer update already landed; surface the partial failure
			// in the log rather than unwinding it.
			zap.L().Warn("listing not moved to under contract after accepted offer",
				zap.String("listing_id", o.ListingID),
				zap.Error(err),
			)
		}
	}
	return o, nil
}

// ToggleTask flips a task between Pending and Done.
func (s *Service) ToggleTask(ctx context.Context, scope store.Scope, taskID string) (*model.Task, error) {
	t, err := s.store.GetTask(ctx, scope.AgencyID, taskID)
	if err != nil {
		return nil, err
	}
	if t.Status == model.TaskDone {
		t.Status = model.TaskPending
	} else {
		t.Status = model.TaskDone
	}
	if err := s.store.SaveTask(ctx, *t); err != nil {
		return nil, err
	}
	s.audit(ctx, scope, "marked task "+t.Title+" "+string(t.Status), taskID, model.ActivityEvent)
	return t, nil
}

// CreateTask saves a new task owned by the actor.
func (s *Service) CreateTask(ctx context.Context, scope store.Scope, t model.Task) (*model.Task, error) {
	if t.Title == "" {
		return nil, eris.New("crm: task title is required")
	}
	t.ID = uuid.New().String()
	t.AgencyID = scope.AgencyID
	if t.AssignedTo == "" {
		t.AssignedTo = scope.UserID
	}
	if t.Status == "" {
		t.Status = model.TaskPending
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	t.CreatedAt = s.now()
	if err := s.store.SaveTask(ctx, t); err != nil {
		return nil, err
	}
	s.audit(ctx, scope, "created task "+t.Title, t.ID, model.ActivityEvent)
	return &t, nil
}

// PostMessage appends a message to a thread, creating the thread on
// first use when title is set.
func (s *Service) PostMessage(ctx context.Context, scope store.Scope, threadID, text string) (*model.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, eris.New("crm: message text is required")
	}
	m := model.Message{
		ID:        uuid.New().String(),
		ThreadID:  threadID,
		SenderID:  scope.UserID,
		Text:      text,
		Timestamp: s.now(),
	}
	if err := s.store.AppendMessage(ctx, m); err != nil {
		return nil, err
	}
	return &m, nil
}

// OpenThread creates a messaging thread.
func (s *Service) OpenThread(ctx context.Context, scope store.Scope, title string, typ model.ThreadType, relatedID string) (*model.Thread, error) {
	if title == "" {
		return nil, eris.New("crm: thread title is required")
	}
	if typ == "" {
		typ = model.ThreadGeneral
	}
	t := model.Thread{
		ID:        uuid.New().String(),
		AgencyID:  scope.AgencyID,
		Title:     title,
		Type:      typ,
		RelatedID: relatedID,
		CreatedAt: s.now(),
	}
	if err := s.store.SaveThread(ctx, t); err != nil {
		return nil, err
	}
	return &t, nil
}

// SummarizeOffer returns an AI summary of the offer, or "" when assist
// is unavailable. Failures are logged, never surfaced.
func (s *Service) SummarizeOffer(ctx context.Context, scope store.Scope, offerID string) (string, error) {
	o, err := s.store.GetOffer(ctx, scope.AgencyID, offerID)
	if err != nil {
		return "", err
	}
	if s.assist == nil || !s.CanUseAI(ctx, scope.AgencyID) {
		return "", nil
	}

	var listing *model.Listing
	if o.ListingID != "" {
		if l, err := s.store.GetListing(ctx, scope.AgencyID, o.ListingID); err == nil {
			listing = l
		}
	}
	summary, err := s.assist.SummarizeOffer(ctx, *o, listing)
	if err != nil {
		zap.L().Warn("offer summary unavailable", zap.Error(err))
		return "", nil
	}
	s.audit(ctx, scope, "generated AI summary for offer from "+o.BuyerName, offerID, model.ActivityAI)
	return summary, nil
}

// ScoreDeal returns an AI closing-likelihood score for a listing, or
// nil when assist is unavailable.
func (s *Service) ScoreDeal(ctx context.Context, scope store.Scope, listingID string) (*assist.DealScore, error) {
	l, err := s.store.GetListing(ctx, scope.AgencyID, listingID)
	if err != nil {
		return nil, err
	}
	if s.assist == nil || !s.CanUseAI(ctx, scope.AgencyID) {
		return nil, nil
	}

	offers, err := s.store.ListOffers(ctx, store.Scope{AgencyID: scope.AgencyID, Role: model.RoleAdmin})
	if err != nil {
		return nil, err
	}
	related := offers[:0:0]
	for _, o := range offers {
		if o.ListingID == listingID {
			related = append(related, o)
		}
	}

	score, err := s.assist.ScoreDeal(ctx, *l, related)
	if err != nil {
		zap.L().Warn("deal score unavailable", zap.Error(err))
		return nil, nil
	}
	s.audit(ctx, scope, "generated AI deal score for "+l.Address, listingID, model.ActivityAI)
	return score, nil
}

// DraftReply returns an AI-drafted next message for a thread, or ""
// when assist is unavailable.
func (s *Service) DraftReply(ctx context.Context, scope store.Scope, threadID string) (string, error) {
	if s.assist == nil || !s.CanUseAI(ctx, scope.AgencyID) {
		return "", nil
	}
	msgs, err := s.store.ListMessages(ctx, threadID)
	if err != nil {
		return "", err
	}

	title := threadID
	if threads, err := s.store.ListThreads(ctx, scope.AgencyID); err == nil {
		for _, t := range threads {
			if t.ID == threadID {
				title = t.Title
				break
			}
		}
	}

	names := map[string]string{}
	if users, err := s.store.ListUsers(ctx, scope.AgencyID); err == nil {
		for _, u := range users {
			names[u.ID] = u.Name
		}
	}

	reply, err := s.assist.DraftReply(ctx, title, msgs, names)
	if err != nil {
		zap.L().Warn("draft reply unavailable", zap.Error(err))
		return "", nil
	}
	return reply, nil
}

// ActivityFeed returns the agency's newest-first audit entries.
func (s *Service) ActivityFeed(ctx context.Context, scope store.Scope, limit int) ([]model.Activity, error) {
	return s.store.ListActivity(ctx, scope.AgencyID, limit)
}

// audit appends an activity entry; audit failures are logged, never
// propagated into the operation result.
func (s *Service) audit(ctx context.Context, scope store.Scope, action, target string, typ model.ActivityType) {
	err := s.store.LogActivity(ctx, model.Activity{
		ID:        uuid.New().String(),
		AgencyID:  scope.AgencyID,
		UserID:    scope.UserID,
		Action:    action,
		Target:    target,
		Type:      typ,
		Timestamp: s.now(),
	})
	if err != nil {
		zap.L().Warn("activity log append failed", zap.Error(err))
	}
}

func (s *Service) notify(ctx context.Context, agencyID, userID, title, message string) {
	err := s.store.PushNotification(ctx, model.Notification{
		ID:        uuid.New().String(),
		AgencyID:  agencyID,
		UserID:    userID,
		Title:     title,
		Message:   message,
		Timestamp: s.now(),
	})
	if err != nil {
		zap.L().Warn("notification push failed", zap.Error(err))
	}
}
