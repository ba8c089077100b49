// Package store persists CRM records behind a backend-agnostic
// interface with Postgres and SQLite implementations.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/estatepulse/crm-cli/internal/model"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = eris.New("store: not found")

// Scope narrows list operations to what the caller may see. Every query
// is agency-bound; admins see all agency records, everyone else only
// records assigned to them.
type Scope struct {
	AgencyID string     `json:"agency_id"`
	Role     model.Role `json:"role"`
	UserID   string     `json:"user_id"`
}

// All reports whether the scope sees every record in the agency.
func (s Scope) All() bool {
	return s.Role == model.RoleAdmin
}

// Store defines the persistence interface for the CRM.
type Store interface {
	// Agencies and users
	SaveAgency(ctx context.Context, a model.Agency) error
	GetAgency(ctx context.Context, id string) (*model.Agency, error)
	SaveUser(ctx context.Context, u model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context, agencyID string) ([]model.User, error)

	// Contacts
	SaveContact(ctx context.Context, c model.Contact) error
	ListContacts(ctx context.Context, scope Scope) ([]model.Contact, error)
	DeleteContacts(ctx context.Context, agencyID string, ids []string) error

	// Listings
	SaveListing(ctx context.Context, l model.Listing) error
	GetListing(ctx context.Context, agencyID, id string) (*model.Listing, error)
	FindListingByAddress(ctx context.Context, agencyID, address string) (*model.Listing, error)
	ListListings(ctx context.Context, scope Scope) ([]model.Listing, error)
	UpdateListingStatus(ctx context.Context, agencyID, id string, status model.ListingStatus) error

	// Offers
	SaveOffer(ctx context.Context, o model.Offer) error
	GetOffer(ctx context.Context, agencyID, id string) (*model.Offer, error)
	ListOffers(ctx context.Context, scope Scope) ([]model.Offer, error)

	// Tasks
	SaveTask(ctx context.Context, t model.Task) error
	GetTask(ctx context.Context, agencyID, id string) (*model.Task, error)
	ListTasks(ctx context.Context, scope Scope) ([]model.Task, error)

	// Messaging
	SaveThread(ctx context.Context, t model.Thread) error
	ListThreads(ctx context.Context, agencyID string) ([]model.Thread, error)
	AppendMessage(ctx context.Context, m model.Message) error
	ListMessages(ctx context.Context, threadID string) ([]model.Message, error)

	// Activity and notifications
	LogActivity(ctx context.Context, a model.Activity) error
	ListActivity(ctx context.Context, agencyID string, limit int) ([]model.Activity, error)
	PushNotification(ctx context.Context, n model.Notification) error
	ListNotifications(ctx context.Context, agencyID, userID string) ([]model.Notification, error)
	MarkNotificationsRead(ctx context.Context, agencyID, userID string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// activityCap bounds the audit feed returned to callers.
const activityCap = 200
