package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatepulse/crm-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_Migrate_Idempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
}

func TestSQLite_Agency_SaveAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	a := model.Agency{
		ID:        "agency-1",
		Name:      "Elite Realty Group",
		Plan:      model.PlanPro,
		AICredits: 100,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, st.SaveAgency(ctx, a))

	got, err := st.GetAgency(ctx, "agency-1")
	require.NoError(t, err)
	assert.Equal(t, "Elite Realty Group", got.Name)
	assert.Equal(t, model.PlanPro, got.Plan)
	assert.Equal(t, 100, got.AICredits)
}

func TestSQLite_Agency_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetAgency(context.Background(), "nonexistent")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_User_SaveAndGetByEmail(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	u := model.User{
		ID:       "user-1",
		AgencyID: "agency-1",
		Name:     "Alex Admin",
		Email:    "alex@eliterealty.com",
		Role:     model.RoleAdmin,
		Status:   "Active",
	}
	require.NoError(t, st.SaveUser(ctx, u))

	got, err := st.GetUserByEmail(ctx, "alex@eliterealty.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.ID)
	assert.Equal(t, model.RoleAdmin, got.Role)

	_, err = st.GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_Contacts_SaveListDelete(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	c := model.Contact{
		ID:         "c-1",
		AgencyID:   "agency-1",
		Name:       "John Smith",
		Phone:      "555-0101",
		Email:      "john@example.com",
		Tags:       []string{"buyer", "hot lead"},
		AssignedTo: "user-1",
		CreatedAt:  time.Now().UTC(),
		Metadata:   map[string]string{"source": "import"},
	}
	require.NoError(t, st.SaveContact(ctx, c))

	admin := Scope{AgencyID: "agency-1", Role: model.RoleAdmin, UserID: "user-9"}
	contacts, err := st.ListContacts(ctx, admin)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, []string{"buyer", "hot lead"}, contacts[0].Tags)
	assert.Equal(t, "import", contacts[0].Metadata["source"])

	require.NoError(t, st.DeleteContacts(ctx, "agency-1", []string{"c-1"}))
	contacts, err = st.ListContacts(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, contacts)
}

func TestSQLite_Contacts_ScopeVisibility(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, st.SaveContact(ctx, model.Contact{
		ID: "c-1", AgencyID: "agency-1", Name: "Mine", AssignedTo: "agent-1", CreatedAt: now,
	}))
	require.NoError(t, st.SaveContact(ctx, model.Contact{
		ID: "c-2", AgencyID: "agency-1", Name: "Theirs", AssignedTo: "agent-2", CreatedAt: now,
	}))
	require.NoError(t, st.SaveContact(ctx, model.Contact{
		ID: "c-3", AgencyID: "agency-2", Name: "Other Tenant", AssignedTo: "agent-1", CreatedAt: now,
	}))

	// Agents only see their own records.
	agent := Scope{AgencyID: "agency-1", Role: model.RoleAgent, UserID: "agent-1"}
	contacts, err := st.ListContacts(ctx, agent)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Mine", contacts[0].Name)

	// Admins see the whole agency but never cross tenants.
	admin := Scope{AgencyID: "agency-1", Role: model.RoleAdmin, UserID: "admin-1"}
	contacts, err = st.ListContacts(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, contacts, 2)
}

func TestSQLite_Listings_CRUD(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	l := model.Listing{
		ID:            "l-1",
		AgencyID:      "agency-1",
		Address:       "123 Main St",
		SellerName:    "Jane Doe",
		Price:         450000,
		AssignedAgent: "agent-1",
		Status:        model.ListingActive,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, st.SaveListing(ctx, l))

	got, err := st.GetListing(ctx, "agency-1", "l-1")
	require.NoError(t, err)
	assert.Equal(t, 450000.0, got.Price)
	assert.Equal(t, model.ListingActive, got.Status)

	// Address lookup is case-insensitive.
	found, err := st.FindListingByAddress(ctx, "agency-1", "123 MAIN ST")
	require.NoError(t, err)
	assert.Equal(t, "l-1", found.ID)

	_, err = st.FindListingByAddress(ctx, "agency-1", "999 Nowhere Ln")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.UpdateListingStatus(ctx, "agency-1", "l-1", model.ListingUnderContract))
	got, err = st.GetListing(ctx, "agency-1", "l-1")
	require.NoError(t, err)
	assert.Equal(t, model.ListingUnderContract, got.Status)

	err = st.UpdateListingStatus(ctx, "agency-1", "nonexistent", model.ListingSold)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_Listing_TenantIsolation(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveListing(ctx, model.Listing{
		ID: "l-1", AgencyID: "agency-1", Address: "123 Main St", CreatedAt: time.Now().UTC(),
	}))

	_, err := st.GetListing(ctx, "agency-2", "l-1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_Offers_SaveAndList(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	o := model.Offer{
		ID:               "o-1",
		AgencyID:         "agency-1",
		ListingID:        "l-1",
		BuyerName:        "Bob Buyer",
		Price:            440000,
		DownPayment:      88000,
		EarnestMoney:     5000,
		Financing:        model.FinancingFHA,
		InspectionPeriod: 10,
		Contingencies:    []string{"financing", "inspection"},
		Status:           model.OfferSent,
		AssignedTo:       "agent-1",
		CreatedAt:        time.Now().UTC(),
	}
	require.NoError(t, st.SaveOffer(ctx, o))

	got, err := st.GetOffer(ctx, "agency-1", "o-1")
	require.NoError(t, err)
	assert.Equal(t, model.FinancingFHA, got.Financing)
	assert.Equal(t, []string{"financing", "inspection"}, got.Contingencies)
	assert.Equal(t, model.OfferSent, got.Status)

	// Status upsert on the same id.
	o.Status = model.OfferAccepted
	require.NoError(t, st.SaveOffer(ctx, o))
	got, err = st.GetOffer(ctx, "agency-1", "o-1")
	require.NoError(t, err)
	assert.Equal(t, model.OfferAccepted, got.Status)

	offers, err := st.ListOffers(ctx, Scope{AgencyID: "agency-1", Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, offers, 1)
}

func TestSQLite_Tasks_SaveAndToggle(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	task := model.Task{
		ID:         "t-1",
		AgencyID:   "agency-1",
		Title:      "Schedule inspection",
		AssignedTo: "agent-1",
		DueDate:    "2026-09-15",
		Status:     model.TaskPending,
		Priority:   model.PriorityHigh,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, st.SaveTask(ctx, task))

	task.Status = model.TaskDone
	require.NoError(t, st.SaveTask(ctx, task))

	got, err := st.GetTask(ctx, "agency-1", "t-1")
	require.NoError(t, err)
	assert.Equal(t, model.TaskDone, got.Status)
	assert.Equal(t, model.PriorityHigh, got.Priority)
}

func TestSQLite_Messaging_ThreadAndMessages(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	thread := model.Thread{
		ID:        "th-1",
		AgencyID:  "agency-1",
		Title:     "123 Main St",
		Type:      model.ThreadListing,
		RelatedID: "l-1",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, st.SaveThread(ctx, thread))

	base := time.Now().UTC()
	require.NoError(t, st.AppendMessage(ctx, model.Message{
		ID: "m-2", ThreadID: "th-1", SenderID: "agent-1", Text: "second", Timestamp: base.Add(time.Minute),
	}))
	require.NoError(t, st.AppendMessage(ctx, model.Message{
		ID: "m-1", ThreadID: "th-1", SenderID: "agent-2", Text: "first", Timestamp: base,
	}))

	threads, err := st.ListThreads(ctx, "agency-1")
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, model.ThreadListing, threads[0].Type)

	// Messages come back in timestamp order regardless of insert order.
	msgs, err := st.ListMessages(ctx, "th-1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, "second", msgs[1].Text)
}

func TestSQLite_Activity_NewestFirstAndCapped(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	require.NoError(t, st.LogActivity(ctx, model.Activity{
		ID: "a-1", AgencyID: "agency-1", UserID: "u-1", Action: "created listing", Type: model.ActivityEvent, Timestamp: base,
	}))
	require.NoError(t, st.LogActivity(ctx, model.Activity{
		ID: "a-2", AgencyID: "agency-1", UserID: "u-1", Action: "advanced stage", Type: model.ActivityAudit, Timestamp: base.Add(time.Second),
	}))

	acts, err := st.ListActivity(ctx, "agency-1", 10)
	require.NoError(t, err)
	require.Len(t, acts, 2)
	assert.Equal(t, "advanced stage", acts[0].Action)

	acts, err = st.ListActivity(ctx, "agency-1", 1)
	require.NoError(t, err)
	assert.Len(t, acts, 1)
}

func TestSQLite_Notifications_PushAndMarkRead(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.PushNotification(ctx, model.Notification{
		ID: "n-1", AgencyID: "agency-1", UserID: "u-1", Title: "Listing advanced", Timestamp: time.Now().UTC(),
	}))

	notifs, err := st.ListNotifications(ctx, "agency-1", "u-1")
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.False(t, notifs[0].Read)

	require.NoError(t, st.MarkNotificationsRead(ctx, "agency-1", "u-1"))
	notifs, err = st.ListNotifications(ctx, "agency-1", "u-1")
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.True(t, notifs[0].Read)

	// Other users see nothing.
	notifs, err = st.ListNotifications(ctx, "agency-1", "u-2")
	require.NoError(t, err)
	assert.Empty(t, notifs)
}
