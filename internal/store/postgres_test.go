package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatepulse/crm-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithPool(mock), mock
}

func TestPostgresStore_GetListing_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, agency_id, address, .+ FROM listings WHERE agency_id = \$1 AND id = \$2`).
		WithArgs("agency-1", "nonexistent").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetListing(context.Background(), "agency-1", "nonexistent")
	require.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetUserByEmail_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, agency_id, name, email, role, status, ai_usage FROM users WHERE email = \$1`).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetUserByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveContact_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO contacts .+ ON CONFLICT`).
		WithArgs("c-1", "agency-1", "John Smith", "555-0101", "john@example.com",
			pgxmock.AnyArg(), "", "user-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SaveContact(context.Background(), model.Contact{
		ID:         "c-1",
		AgencyID:   "agency-1",
		Name:       "John Smith",
		Phone:      "555-0101",
		Email:      "john@example.com",
		Tags:       []string{"buyer"},
		AssignedTo: "user-1",
		CreatedAt:  time.Now(),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListListings_AdminSeesAll(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{"id", "agency_id", "address", "seller_name", "price",
		"assigned_agent", "status", "notes", "created_at", "metadata"}).
		AddRow("l-1", "agency-1", "123 Main St", "Jane Doe", 450000.0,
			"user-2", "Active", "", time.Now(), []byte(`{}`))

	// Admin scope queries by agency only, no assigned_agent clause.
	mock.ExpectQuery(`FROM listings WHERE agency_id = \$1 ORDER BY created_at DESC`).
		WithArgs("agency-1").
		WillReturnRows(rows)

	listings, err := s.ListListings(context.Background(), Scope{
		AgencyID: "agency-1",
		Role:     model.RoleAdmin,
		UserID:   "user-1",
	})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, model.ListingActive, listings[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListListings_AgentScoped(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{"id", "agency_id", "address", "seller_name", "price",
		"assigned_agent", "status", "notes", "created_at", "metadata"})

	mock.ExpectQuery(`FROM listings WHERE agency_id = \$1 AND assigned_agent = \$2`).
		WithArgs("agency-1", "user-2").
		WillReturnRows(rows)

	listings, err := s.ListListings(context.Background(), Scope{
		AgencyID: "agency-1",
		Role:     model.RoleAgent,
		UserID:   "user-2",
	})
	require.NoError(t, err)
	assert.Empty(t, listings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateListingStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE listings SET status = \$1`).
		WithArgs("Sold", "agency-1", "nonexistent").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateListingStatus(context.Background(), "agency-1", "nonexistent", model.ListingSold)
	require.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveOffer_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO offers .+ ON CONFLICT`).
		WithArgs("o-1", "agency-1", "l-1", "Bob Buyer", 450000.0, 90000.0, 5000.0,
			"Conventional", 10, pgxmock.AnyArg(), "", "Draft", "user-1",
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SaveOffer(context.Background(), model.Offer{
		ID:               "o-1",
		AgencyID:         "agency-1",
		ListingID:        "l-1",
		BuyerName:        "Bob Buyer",
		Price:            450000,
		DownPayment:      90000,
		EarnestMoney:     5000,
		Financing:        model.FinancingConventional,
		InspectionPeriod: 10,
		Status:           model.OfferDraft,
		AssignedTo:       "user-1",
		CreatedAt:        time.Now(),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteContacts(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM contacts WHERE agency_id = \$1 AND id = ANY\(\$2\)`).
		WithArgs("agency-1", []string{"c-1", "c-2"}).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	err := s.DeleteContacts(context.Background(), "agency-1", []string{"c-1", "c-2"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
