package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/estatepulse/crm-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It backs the
// local/offline mode; the schema mirrors the Postgres one with JSON
// columns stored as TEXT.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given DSN and configures WAL
// mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS agencies (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	plan       TEXT NOT NULL DEFAULT 'Basic',
	ai_credits INTEGER NOT NULL DEFAULT 0,
	ai_limits  INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS users (
	id        TEXT PRIMARY KEY,
	agency_id TEXT NOT NULL,
	name      TEXT NOT NULL,
	email     TEXT NOT NULL UNIQUE,
	role      TEXT NOT NULL DEFAULT 'agent',
	status    TEXT NOT NULL DEFAULT 'Active',
	ai_usage  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS contacts (
	id          TEXT PRIMARY KEY,
	agency_id   TEXT NOT NULL,
	name        TEXT NOT NULL,
	phone       TEXT NOT NULL DEFAULT '',
	email       TEXT NOT NULL DEFAULT '',
	tags        TEXT NOT NULL DEFAULT '[]',
	notes       TEXT NOT NULL DEFAULT '',
	assigned_to TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL,
	metadata    TEXT
);

CREATE TABLE IF NOT EXISTS listings (
	id             TEXT PRIMARY KEY,
	agency_id      TEXT NOT NULL,
	address        TEXT NOT NULL,
	seller_name    TEXT NOT NULL DEFAULT '',
	price          REAL NOT NULL DEFAULT 0,
	assigned_agent TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL DEFAULT 'New',
	notes          TEXT NOT NULL DEFAULT '',
	created_at     DATETIME NOT NULL,
	metadata       TEXT
);

CREATE TABLE IF NOT EXISTS offers (
	id                TEXT PRIMARY KEY,
	agency_id         TEXT NOT NULL,
	listing_id        TEXT NOT NULL DEFAULT '',
	buyer_name        TEXT NOT NULL,
	price             REAL NOT NULL DEFAULT 0,
	down_payment      REAL NOT NULL DEFAULT 0,
	earnest_money     REAL NOT NULL DEFAULT 0,
	financing         TEXT NOT NULL DEFAULT 'Conventional',
	inspection_period INTEGER NOT NULL DEFAULT 0,
	contingencies     TEXT NOT NULL DEFAULT '[]',
	closing_date      TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL DEFAULT 'Draft',
	assigned_to       TEXT NOT NULL DEFAULT '',
	created_at        DATETIME NOT NULL,
	metadata          TEXT
);

CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT PRIMARY KEY,
	agency_id   TEXT NOT NULL,
	title       TEXT NOT NULL,
	assigned_to TEXT NOT NULL DEFAULT '',
	due_date    TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'Pending',
	priority    TEXT NOT NULL DEFAULT 'Medium',
	created_at  DATETIME NOT NULL,
	metadata    TEXT
);

CREATE TABLE IF NOT EXISTS threads (
	id         TEXT PRIMARY KEY,
	agency_id  TEXT NOT NULL,
	title      TEXT NOT NULL,
	type       TEXT NOT NULL DEFAULT 'general',
	related_id TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id        TEXT PRIMARY KEY,
	thread_id TEXT NOT NULL,
	sender_id TEXT NOT NULL,
	text      TEXT NOT NULL,
	ts        DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS activity (
	id        TEXT PRIMARY KEY,
	agency_id TEXT NOT NULL,
	user_id   TEXT NOT NULL,
	action    TEXT NOT NULL,
	target    TEXT NOT NULL DEFAULT '',
	type      TEXT NOT NULL DEFAULT 'event',
	ts        DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id        TEXT PRIMARY KEY,
	agency_id TEXT NOT NULL,
	user_id   TEXT NOT NULL,
	title     TEXT NOT NULL,
	message   TEXT NOT NULL DEFAULT '',
	read      INTEGER NOT NULL DEFAULT 0,
	ts        DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contacts_agency ON contacts(agency_id, assigned_to);
CREATE INDEX IF NOT EXISTS idx_listings_agency ON listings(agency_id, assigned_agent);
CREATE INDEX IF NOT EXISTS idx_offers_agency ON offers(agency_id, assigned_to);
CREATE INDEX IF NOT EXISTS idx_tasks_agency ON tasks(agency_id, assigned_to);
CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages(thread_id, ts);
CREATE INDEX IF NOT EXISTS idx_activity_agency ON activity(agency_id, ts);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(agency_id, user_id, ts);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveAgency(ctx context.Context, a model.Agency) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO agencies (id, name, plan, ai_credits, ai_limits, created_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, plan = excluded.plan,
		     ai_credits = excluded.ai_credits, ai_limits = excluded.ai_limits`,
		a.ID, a.Name, string(a.Plan), a.AICredits, a.AILimits, a.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: save agency")
}

func (s *SQLiteStore) GetAgency(ctx context.Context, id string) (*model.Agency, error) {
	var a model.Agency
	var plan string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, plan, ai_credits, ai_limits, created_at FROM agencies WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &plan, &a.AICredits, &a.AILimits, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get agency %s", id)
	}
	a.Plan = model.Plan(plan)
	return &a, nil
}

func (s *SQLiteStore) SaveUser(ctx context.Context, u model.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, agency_id, name, email, role, status, ai_usage) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, email = excluded.email,
		     role = excluded.role, status = excluded.status, ai_usage = excluded.ai_usage`,
		u.ID, u.AgencyID, u.Name, u.Email, string(u.Role), u.Status, u.AIUsage,
	)
	return eris.Wrap(err, "sqlite: save user")
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	var role string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, agency_id, name, email, role, status, ai_usage FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.AgencyID, &u.Name, &u.Email, &role, &u.Status, &u.AIUsage)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get user %s", email)
	}
	u.Role = model.Role(role)
	return &u, nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context, agencyID string) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agency_id, name, email, role, status, ai_usage FROM users WHERE agency_id = ? ORDER BY name`, agencyID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list users")
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var role string
		if err := rows.Scan(&u.ID, &u.AgencyID, &u.Name, &u.Email, &role, &u.Status, &u.AIUsage); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan user")
		}
		u.Role = model.Role(role)
		users = append(users, u)
	}
	return users, eris.Wrap(rows.Err(), "sqlite: list users")
}

func (s *SQLiteStore) SaveContact(ctx context.Context, c model.Contact) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contacts (id, agency_id, name, phone, email, tags, notes, assigned_to, created_at, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, phone = excluded.phone, email = excluded.email,
		     tags = excluded.tags, notes = excluded.notes, assigned_to = excluded.assigned_to, metadata = excluded.metadata`,
		c.ID, c.AgencyID, c.Name, c.Phone, c.Email, string(mustJSON(c.Tags)), c.Notes, c.AssignedTo, c.CreatedAt, string(mustJSON(c.Metadata)),
	)
	return eris.Wrap(err, "sqlite: save contact")
}

func (s *SQLiteStore) ListContacts(ctx context.Context, scope Scope) ([]model.Contact, error) {
	query := `SELECT id, agency_id, name, phone, email, tags, notes, assigned_to, created_at, metadata
	          FROM contacts WHERE agency_id = ?`
	args := []any{scope.AgencyID}
	if !scope.All() {
		query += ` AND assigned_to = ?`
		args = append(args, scope.UserID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list contacts")
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		var c model.Contact
		var tags, metadata sql.NullString
		if err := rows.Scan(&c.ID, &c.AgencyID, &c.Name, &c.Phone, &c.Email, &tags, &c.Notes, &c.AssignedTo, &c.CreatedAt, &metadata); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan contact")
		}
		c.Tags = fromJSON[[]string]([]byte(tags.String))
		c.Metadata = fromJSON[map[string]string]([]byte(metadata.String))
		contacts = append(contacts, c)
	}
	return contacts, eris.Wrap(rows.Err(), "sqlite: list contacts")
}

func (s *SQLiteStore) DeleteContacts(ctx context.Context, agencyID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, agencyID)
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM contacts WHERE agency_id = ? AND id IN (%s)`, placeholders),
		args...,
	)
	return eris.Wrap(err, "sqlite: delete contacts")
}

func (s *SQLiteStore) SaveListing(ctx context.Context, l model.Listing) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO listings (id, agency_id, address, seller_name, price, assigned_agent, status, notes, created_at, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET address = excluded.address, seller_name = excluded.seller_name,
		     price = excluded.price, assigned_agent = excluded.assigned_agent, status = excluded.status,
		     notes = excluded.notes, metadata = excluded.metadata`,
		l.ID, l.AgencyID, l.Address, l.SellerName, l.Price, l.AssignedAgent, string(l.Status), l.Notes, l.CreatedAt, string(mustJSON(l.Metadata)),
	)
	return eris.Wrap(err, "sqlite: save listing")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteListing(row rowScanner) (*model.Listing, error) {
	var l model.Listing
	var status string
	var metadata sql.NullString
	err := row.Scan(&l.ID, &l.AgencyID, &l.Address, &l.SellerName, &l.Price, &l.AssignedAgent, &status, &l.Notes, &l.CreatedAt, &metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan listing")
	}
	l.Status = model.ListingStatus(status)
	l.Metadata = fromJSON[map[string]string]([]byte(metadata.String))
	return &l, nil
}

func (s *SQLiteStore) GetListing(ctx context.Context, agencyID, id string) (*model.Listing, error) {
	return scanSQLiteListing(s.db.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE agency_id = ? AND id = ?`, agencyID, id,
	))
}

func (s *SQLiteStore) FindListingByAddress(ctx context.Context, agencyID, address string) (*model.Listing, error) {
	return scanSQLiteListing(s.db.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE agency_id = ? AND lower(address) = lower(?) LIMIT 1`, agencyID, address,
	))
}

func (s *SQLiteStore) ListListings(ctx context.Context, scope Scope) ([]model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE agency_id = ?`
	args := []any{scope.AgencyID}
	if !scope.All() {
		query += ` AND assigned_agent = ?`
		args = append(args, scope.UserID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list listings")
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		l, err := scanSQLiteListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, eris.Wrap(rows.Err(), "sqlite: list listings")
}

func (s *SQLiteStore) UpdateListingStatus(ctx context.Context, agencyID, id string, status model.ListingStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE listings SET status = ? WHERE agency_id = ? AND id = ?`,
		string(status), agencyID, id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update listing status %s", id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) SaveOffer(ctx context.Context, o model.Offer) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO offers (id, agency_id, listing_id, buyer_name, price, down_payment, earnest_money, financing,
		                     inspection_period, contingencies, closing_date, status, assigned_to, created_at, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET listing_id = excluded.listing_id, buyer_name = excluded.buyer_name,
		     price = excluded.price, down_payment = excluded.down_payment, earnest_money = excluded.earnest_money,
		     financing = excluded.financing, inspection_period = excluded.inspection_period,
		     contingencies = excluded.contingencies, closing_date = excluded.closing_date,
		     status = excluded.status, assigned_to = excluded.assigned_to, metadata = excluded.metadata`,
		o.ID, o.AgencyID, o.ListingID, o.BuyerName, o.Price, o.DownPayment, o.EarnestMoney, string(o.Financing),
		o.InspectionPeriod, string(mustJSON(o.Contingencies)), o.ClosingDate, string(o.Status), o.AssignedTo, o.CreatedAt, string(mustJSON(o.Metadata)),
	)
	return eris.Wrap(err, "sqlite: save offer")
}

func scanSQLiteOffer(row rowScanner) (*model.Offer, error) {
	var o model.Offer
	var financing, status string
	var contingencies, metadata sql.NullString
	err := row.Scan(&o.ID, &o.AgencyID, &o.ListingID, &o.BuyerName, &o.Price, &o.DownPayment, &o.EarnestMoney, &financing,
		&o.InspectionPeriod, &contingencies, &o.ClosingDate, &status, &o.AssignedTo, &o.CreatedAt, &metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan offer")
	}
	o.Financing = model.Financing(financing)
	o.Status = model.OfferStatus(status)
	o.Contingencies = fromJSON[[]string]([]byte(contingencies.String))
	o.Metadata = fromJSON[map[string]string]([]byte(metadata.String))
	return &o, nil
}

func (s *SQLiteStore) GetOffer(ctx context.Context, agencyID, id string) (*model.Offer, error) {
	return scanSQLiteOffer(s.db.QueryRowContext(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE agency_id = ? AND id = ?`, agencyID, id,
	))
}

func (s *SQLiteStore) ListOffers(ctx context.Context, scope Scope) ([]model.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE agency_id = ?`
	args := []any{scope.AgencyID}
	if !scope.All() {
		query += ` AND assigned_to = ?`
		args = append(args, scope.UserID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list offers")
	}
	defer rows.Close()

	var offers []model.Offer
	for rows.Next() {
		o, err := scanSQLiteOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, *o)
	}
	return offers, eris.Wrap(rows.Err(), "sqlite: list offers")
}

func (s *SQLiteStore) SaveTask(ctx context.Context, t model.Task) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, agency_id, title, assigned_to, due_date, status, priority, created_at, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET title = excluded.title, assigned_to = excluded.assigned_to,
		     due_date = excluded.due_date, status = excluded.status, priority = excluded.priority, metadata = excluded.metadata`,
		t.ID, t.AgencyID, t.Title, t.AssignedTo, t.DueDate, string(t.Status), string(t.Priority), t.CreatedAt, string(mustJSON(t.Metadata)),
	)
	return eris.Wrap(err, "sqlite: save task")
}

func scanSQLiteTask(row rowScanner) (*model.Task, error) {
	var t model.Task
	var status, priority string
	var metadata sql.NullString
	err := row.Scan(&t.ID, &t.AgencyID, &t.Title, &t.AssignedTo, &t.DueDate, &status, &priority, &t.CreatedAt, &metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan task")
	}
	t.Status = model.TaskStatus(status)
	t.Priority = model.TaskPriority(priority)
	t.Metadata = fromJSON[map[string]string]([]byte(metadata.String))
	return &t, nil
}

func (s *SQLiteStore) GetTask(ctx context.Context, agencyID, id string) (*model.Task, error) {
	return scanSQLiteTask(s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE agency_id = ? AND id = ?`, agencyID, id,
	))
}

func (s *SQLiteStore) ListTasks(ctx context.Context, scope Scope) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE agency_id = ?`
	args := []any{scope.AgencyID}
	if !scope.All() {
		query += ` AND assigned_to = ?`
		args = append(args, scope.UserID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list tasks")
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanSQLiteTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, eris.Wrap(rows.Err(), "sqlite: list tasks")
}

func (s *SQLiteStore) SaveThread(ctx context.Context, t model.Thread) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO threads (id, agency_id, title, type, related_id, created_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET title = excluded.title, type = excluded.type, related_id = excluded.related_id`,
		t.ID, t.AgencyID, t.Title, string(t.Type), t.RelatedID, t.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: save thread")
}

func (s *SQLiteStore) ListThreads(ctx context.Context, agencyID string) ([]model.Thread, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agency_id, title, type, related_id, created_at FROM threads WHERE agency_id = ? ORDER BY created_at`, agencyID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list threads")
	}
	defer rows.Close()

	var threads []model.Thread
	for rows.Next() {
		var t model.Thread
		var typ string
		if err := rows.Scan(&t.ID, &t.AgencyID, &t.Title, &typ, &t.RelatedID, &t.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan thread")
		}
		t.Type = model.ThreadType(typ)
		threads = append(threads, t)
	}
	return threads, eris.Wrap(rows.Err(), "sqlite: list threads")
}

func (s *SQLiteStore) AppendMessage(ctx context.Context, m model.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, thread_id, sender_id, text, ts) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.ThreadID, m.SenderID, m.Text, m.Timestamp,
	)
	return eris.Wrap(err, "sqlite: append message")
}

func (s *SQLiteStore) ListMessages(ctx context.Context, threadID string) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, thread_id, sender_id, text, ts FROM messages WHERE thread_id = ? ORDER BY ts`, threadID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list messages")
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.SenderID, &m.Text, &m.Timestamp); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan message")
		}
		msgs = append(msgs, m)
	}
	return msgs, eris.Wrap(rows.Err(), "sqlite: list messages")
}

func (s *SQLiteStore) LogActivity(ctx context.Context, a model.Activity) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activity (id, agency_id, user_id, action, target, type, ts) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.AgencyID, a.UserID, a.Action, a.Target, string(a.Type), a.Timestamp,
	)
	return eris.Wrap(err, "sqlite: log activity")
}

func (s *SQLiteStore) ListActivity(ctx context.Context, agencyID string, limit int) ([]model.Activity, error) {
	if limit <= 0 || limit > activityCap {
		limit = activityCap
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agency_id, user_id, action, target, type, ts FROM activity WHERE agency_id = ? ORDER BY ts DESC LIMIT ?`,
		agencyID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list activity")
	}
	defer rows.Close()

	var acts []model.Activity
	for rows.Next() {
		var a model.Activity
		var typ string
		if err := rows.Scan(&a.ID, &a.AgencyID, &a.UserID, &a.Action, &a.Target, &typ, &a.Timestamp); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan activity")
		}
		a.Type = model.ActivityType(typ)
		acts = append(acts, a)
	}
	return acts, eris.Wrap(rows.Err(), "sqlite: list activity")
}

func (s *SQLiteStore) PushNotification(ctx context.Context, n model.Notification) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, agency_id, user_id, title, message, read, ts) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.AgencyID, n.UserID, n.Title, n.Message, n.Read, n.Timestamp,
	)
	return eris.Wrap(err, "sqlite: push notification")
}

func (s *SQLiteStore) ListNotifications(ctx context.Context, agencyID, userID string) ([]model.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agency_id, user_id, title, message, read, ts FROM notifications
		 WHERE agency_id = ? AND user_id = ? ORDER BY ts DESC LIMIT 100`,
		agencyID, userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list notifications")
	}
	defer rows.Close()

	var notifs []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.AgencyID, &n.UserID, &n.Title, &n.Message, &n.Read, &n.Timestamp); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan notification")
		}
		notifs = append(notifs, n)
	}
	return notifs, eris.Wrap(rows.Err(), "sqlite: list notifications")
}

func (s *SQLiteStore) MarkNotificationsRead(ctx context.Context, agencyID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE agency_id = ? AND user_id = ?`,
		agencyID, userID,
	)
	return eris.Wrap(err, "sqlite: mark notifications read")
}
