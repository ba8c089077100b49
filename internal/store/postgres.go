package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/estatepulse/crm-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses, extracted so tests
// can substitute pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool; used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: func() {}}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS agencies (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	plan       TEXT NOT NULL DEFAULT 'Basic',
	ai_credits INTEGER NOT NULL DEFAULT 0,
	ai_limits  INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS users (
	id        TEXT PRIMARY KEY,
	agency_id TEXT NOT NULL REFERENCES agencies(id),
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
	tags        JSONB NOT NULL DEFAULT '[]',
	notes       TEXT NOT NULL DEFAULT '',
	assigned_to TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	metadata    JSONB
);

CREATE TABLE IF NOT EXISTS listings (
	id             TEXT PRIMARY KEY,
	agency_id      TEXT NOT NULL,
	address        TEXT NOT NULL,
	seller_name    TEXT NOT NULL DEFAULT '',
	price          DOUBLE PRECISION NOT NULL DEFAULT 0,
	assigned_agent TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL DEFAULT 'New',
	notes          TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	metadata       JSONB
);

CREATE TABLE IF NOT EXISTS offers (
	id                TEXT PRIMARY KEY,
	agency_id         TEXT NOT NULL,
	listing_id        TEXT NOT NULL DEFAULT '',
	buyer_name        TEXT NOT NULL,
	price             DOUBLE PRECISION NOT NULL DEFAULT 0,
	down_payment      DOUBLE PRECISION NOT NULL DEFAULT 0,
	earnest_money     DOUBLE PRECISION NOT NULL DEFAULT 0,
	financing         TEXT NOT NULL DEFAULT 'Conventional',
	inspection_period INTEGER NOT NULL DEFAULT 0,
	contingencies     JSONB NOT NULL DEFAULT '[]',
	closing_date      TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL DEFAULT 'Draft',
	assigned_to       TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	metadata          JSONB
);

CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT PRIMARY KEY,
	agency_id   TEXT NOT NULL,
	title       TEXT NOT NULL,
	assigned_to TEXT NOT NULL DEFAULT '',
	due_date    TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'Pending',
	priority    TEXT NOT NULL DEFAULT 'Medium',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	metadata    JSONB
);

CREATE TABLE IF NOT EXISTS threads (
	id         TEXT PRIMARY KEY,
	agency_id  TEXT NOT NULL,
	title      TEXT NOT NULL,
	type       TEXT NOT NULL DEFAULT 'general',
	related_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS messages (
	id        TEXT PRIMARY KEY,
	thread_id TEXT NOT NULL REFERENCES threads(id),
	sender_id TEXT NOT NULL,
	text      TEXT NOT NULL,
	ts        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS activity (
	id        TEXT PRIMARY KEY,
	agency_id TEXT NOT NULL,
	user_id   TEXT NOT NULL,
	action    TEXT NOT NULL,
	target    TEXT NOT NULL DEFAULT '',
	type      TEXT NOT NULL DEFAULT 'event',
	ts        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS notifications (
	id        TEXT PRIMARY KEY,
	agency_id TEXT NOT NULL,
	user_id   TEXT NOT NULL,
	title     TEXT NOT NULL,
	message   TEXT NOT NULL DEFAULT '',
	read      BOOLEAN NOT NULL DEFAULT FALSE,
	ts        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_users_agency ON users(agency_id);
CREATE INDEX IF NOT EXISTS idx_contacts_agency ON contacts(agency_id, assigned_to);
CREATE INDEX IF NOT EXISTS idx_listings_agency ON listings(agency_id, assigned_agent);
CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(agency_id, status);
CREATE INDEX IF NOT EXISTS idx_offers_agency ON offers(agency_id, assigned_to);
CREATE INDEX IF NOT EXISTS idx_tasks_agency ON tasks(agency_id, assigned_to);
CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages(thread_id, ts);
CREATE INDEX IF NOT EXISTS idx_activity_agency ON activity(agency_id, ts DESC);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(agency_id, user_id, ts DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.closeFn()
	return nil
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return b
}

func fromJSON[T any](raw []byte) T {
	var v T
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &v)
	}
	return v
}

func (s *PostgresStore) SaveAgency(ctx context.Context, a model.Agency) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO agencies (id, name, plan, ai_credits, ai_limits, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET name = $2, plan = $3, ai_credits = $4, ai_limits = $5`,
		a.ID, a.Name, string(a.Plan), a.AICredits, a.AILimits, a.CreatedAt,
	)
	return eris.Wrap(err, "postgres: save agency")
}

func (s *PostgresStore) GetAgency(ctx context.Context, id string) (*model.Agency, error) {
	var a model.Agency
	var plan string
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, plan, ai_credits, ai_limits, created_at FROM agencies WHERE id = $1`, id,
	).Scan(&a.ID, &a.Name, &plan, &a.AICredits, &a.AILimits, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get agency %s", id)
	}
	a.Plan = model.Plan(plan)
	return &a, nil
}

func (s *PostgresStore) SaveUser(ctx context.Context, u model.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, agency_id, name, email, role, status, ai_usage)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET name = $3, email = $4, role = $5, status = $6, ai_usage = $7`,
		u.ID, u.AgencyID, u.Name, u.Email, string(u.Role), u.Status, u.AIUsage,
	)
	return eris.Wrap(err, "postgres: save user")
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	var role string
	err := s.pool.QueryRow(ctx,
		`SELECT id, agency_id, name, email, role, status, ai_usage FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.AgencyID, &u.Name, &u.Email, &role, &u.Status, &u.AIUsage)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get user %s", email)
	}
	u.Role = model.Role(role)
	return &u, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context, agencyID string) ([]model.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, agency_id, name, email, role, status, ai_usage FROM users WHERE agency_id = $1 ORDER BY name`, agencyID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list users")
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var role string
		if err := rows.Scan(&u.ID, &u.AgencyID, &u.Name, &u.Email, &role, &u.Status, &u.AIUsage); err != nil {
			return nil, eris.Wrap(err, "postgres: scan user")
		}
		u.Role = model.Role(role)
		users = append(users, u)
	}
	return users, eris.Wrap(rows.Err(), "postgres: list users")
}

func (s *PostgresStore) SaveContact(ctx context.Context, c model.Contact) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO contacts (id, agency_id, name, phone, email, tags, notes, assigned_to, created_at, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET name = $3, phone = $4, email = $5, tags = $6, notes = $7, assigned_to = $8, metadata = $10`,
		c.ID, c.AgencyID, c.Name, c.Phone, c.Email, mustJSON(c.Tags), c.Notes, c.AssignedTo, c.CreatedAt, mustJSON(c.Metadata),
	)
	return eris.Wrap(err, "postgres: save contact")
}

func (s *PostgresStore) ListContacts(ctx context.Context, scope Scope) ([]model.Contact, error) {
	query := `SELECT id, agency_id, name, phone, email, tags, notes, assigned_to, created_at, metadata
	          FROM contacts WHERE agency_id = $1`
	args := []any{scope.AgencyID}
	if !scope.All() {
		query += ` AND assigned_to = $2`
		args = append(args, scope.UserID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list contacts")
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		var c model.Contact
		var tags, metadata []byte
		if err := rows.Scan(&c.ID, &c.AgencyID, &c.Name, &c.Phone, &c.Email, &tags, &c.Notes, &c.AssignedTo, &c.CreatedAt, &metadata); err != nil {
			return nil, eris.Wrap(err, "postgres: scan contact")
		}
		c.Tags = fromJSON[[]string](tags)
		c.Metadata = fromJSON[map[string]string](metadata)
		contacts = append(contacts, c)
	}
	return contacts, eris.Wrap(rows.Err(), "postgres: list contacts")
}

func (s *PostgresStore) DeleteContacts(ctx context.Context, agencyID string, ids []string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM contacts WHERE agency_id = $1 AND id = ANY($2)`,
		agencyID, ids,
	)
	return eris.Wrap(err, "postgres: delete contacts")
}

func (s *PostgresStore) SaveListing(ctx context.Context, l model.Listing) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO listings (id, agency_id, address, seller_name, price, assigned_agent, status, notes, created_at, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET address = $3, seller_name = $4, price = $5, assigned_agent = $6, status = $7, notes = $8, metadata = $10`,
		l.ID, l.AgencyID, l.Address, l.SellerName, l.Price, l.AssignedAgent, string(l.Status), l.Notes, l.CreatedAt, mustJSON(l.Metadata),
	)
	return eris.Wrap(err, "postgres: save listing")
}

func scanListing(row pgx.Row) (*model.Listing, error) {
	var l model.Listing
	var status string
	var metadata []byte
	err := row.Scan(&l.ID, &l.AgencyID, &l.Address, &l.SellerName, &l.Price, &l.AssignedAgent, &status, &l.Notes, &l.CreatedAt, &metadata)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan listing")
	}
	l.Status = model.ListingStatus(status)
	l.Metadata = fromJSON[map[string]string](metadata)
	return &l, nil
}

const listingColumns = `id, agency_id, address, seller_name, price, assigned_agent, status, notes, created_at, metadata`

func (s *PostgresStore) GetListing(ctx context.Context, agencyID, id string) (*model.Listing, error) {
	return scanListing(s.pool.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE agency_id = $1 AND id = $2`, agencyID, id,
	))
}

func (s *PostgresStore) FindListingByAddress(ctx context.Context, agencyID, address string) (*model.Listing, error) {
	return scanListing(s.pool.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE agency_id = $1 AND lower(address) = lower($2) LIMIT 1`, agencyID, address,
	))
}

func (s *PostgresStore) ListListings(ctx context.Context, scope Scope) ([]model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE agency_id = $1`
	args := []any{scope.AgencyID}
	if !scope.All() {
		query += ` AND assigned_agent = $2`
		args = append(args, scope.UserID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list listings")
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, eris.Wrap(rows.Err(), "postgres: list listings")
}

func (s *PostgresStore) UpdateListingStatus(ctx context.Context, agencyID, id string, status model.ListingStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE listings SET status = $1 WHERE agency_id = $2 AND id = $3`,
		string(status), agencyID, id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update listing status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SaveOffer(ctx context.Context, o model.Offer) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO offers (id, agency_id, listing_id, buyer_name, price, down_payment, earnest_money, financing,
		                     inspection_period, contingencies, closing_date, status, assigned_to, created_at, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 ON CONFLICT (id) DO UPDATE SET listing_id = $3, buyer_name = $4, price = $5, down_payment = $6,
		     earnest_money = $7, financing = $8, inspection_period = $9, contingencies = $10,
		     closing_date = $11, status = $12, assigned_to = $13, metadata = $15`,
		o.ID, o.AgencyID, o.ListingID, o.BuyerName, o.Price, o.DownPayment, o.EarnestMoney, string(o.Financing),
		o.InspectionPeriod, mustJSON(o.Contingencies), o.ClosingDate, string(o.Status), o.AssignedTo, o.CreatedAt, mustJSON(o.Metadata),
	)
	return eris.Wrap(err, "postgres: save offer")
}

const offerColumns = `id, agency_id, listing_id, buyer_name, price, down_payment, earnest_money, financing,
	inspection_period, contingencies, closing_date, status, assigned_to, created_at, metadata`

func scanOffer(row pgx.Row) (*model.Offer, error) {
	var o model.Offer
	var financing, status string
	var contingencies, metadata []byte
	err := row.Scan(&o.ID, &o.AgencyID, &o.ListingID, &o.BuyerName, &o.Price, &o.DownPayment, &o.EarnestMoney, &financing,
		&o.InspectionPeriod, &contingencies, &o.ClosingDate, &status, &o.AssignedTo, &o.CreatedAt, &metadata)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan offer")
	}
	o.Financing = model.Financing(financing)
	o.Status = model.OfferStatus(status)
	o.Contingencies = fromJSON[[]string](contingencies)
	o.Metadata = fromJSON[map[string]string](metadata)
	return &o, nil
}

func (s *PostgresStore) GetOffer(ctx context.Context, agencyID, id string) (*model.Offer, error) {
	return scanOffer(s.pool.QueryRow(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE agency_id = $1 AND id = $2`, agencyID, id,
	))
}

func (s *PostgresStore) ListOffers(ctx context.Context, scope Scope) ([]model.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE agency_id = $1`
	args := []any{scope.AgencyID}
	if !scope.All() {
		query += ` AND assigned_to = $2`
		args = append(args, scope.UserID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list offers")
	}
	defer rows.Close()

	var offers []model.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, *o)
	}
	return offers, eris.Wrap(rows.Err(), "postgres: list offers")
}

func (s *PostgresStore) SaveTask(ctx context.Context, t model.Task) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tasks (id, agency_id, title, assigned_to, due_date, status, priority, created_at, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET title = $3, assigned_to = $4, due_date = $5, status = $6, priority = $7, metadata = $9`,
		t.ID, t.AgencyID, t.Title, t.AssignedTo, t.DueDate, string(t.Status), string(t.Priority), t.CreatedAt, mustJSON(t.Metadata),
	)
	return eris.Wrap(err, "postgres: save task")
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var t model.Task
	var status, priority string
	var metadata []byte
	err := row.Scan(&t.ID, &t.AgencyID, &t.Title, &t.AssignedTo, &t.DueDate, &status, &priority, &t.CreatedAt, &metadata)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan task")
	}
	t.Status = model.TaskStatus(status)
	t.Priority = model.TaskPriority(priority)
	t.Metadata = fromJSON[map[string]string](metadata)
	return &t, nil
}

const taskColumns = `id, agency_id, title, assigned_to, due_date, status, priority, created_at, metadata`

func (s *PostgresStore) GetTask(ctx context.Context, agencyID, id string) (*model.Task, error) {
	return scanTask(s.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE agency_id = $1 AND id = $2`, agencyID, id,
	))
}

func (s *PostgresStore) ListTasks(ctx context.Context, scope Scope) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE agency_id = $1`
	args := []any{scope.AgencyID}
	if !scope.All() {
		query += ` AND assigned_to = $2`
		args = append(args, scope.UserID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list tasks")
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, eris.Wrap(rows.Err(), "postgres: list tasks")
}

func (s *PostgresStore) SaveThread(ctx context.Context, t model.Thread) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO threads (id, agency_id, title, type, related_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET title = $3, type = $4, related_id = $5`,
		t.ID, t.AgencyID, t.Title, string(t.Type), t.RelatedID, t.CreatedAt,
	)
	return eris.Wrap(err, "postgres: save thread")
}

func (s *PostgresStore) ListThreads(ctx context.Context, agencyID string) ([]model.Thread, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, agency_id, title, type, related_id, created_at FROM threads WHERE agency_id = $1 ORDER BY created_at`, agencyID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list threads")
	}
	defer rows.Close()

	var threads []model.Thread
	for rows.Next() {
		var t model.Thread
		var typ string
		if err := rows.Scan(&t.ID, &t.AgencyID, &t.Title, &typ, &t.RelatedID, &t.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan thread")
		}
		t.Type = model.ThreadType(typ)
		threads = append(threads, t)
	}
	return threads, eris.Wrap(rows.Err(), "postgres: list threads")
}

func (s *PostgresStore) AppendMessage(ctx context.Context, m model.Message) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO messages (id, thread_id, sender_id, text, ts) VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.ThreadID, m.SenderID, m.Text, m.Timestamp,
	)
	return eris.Wrap(err, "postgres: append message")
}

func (s *PostgresStore) ListMessages(ctx context.Context, threadID string) ([]model.Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, thread_id, sender_id, text, ts FROM messages WHERE thread_id = $1 ORDER BY ts`, threadID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list messages")
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.SenderID, &m.Text, &m.Timestamp); err != nil {
			return nil, eris.Wrap(err, "postgres: scan message")
		}
		msgs = append(msgs, m)
	}
	return msgs, eris.Wrap(rows.Err(), "postgres: list messages")
}

func (s *PostgresStore) LogActivity(ctx context.Context, a model.Activity) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO activity (id, agency_id, user_id, action, target, type, ts) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.AgencyID, a.UserID, a.Action, a.Target, string(a.Type), a.Timestamp,
	)
	return eris.Wrap(err, "postgres: log activity")
}

func (s *PostgresStore) ListActivity(ctx context.Context, agencyID string, limit int) ([]model.Activity, error) {
	if limit <= 0 || limit > activityCap {
		limit = activityCap
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, agency_id, user_id, action, target, type, ts FROM activity WHERE agency_id = $1 ORDER BY ts DESC LIMIT $2`,
		agencyID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list activity")
	}
	defer rows.Close()

	var acts []model.Activity
	for rows.Next() {
		var a model.Activity
		var typ string
		if err := rows.Scan(&a.ID, &a.AgencyID, &a.UserID, &a.Action, &a.Target, &typ, &a.Timestamp); err != nil {
			return nil, eris.Wrap(err, "postgres: scan activity")
		}
		a.Type = model.ActivityType(typ)
		acts = append(acts, a)
	}
	return acts, eris.Wrap(rows.Err(), "postgres: list activity")
}

func (s *PostgresStore) PushNotification(ctx context.Context, n model.Notification) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO notifications (id, agency_id, user_id, title, message, read, ts) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.AgencyID, n.UserID, n.Title, n.Message, n.Read, n.Timestamp,
	)
	return eris.Wrap(err, "postgres: push notification")
}

func (s *PostgresStore) ListNotifications(ctx context.Context, agencyID, userID string) ([]model.Notification, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, agency_id, user_id, title, message, read, ts FROM notifications
		 WHERE agency_id = $1 AND user_id = $2 ORDER BY ts DESC LIMIT 100`,
		agencyID, userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list notifications")
	}
	defer rows.Close()

	var notifs []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.AgencyID, &n.UserID, &n.Title, &n.Message, &n.Read, &n.Timestamp); err != nil {
			return nil, eris.Wrap(err, "postgres: scan notification")
		}
		notifs = append(notifs, n)
	}
	return notifs, eris.Wrap(rows.Err(), "postgres: list notifications")
}

func (s *PostgresStore) MarkNotificationsRead(ctx context.Context, agencyID, userID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE agency_id = $1 AND user_id = $2`,
		agencyID, userID,
	)
	return eris.Wrap(err, "postgres: mark notifications read")
}
