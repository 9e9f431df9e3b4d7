// Package dbtest provides SQLite-backed databases seeded with the listing
// schema for tests.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/gotrs-io/gotrs-desk/internal/database"
	"github.com/gotrs-io/gotrs-desk/internal/database/schema"
)

// NewSQLite opens a private in-memory database with the listing schema
// applied. It is closed when the test finishes.
func NewSQLite(t testing.TB) *database.QueryBuilder {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, database.DriverSQLite, ":memory:", database.PoolOptions{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := schema.Apply(ctx, db, database.DriverSQLite); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	qb, err := database.NewQueryBuilder(db, database.DriverSQLite)
	if err != nil {
		t.Fatalf("query builder: %v", err)
	}
	return qb
}

// Ticket describes a ticket row to insert. Zero ids are stored as NULL and
// zero times default to the fixture clock.
type Ticket struct {
	CompanyID  uint
	ContactID  uint
	UserID     uint
	QueueID    uint
	WhatsappID uint
	Status     string
	IsGroup    bool
	Unread     int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Fixture inserts rows into a test database.
type Fixture struct {
	t   testing.TB
	qb  *database.QueryBuilder
	Now time.Time
}

// NewFixture creates a Fixture writing through qb. Now is a whole second in
// UTC so stored timestamps compare exactly.
func NewFixture(t testing.TB, qb *database.QueryBuilder) *Fixture {
	return &Fixture{t: t, qb: qb, Now: time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)}
}

func (f *Fixture) insert(query string, args ...interface{}) uint {
	f.t.Helper()
	res, err := f.qb.DB().ExecContext(context.Background(), f.qb.Rebind(query), args...)
	if err != nil {
		f.t.Fatalf("insert: %v\n%s", err, query)
	}
	id, err := res.LastInsertId()
	if err != nil {
		f.t.Fatalf("last insert id: %v", err)
	}
	return uint(id)
}

func nullable(id uint) interface{} {
	if id == 0 {
		return nil
	}
	return id
}

// Company inserts a tenant.
func (f *Fixture) Company(name string) uint {
	f.t.Helper()
	return f.insert("INSERT INTO companies (name) VALUES (?)", name)
}

// User inserts an agent with the given profile and queue memberships.
func (f *Fixture) User(companyID uint, name, profile string, queueIDs ...uint) uint {
	f.t.Helper()
	id := f.insert("INSERT INTO users (company_id, name, email, profile) VALUES (?, ?, ?, ?)",
		companyID, name, name+"@example.com", profile)
	for _, q := range queueIDs {
		f.insert("INSERT INTO user_queues (user_id, queue_id) VALUES (?, ?)", id, q)
	}
	return id
}

// Queue inserts a queue.
func (f *Fixture) Queue(companyID uint, name string) uint {
	f.t.Helper()
	return f.insert("INSERT INTO queues (company_id, name, color) VALUES (?, ?, ?)", companyID, name, "#0000ff")
}

// Contact inserts a contact.
func (f *Fixture) Contact(companyID uint, name, number string) uint {
	f.t.Helper()
	return f.insert("INSERT INTO contacts (company_id, name, number, email) VALUES (?, ?, ?, ?)",
		companyID, name, number, "")
}

// Whatsapp inserts a channel connection.
func (f *Fixture) Whatsapp(companyID uint, name string) uint {
	f.t.Helper()
	return f.insert("INSERT INTO whatsapps (company_id, name, expires_ticket) VALUES (?, ?, ?)", companyID, name, 0)
}

// Tag inserts a tag.
func (f *Fixture) Tag(companyID uint, name string) uint {
	f.t.Helper()
	return f.insert("INSERT INTO tags (company_id, name, color) VALUES (?, ?, ?)", companyID, name, "#ff0000")
}

// Ticket inserts a ticket.
func (f *Fixture) Ticket(t Ticket) uint {
	f.t.Helper()
	if t.Status == "" {
		t.Status = "open"
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = f.Now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	return f.insert(`INSERT INTO tickets
		(company_id, contact_id, user_id, queue_id, whatsapp_id, status, is_group, unread_messages, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.CompanyID, t.ContactID, nullable(t.UserID), nullable(t.QueueID), nullable(t.WhatsappID),
		t.Status, t.IsGroup, t.Unread, t.CreatedAt.UTC(), t.UpdatedAt.UTC())
}

// TagTicket attaches tags to a ticket.
func (f *Fixture) TagTicket(ticketID uint, tagIDs ...uint) {
	f.t.Helper()
	for _, tag := range tagIDs {
		f.insert("INSERT INTO ticket_tags (ticket_id, tag_id) VALUES (?, ?)", ticketID, tag)
	}
}

// Message adds a message to a ticket.
func (f *Fixture) Message(ticketID uint, body string) uint {
	f.t.Helper()
	return f.insert("INSERT INTO messages (ticket_id, body) VALUES (?, ?)", ticketID, body)
}
