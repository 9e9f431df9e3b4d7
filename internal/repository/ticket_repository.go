package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gotrs-io/gotrs-desk/internal/database"
	"github.com/gotrs-io/gotrs-desk/internal/models"
	"github.com/gotrs-io/gotrs-desk/internal/ticketquery"
)

// TicketRepository evaluates listing queries against the SQL ticket tables.
type TicketRepository struct {
	qb *database.QueryBuilder
}

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository(qb *database.QueryBuilder) *TicketRepository {
	return &TicketRepository{qb: qb}
}

var _ ticketquery.Store = (*TicketRepository)(nil)

var pageColumns = []string{
	"t.id AS id",
	"t.company_id AS company_id",
	"t.contact_id AS contact_id",
	"t.user_id AS user_id",
	"t.queue_id AS queue_id",
	"t.whatsapp_id AS whatsapp_id",
	"t.status AS status",
	"t.is_group AS is_group",
	"t.unread_messages AS unread_messages",
	"t.created_at AS created_at",
	"t.updated_at AS updated_at",
	"c.name AS contact_name",
	"c.number AS contact_number",
	"c.email AS contact_email",
	"c.profile_pic_url AS contact_profile_pic_url",
	"c.accept_audio_message AS contact_accept_audio",
	"c.active AS contact_active",
	"q.name AS queue_name",
	"q.color AS queue_color",
	"u.name AS user_name",
	"w.name AS whatsapp_name",
	"w.expires_ticket AS whatsapp_expires_ticket",
}

// ticketRow is one page row as returned by the join; nullable columns come
// from optional relations.
type ticketRow struct {
	ID             uint          `db:"id"`
	CompanyID      uint          `db:"company_id"`
	ContactID      uint          `db:"contact_id"`
	UserID         sql.NullInt64 `db:"user_id"`
	QueueID        sql.NullInt64 `db:"queue_id"`
	WhatsappID     sql.NullInt64 `db:"whatsapp_id"`
	Status         string        `db:"status"`
	IsGroup        bool          `db:"is_group"`
	UnreadMessages int           `db:"unread_messages"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`

	ContactName        sql.NullString `db:"contact_name"`
	ContactNumber      sql.NullString `db:"contact_number"`
	ContactEmail       sql.NullString `db:"contact_email"`
	ContactProfilePic  sql.NullString `db:"contact_profile_pic_url"`
	ContactAcceptAudio sql.NullBool   `db:"contact_accept_audio"`
	ContactActive      sql.NullBool   `db:"contact_active"`

	QueueName  sql.NullString `db:"queue_name"`
	QueueColor sql.NullString `db:"queue_color"`

	UserName sql.NullString `db:"user_name"`

	WhatsappName    sql.NullString `db:"whatsapp_name"`
	WhatsappExpires sql.NullInt64  `db:"whatsapp_expires_ticket"`
}

func nullID(v sql.NullInt64) *uint {
	if !v.Valid {
		return nil
	}
	id := uint(v.Int64)
	return &id
}

// toTicket projects a joined row onto the ticket entity.
func (r ticketRow) toTicket() models.Ticket {
	t := models.Ticket{
		ID:             r.ID,
		CompanyID:      r.CompanyID,
		ContactID:      r.ContactID,
		UserID:         nullID(r.UserID),
		QueueID:        nullID(r.QueueID),
		WhatsappID:     nullID(r.WhatsappID),
		Status:         r.Status,
		IsGroup:        r.IsGroup,
		UnreadMessages: r.UnreadMessages,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		Tags:           []models.Tag{},
	}
	if r.ContactName.Valid {
		t.Contact = &models.Contact{
			ID:                 r.ContactID,
			Name:               r.ContactName.String,
			Number:             r.ContactNumber.String,
			Email:              r.ContactEmail.String,
			ProfilePicURL:      r.ContactProfilePic.String,
			AcceptAudioMessage: r.ContactAcceptAudio.Bool,
			Active:             r.ContactActive.Bool,
		}
	}
	if t.QueueID != nil && r.QueueName.Valid {
		t.Queue = &models.QueueSummary{ID: *t.QueueID, Name: r.QueueName.String, Color: r.QueueColor.String}
	}
	if t.UserID != nil && r.UserName.Valid {
		t.User = &models.UserSummary{ID: *t.UserID, Name: r.UserName.String}
	}
	if t.WhatsappID != nil && r.WhatsappName.Valid {
		t.Whatsapp = &models.Whatsapp{ID: *t.WhatsappID, Name: r.WhatsappName.String, ExpiresTicket: int(r.WhatsappExpires.Int64)}
	}
	return t
}

// CountTickets returns the number of distinct tickets matching q.
func (r *TicketRepository) CountTickets(ctx context.Context, q ticketquery.Query) (int, error) {
	sb := r.qb.NewSelect("COUNT(DISTINCT t.id)").From("tickets t")
	if err := applyQuery(sb, q, false); err != nil {
		return 0, fmt.Errorf("build ticket count: %w", err)
	}

	var count int
	if err := sb.GetContext(ctx, &count); err != nil {
		return 0, fmt.Errorf("count tickets: %w", err)
	}
	return count, nil
}

// FindTickets returns one page of distinct tickets matching q with contact,
// queue, agent, channel and tags hydrated.
func (r *TicketRepository) FindTickets(ctx context.Context, q ticketquery.Query, limit, offset int) ([]models.Ticket, error) {
	sb := r.qb.NewSelect(pageColumns...).Distinct().From("tickets t")
	if err := applyQuery(sb, q, true); err != nil {
		return nil, fmt.Errorf("build ticket page: %w", err)
	}
	order, err := orderClauses(q)
	if err != nil {
		return nil, fmt.Errorf("build ticket page: %w", err)
	}
	sb.OrderBy(order...).Limit(limit).Offset(offset)

	var rows []ticketRow
	if err := sb.SelectContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("select tickets: %w", err)
	}

	tickets := make([]models.Ticket, 0, len(rows))
	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		tickets = append(tickets, row.toTicket())
		ids = append(ids, row.ID)
	}

	if q.HasJoin(ticketquery.RelationTags) && len(ids) > 0 {
		tags, err := r.tagsByTicket(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range tickets {
			if list, ok := tags[tickets[i].ID]; ok {
				tickets[i].Tags = list
			}
		}
	}
	return tickets, nil
}

type ticketTagRow struct {
	TicketID uint   `db:"ticket_id"`
	ID       uint   `db:"id"`
	Name     string `db:"name"`
	Color    string `db:"color"`
}

// tagsByTicket loads the tags of the given tickets in one query.
func (r *TicketRepository) tagsByTicket(ctx context.Context, ticketIDs []uint) (map[uint][]models.Tag, error) {
	var rows []ticketTagRow
	err := r.qb.NewSelect("tt.ticket_id AS ticket_id", "tg.id AS id", "tg.name AS name", "tg.color AS color").
		From("ticket_tags tt").
		Join("tags tg ON tg.id = tt.tag_id").
		WhereIn("tt.ticket_id", ticketIDs).
		OrderBy("tt.ticket_id", "tg.name", "tg.id").
		SelectContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("select ticket tags: %w", err)
	}

	out := make(map[uint][]models.Tag, len(ticketIDs))
	for _, row := range rows {
		out[row.TicketID] = append(out[row.TicketID], models.Tag{ID: row.ID, Name: row.Name, Color: row.Color})
	}
	return out, nil
}
