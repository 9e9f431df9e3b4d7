package ticketquery

import "github.com/gotrs-io/gotrs-desk/internal/models"

// Caller is the resolved identity a listing runs as.
type Caller struct {
	ID        uint
	CompanyID uint
	Profile   string
	QueueIDs  []uint
}

// IsAdmin reports whether the caller has the administrator profile.
func (c Caller) IsAdmin() bool {
	return c.Profile == models.ProfileAdmin
}

// DefaultOrder is the listing order: most recently updated first, ticket id
// breaking ties so pages stay stable.
var DefaultOrder = []Order{
	{Field: FieldUpdatedAt, Desc: true},
	{Field: FieldID, Desc: true},
}

var hydrationJoins = []Join{
	{Relation: RelationContact},
	{Relation: RelationQueue},
	{Relation: RelationUser},
	{Relation: RelationWhatsapp},
	{Relation: RelationTags},
}

// Compose builds the listing query for caller from f. It performs no I/O; tag
// and assignee membership are applied afterwards by a Resolver.
func Compose(f Filter, caller Caller) Query {
	where := []Expr{Eq{Field: FieldCompany, Value: caller.CompanyID}}

	switch {
	case f.WithUnreadMessages:
		where = append(where,
			Or{
				Eq{Field: FieldUser, Value: caller.ID},
				Eq{Field: FieldStatus, Value: models.TicketStatusPending},
			},
			queueScope(caller.QueueIDs),
			Gt{Field: FieldUnread, Value: 0},
		)
	case caller.IsAdmin():
		where = append(where, queueScope(visibleQueues(f.QueueIDs, caller.QueueIDs)))
		if !f.ShowAll && f.Status == "" {
			where = append(where, Eq{Field: FieldStatus, Value: models.TicketStatusPending})
		}
	default:
		where = append(where, Eq{Field: FieldUser, Value: caller.ID})
	}

	if f.Status != "" {
		where = append(where, Eq{Field: FieldStatus, Value: f.Status})
	}
	if f.IsGroup != nil {
		where = append(where, Eq{Field: FieldIsGroup, Value: *f.IsGroup})
	}
	if f.CreatedIn != nil {
		where = append(where, Between{Field: FieldCreatedAt, From: f.CreatedIn.From, To: f.CreatedIn.To})
	}
	if f.UpdatedIn != nil {
		where = append(where, Between{Field: FieldUpdatedAt, From: f.UpdatedIn.From, To: f.UpdatedIn.To})
	}
	if len(f.ContactIDs) > 0 {
		where = append(where, In{Field: FieldContact, Values: f.ContactIDs})
	}
	if len(f.ConnectionIDs) > 0 {
		where = append(where, In{Field: FieldWhatsapp, Values: f.ConnectionIDs})
	}

	joins := append([]Join(nil), hydrationJoins...)
	if f.Search != "" {
		body := Contains{Field: FieldMessageBody, Term: f.Search, FoldCase: true}
		where = append(where, Or{
			Contains{Field: FieldContactName, Term: f.Search, FoldCase: true},
			Contains{Field: FieldContactNumber, Term: f.Search},
			body,
		})
		joins = append(joins, Join{Relation: RelationMessages, Match: body})
	}

	return NewQuery(where, joins, DefaultOrder)
}

// queueScope matches tickets in one of ids or without a queue.
func queueScope(ids []uint) Expr {
	if len(ids) == 0 {
		return IsNull{Field: FieldQueue}
	}
	return Or{
		In{Field: FieldQueue, Values: append([]uint(nil), ids...)},
		IsNull{Field: FieldQueue},
	}
}

// visibleQueues narrows requested to the permitted queues. Without a request
// every permitted queue is visible.
func visibleQueues(requested, permitted []uint) []uint {
	if len(requested) == 0 {
		return permitted
	}
	allowed := NewIDSet(permitted...)
	out := make([]uint, 0, len(requested))
	for _, id := range requested {
		if allowed.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}
