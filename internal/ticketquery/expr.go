package ticketquery

import "time"

// Field names a ticket attribute or a joined attribute a condition can test.
type Field string

const (
	FieldID            Field = "ticket.id"
	FieldCompany       Field = "ticket.company_id"
	FieldUser          Field = "ticket.user_id"
	FieldQueue         Field = "ticket.queue_id"
	FieldStatus        Field = "ticket.status"
	FieldIsGroup       Field = "ticket.is_group"
	FieldUnread        Field = "ticket.unread_messages"
	FieldCreatedAt     Field = "ticket.created_at"
	FieldUpdatedAt     Field = "ticket.updated_at"
	FieldContact       Field = "ticket.contact_id"
	FieldWhatsapp      Field = "ticket.whatsapp_id"
	FieldContactName   Field = "contact.name"
	FieldContactNumber Field = "contact.number"
	FieldMessageBody   Field = "message.body"
)

// Expr is a node of a composed condition. The concrete node types below are
// the whole vocabulary; stores translate them into their own query language.
type Expr interface {
	expr()
}

// Eq matches Field == Value.
type Eq struct {
	Field Field
	Value interface{}
}

// In matches Field ∈ Values. An empty Values never matches.
type In struct {
	Field  Field
	Values []uint
}

// IsNull matches an absent Field.
type IsNull struct {
	Field Field
}

// Gt matches Field > Value.
type Gt struct {
	Field Field
	Value interface{}
}

// Between matches From <= Field <= To.
type Between struct {
	Field Field
	From  time.Time
	To    time.Time
}

// Contains matches Term as a substring of Field. FoldCase lowers both sides.
type Contains struct {
	Field    Field
	Term     string
	FoldCase bool
}

// Or matches when any branch matches.
type Or []Expr

// And matches when every branch matches.
type And []Expr

// Never matches nothing.
type Never struct{}

func (Eq) expr()       {}
func (In) expr()       {}
func (IsNull) expr()   {}
func (Gt) expr()       {}
func (Between) expr()  {}
func (Contains) expr() {}
func (Or) expr()       {}
func (And) expr()      {}
func (Never) expr()    {}
