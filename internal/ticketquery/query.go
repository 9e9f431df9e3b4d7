package ticketquery

// Relation names an entity joined to the ticket row.
type Relation string

const (
	RelationContact  Relation = "contact"
	RelationQueue    Relation = "queue"
	RelationUser     Relation = "user"
	RelationWhatsapp Relation = "whatsapp"
	RelationTags     Relation = "tags"
	RelationMessages Relation = "messages"
)

// Join describes one joined relation. A non-required join keeps tickets that
// have no matching related row; Match restricts which related rows join.
type Join struct {
	Relation Relation
	Required bool
	Match    Expr
}

// Order is one ORDER BY term.
type Order struct {
	Field Field
	Desc  bool
}

// Query is the immutable description of a ticket listing: the ANDed
// conditions, the joins needed to evaluate and hydrate them, and the order.
// Methods that extend a Query return a copy.
type Query struct {
	where []Expr
	joins []Join
	order []Order
}

// NewQuery builds a Query from its parts.
func NewQuery(where []Expr, joins []Join, order []Order) Query {
	return Query{
		where: append([]Expr(nil), where...),
		joins: append([]Join(nil), joins...),
		order: append([]Order(nil), order...),
	}
}

// Where returns the ANDed conditions.
func (q Query) Where() []Expr {
	return append([]Expr(nil), q.where...)
}

// Joins returns the join specifications.
func (q Query) Joins() []Join {
	return append([]Join(nil), q.joins...)
}

// Order returns the ordering terms.
func (q Query) Order() []Order {
	return append([]Order(nil), q.order...)
}

// HasJoin reports whether rel is joined.
func (q Query) HasJoin(rel Relation) bool {
	for _, j := range q.joins {
		if j.Relation == rel {
			return true
		}
	}
	return false
}

// With returns a copy of q with clause ANDed on.
func (q Query) With(clause Expr) Query {
	where := make([]Expr, 0, len(q.where)+1)
	where = append(where, q.where...)
	where = append(where, clause)
	return Query{where: where, joins: q.joins, order: q.order}
}

// Restrict returns a copy of q limited to the ticket ids in set. An empty set
// restricts to nothing.
func (q Query) Restrict(set IDSet) Query {
	if set.Len() == 0 {
		return q.With(Never{})
	}
	return q.With(In{Field: FieldID, Values: set.Sorted()})
}

// MatchesNothing reports whether a top level clause can never match, so the
// store does not need to be asked.
func (q Query) MatchesNothing() bool {
	for _, clause := range q.where {
		switch c := clause.(type) {
		case Never:
			return true
		case In:
			if len(c.Values) == 0 {
				return true
			}
		}
	}
	return false
}
