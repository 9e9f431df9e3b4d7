package repository

import (
	"fmt"
	"strings"

	"github.com/gotrs-io/gotrs-desk/internal/database"
	"github.com/gotrs-io/gotrs-desk/internal/ticketquery"
)

// ticketColumns maps query fields to columns of the listing joins.
var ticketColumns = map[ticketquery.Field]string{
	ticketquery.FieldID:            "t.id",
	ticketquery.FieldCompany:       "t.company_id",
	ticketquery.FieldUser:          "t.user_id",
	ticketquery.FieldQueue:         "t.queue_id",
	ticketquery.FieldStatus:        "t.status",
	ticketquery.FieldIsGroup:       "t.is_group",
	ticketquery.FieldUnread:        "t.unread_messages",
	ticketquery.FieldCreatedAt:     "t.created_at",
	ticketquery.FieldUpdatedAt:     "t.updated_at",
	ticketquery.FieldContact:       "t.contact_id",
	ticketquery.FieldWhatsapp:      "t.whatsapp_id",
	ticketquery.FieldContactName:   "c.name",
	ticketquery.FieldContactNumber: "c.number",
	ticketquery.FieldMessageBody:   "m.body",
}

// fieldRelations lists the fields that live on a joined table.
var fieldRelations = map[ticketquery.Field]ticketquery.Relation{
	ticketquery.FieldContactName:   ticketquery.RelationContact,
	ticketquery.FieldContactNumber: ticketquery.RelationContact,
	ticketquery.FieldMessageBody:   ticketquery.RelationMessages,
}

// joinTables holds the table and ON condition of each joinable relation.
// Tags are hydrated by a separate lookup.
var joinTables = map[ticketquery.Relation]string{
	ticketquery.RelationContact:  "contacts c ON c.id = t.contact_id",
	ticketquery.RelationQueue:    "queues q ON q.id = t.queue_id",
	ticketquery.RelationUser:     "users u ON u.id = t.user_id",
	ticketquery.RelationWhatsapp: "whatsapps w ON w.id = t.whatsapp_id",
	ticketquery.RelationMessages: "messages m ON m.ticket_id = t.id",
}

func column(f ticketquery.Field) (string, error) {
	col, ok := ticketColumns[f]
	if !ok {
		return "", fmt.Errorf("unknown ticket field %q", f)
	}
	return col, nil
}

// renderExpr translates a condition into a `?` placeholder SQL fragment.
// Slice arguments are expanded later by sqlx.In.
func renderExpr(e ticketquery.Expr) (string, []interface{}, error) {
	switch n := e.(type) {
	case ticketquery.Eq:
		col, err := column(n.Field)
		if err != nil {
			return "", nil, err
		}
		return col + " = ?", []interface{}{n.Value}, nil

	case ticketquery.In:
		if len(n.Values) == 0 {
			return "1 = 0", nil, nil
		}
		col, err := column(n.Field)
		if err != nil {
			return "", nil, err
		}
		return col + " IN (?)", []interface{}{n.Values}, nil

	case ticketquery.IsNull:
		col, err := column(n.Field)
		if err != nil {
			return "", nil, err
		}
		return col + " IS NULL", nil, nil

	case ticketquery.Gt:
		col, err := column(n.Field)
		if err != nil {
			return "", nil, err
		}
		return col + " > ?", []interface{}{n.Value}, nil

	case ticketquery.Between:
		col, err := column(n.Field)
		if err != nil {
			return "", nil, err
		}
		return col + " BETWEEN ? AND ?", []interface{}{n.From, n.To}, nil

	case ticketquery.Contains:
		col, err := column(n.Field)
		if err != nil {
			return "", nil, err
		}
		if n.FoldCase {
			return "LOWER(" + col + ") LIKE ?", []interface{}{"%" + strings.ToLower(n.Term) + "%"}, nil
		}
		return col + " LIKE ?", []interface{}{"%" + n.Term + "%"}, nil

	case ticketquery.Or:
		return renderGroup([]ticketquery.Expr(n), " OR ", "1 = 0")

	case ticketquery.And:
		return renderGroup([]ticketquery.Expr(n), " AND ", "1 = 1")

	case ticketquery.Never:
		return "1 = 0", nil, nil
	}
	return "", nil, fmt.Errorf("unsupported condition %T", e)
}

func renderGroup(parts []ticketquery.Expr, sep, empty string) (string, []interface{}, error) {
	if len(parts) == 0 {
		return empty, nil, nil
	}
	if len(parts) == 1 {
		return renderExpr(parts[0])
	}
	clauses := make([]string, 0, len(parts))
	var args []interface{}
	for _, part := range parts {
		clause, partArgs, err := renderExpr(part)
		if err != nil {
			return "", nil, err
		}
		clauses = append(clauses, clause)
		args = append(args, partArgs...)
	}
	return "(" + strings.Join(clauses, sep) + ")", args, nil
}

// relationsIn returns the joined relations whose fields e references.
func relationsIn(e ticketquery.Expr, into map[ticketquery.Relation]bool) {
	var field ticketquery.Field
	switch n := e.(type) {
	case ticketquery.Eq:
		field = n.Field
	case ticketquery.In:
		field = n.Field
	case ticketquery.IsNull:
		field = n.Field
	case ticketquery.Gt:
		field = n.Field
	case ticketquery.Between:
		field = n.Field
	case ticketquery.Contains:
		field = n.Field
	case ticketquery.Or:
		for _, part := range n {
			relationsIn(part, into)
		}
		return
	case ticketquery.And:
		for _, part := range n {
			relationsIn(part, into)
		}
		return
	default:
		return
	}
	if rel, ok := fieldRelations[field]; ok {
		into[rel] = true
	}
}

// applyQuery adds the joins and conditions of q to sb. With hydrate set every
// joinable relation is joined, otherwise only those the conditions reference.
func applyQuery(sb *database.SelectBuilder, q ticketquery.Query, hydrate bool) error {
	needed := make(map[ticketquery.Relation]bool)
	for _, clause := range q.Where() {
		relationsIn(clause, needed)
	}

	for _, j := range q.Joins() {
		table, ok := joinTables[j.Relation]
		if !ok {
			continue
		}
		if !hydrate && !needed[j.Relation] {
			continue
		}

		on := table
		var args []interface{}
		if j.Match != nil {
			clause, matchArgs, err := renderExpr(j.Match)
			if err != nil {
				return fmt.Errorf("join %s: %w", j.Relation, err)
			}
			on += " AND " + clause
			args = matchArgs
		}
		if j.Required {
			sb.Join(on, args...)
		} else {
			sb.LeftJoin(on, args...)
		}
	}

	for _, clause := range q.Where() {
		sqlClause, args, err := renderExpr(clause)
		if err != nil {
			return err
		}
		sb.Where(sqlClause, args...)
	}
	return nil
}

func orderClauses(q ticketquery.Query) ([]string, error) {
	out := make([]string, 0, len(q.Order()))
	for _, o := range q.Order() {
		col, err := column(o.Field)
		if err != nil {
			return nil, err
		}
		if o.Desc {
			col += " DESC"
		} else {
			col += " ASC"
		}
		out = append(out, col)
	}
	return out, nil
}
