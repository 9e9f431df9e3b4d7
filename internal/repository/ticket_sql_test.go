package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotrs-io/gotrs-desk/internal/database"
	"github.com/gotrs-io/gotrs-desk/internal/models"
	"github.com/gotrs-io/gotrs-desk/internal/ticketquery"
)

func TestRenderExpr(t *testing.T) {
	from := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	to := from.Add(24*time.Hour - time.Millisecond)

	tests := []struct {
		name     string
		expr     ticketquery.Expr
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:     "eq",
			expr:     ticketquery.Eq{Field: ticketquery.FieldCompany, Value: uint(1)},
			wantSQL:  "t.company_id = ?",
			wantArgs: []interface{}{uint(1)},
		},
		{
			name:     "in",
			expr:     ticketquery.In{Field: ticketquery.FieldQueue, Values: []uint{1, 2}},
			wantSQL:  "t.queue_id IN (?)",
			wantArgs: []interface{}{[]uint{1, 2}},
		},
		{
			name:    "empty in never matches",
			expr:    ticketquery.In{Field: ticketquery.FieldQueue},
			wantSQL: "1 = 0",
		},
		{
			name:    "is null",
			expr:    ticketquery.IsNull{Field: ticketquery.FieldQueue},
			wantSQL: "t.queue_id IS NULL",
		},
		{
			name:     "gt",
			expr:     ticketquery.Gt{Field: ticketquery.FieldUnread, Value: 0},
			wantSQL:  "t.unread_messages > ?",
			wantArgs: []interface{}{0},
		},
		{
			name:     "between",
			expr:     ticketquery.Between{Field: ticketquery.FieldUpdatedAt, From: from, To: to},
			wantSQL:  "t.updated_at BETWEEN ? AND ?",
			wantArgs: []interface{}{from, to},
		},
		{
			name:     "contains folded",
			expr:     ticketquery.Contains{Field: ticketquery.FieldContactName, Term: "Silva", FoldCase: true},
			wantSQL:  "LOWER(c.name) LIKE ?",
			wantArgs: []interface{}{"%silva%"},
		},
		{
			name:     "contains exact",
			expr:     ticketquery.Contains{Field: ticketquery.FieldContactNumber, Term: "5511"},
			wantSQL:  "c.number LIKE ?",
			wantArgs: []interface{}{"%5511%"},
		},
		{
			name: "or group",
			expr: ticketquery.Or{
				ticketquery.In{Field: ticketquery.FieldQueue, Values: []uint{3}},
				ticketquery.IsNull{Field: ticketquery.FieldQueue},
			},
			wantSQL:  "(t.queue_id IN (?) OR t.queue_id IS NULL)",
			wantArgs: []interface{}{[]uint{3}},
		},
		{
			name: "and group",
			expr: ticketquery.And{
				ticketquery.Eq{Field: ticketquery.FieldStatus, Value: "open"},
				ticketquery.Eq{Field: ticketquery.FieldIsGroup, Value: true},
			},
			wantSQL:  "(t.status = ? AND t.is_group = ?)",
			wantArgs: []interface{}{"open", true},
		},
		{
			name:    "single branch group is unwrapped",
			expr:    ticketquery.Or{ticketquery.IsNull{Field: ticketquery.FieldUser}},
			wantSQL: "t.user_id IS NULL",
		},
		{
			name:    "empty or never matches",
			expr:    ticketquery.Or{},
			wantSQL: "1 = 0",
		},
		{
			name:    "never",
			expr:    ticketquery.Never{},
			wantSQL: "1 = 0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := renderExpr(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestRenderExpr_UnknownField(t *testing.T) {
	_, _, err := renderExpr(ticketquery.Eq{Field: "ticket.title", Value: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown ticket field")
}

func newMockQueryBuilder(t *testing.T) *database.QueryBuilder {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	qb, err := database.NewQueryBuilder(db, "sqlite3")
	require.NoError(t, err)
	return qb
}

func TestApplyQuery_CountJoinsOnlyReferencedRelations(t *testing.T) {
	qb := newMockQueryBuilder(t)
	caller := ticketquery.Caller{ID: 5, CompanyID: 1, Profile: models.ProfileUser}

	plain := qb.NewSelect("COUNT(DISTINCT t.id)").From("tickets t")
	require.NoError(t, applyQuery(plain, ticketquery.Compose(ticketquery.Filter{}, caller), false))
	query, args, err := plain.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(DISTINCT t.id) FROM tickets t WHERE t.company_id = ? AND t.user_id = ?", query)
	assert.Equal(t, []interface{}{uint(1), uint(5)}, args)

	search := qb.NewSelect("COUNT(DISTINCT t.id)").From("tickets t")
	require.NoError(t, applyQuery(search, ticketquery.Compose(ticketquery.Filter{Search: "silva"}, caller), false))
	query, args, err = search.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(DISTINCT t.id) FROM tickets t"+
		" LEFT JOIN contacts c ON c.id = t.contact_id"+
		" LEFT JOIN messages m ON m.ticket_id = t.id AND LOWER(m.body) LIKE ?"+
		" WHERE t.company_id = ? AND t.user_id = ?"+
		" AND (LOWER(c.name) LIKE ? OR c.number LIKE ? OR LOWER(m.body) LIKE ?)", query)
	assert.Equal(t, []interface{}{"%silva%", uint(1), uint(5), "%silva%", "%silva%", "%silva%"}, args)
}

func TestApplyQuery_PageJoinsEveryRelation(t *testing.T) {
	qb := newMockQueryBuilder(t)
	caller := ticketquery.Caller{ID: 1, CompanyID: 1, Profile: models.ProfileAdmin, QueueIDs: []uint{2, 3}}
	q := ticketquery.Compose(ticketquery.Filter{}, caller)

	sb := qb.NewSelect("t.id").Distinct().From("tickets t")
	require.NoError(t, applyQuery(sb, q, true))
	order, err := orderClauses(q)
	require.NoError(t, err)
	sb.OrderBy(order...).Limit(40).Offset(0)

	query, args, err := sb.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT DISTINCT t.id FROM tickets t"+
		" LEFT JOIN contacts c ON c.id = t.contact_id"+
		" LEFT JOIN queues q ON q.id = t.queue_id"+
		" LEFT JOIN users u ON u.id = t.user_id"+
		" LEFT JOIN whatsapps w ON w.id = t.whatsapp_id"+
		" WHERE t.company_id = ? AND (t.queue_id IN (?, ?) OR t.queue_id IS NULL) AND t.status = ?"+
		" ORDER BY t.updated_at DESC, t.id DESC LIMIT ? OFFSET ?", query)
	assert.Equal(t, []interface{}{uint(1), uint(2), uint(3), "pending", 40, 0}, args)
}
