package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotrs-io/gotrs-desk/internal/database/dbtest"
	"github.com/gotrs-io/gotrs-desk/internal/models"
)

func TestTicketRelationRepository(t *testing.T) {
	qb := dbtest.NewSQLite(t)
	fx := dbtest.NewFixture(t, qb)
	ctx := context.Background()

	acme := fx.Company("acme")
	globex := fx.Company("globex")
	ana := fx.User(acme, "ana", models.ProfileUser)
	bob := fx.User(acme, "bob", models.ProfileUser)
	contact := fx.Contact(acme, "c", "1")
	tag := fx.Tag(acme, "vip")

	t1 := fx.Ticket(dbtest.Ticket{CompanyID: acme, ContactID: contact, UserID: ana})
	t2 := fx.Ticket(dbtest.Ticket{CompanyID: acme, ContactID: contact, UserID: ana})
	t3 := fx.Ticket(dbtest.Ticket{CompanyID: acme, ContactID: contact, UserID: bob})
	foreign := fx.Ticket(dbtest.Ticket{CompanyID: globex, ContactID: contact, UserID: ana})
	fx.TagTicket(t1, tag)
	fx.TagTicket(t3, tag)
	fx.TagTicket(foreign, tag)

	repo := NewTicketRelationRepository(qb)

	byTag, err := repo.TicketIDsByTag(ctx, acme, tag)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{t1, t3}, byTag)

	byUser, err := repo.TicketIDsByUser(ctx, acme, ana)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{t1, t2}, byUser)

	none, err := repo.TicketIDsByTag(ctx, acme, 999)
	require.NoError(t, err)
	assert.Empty(t, none)
}
