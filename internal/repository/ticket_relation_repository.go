package repository

import (
	"context"
	"fmt"

	"github.com/gotrs-io/gotrs-desk/internal/database"
	"github.com/gotrs-io/gotrs-desk/internal/ticketquery"
)

// TicketRelationRepository answers tag and assignee membership lookups.
type TicketRelationRepository struct {
	qb *database.QueryBuilder
}

// NewTicketRelationRepository creates a new relation repository.
func NewTicketRelationRepository(qb *database.QueryBuilder) *TicketRelationRepository {
	return &TicketRelationRepository{qb: qb}
}

var _ ticketquery.RelationStore = (*TicketRelationRepository)(nil)

// TicketIDsByTag returns the ids of the company's tickets carrying tagID.
func (r *TicketRelationRepository) TicketIDsByTag(ctx context.Context, companyID, tagID uint) ([]uint, error) {
	var ids []uint
	err := r.qb.NewSelect("tt.ticket_id").
		Distinct().
		From("ticket_tags tt").
		Join("tickets t ON t.id = tt.ticket_id").
		Where("tt.tag_id = ?", tagID).
		Where("t.company_id = ?", companyID).
		SelectContext(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("tickets by tag %d: %w", tagID, err)
	}
	return ids, nil
}

// TicketIDsByUser returns the ids of the company's tickets assigned to userID.
func (r *TicketRelationRepository) TicketIDsByUser(ctx context.Context, companyID, userID uint) ([]uint, error) {
	var ids []uint
	err := r.qb.NewSelect("id").
		From("tickets").
		Where("user_id = ?", userID).
		Where("company_id = ?", companyID).
		SelectContext(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("tickets by user %d: %w", userID, err)
	}
	return ids, nil
}
