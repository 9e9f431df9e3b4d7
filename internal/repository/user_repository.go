package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gotrs-io/gotrs-desk/internal/database"
	"github.com/gotrs-io/gotrs-desk/internal/models"
)

// ErrNotFound is returned when a looked up row does not exist.
var ErrNotFound = errors.New("not found")

// UserRepository reads agents and their queue memberships.
type UserRepository struct {
	qb *database.QueryBuilder
}

// NewUserRepository creates a new user repository.
func NewUserRepository(qb *database.QueryBuilder) *UserRepository {
	return &UserRepository{qb: qb}
}

// FindByID retrieves a user by ID without queue memberships.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.qb.NewSelect("id", "company_id", "name", "email", "profile").
		From("users").
		Where("id = ?", id).
		GetContext(ctx, &user)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &user, nil
}

// QueueIDs returns the queues the user is a member of, ascending.
func (r *UserRepository) QueueIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := r.qb.NewSelect("queue_id").
		From("user_queues").
		Where("user_id = ?", userID).
		OrderBy("queue_id").
		SelectContext(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("queues of user %d: %w", userID, err)
	}
	return ids, nil
}
