package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gotrs-io/gotrs-desk/internal/models"
	"github.com/gotrs-io/gotrs-desk/internal/repository"
	"github.com/gotrs-io/gotrs-desk/internal/ticketquery"
)

// ErrCallerNotFound means the requesting agent does not exist in the tenant.
var ErrCallerNotFound = errors.New("caller not found")

// IdentityResolver resolves the agent a request runs as.
type IdentityResolver interface {
	Resolve(ctx context.Context, companyID, userID uint) (ticketquery.Caller, error)
}

// UserLookup reads agents and their queue memberships.
type UserLookup interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	QueueIDs(ctx context.Context, userID uint) ([]uint, error)
}

// UserIdentityResolver resolves callers from the users table.
type UserIdentityResolver struct {
	users UserLookup
}

// NewUserIdentityResolver creates a resolver over users.
func NewUserIdentityResolver(users UserLookup) *UserIdentityResolver {
	return &UserIdentityResolver{users: users}
}

// Resolve loads the agent with its profile and queue memberships. Agents of
// another company are reported as ErrCallerNotFound.
func (r *UserIdentityResolver) Resolve(ctx context.Context, companyID, userID uint) (ticketquery.Caller, error) {
	user, err := r.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ticketquery.Caller{}, ErrCallerNotFound
	}
	if err != nil {
		return ticketquery.Caller{}, fmt.Errorf("failed to resolve caller: %w", err)
	}
	if user.CompanyID != companyID {
		return ticketquery.Caller{}, ErrCallerNotFound
	}

	queues, err := r.users.QueueIDs(ctx, user.ID)
	if err != nil {
		return ticketquery.Caller{}, fmt.Errorf("failed to resolve caller queues: %w", err)
	}

	return ticketquery.Caller{
		ID:        user.ID,
		CompanyID: user.CompanyID,
		Profile:   user.Profile,
		QueueIDs:  queues,
	}, nil
}
