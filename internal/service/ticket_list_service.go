// Package service provides business logic services.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gotrs-io/gotrs-desk/internal/metrics"
	"github.com/gotrs-io/gotrs-desk/internal/models"
	"github.com/gotrs-io/gotrs-desk/internal/ticketquery"
)

// TicketListOptions configures a TicketListService.
type TicketListOptions struct {
	// Location is the timezone calendar-day filters are interpreted in.
	Location *time.Location
	// QueryTimeout bounds one listing end to end; zero disables it.
	QueryTimeout time.Duration
	Resolver     ticketquery.ResolverOptions
	Metrics      *metrics.Listing
	Logger       *slog.Logger
}

// TicketListService answers ticket listing requests.
type TicketListService struct {
	identity IdentityResolver
	resolver *ticketquery.Resolver
	executor *ticketquery.Executor
	opts     TicketListOptions
	logger   *slog.Logger
}

// NewTicketListService wires the listing pipeline.
func NewTicketListService(identity IdentityResolver, relations ticketquery.RelationStore, tickets ticketquery.Store, opts TicketListOptions) *TicketListService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &TicketListService{
		identity: identity,
		resolver: ticketquery.NewResolver(relations, opts.Resolver),
		executor: ticketquery.NewExecutor(tickets),
		opts:     opts,
		logger:   logger.With("component", "ticket_list"),
	}
}

// ListTickets resolves the caller, composes the visibility and filter
// conditions, narrows them by tag and assignee membership and returns one
// page of tickets.
func (s *TicketListService) ListTickets(ctx context.Context, req models.TicketListRequest) (*models.TicketListResponse, error) {
	start := time.Now()
	if s.opts.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.QueryTimeout)
		defer cancel()
	}

	resp, err := s.list(ctx, req)
	s.opts.Metrics.Observe(outcome(err), time.Since(start), len(respTickets(resp)))
	if err != nil {
		level := slog.LevelError
		if errors.Is(err, ErrCallerNotFound) || isValidation(err) {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "ticket listing failed",
			"company_id", req.CompanyID, "user_id", req.UserID, "error", err)
		return nil, err
	}

	s.logger.Debug("ticket listing served",
		"company_id", req.CompanyID, "user_id", req.UserID,
		"count", resp.Count, "returned", len(resp.Tickets), "has_more", resp.HasMore,
		"elapsed", time.Since(start))
	return resp, nil
}

func (s *TicketListService) list(ctx context.Context, req models.TicketListRequest) (*models.TicketListResponse, error) {
	caller, err := s.identity.Resolve(ctx, req.CompanyID, req.UserID)
	if err != nil {
		return nil, err
	}

	filter, err := ticketquery.ParseFilter(req, s.opts.Location)
	if err != nil {
		return nil, err
	}
	// Tenant scope always follows the resolved caller.
	filter.CompanyID = caller.CompanyID

	query := ticketquery.Compose(filter, caller)
	query, err = s.resolver.Apply(ctx, query, filter)
	if err != nil {
		return nil, err
	}
	if query.MatchesNothing() && (len(filter.TagIDs) > 0 || len(filter.UserIDs) > 0) {
		s.opts.Metrics.EmptyRestriction()
	}

	page, err := s.executor.Execute(ctx, query, filter.Page)
	if err != nil {
		return nil, err
	}

	return &models.TicketListResponse{
		Tickets: page.Tickets,
		Count:   page.Count,
		HasMore: page.HasMore,
	}, nil
}

func respTickets(resp *models.TicketListResponse) []models.Ticket {
	if resp == nil {
		return nil
	}
	return resp.Tickets
}

func isValidation(err error) bool {
	var verr *ticketquery.ValidationError
	return errors.As(err, &verr)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrCallerNotFound):
		return metrics.OutcomeUnauthorized
	case isValidation(err):
		return metrics.OutcomeInvalid
	}
	return metrics.OutcomeError
}
