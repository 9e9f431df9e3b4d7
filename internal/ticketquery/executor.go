package ticketquery

import (
	"context"
	"fmt"
	"math"

	"github.com/gotrs-io/gotrs-desk/internal/models"
)

// PageSize is the fixed number of tickets per page.
const PageSize = 40

// MaxPage is the largest page number whose offset fits in an int.
const MaxPage = math.MaxInt / PageSize

// Store evaluates a Query against the ticket data.
type Store interface {
	// CountTickets returns the number of distinct tickets matching q.
	CountTickets(ctx context.Context, q Query) (int, error)
	// FindTickets returns one page of distinct tickets matching q in q's
	// order, with their related entities hydrated.
	FindTickets(ctx context.Context, q Query, limit, offset int) ([]models.Ticket, error)
}

// Page is one executed listing page.
type Page struct {
	Tickets []models.Ticket
	Count   int
	Number  int
	Offset  int
	HasMore bool
}

// Offset returns the row offset of a 1-based page number. Pages outside
// [1, MaxPage] are the first page.
func Offset(page int) int {
	if page < 1 || page > MaxPage {
		page = 1
	}
	return (page - 1) * PageSize
}

// HasMore reports whether rows remain after a page starting at offset that
// returned n rows out of count.
func HasMore(count, offset, n int) bool {
	return count > offset+n
}

// Executor runs composed queries page by page.
type Executor struct {
	store Store
}

// NewExecutor creates an Executor over store.
func NewExecutor(store Store) *Executor {
	return &Executor{store: store}
}

// Execute counts and fetches page of q. A query that cannot match returns an
// empty page without touching the store.
func (e *Executor) Execute(ctx context.Context, q Query, page int) (*Page, error) {
	if page < 1 || page > MaxPage {
		page = 1
	}
	offset := Offset(page)
	result := &Page{Tickets: []models.Ticket{}, Number: page, Offset: offset}
	if q.MatchesNothing() {
		return result, nil
	}

	count, err := e.store.CountTickets(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("count tickets: %w", err)
	}
	if count <= offset {
		result.Count = count
		return result, nil
	}

	tickets, err := e.store.FindTickets(ctx, q, PageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("find tickets: %w", err)
	}
	if tickets != nil {
		result.Tickets = tickets
	}
	result.Count = count
	result.HasMore = HasMore(count, offset, len(tickets))
	return result, nil
}
