package ticketquery

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// MatchMode selects how per-entity ticket sets combine.
type MatchMode string

const (
	// MatchAll keeps tickets linked to every requested entity.
	MatchAll MatchMode = "all"
	// MatchAny keeps tickets linked to at least one requested entity.
	MatchAny MatchMode = "any"
)

// ParseMatchMode maps a configuration value to a MatchMode.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(s) {
	case "", MatchAll:
		return MatchAll, nil
	case MatchAny:
		return MatchAny, nil
	}
	return "", fmt.Errorf("unknown match mode %q", s)
}

// RelationStore answers per-entity membership lookups within a tenant.
type RelationStore interface {
	TicketIDsByTag(ctx context.Context, companyID, tagID uint) ([]uint, error)
	TicketIDsByUser(ctx context.Context, companyID, userID uint) ([]uint, error)
}

// ResolverOptions tunes a Resolver.
type ResolverOptions struct {
	AssigneeMatch MatchMode
	// Concurrency bounds in-flight lookups per phase; zero or less means one
	// lookup per requested entity at once.
	Concurrency int
}

// Resolver turns tag and assignee membership filters into ticket id sets.
type Resolver struct {
	store RelationStore
	opts  ResolverOptions
}

// NewResolver creates a Resolver over store.
func NewResolver(store RelationStore, opts ResolverOptions) *Resolver {
	if opts.AssigneeMatch == "" {
		opts.AssigneeMatch = MatchAll
	}
	return &Resolver{store: store, opts: opts}
}

type lookupFunc func(ctx context.Context, companyID, id uint) ([]uint, error)

// Restrict resolves the tag and assignee filters of f. A nil set means f
// carries neither filter; an empty set means nothing can match.
func (r *Resolver) Restrict(ctx context.Context, f Filter) (*IDSet, error) {
	var phases []IDSet

	if len(f.TagIDs) > 0 {
		set, err := r.resolve(ctx, f.CompanyID, f.TagIDs, r.store.TicketIDsByTag, MatchAll)
		if err != nil {
			return nil, fmt.Errorf("resolve tags: %w", err)
		}
		phases = append(phases, set)
	}
	if len(f.UserIDs) > 0 {
		set, err := r.resolve(ctx, f.CompanyID, f.UserIDs, r.store.TicketIDsByUser, r.opts.AssigneeMatch)
		if err != nil {
			return nil, fmt.Errorf("resolve users: %w", err)
		}
		phases = append(phases, set)
	}

	if len(phases) == 0 {
		return nil, nil
	}
	set := Intersect(phases...)
	return &set, nil
}

// Apply narrows q by the membership filters of f.
func (r *Resolver) Apply(ctx context.Context, q Query, f Filter) (Query, error) {
	set, err := r.Restrict(ctx, f)
	if err != nil {
		return Query{}, err
	}
	if set == nil {
		return q, nil
	}
	return q.Restrict(*set), nil
}

// resolve runs one lookup per id concurrently and combines the results once
// all of them have finished.
func (r *Resolver) resolve(ctx context.Context, companyID uint, ids []uint, lookup lookupFunc, mode MatchMode) (IDSet, error) {
	ids = uniqueIDs(ids)
	sets := make([]IDSet, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	if r.opts.Concurrency > 0 {
		g.SetLimit(r.opts.Concurrency)
	}
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			found, err := lookup(gctx, companyID, id)
			if err != nil {
				return fmt.Errorf("lookup %d: %w", id, err)
			}
			sets[i] = NewIDSet(found...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return IDSet{}, err
	}

	if mode == MatchAny {
		return Union(sets...), nil
	}
	return Intersect(sets...), nil
}
