package shuffle

import "context"

// Feed binds a query and a projector so handlers only deal with requests.
type Feed[T any, ID comparable, R any] struct {
	pager   *Pager
	query   Query[T, ID]
	project func(T) R
}

// NewFeed creates a Feed serving q through p, projecting rows with project.
func NewFeed[T any, ID comparable, R any](p *Pager, q Query[T, ID], project func(T) R) *Feed[T, ID, R] {
	return &Feed[T, ID, R]{pager: p, query: q, project: project}
}

// Page returns one page and the session id to hand back to the client.
func (f *Feed[T, ID, R]) Page(ctx context.Context, req PageRequest) (Page[R], string, error) {
	return Paginate(ctx, f.pager, f.query, req, f.project)
}

// Scope returns the listing's scope.
func (f *Feed[T, ID, R]) Scope() Scope {
	return f.query.Scope
}

// Invalidate drops every session of the listing.
func (f *Feed[T, ID, R]) Invalidate(ctx context.Context) error {
	return f.pager.InvalidateScope(ctx, f.query.Scope)
}
