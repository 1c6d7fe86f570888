package shuffle

import "context"

// Source is the data layer a shuffled listing reads from.
//
// FetchIDs returns the identifiers of every row in the listing, in any order,
// without loading full rows. FetchByIDs loads the rows for a set of identifiers
// in a single round trip; it need not preserve order and may omit rows that no
// longer exist. IDOf extracts the identifier of a loaded row.
type Source[T any, ID comparable] interface {
	FetchIDs(ctx context.Context) ([]ID, error)
	FetchByIDs(ctx context.Context, ids []ID) ([]T, error)
	IDOf(record T) ID
}

// SourceFuncs adapts plain functions to Source.
type SourceFuncs[T any, ID comparable] struct {
	IDs   func(ctx context.Context) ([]ID, error)
	ByIDs func(ctx context.Context, ids []ID) ([]T, error)
	ID    func(record T) ID
}

var _ Source[any, int] = SourceFuncs[any, int]{}

func (f SourceFuncs[T, ID]) FetchIDs(ctx context.Context) ([]ID, error) {
	return f.IDs(ctx)
}

func (f SourceFuncs[T, ID]) FetchByIDs(ctx context.Context, ids []ID) ([]T, error) {
	return f.ByIDs(ctx, ids)
}

func (f SourceFuncs[T, ID]) IDOf(record T) ID {
	return f.ID(record)
}

// Query pairs a listing's identity with the source that serves it.
type Query[T any, ID comparable] struct {
	Scope  Scope
	Source Source[T, ID]
}

func (q Query[T, ID]) validate() error {
	if q.Source == nil {
		return errMissingSource
	}
	return q.Scope.validate()
}
