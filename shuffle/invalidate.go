package shuffle

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// InvalidatingRepository decorates a repository so that successful writes drop
// the shuffled sessions of the listings built over it. Reads and raw queries
// go straight to the base repository through the embedded interface.
//
// Without it, sessions only refresh when they sit idle for the cache TTL.
//
// The *Tx methods invalidate before the caller commits, so a page request in
// between can rebuild a permutation from the old rows. Call Invalidate once
// the transaction has committed.
type InvalidatingRepository[T any] struct {
	repository.Repository[T]
	pager  *Pager
	scopes []string
}

// Interface assertion to ensure InvalidatingRepository implements Repository[T]
var _ repository.Repository[any] = (*InvalidatingRepository[any])(nil)

// NewInvalidatingRepository wraps base; writes drop every scope named in scopes.
func NewInvalidatingRepository[T any](base repository.Repository[T], pager *Pager, scopes ...string) *InvalidatingRepository[T] {
	return &InvalidatingRepository[T]{Repository: base, pager: pager, scopes: scopes}
}

// Invalidate drops the sessions of every scope the repository was built with.
// It is meant for after a transaction commit.
func (r *InvalidatingRepository[T]) Invalidate(ctx context.Context) error {
	for _, name := range r.scopes {
		if err := r.pager.InvalidateScopeName(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// invalidate is best effort: a write that reached the database is never
// reported as failed because the cache could not be cleared.
func (r *InvalidatingRepository[T]) invalidate(ctx context.Context, err error) {
	if err != nil {
		return
	}
	for _, name := range r.scopes {
		if ierr := r.pager.InvalidateScopeName(ctx, name); ierr != nil {
			r.pager.logger.WithError(ierr).WithField("scope", name).Warn("shuffle: invalidation failed")
		}
	}
}

func (r *InvalidatingRepository[T]) Create(ctx context.Context, record T, criteria ...repository.InsertCriteria) (T, error) {
	result, err := r.Repository.Create(ctx, record, criteria...)
	r.invalidate(ctx, err)
	return result, err
}

func (r *InvalidatingRepository[T]) CreateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.InsertCriteria) (T, error) {
	result, err := r.Repository.CreateTx(ctx, tx, record, criteria...)
	r.invalidate(ctx, err)
	return result, err
}

func (r *InvalidatingRepository[T]) CreateMany(ctx context.Context, records []T, criteria ...repository.InsertCriteria) ([]T, error) {
	result, err := r.Repository.CreateMany(ctx, records, criteria...)
	r.invalidate(ctx, err)
	return result, err
}

func (r *InvalidatingRepository[T]) CreateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.InsertCriteria) ([]T, error) {
	result, err := r.Repository.CreateManyTx(ctx, tx, records, criteria...)
	r.invalidate(ctx, err)
	return result, err
}

func (r *InvalidatingRepository[T]) GetOrCreate(ctx context.Context, record T) (T, error) {
	result, err := r.Repository.GetOrCreate(ctx, record)
	r.invalidate(ctx, err)
	return result, err
}

func (r *InvalidatingRepository[T]) GetOrCreateTx(ctx context.Context, tx bun.IDB, record T) (T, error) {
	result, err := r.Repository.GetOrCreateTx(ctx, tx, record)
	r.invalidate(ctx, err)
	return result, err
}

func (r *InvalidatingRepository[T]) Update(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := r.Repository.Update(ctx, record, criteria...)
	r.invalidate(ctx, err)
	return result, err
}

func (r *InvalidatingRepository[T]) UpdateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := r.Repository.UpdateTx(ctx, tx, record, criteria...)
	r.invalidate(ctx, err)
	return result, err
}

func (r *InvalidatingRepository[T]) UpdateMany(ctx context.Context, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := r.Repository.UpdateMany(ctx, records, criteria...)
	r.invalidate(ctx, err)
	return result, err
}

func (r *InvalidatingRepository[T]) UpdateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := r.Repository.UpdateManyTx(ctx, tx, records, criteria...)
	r.invalidate(ctx, err)
	return result, err
}

func (r *InvalidatingRepository[T]) Upsert(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := r.Repository.Upsert(ctx, record, criteria...)
	r.invalidate(ctx, err)
	return result, err
}

func (r *InvalidatingRepository[T]) UpsertTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := r.Repository.UpsertTx(ctx, tx, record, criteria...)
	r.invalidate(ctx, err)
	return result, err
}

func (r *InvalidatingRepository[T]) UpsertMany(ctx context.Context, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := r.Repository.UpsertMany(ctx, records, criteria...)
	r.invalidate(ctx, err)
	return result, err
}

func (r *InvalidatingRepository[T]) UpsertManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := r.Repository.UpsertManyTx(ctx, tx, records, criteria...)
	r.invalidate(ctx, err)
	return result, err
}

func (r *InvalidatingRepository[T]) Delete(ctx context.Context, record T) error {
	err := r.Repository.Delete(ctx, record)
	r.invalidate(ctx, err)
	return err
}

func (r *InvalidatingRepository[T]) DeleteTx(ctx context.Context, tx bun.IDB, record T) error {
	err := r.Repository.DeleteTx(ctx, tx, record)
	r.invalidate(ctx, err)
	return err
}

func (r *InvalidatingRepository[T]) DeleteMany(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	err := r.Repository.DeleteMany(ctx, criteria...)
	r.invalidate(ctx, err)
	return err
}

func (r *InvalidatingRepository[T]) DeleteManyTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	err := r.Repository.DeleteManyTx(ctx, tx, criteria...)
	r.invalidate(ctx, err)
	return err
}

func (r *InvalidatingRepository[T]) DeleteWhere(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	err := r.Repository.DeleteWhere(ctx, criteria...)
	r.invalidate(ctx, err)
	return err
}

func (r *InvalidatingRepository[T]) DeleteWhereTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	err := r.Repository.DeleteWhereTx(ctx, tx, criteria...)
	r.invalidate(ctx, err)
	return err
}

func (r *InvalidatingRepository[T]) ForceDelete(ctx context.Context, record T) error {
	err := r.Repository.ForceDelete(ctx, record)
	r.invalidate(ctx, err)
	return err
}

func (r *InvalidatingRepository[T]) ForceDeleteTx(ctx context.Context, tx bun.IDB, record T) error {
	err := r.Repository.ForceDeleteTx(ctx, tx, record)
	r.invalidate(ctx, err)
	return err
}
