package bunsource

import (
	"context"
	"errors"
	"reflect"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-shuffle/shuffle"
	"github.com/uptrace/bun"
)

// Source serves a shuffled listing from a bun model. T is the model type,
// either a struct or a pointer to one, and ID the type of its key column.
type Source[T any, ID comparable] struct {
	db       bun.IDB
	repo     repository.Repository[T]
	idOf     func(T) ID
	idColumn string
	criteria []repository.SelectCriteria
}

var _ shuffle.Source[any, int] = (*Source[any, int])(nil)

// Option configures a Source.
type Option func(*options)

type options struct {
	idColumn string
	criteria []repository.SelectCriteria
}

// WithIDColumn sets the key column. Defaults to "id".
func WithIDColumn(column string) Option {
	return func(o *options) { o.idColumn = column }
}

// WithCriteria narrows the listing, e.g. to the posts of one community.
// Criteria apply to both identifier and row queries, so rows that leave the
// listing after a permutation was built are skipped like deleted ones.
func WithCriteria(criteria ...repository.SelectCriteria) Option {
	return func(o *options) { o.criteria = append(o.criteria, criteria...) }
}

// New creates a Source reading the model table through db.
func New[T any, ID comparable](db bun.IDB, idOf func(T) ID, opts ...Option) (*Source[T, ID], error) {
	if db == nil {
		return nil, errors.New("bunsource: db is required")
	}
	return newSource[T, ID](db, nil, idOf, opts)
}

// NewWithRepository is like New but loads rows through repo.List so the
// repository's own handlers and decorators stay in the read path.
// Identifiers are still selected with db since repositories load whole rows.
func NewWithRepository[T any, ID comparable](db bun.IDB, repo repository.Repository[T], idOf func(T) ID, opts ...Option) (*Source[T, ID], error) {
	if db == nil || repo == nil {
		return nil, errors.New("bunsource: db and repository are required")
	}
	return newSource[T, ID](db, repo, idOf, opts)
}

func newSource[T any, ID comparable](db bun.IDB, repo repository.Repository[T], idOf func(T) ID, opts []Option) (*Source[T, ID], error) {
	if idOf == nil {
		return nil, errors.New("bunsource: id extractor is required")
	}

	o := options{idColumn: "id"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.idColumn == "" {
		return nil, errors.New("bunsource: id column must not be empty")
	}

	return &Source[T, ID]{
		db:       db,
		repo:     repo,
		idOf:     idOf,
		idColumn: o.idColumn,
		criteria: o.criteria,
	}, nil
}

// FetchIDs selects the key column of every row in the listing.
func (s *Source[T, ID]) FetchIDs(ctx context.Context) ([]ID, error) {
	ids := []ID{}

	q := s.db.NewSelect().
		Model(modelOf[T]()).
		ColumnExpr("?TableAlias.?", bun.Ident(s.idColumn))
	q = s.apply(q)

	if err := q.Scan(ctx, &ids); err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []ID{}
	}
	return ids, nil
}

// FetchByIDs loads the rows for ids with a single IN query.
func (s *Source[T, ID]) FetchByIDs(ctx context.Context, ids []ID) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}

	if s.repo != nil {
		// List pages by default, so the window size has to be the limit.
		criteria := append(append([]repository.SelectCriteria{}, s.criteria...),
			s.inIDs(ids),
			repository.SelectPaginate(len(ids), 0),
		)
		rows, _, err := s.repo.List(ctx, criteria...)
		return rows, err
	}

	var rows []T
	q := s.db.NewSelect().Model(&rows)
	q = s.inIDs(ids)(s.apply(q))

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

// IDOf returns the key of a loaded row.
func (s *Source[T, ID]) IDOf(record T) ID {
	return s.idOf(record)
}

func (s *Source[T, ID]) inIDs(ids []ID) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.? IN (?)", bun.Ident(s.idColumn), bun.In(ids))
	}
}

func (s *Source[T, ID]) apply(q *bun.SelectQuery) *bun.SelectQuery {
	for _, c := range s.criteria {
		q = c(q)
	}
	return q
}

// modelOf returns a pointer to a zero model so bun can resolve its table.
func modelOf[T any]() any {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() == reflect.Ptr {
		return reflect.New(t.Elem()).Interface()
	}
	return reflect.New(t).Interface()
}
