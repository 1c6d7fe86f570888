package bunsource

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"testing"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-shuffle/cache"
	"github.com/goliatone/go-repository-shuffle/shuffle"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type testPost struct {
	bun.BaseModel `bun:"table:posts,alias:p"`

	ID          int64  `bun:"id,pk"`
	CommunityID int64  `bun:"community_id"`
	Title       string `bun:"title"`
}

func postID(p *testPost) int64 { return p.ID }

func setupDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	_, err = db.NewCreateTable().Model((*testPost)(nil)).Exec(ctx)
	require.NoError(t, err)

	posts := []*testPost{
		{ID: 1, CommunityID: 7, Title: "one"},
		{ID: 2, CommunityID: 7, Title: "two"},
		{ID: 3, CommunityID: 8, Title: "three"},
		{ID: 4, CommunityID: 7, Title: "four"},
		{ID: 5, CommunityID: 8, Title: "five"},
	}
	_, err = db.NewInsert().Model(&posts).Exec(ctx)
	require.NoError(t, err)

	return db
}

func inCommunity(id int64) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.community_id = ?", id)
	}
}

func sortIDs(ids []int64) []int64 {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func TestSource_FetchIDs(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	src, err := New[*testPost, int64](db, postID)
	require.NoError(t, err)

	ids, err := src.FetchIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, sortIDs(ids))

	scoped, err := New[*testPost, int64](db, postID, WithCriteria(inCommunity(7)))
	require.NoError(t, err)

	ids, err = scoped.FetchIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 4}, sortIDs(ids))
}

func TestSource_FetchIDsEmptyTable(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	src, err := New[*testPost, int64](db, postID, WithCriteria(inCommunity(99)))
	require.NoError(t, err)

	ids, err := src.FetchIDs(ctx)
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestSource_FetchByIDs(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	src, err := New[*testPost, int64](db, postID)
	require.NoError(t, err)

	rows, err := src.FetchByIDs(ctx, []int64{4, 2, 42})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	titles := map[int64]string{}
	for _, row := range rows {
		titles[src.IDOf(row)] = row.Title
	}
	assert.Equal(t, map[int64]string{2: "two", 4: "four"}, titles)

	empty, err := src.FetchByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSource_FetchByIDsHonorsCriteria(t *testing.T) {
	db := setupDB(t)

	src, err := New[*testPost, int64](db, postID, WithCriteria(inCommunity(7)))
	require.NoError(t, err)

	rows, err := src.FetchByIDs(context.Background(), []int64{1, 3})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].ID)
}

func TestSource_ValueModel(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	src, err := New[testPost, int64](db, func(p testPost) int64 { return p.ID })
	require.NoError(t, err)

	ids, err := src.FetchIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 5)

	rows, err := src.FetchByIDs(ctx, []int64{5})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "five", rows[0].Title)
}

func TestNew_Validation(t *testing.T) {
	db := setupDB(t)

	_, err := New[*testPost, int64](nil, postID)
	assert.Error(t, err)

	_, err = New[*testPost, int64](db, nil)
	assert.Error(t, err)

	_, err = New[*testPost, int64](db, postID, WithIDColumn(""))
	assert.Error(t, err)

	_, err = NewWithRepository[*testPost, int64](db, nil, postID)
	assert.Error(t, err)
}

func newPostRepository(db *bun.DB) repository.Repository[*testPost] {
	return repository.NewRepository[*testPost](db, repository.ModelHandlers[*testPost]{
		NewRecord: func() *testPost { return &testPost{} },
		GetID: func(p *testPost) uuid.UUID {
			return uuid.Nil
		},
		SetID: func(p *testPost, id uuid.UUID) {},
		GetIdentifier: func() string {
			return "title"
		},
	})
}

func TestSource_FetchByIDsThroughRepository(t *testing.T) {
	db := setupDB(t)

	src, err := NewWithRepository[*testPost, int64](db, newPostRepository(db), postID, WithCriteria(inCommunity(8)))
	require.NoError(t, err)

	rows, err := src.FetchByIDs(context.Background(), []int64{1, 3, 5})
	require.NoError(t, err)

	var ids []int64
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	assert.Equal(t, []int64{3, 5}, sortIDs(ids))
}

func TestSource_RepositoryLoadsWholeWindow(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	more := make([]*testPost, 0, 55)
	for id := int64(6); id <= 60; id++ {
		more = append(more, &testPost{ID: id, CommunityID: 9, Title: "bulk"})
	}
	_, err := db.NewInsert().Model(&more).Exec(ctx)
	require.NoError(t, err)

	src, err := NewWithRepository[*testPost, int64](db, newPostRepository(db), postID)
	require.NoError(t, err)

	svc, err := cache.NewCacheService(cache.DefaultConfig())
	require.NoError(t, err)
	pager, err := shuffle.NewPager(svc)
	require.NoError(t, err)

	q := shuffle.Query[*testPost, int64]{Scope: shuffle.NewScope("posts"), Source: src}
	first, session, err := shuffle.Paginate(ctx, pager, q, shuffle.PageRequest{Page: 1, PageSize: 50}, postID)
	require.NoError(t, err)
	second, _, err := shuffle.Paginate(ctx, pager, q, shuffle.PageRequest{Page: 2, PageSize: 50, SessionID: session}, postID)
	require.NoError(t, err)

	assert.Equal(t, 60, first.TotalCount)
	assert.Len(t, first.Data, 50)
	assert.Len(t, second.Data, 10)

	seen := append(append([]int64{}, first.Data...), second.Data...)
	assert.Len(t, sortIDs(seen), 60)
	for i, id := range sortIDs(seen) {
		assert.Equal(t, int64(i+1), id)
	}
}

func TestSource_ServesShuffledPages(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	svc, err := cache.NewCacheService(cache.DefaultConfig())
	require.NoError(t, err)
	pager, err := shuffle.NewPager(svc)
	require.NoError(t, err)

	src, err := New[*testPost, int64](db, postID, WithCriteria(inCommunity(7)))
	require.NoError(t, err)
	q := shuffle.Query[*testPost, int64]{Scope: shuffle.NewScope("posts", int64(7)), Source: src}
	title := func(p *testPost) string { return p.Title }

	first, session, err := shuffle.Paginate(ctx, pager, q, shuffle.PageRequest{Page: 1, PageSize: 2}, title)
	require.NoError(t, err)
	second, _, err := shuffle.Paginate(ctx, pager, q, shuffle.PageRequest{Page: 2, PageSize: 2, SessionID: session}, title)
	require.NoError(t, err)

	assert.Equal(t, 3, first.TotalCount)
	assert.Len(t, first.Data, 2)
	assert.Len(t, second.Data, 1)
	assert.ElementsMatch(t, []string{"one", "two", "four"}, append(first.Data, second.Data...))
}

type mockRepo struct {
	repository.Repository[*testPost]
	mock.Mock
}

func (m *mockRepo) List(ctx context.Context, criteria ...repository.SelectCriteria) ([]*testPost, int, error) {
	args := m.Called(ctx, len(criteria))
	rows, _ := args.Get(0).([]*testPost)
	return rows, args.Int(1), args.Error(2)
}

func TestSource_RepositoryErrorPropagates(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	boom := errors.New("list failed")

	repo := &mockRepo{}
	// scope criteria, the IN criteria and the window limit
	repo.On("List", ctx, 3).Return(nil, 0, boom).Once()

	src, err := NewWithRepository[*testPost, int64](db, repo, postID, WithCriteria(inCommunity(7)))
	require.NoError(t, err)

	_, err = src.FetchByIDs(ctx, []int64{1})
	assert.ErrorIs(t, err, boom)
	repo.AssertExpectations(t)

	rows, err := src.FetchByIDs(ctx, []int64{})
	require.NoError(t, err)
	assert.Empty(t, rows)
	repo.AssertNumberOfCalls(t, "List", 1)
}
