package shuffle

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-repository-shuffle/cache"
)

// post is the row type used across the package tests.
type post struct {
	ID    int64
	Title string
}

type postView struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func toView(p post) postView {
	return postView{ID: p.ID, Title: p.Title}
}

// memorySource is an in-memory Source that records calls. FetchByIDs returns
// rows sorted by descending id so tests notice when order is not restored.
type memorySource struct {
	mu        sync.Mutex
	rows      map[int64]post
	calls     []string
	batches   [][]int64
	idsErr    error
	byIDsErr  error
	idsDelay  time.Duration
	duplicate bool
}

func newMemorySource(ids ...int64) *memorySource {
	s := &memorySource{rows: make(map[int64]post)}
	for _, id := range ids {
		s.rows[id] = post{ID: id, Title: "post"}
	}
	return s
}

func (s *memorySource) recordCall(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, method)
}

func (s *memorySource) callCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == method {
			n++
		}
	}
	return n
}

func (s *memorySource) remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
}

func (s *memorySource) add(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[id] = post{ID: id, Title: "post"}
}

func (s *memorySource) FetchIDs(ctx context.Context) ([]int64, error) {
	s.recordCall("FetchIDs")
	if s.idsDelay > 0 {
		time.Sleep(s.idsDelay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idsErr != nil {
		return nil, s.idsErr
	}
	ids := make([]int64, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *memorySource) FetchByIDs(ctx context.Context, ids []int64) ([]post, error) {
	s.recordCall("FetchByIDs")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byIDsErr != nil {
		return nil, s.byIDsErr
	}
	s.batches = append(s.batches, append([]int64(nil), ids...))

	var out []post
	for _, id := range ids {
		if row, ok := s.rows[id]; ok {
			out = append(out, row)
			if s.duplicate {
				out = append(out, post{ID: id, Title: "duplicate"})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *memorySource) IDOf(p post) int64 {
	return p.ID
}

func newTestPager(t *testing.T, opts ...Option) *Pager {
	t.Helper()

	svc, err := cache.NewCacheService(cache.DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create cache service: %v", err)
	}

	pager, err := NewPager(svc, opts...)
	if err != nil {
		t.Fatalf("failed to create pager: %v", err)
	}
	return pager
}

func postsQuery(src Source[post, int64], args ...any) Query[post, int64] {
	return Query[post, int64]{Scope: NewScope("posts", args...), Source: src}
}

func viewIDs(views []postView) []int64 {
	ids := make([]int64, len(views))
	for i, v := range views {
		ids[i] = v.ID
	}
	return ids
}

func sortedCopy(ids []int64) []int64 {
	out := append([]int64(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// memoryCache is a map backed CacheService without expiration. It counts
// deletes so invalidation tests can assert on them.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]any
	deleted []string
	err     error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]any)}
}

func (m *memoryCache) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	m.mu.Lock()
	if m.err != nil {
		m.mu.Unlock()
		return nil, m.err
	}
	if v, ok := m.entries[key]; ok {
		m.mu.Unlock()
		return v, nil
	}
	m.mu.Unlock()

	fn, ok := fetchFn.(cache.FetchFn[[]int64])
	if !ok {
		return nil, errors.New("memoryCache: unsupported fetch func")
	}
	v, err := fn(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = v
	return v, nil
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memoryCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
			m.deleted = append(m.deleted, key)
		}
	}
	return nil
}

func (m *memoryCache) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// slidingCache re-arms hits with a separate read and write, the way the
// sturdyc backend does. onHit runs once between the two.
type slidingCache struct {
	*memoryCache
	onHit func()
}

func (c *slidingCache) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	c.mu.Lock()
	v, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return c.memoryCache.GetOrFetch(ctx, key, fetchFn)
	}

	if hook := c.onHit; hook != nil {
		c.onHit = nil
		hook()
	}

	c.mu.Lock()
	c.entries[key] = v
	c.mu.Unlock()
	return v, nil
}
