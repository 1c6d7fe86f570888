// Package shuffle serves large listings in a random but stable order, one page
// at a time, across many requests.
//
// # Overview
//
// A client asking for page 1 of a shuffled listing gets a session id back. The
// first request of a session loads the identifiers of every matching row,
// shuffles them once and caches that permutation. Later requests carrying the
// same session id slice the cached permutation instead of reshuffling, so page
// N always holds the same rows and pages never overlap.
//
// Only identifiers are cached. Each page loads its rows with a single batch
// query and puts them back into permutation order, because an IN (...) query
// returns rows in whatever order the database likes.
//
// # Basic Usage
//
//	svc, _ := cache.NewCacheService(cache.DefaultConfig())
//	pager, _ := shuffle.NewPager(svc)
//
//	query := shuffle.Query[Post, int64]{
//		Scope:  shuffle.NewScope("posts.by_community", communityID),
//		Source: postsSource, // e.g. bunsource.New
//	}
//
//	page, sessionID, err := shuffle.Paginate(ctx, pager, query,
//		shuffle.PageRequest{Page: 2, PageSize: 20, SessionID: fromClient},
//		func(p Post) PostView { return toView(p) },
//	)
//
// The returned session id should reach the client out of band, typically as a
// response header; see the ginpager package.
//
// # Requests
//
// Page and page size are clamped, never rejected: page < 1 becomes 1, a page
// size < 1 becomes 10 and a page size > 100 becomes 100. A page past the end
// is empty. Both bounds can be changed through Config.
//
// # Sessions
//
// Permutations live in a cache.CacheService under
//
//	<namespace>::<scope name>::<scope fingerprint>::<session id>
//
// The scope fingerprint covers the scope arguments, so one session id can page
// "all posts" and "posts in community 7" independently. With the default cache
// configuration a session expires after ten idle minutes; every page request
// extends it. An expired session is rebuilt with a new, unrelated order.
//
// The first request of a new session builds exactly one permutation even when
// several requests race, because creation runs under a per-key lock.
//
// # Staleness
//
// A permutation is fixed when it is built. Rows created later do not appear
// until the session is rebuilt. Rows deleted later are skipped, so a page may
// hold fewer items than its size while TotalCount still counts them. Call
// Pager.InvalidateScope or wrap the repository with NewInvalidatingRepository
// to drop sessions on writes.
//
// # Errors
//
// Failures of the data source are returned wrapped in a go-errors Error with
// the internal category; errors.Is still reaches the original error. Apart
// from a Query missing its source or a valid scope name, nothing else about a
// page request is an error.
package shuffle
