// Package bunsource implements shuffle.Source on top of bun models.
//
// A listing is a model table optionally narrowed with repository criteria:
//
//	src, err := bunsource.New[*Post, int64](db, func(p *Post) int64 { return p.ID },
//		bunsource.WithCriteria(func(q *bun.SelectQuery) *bun.SelectQuery {
//			return q.Where("?TableAlias.community_id = ?", communityID)
//		}),
//	)
//
// FetchIDs selects only the key column. FetchByIDs loads rows with one IN
// query, either directly or through a go-repository-bun Repository.
package bunsource
