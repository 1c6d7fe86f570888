package main

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

type Community struct {
	bun.BaseModel `bun:"table:communities,alias:c"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull"`
}

type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p"`

	ID          int64  `bun:"id,pk,autoincrement"`
	CommunityID int64  `bun:"community_id,notnull"`
	Title       string `bun:"title,notnull"`
	Body        string `bun:"body"`
}

type CommunityView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type PostView struct {
	ID          int64  `json:"id"`
	CommunityID int64  `json:"communityId"`
	Title       string `json:"title"`
	Body        string `json:"body,omitempty"`
}

func communityID(c *Community) int64 { return c.ID }
func postID(p *Post) int64           { return p.ID }

func toCommunityView(c *Community) CommunityView {
	return CommunityView{ID: c.ID, Name: c.Name}
}

func toPostView(p *Post) PostView {
	return PostView{ID: p.ID, CommunityID: p.CommunityID, Title: p.Title, Body: p.Body}
}

func createSchema(ctx context.Context, db bun.IDB) error {
	for _, model := range []any{(*Community)(nil), (*Post)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// seed inserts demo communities with a handful of posts each, unless data
// exists. It reports whether anything was inserted.
func seed(ctx context.Context, db bun.IDB, communities, postsPer int) (bool, error) {
	count, err := db.NewSelect().Model((*Community)(nil)).Count(ctx)
	if err != nil || count > 0 {
		return false, err
	}

	for i := 1; i <= communities; i++ {
		c := &Community{Name: fmt.Sprintf("Community %d", i)}
		if _, err := db.NewInsert().Model(c).Exec(ctx); err != nil {
			return false, err
		}

		posts := make([]*Post, postsPer)
		for j := range posts {
			posts[j] = &Post{
				CommunityID: c.ID,
				Title:       fmt.Sprintf("Post %d.%d", i, j+1),
				Body:        fmt.Sprintf("Body of post %d in community %d", j+1, i),
			}
		}
		if _, err := db.NewInsert().Model(&posts).Exec(ctx); err != nil {
			return false, err
		}
	}
	return true, nil
}
