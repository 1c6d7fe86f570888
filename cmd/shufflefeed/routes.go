package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/goliatone/go-repository-shuffle/bunsource"
	"github.com/goliatone/go-repository-shuffle/ginpager"
	"github.com/goliatone/go-repository-shuffle/pkg/di"
	"github.com/goliatone/go-repository-shuffle/shuffle"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
)

var errInvalidCommunity = errors.New("invalid community id")

func inCommunity(id int64) func(q *bun.SelectQuery) *bun.SelectQuery {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.community_id = ?", id)
	}
}

func registerRoutes(r gin.IRouter, container *di.Container, db bun.IDB, logger logrus.FieldLogger) error {
	posts, err := bunsource.New[*Post, int64](db, postID)
	if err != nil {
		return err
	}
	communities, err := bunsource.New[*Community, int64](db, communityID)
	if err != nil {
		return err
	}

	postFeed := di.NewFeed(container, shuffle.Query[*Post, int64]{Scope: shuffle.ScopeFor[*Post](), Source: posts}, toPostView)
	communityFeed := di.NewFeed(container, shuffle.Query[*Community, int64]{Scope: shuffle.ScopeFor[*Community](), Source: communities}, toCommunityView)

	withLogger := ginpager.WithLogger(logger)

	r.GET("/posts/random", ginpager.Handler(postFeed, withLogger))
	r.GET("/communities/random", ginpager.Handler(communityFeed, withLogger))
	r.GET("/communities/:id/posts/random", ginpager.ResolveHandler(func(c *gin.Context) (*shuffle.Feed[*Post, int64, PostView], error) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id < 1 {
			return nil, errInvalidCommunity
		}

		src, err := bunsource.New[*Post, int64](db, postID, bunsource.WithCriteria(inCommunity(id)))
		if err != nil {
			return nil, err
		}
		return di.NewFeed(container, shuffle.Query[*Post, int64]{Scope: shuffle.ScopeFor[*Post](id), Source: src}, toPostView), nil
	}, withLogger))

	r.POST("/posts", createPost(container, db, logger))

	return nil
}

type createPostRequest struct {
	CommunityID int64  `json:"communityId" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Body        string `json:"body"`
}

// createPost inserts a post and drops every shuffled post session so new
// sessions include it.
func createPost(container *di.Container, db bun.IDB, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createPostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		post := &Post{CommunityID: req.CommunityID, Title: req.Title, Body: req.Body}
		if _, err := db.NewInsert().Model(post).Exec(ctx); err != nil {
			logger.WithError(err).Error("create post failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create post"})
			return
		}

		if err := container.Pager().InvalidateScopeName(ctx, shuffle.ScopeFor[*Post]().Name); err != nil {
			logger.WithError(err).Warn("post sessions not invalidated")
		}

		c.JSON(http.StatusCreated, toPostView(post))
	}
}
