// Package ginpager exposes shuffled listings over gin.
package ginpager

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/goliatone/go-repository-shuffle/shuffle"
	"github.com/sirupsen/logrus"
)

// SessionHeader carries the shuffle session id in both directions.
const SessionHeader = "X-Shuffle-Session"

// BindRequest reads page, pageSize (or page_size) and sessionId from the query
// string. The session id falls back to SessionHeader. Values that do not parse
// are left at zero so the pager applies its defaults.
func BindRequest(c *gin.Context) shuffle.PageRequest {
	size := c.Query("pageSize")
	if size == "" {
		size = c.Query("page_size")
	}

	session := c.Query("sessionId")
	if session == "" {
		session = c.GetHeader(SessionHeader)
	}

	return shuffle.PageRequest{
		Page:      atoi(c.Query("page")),
		PageSize:  atoi(size),
		SessionID: session,
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// Respond writes page as JSON and echoes sessionID in SessionHeader.
func Respond[R any](c *gin.Context, page shuffle.Page[R], sessionID string) {
	c.Header(SessionHeader, sessionID)
	c.JSON(http.StatusOK, page)
}

// HandlerOption configures a handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	logger logrus.FieldLogger
}

// WithLogger logs failed requests to logger.
func WithLogger(logger logrus.FieldLogger) HandlerOption {
	return func(h *handlerConfig) { h.logger = logger }
}

// Handler serves feed. Data source failures answer 500 with an error body.
func Handler[T any, ID comparable, R any](feed *shuffle.Feed[T, ID, R], opts ...HandlerOption) gin.HandlerFunc {
	return ResolveHandler(func(*gin.Context) (*shuffle.Feed[T, ID, R], error) {
		return feed, nil
	}, opts...)
}

// ResolveHandler serves the feed returned by resolve, which typically builds a
// scope from path parameters. A resolve error answers 400.
func ResolveHandler[T any, ID comparable, R any](resolve func(c *gin.Context) (*shuffle.Feed[T, ID, R], error), opts ...HandlerOption) gin.HandlerFunc {
	cfg := handlerConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		cfg.logger = discard
	}

	return func(c *gin.Context) {
		feed, err := resolve(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		page, sessionID, err := feed.Page(c.Request.Context(), BindRequest(c))
		if err != nil {
			cfg.logger.WithError(err).WithField("scope", feed.Scope().String()).Error("shuffled page failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load page"})
			return
		}

		Respond(c, page, sessionID)
	}
}
