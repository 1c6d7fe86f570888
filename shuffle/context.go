package shuffle

import (
	"context"

	"github.com/google/uuid"
)

type sessionIDContextKey struct{}

// WithSessionID attaches a shuffle session id to the context. Paginate falls
// back to it when the request carries none.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if sessionID == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionIDContextKey{}, sessionID)
}

// SessionIDFromContext returns the session id set by WithSessionID, if any.
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(sessionIDContextKey{}).(string); ok {
		return id
	}
	return ""
}

// NewSessionID mints a random session id.
func NewSessionID() string {
	return uuid.NewString()
}

const maxSessionIDLen = 128

// validSessionID accepts printable ASCII without spaces, up to maxSessionIDLen bytes.
// Anything else is treated as absent and replaced by a fresh id.
func validSessionID(id string) bool {
	if id == "" || len(id) > maxSessionIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if c := id[i]; c <= ' ' || c > '~' {
			return false
		}
	}
	return true
}
