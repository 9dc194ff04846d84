package collabserver

import (
	"context"

	"github.com/dshills/collabcore/internal/channelgraph"
)

type contextKey string

const userContextKey contextKey = "collabserver.user"

// WithUser returns a new context carrying the authenticated caller's
// id, the way intelligencedev-manifold's auth.WithUser attaches a
// *User to a request context.
func WithUser(ctx context.Context, user channelgraph.UserID) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext extracts the caller id attached by WithUser.
func UserFromContext(ctx context.Context) (channelgraph.UserID, bool) {
	u, ok := ctx.Value(userContextKey).(channelgraph.UserID)
	return u, ok
}
