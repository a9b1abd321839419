package identity

import (
	"context"

	"github.com/mailvend/mailvend/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// accessContextKey is the context key for storing AccessContext.
const accessContextKey contextKey = "access_context"

// ContextWithAccess adds an AccessContext to the context.
func ContextWithAccess(ctx context.Context, access model.AccessContext) context.Context {
	return context.WithValue(ctx, accessContextKey, access)
}

// AccessFromContext retrieves the AccessContext from the context.
// Returns a zero (unauthenticated) context if not present.
func AccessFromContext(ctx context.Context) model.AccessContext {
	access, ok := ctx.Value(accessContextKey).(model.AccessContext)
	if !ok {
		return model.AccessContext{}
	}
	return access
}
