package auth

import "context"

type principalKey struct{}

// WithUser returns a copy of ctx carrying the authenticated user id.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, principalKey{}, userID)
}

// UserID returns the authenticated user id placed by the auth middleware.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(principalKey{}).(string)
	return id, ok && id != ""
}
