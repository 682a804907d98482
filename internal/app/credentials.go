package app

import "context"

type sessionTokenKey struct{}

// WithSessionToken attaches the requester's session token so remote quiz
// sources can call the data API on the requester's behalf.
func WithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, sessionTokenKey{}, token)
}

// SessionTokenFromContext returns the token set by WithSessionToken.
func SessionTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(sessionTokenKey{}).(string)
	return token, ok && token != ""
}
