package protocol

import "context"

type sessionKey struct{}

// ContextWithSessionID returns a context carrying the transport session id.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionIDFromContext returns the session id attached by the transport,
// or an empty string.
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
