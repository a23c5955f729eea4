package middleware

import (
	"context"

	"github.com/felixgeelhaar/mcp-dispatch/protocol"
)

// HandlerFunc handles one dispatched request. A returned error is
// converted to a JSON-RPC error response by the server.
type HandlerFunc func(ctx context.Context, req *protocol.Request) (*protocol.Response, error)

// Middleware wraps a handler with additional behavior.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes middleware so that Chain(a, b)(h) runs a, then b, then h.
func Chain(middlewares ...Middleware) Middleware {
	return func(final HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			if middlewares[i] == nil {
				continue
			}
			final = middlewares[i](final)
		}
		return final
	}
}

// Builder accumulates middleware fluently.
type Builder struct {
	middlewares []Middleware
}

// Use starts a builder with the given middleware.
func Use(middlewares ...Middleware) *Builder {
	return &Builder{middlewares: middlewares}
}

// Append adds middleware after the ones already in the builder.
func (b *Builder) Append(middlewares ...Middleware) *Builder {
	b.middlewares = append(b.middlewares, middlewares...)
	return b
}

// Middlewares returns a copy of the accumulated middleware, suitable for
// server.WithMiddleware.
func (b *Builder) Middlewares() []Middleware {
	out := make([]Middleware, len(b.middlewares))
	copy(out, b.middlewares)
	return out
}

// Then wraps handler with the accumulated middleware.
func (b *Builder) Then(handler HandlerFunc) HandlerFunc {
	return Chain(b.middlewares...)(handler)
}
