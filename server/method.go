package server

import (
	"context"
	"errors"
	"sort"

	"github.com/felixgeelhaar/mcp-dispatch/protocol"
)

var (
	// ErrNotFound marks a lookup for a resource, tool or prompt that is not
	// registered. It maps to protocol.CodeNotFound.
	ErrNotFound = errors.New("not found")

	// ErrNotStarted is returned when a request arrives before Start.
	ErrNotStarted = errors.New("server not started")
)

// Method handles one JSON-RPC method. Built-in and custom methods share
// this contract. Returned errors are converted to JSON-RPC error objects
// by the dispatcher.
type Method interface {
	Handle(ctx context.Context, req *protocol.Request, sc *Context) (*protocol.Response, error)
}

// MethodFunc adapts an ordinary function to Method.
type MethodFunc func(ctx context.Context, req *protocol.Request, sc *Context) (*protocol.Response, error)

// Handle calls f(ctx, req, sc).
func (f MethodFunc) Handle(ctx context.Context, req *protocol.Request, sc *Context) (*protocol.Response, error) {
	return f(ctx, req, sc)
}

// Registry maps method names to handlers. It is a fixed table: names are
// only ever looked up, never used to construct anything.
type Registry struct {
	methods map[string]Method
}

// NewRegistry returns a registry holding the built-in MCP methods.
func NewRegistry() *Registry {
	r := &Registry{methods: make(map[string]Method)}
	r.Register(protocol.MethodInitialize, MethodFunc(initialize))
	r.Register(protocol.MethodInitialized, MethodFunc(initialized))
	r.Register(protocol.MethodPing, MethodFunc(ping))
	r.Register(protocol.MethodResourcesList, MethodFunc(listResources))
	r.Register(protocol.MethodResourcesRead, MethodFunc(readResource))
	r.Register(protocol.MethodToolsList, MethodFunc(listTools))
	r.Register(protocol.MethodToolsCall, MethodFunc(callTool))
	r.Register(protocol.MethodPromptsList, MethodFunc(listPrompts))
	r.Register(protocol.MethodPromptsGet, MethodFunc(getPrompt))
	return r
}

// Register binds name to m, replacing any existing binding.
func (r *Registry) Register(name string, m Method) {
	r.methods[name] = m
}

// Lookup returns the handler bound to name.
func (r *Registry) Lookup(name string) (Method, bool) {
	m, ok := r.methods[name]
	return m, ok
}

// Names returns the registered method names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) clone() *Registry {
	c := &Registry{methods: make(map[string]Method, len(r.methods))}
	for k, v := range r.methods {
		c.methods[k] = v
	}
	return c
}

// toRPCError maps handler errors onto the fixed JSON-RPC code table.
func toRPCError(err error) *protocol.Error {
	var rpcErr *protocol.Error
	switch {
	case errors.As(err, &rpcErr):
		return rpcErr
	case errors.Is(err, ErrNotFound):
		return protocol.NewNotFound(err.Error())
	default:
		return protocol.NewInternalError(err.Error())
	}
}
