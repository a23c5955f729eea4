// Package mcp is the entry point for building MCP (Model Context Protocol)
// servers. It re-exports the server builder and wires servers to the
// stdio, HTTP and WebSocket transports with a single call.
//
// Basic usage:
//
//	srv := mcp.NewServer(mcp.ServerInfo{
//	    Name:    "my-server",
//	    Version: "1.0.0",
//	})
//
//	type SearchInput struct {
//	    Query string `json:"query" jsonschema:"required"`
//	}
//
//	srv.Tool("search").
//	    Description("Search for items").
//	    Handler(func(ctx context.Context, input SearchInput) ([]string, error) {
//	        return []string{"result1", "result2"}, nil
//	    })
//
//	mcp.ServeStdio(ctx, srv)
package mcp

import (
	"context"
	"net/http"

	"github.com/felixgeelhaar/mcp-dispatch/middleware"
	"github.com/felixgeelhaar/mcp-dispatch/server"
	"github.com/felixgeelhaar/mcp-dispatch/transport"
)

// ServerInfo contains server metadata exposed to clients.
type ServerInfo = server.Info

// Capabilities declares what features the server supports.
type Capabilities = server.Capabilities

// Server is the MCP server instance.
type Server = server.Server

// Option configures a Server.
type Option = server.Option

// Prompt types
type PromptMessage = server.PromptMessage
type PromptArgument = server.PromptArgument

// Middleware types
type Middleware = middleware.Middleware
type Logger = middleware.Logger

// Transport options
type (
	StdioOption     = transport.StdioOption
	ExchangeOption  = transport.ExchangeOption
	HTTPOption      = transport.HTTPOption
	WebSocketOption = transport.WebSocketOption
)

var (
	WithResources  = server.WithResources
	WithTools      = server.WithTools
	WithPrompts    = server.WithPrompts
	WithMethod     = server.WithMethod
	WithMiddleware = server.WithMiddleware

	UserMessage      = server.UserMessage
	AssistantMessage = server.AssistantMessage
)

// NewServer creates an unstarted server.
func NewServer(info ServerInfo, opts ...Option) *Server {
	return server.New(info, opts...)
}

// ServeStdio serves srv over stdin and stdout until input ends or ctx is
// canceled.
func ServeStdio(ctx context.Context, srv *Server, opts ...StdioOption) error {
	return srv.Run(ctx, transport.NewStdio(opts...))
}

// Handler starts srv and returns an http.Handler that runs one exchange
// per request.
func Handler(srv *Server, opts ...ExchangeOption) (http.Handler, error) {
	if err := srv.Start(); err != nil {
		return nil, err
	}
	return transport.HTTPHandler(srv, nil, opts...), nil
}

// WebSocketHandler starts srv and returns an http.Handler that upgrades
// each request and serves the connection as one session.
func WebSocketHandler(srv *Server, opts ...WebSocketOption) (http.Handler, error) {
	if err := srv.Start(); err != nil {
		return nil, err
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := transport.Upgrade(w, r, nil, opts...)
		if err != nil {
			return
		}
		_ = conn.Run(r.Context(), srv)
	}), nil
}

// ServeHTTP serves srv at "/" on addr until ctx is canceled.
func ServeHTTP(ctx context.Context, srv *Server, addr string, opts ...HTTPOption) error {
	h, err := Handler(srv)
	if err != nil {
		return err
	}
	return transport.NewHTTP(addr, opts...).Serve(ctx, h)
}

// ServeWebSocket serves srv over WebSocket at "/" on addr until ctx is
// canceled.
func ServeWebSocket(ctx context.Context, srv *Server, addr string, opts ...WebSocketOption) error {
	h, err := WebSocketHandler(srv, opts...)
	if err != nil {
		return err
	}
	return transport.NewHTTP(addr).Serve(ctx, h)
}

// DefaultMiddleware returns the recover, request id and logging stack.
func DefaultMiddleware(logger Logger) []Middleware {
	return middleware.DefaultStack(logger)
}
